package observ

import (
	"strings"
	"sync"
	"testing"
)

func TestTimerSkipsOpenPhases(t *testing.T) {
	tm := NewTimer()
	load := tm.Begin("load")
	tm.Begin("parse")
	tm.End(load, "3 files")
	tm.End(load, "again")

	rep := tm.Report()
	if len(rep.Phases) != 1 || rep.Phases[0].Note != "3 files" {
		t.Fatalf("report: %+v", rep)
	}
	if !strings.Contains(tm.Summary(), "// 3 files") {
		t.Fatalf("summary:\n%s", tm.Summary())
	}
}

func TestTimerConcurrentPhases(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.End(tm.Begin("file"), "")
		}()
	}
	wg.Wait()
	if got := len(tm.Report().Phases); got != 16 {
		t.Fatalf("got %d phases, want 16", got)
	}
}
