package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestLevelScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeModule, false},
		{LevelDetail, ScopeModule, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Fatalf("%v.ShouldEmit(%v) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	sp := Begin(tr, ScopePass, "resolve", 0)
	Point(tr, ScopeModule, "poison", "geo::Missing")
	Point(tr, ScopeNode, "hidden", "")
	sp.WithExtra("files", "2").End("ok")

	out := buf.String()
	for _, want := range []string{"→ resolve", "• poison (geo::Missing)", "← resolve (ok) {files=2}"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("node scope leaked at detail level:\n%s", out)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopeNode, name, "")
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestContextPropagation(t *testing.T) {
	r := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	if FromContext(ctx) != Tracer(r) {
		t.Fatalf("tracer not propagated")
	}
	sp := Begin(r, ScopePass, "outer", 0)
	ctx = WithSpan(ctx, sp)
	if ParentSpan(ctx) != sp.ID() {
		t.Fatalf("parent span = %d, want %d", ParentSpan(ctx), sp.ID())
	}
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop by default")
	}
}

func TestHeartbeatProbe(t *testing.T) {
	r := NewRingTracer(16, LevelPhase)
	h := StartHeartbeat(r, time.Millisecond, func() string { return "pending=3" })
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(r.Snapshot()) == 0 {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	snap := r.Snapshot()
	if len(snap) == 0 || !strings.Contains(snap[0].Detail, "pending=3") {
		t.Fatalf("heartbeat not recorded: %+v", snap)
	}
}

func TestNewByMode(t *testing.T) {
	if tr, err := New(Config{Level: LevelOff}); err != nil || tr != Nop {
		t.Fatalf("level off must give Nop, got %v %v", tr, err)
	}
	tr, err := New(Config{Level: LevelDetail, Mode: ModeRing, RingSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*RingTracer); !ok {
		t.Fatalf("ring mode gave %T", tr)
	}

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	multi, ok := tr.(*MultiTracer)
	if !ok || multi.Ring() == nil {
		t.Fatalf("both mode gave %T", tr)
	}
	Begin(tr, ScopePass, "sweep", 0).End("")
	if !strings.Contains(buf.String(), "sweep") || len(multi.Ring().Snapshot()) != 2 {
		t.Fatalf("stream %q, ring %d events", buf.String(), len(multi.Ring().Snapshot()))
	}

	if _, err := ParseMode("disk"); err == nil {
		t.Fatalf("unknown mode must fail")
	}
}

func TestConfigEffective(t *testing.T) {
	cfg := Config{Level: LevelError, Mode: ModeStream, OutputPath: "run.ndjson"}.Effective()
	if cfg.Level != LevelDetail || cfg.Mode != ModeRing || cfg.RingSize != defaultRingSize || cfg.Format != FormatNDJSON {
		t.Fatalf("effective config %+v", cfg)
	}
	tr, err := New(Config{Level: LevelError, Mode: ModeStream})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*RingTracer); !ok {
		t.Fatalf("level error must only keep a ring, got %T", tr)
	}
	if got := FormatFor(FormatAuto, "trace.log"); got != FormatText {
		t.Fatalf("got %v", got)
	}
	if got := FormatFor(FormatNDJSON, "trace.log"); got != FormatNDJSON {
		t.Fatalf("explicit format must win, got %v", got)
	}
}
