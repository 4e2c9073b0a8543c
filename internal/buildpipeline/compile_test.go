package buildpipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ember/internal/ir"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) last(file string, stage Stage) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if ev := r.events[i]; ev.File == file && ev.Stage == stage {
			return ev, true
		}
	}
	return Event{}, false
}

func writeTree(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	root := t.TempDir()
	var paths []string
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	return root, paths
}

func TestCompileEmitsProgram(t *testing.T) {
	root, paths := writeTree(t, map[string]string{
		"main.em":      "import lib::twice::twice;\nfn main() -> Int { return twice(21); }",
		"lib/twice.em": "fn twice(n: Int) -> Int { return n + n; }",
	})
	out := filepath.Join(t.TempDir(), "prog.emir")
	rec := &recorder{}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := Compile(ctx, &CompileRequest{BaseDir: root, Files: paths, Progress: rec, EmitPath: out})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !res.Timings.Has(StageCheck) || !res.Timings.Has(StageEmit) {
		t.Fatalf("missing stage timings")
	}
	if ev, ok := rec.last("lib/twice.em", StageCheck); !ok || ev.Status != StatusDone {
		t.Fatalf("lib/twice.em: %+v", ev)
	}
	if ev, ok := rec.last("", StageEmit); !ok || ev.Status != StatusDone {
		t.Fatalf("emit: %+v", ev)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	payload, err := ir.DecodePayload(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, fn := range payload.Functions {
		if fn.Name == "lib::twice::twice" {
			found = true
		}
	}
	if !found {
		t.Fatalf("lib::twice::twice not emitted")
	}
}

func TestCompileStopsOnDiagnostics(t *testing.T) {
	root, paths := writeTree(t, map[string]string{
		"bad.em": "fn f() -> Int { return missing(); }",
	})
	out := filepath.Join(t.TempDir(), "prog.emir")
	rec := &recorder{}
	res, err := Compile(context.Background(), &CompileRequest{BaseDir: root, Files: paths, Progress: rec, EmitPath: out})
	if !errors.Is(err, ErrDiagnostics) {
		t.Fatalf("got %v, want ErrDiagnostics", err)
	}
	if res.Driver == nil || !res.Driver.Bag.HasErrors() {
		t.Fatalf("the driver result must be kept for reporting")
	}
	if ev, ok := rec.last("bad.em", StageCheck); !ok || ev.Status != StatusError {
		t.Fatalf("bad.em: %+v", ev)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("nothing must be emitted after errors")
	}

	_, err = Compile(context.Background(), &CompileRequest{BaseDir: root, Files: paths, AllowDiagnosticsError: true})
	if err != nil {
		t.Fatalf("allowed diagnostics: %v", err)
	}
}

func TestDisplayFiles(t *testing.T) {
	got := DisplayFiles([]string{"/p/b.em", "/p/a/x.em", "/p/b.em", "/q/c.em"}, "/p")
	want := []string{"/q/c.em", "a/x.em", "b.em"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
