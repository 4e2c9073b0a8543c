package fix

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ember/internal/diag"
	"ember/internal/source"
)

func insert(id source.FileID, at uint32, text string) diag.FixEdit {
	return diag.FixEdit{Span: source.Span{File: id, Start: at, End: at}, NewText: text}
}

func withFix(id source.FileID, at uint32, title string, edits ...diag.FixEdit) diag.Diagnostic {
	return diag.NewError(diag.SynExpectSemicolon, source.Span{File: id, Start: at, End: at + 1}, "expected ';'").
		WithFix(title, edits...)
}

func TestApplyWritesFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.em")
	content := "let a = 1\nlet b = 2\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	diags := []diag.Diagnostic{
		withFix(id, 19, "insert ';'", insert(id, 19, ";")),
		withFix(id, 9, "insert ';'", insert(id, 9, ";")),
		// пересекается с первой правкой
		withFix(id, 9, "replace newline", diag.FixEdit{Span: source.Span{File: id, Start: 8, End: 10}, NewText: "1;\n"}),
	}
	res, err := Apply(fs, diags, Options{})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(res.Applied) != 2 || len(res.Skipped) != 1 {
		t.Fatalf("applied %d skipped %+v", len(res.Applied), res.Skipped)
	}
	if res.Applied[0].Line != 1 || res.Applied[0].Path != "main.em" {
		t.Fatalf("first applied: %+v", res.Applied[0])
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "let a = 1;\nlet b = 2;\n"; string(got) != want {
		t.Fatalf("content %q, want %q", got, want)
	}
}

func TestApplyDryRunAndVirtual(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("v.em", "v", []byte("x"))
	if _, err := Apply(fs, []diag.Diagnostic{withFix(id, 0, "t", insert(id, 1, ";"))}, Options{DryRun: true}); !errors.Is(err, ErrNoFixes) {
		t.Fatalf("virtual files must be skipped, got %v", err)
	}
	if _, err := Apply(fs, nil, Options{}); !errors.Is(err, ErrNoFixes) {
		t.Fatalf("got %v", err)
	}
}

func TestSpansConflict(t *testing.T) {
	sp := func(a, b uint32) source.Span { return source.Span{Start: a, End: b} }
	cases := []struct {
		a, b source.Span
		want bool
	}{
		{sp(3, 3), sp(3, 3), false},
		{sp(3, 3), sp(1, 5), true},
		{sp(1, 5), sp(5, 5), false},
		{sp(1, 5), sp(4, 8), true},
		{sp(1, 4), sp(4, 8), false},
	}
	for _, c := range cases {
		if got := spansConflict(c.a, c.b); got != c.want {
			t.Errorf("spansConflict(%v, %v) = %v", c.a, c.b, got)
		}
	}
}

func TestApplyEditsKeepsInsertionOrder(t *testing.T) {
	edits := []diag.FixEdit{
		{Span: source.Span{Start: 1, End: 1}, NewText: "a"},
		{Span: source.Span{Start: 1, End: 1}, NewText: "b"},
		{Span: source.Span{Start: 0, End: 1}, NewText: "X"},
	}
	if got := string(applyEdits([]byte("01"), edits)); got != "Xab1" {
		t.Fatalf("got %q", got)
	}
}
