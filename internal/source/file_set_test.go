package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("mem.em", "mem", []byte("a\nbc\n\nd"))
	f := fs.Get(id)
	if len(f.LineIdx) != 3 {
		t.Fatalf("expected 3 line breaks, got %d", len(f.LineIdx))
	}
	if f.Flags&FileVirtual == 0 {
		t.Fatalf("expected virtual flag")
	}
	if got := f.GetLine(2); got != "bc" {
		t.Fatalf("line 2 = %q", got)
	}
	if got := f.GetLine(3); got != "" {
		t.Fatalf("line 3 = %q", got)
	}
	if got := f.GetLine(4); got != "d" {
		t.Fatalf("line 4 = %q", got)
	}
	if got := f.GetLine(5); got != "" {
		t.Fatalf("line 5 = %q", got)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("mem.em", "mem", []byte("ab\ncd\nef"))
	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}},
		{3, LineCol{2, 1}},
		{7, LineCol{3, 2}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Fatalf("offset %d: got %+v want %+v", tt.off, start, tt.want)
		}
	}
}

func TestLoadNormalizesAndDerivesModule(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "geo")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(sub, "shapes.em")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFfn a() {}\r\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "fn a() {}\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
	if f.Module != "geo::shapes" {
		t.Fatalf("module = %q", f.Module)
	}
	if got := f.DisplayPath(dir); got != "geo/shapes.em" {
		t.Fatalf("display path = %q", got)
	}
}

func TestSpanCoverAndContains(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	c := a.Cover(b)
	if c.Start != 2 || c.End != 8 {
		t.Fatalf("cover = %v", c)
	}
	if !c.Contains(a) || !c.Contains(b) {
		t.Fatalf("cover must contain both spans")
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Fatalf("cross-file cover must keep receiver, got %v", got)
	}
}
