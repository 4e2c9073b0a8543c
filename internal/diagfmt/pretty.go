package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"ember/internal/diag"
	"ember/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note, code, gutter, caret, fix *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan),
		note:   color.New(color.FgBlue, color.Bold),
		code:   color.New(color.Faint),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		fix:    color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.gutter, p.caret, p.fix} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку исходника с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for _, d := range bag.Items() {
		if !d.Severity.AtLeast(opts.MinSeverity) {
			continue
		}
		prettyOne(w, d, fs, opts, pal)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	sev := d.Severity.String()
	head := fmt.Sprintf("%s %s: %s", pal.severity(d.Severity).Sprint(sev), pal.code.Sprint(d.Code.ID()), d.Message)
	if !located(d.Code) || fs.Get(d.Primary.File) == nil {
		fmt.Fprintln(w, head)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", position(fs, d.Primary, opts.PathMode), head)
	snippet(w, fs, d.Primary, opts.Width, pal)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", pal.note.Sprint("note:"), position(fs, n.Span, opts.PathMode), n.Msg)
		}
	}
	if opts.ShowFixes {
		for _, f := range d.Fixes {
			fmt.Fprintf(w, "  %s %s\n", pal.fix.Sprint("fix:"), f.Title)
			for _, e := range f.Edits {
				pv, err := buildFixEditPreview(fs, e)
				if err != nil {
					continue
				}
				for _, line := range pv.after {
					fmt.Fprintf(w, "    %s %s\n", pal.fix.Sprint("+"), line)
				}
			}
		}
	}
}

// located reports whether diagnostics of code carry a source span. IO and
// project diagnostics are about files as a whole.
func located(code diag.Code) bool {
	return code < diag.IOLoadFileError
}

func position(fs *source.FileSet, sp source.Span, mode PathMode) string {
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", displayPath(fs, sp.File, mode), start.Line, start.Col)
}

// snippet prints the first line of sp with a caret underline. Widths are
// display cells, so wide runes and tabs line up.
func snippet(w io.Writer, fs *source.FileSet, sp source.Span, maxWidth int, pal palette) {
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)
	if int(start.Line) > len(f.LineIdx)+1 {
		return
	}
	line := f.GetLine(start.Line)
	startCol := min(int(start.Col)-1, len(line))
	endCol := len(line)
	if end.Line == start.Line {
		endCol = min(max(int(end.Col)-1, startCol), len(line))
	}

	pad := cells(line[:startCol])
	under := max(cells(line[startCol:endCol]), 1)
	text := expandTabs(line)
	if maxWidth > 0 && runewidth.StringWidth(text) > maxWidth {
		text = runewidth.Truncate(text, maxWidth, "…")
	}

	num := fmt.Sprintf("%d", start.Line)
	gutter := strings.Repeat(" ", len(num))
	fmt.Fprintf(w, " %s %s %s\n", pal.gutter.Sprint(num), pal.gutter.Sprint("|"), text)
	fmt.Fprintf(w, " %s %s %s%s\n", gutter, pal.gutter.Sprint("|"), strings.Repeat(" ", pad),
		pal.caret.Sprint("^"+strings.Repeat("~", under-1)))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func cells(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}
