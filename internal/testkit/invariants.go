// Package testkit holds checks shared by parser and driver tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"ember/internal/ast"
	"ember/internal/source"
)

// CheckSpanInvariants checks the spans of a parsed file:
// every declaration span is non-empty, points into sf and lies within its
// content; name spans and bodies lie within their declaration; trait and
// impl members lie within their parent.
func CheckSpanInvariants(f *ast.File, sf *source.File) error {
	if f == nil || sf == nil {
		return fmt.Errorf("nil file")
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	check := func(what string, sp source.Span) error {
		if sp.End <= sp.Start {
			return fmt.Errorf("%s: empty span %v", what, sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("%s: span file mismatch: got=%d want=%d", what, sp.File, sf.ID)
		}
		if sp.End > size {
			return fmt.Errorf("%s: span end beyond content: %d > %d", what, sp.End, size)
		}
		return nil
	}
	within := func(what string, inner, outer source.Span) error {
		if inner.Start < outer.Start || inner.End > outer.End {
			return fmt.Errorf("%s: span %v is outside %v", what, inner, outer)
		}
		return nil
	}
	function := func(fn *ast.Function, parent *source.Span) error {
		if err := check(fn.QName, fn.Span); err != nil {
			return err
		}
		if err := within(fn.QName+" name", fn.NameSpan, fn.Span); err != nil {
			return err
		}
		if fn.Body != nil {
			if err := within(fn.QName+" body", fn.Body.Span, fn.Span); err != nil {
				return err
			}
		}
		if parent != nil {
			return within(fn.QName, fn.Span, *parent)
		}
		return nil
	}

	for _, fn := range f.Functions {
		if err := function(fn, nil); err != nil {
			return err
		}
	}
	for _, st := range f.Structures {
		if err := check(st.QName, st.Span); err != nil {
			return err
		}
		if err := within(st.QName+" name", st.NameSpan, st.Span); err != nil {
			return err
		}
		for _, m := range st.Members {
			if err := function(m, &st.Span); err != nil {
				return err
			}
		}
	}
	for _, im := range f.Implementors {
		what := "impl " + im.Target.String()
		if err := check(what, im.Span); err != nil {
			return err
		}
		for _, m := range im.Members {
			if err := function(m, &im.Span); err != nil {
				return err
			}
		}
	}
	return nil
}
