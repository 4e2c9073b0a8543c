package sema

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/ir"
	"ember/internal/lexer"
	"ember/internal/parser"
	"ember/internal/prelude"
	"ember/internal/source"
	"ember/internal/symbols"
)

type unit struct {
	module string
	src    string
}

type world struct {
	t   *testing.T
	fs  *source.FileSet
	reg *symbols.Registry
	eng *Engine
	bag *diag.Bag
}

// compile runs the whole declare/finalize pipeline over the prelude and
// units, one task per symbol, and waits for quiescence.
func compile(t *testing.T, units ...unit) *world {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	w := &world{
		t:   t,
		fs:  source.NewFileSet(),
		reg: symbols.NewRegistry(symbols.Options{}),
		bag: diag.NewBag(100),
	}
	w.eng = New(w.reg)
	rep := diag.NewLockedReporter(diag.BagReporter{Bag: w.bag})

	g, gctx := errgroup.WithContext(ctx)
	spawn := func(_ string, run func(context.Context) error) {
		done := w.reg.BeginTask()
		g.Go(func() error {
			defer done()
			err := run(gctx)
			var de *diag.Error
			if errors.As(err, &de) {
				return nil
			}
			return err
		})
	}
	sink := &Declarer{Engine: w.eng, Spawn: spawn, Reporter: rep}

	parsing := w.reg.BeginTask()
	all := append([]unit{{module: ast.PreludeModule, src: string(prelude.Source())}}, units...)
	for i, u := range all {
		id := w.fs.AddVirtual(fmt.Sprintf("unit%d.em", i), u.module, []byte(u.src))
		file := w.fs.Get(id)
		lx := lexer.New(file, lexer.Options{Reporter: rep})
		parser.ParseFile(file, lx, parser.Options{Reporter: rep, Prelude: prelude.Names()}, sink)
	}
	w.reg.Seal()
	parsing()

	if err := g.Wait(); err != nil {
		t.Fatalf("tasks failed: %v", err)
	}
	return w
}

func (w *world) fn(name string) *ir.Function {
	w.t.Helper()
	ent, sym, ok := w.reg.Lookup(name)
	if !ok {
		w.t.Fatalf("%s is not declared", name)
	}
	if err, poisoned := ent.Poison(); poisoned {
		w.t.Fatalf("%s is poisoned: %v (root %v)", name, err, err.Root())
	}
	f, ok := sym.(*symbols.FinalizedFunction)
	if !ok {
		w.t.Fatalf("%s is %s, want a finalized function", name, symbols.KindName(sym))
	}
	return f.Fn
}

func (w *world) poison(name string) *diag.Error {
	w.t.Helper()
	ent, _, ok := w.reg.Lookup(name)
	if !ok {
		w.t.Fatalf("%s is not declared", name)
	}
	err, poisoned := ent.Poison()
	if !poisoned {
		w.t.Fatalf("%s is %s, want poisoned", name, symbols.KindName(ent.Symbol()))
	}
	return err
}

// roots lists the error-level diagnostics a user would see: the bag plus
// every poison that is not a mere dependent.
func (w *world) roots() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range w.bag.Items() {
		if d.Severity == diag.SevError {
			out = append(out, d)
		}
	}
	for _, ent := range w.reg.Entries() {
		if err, ok := ent.Poison(); ok && err.Diag.Severity == diag.SevError {
			out = append(out, err.Diag)
		}
	}
	return out
}

func (w *world) expectClean() {
	w.t.Helper()
	if rs := w.roots(); len(rs) > 0 {
		var sb strings.Builder
		for _, d := range rs {
			fmt.Fprintf(&sb, "\n  %s: %s", d.Code.ID(), d.Message)
		}
		w.t.Fatalf("unexpected errors:%s", sb.String())
	}
}
