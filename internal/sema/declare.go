package sema

import (
	"context"
	"errors"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/source"
	"ember/internal/symbols"
)

// Declarer receives declarations from the parser, registers them and starts
// their finalization tasks. It implements parser.Sink.
type Declarer struct {
	Engine *Engine
	Spawn  Spawner
	// Reporter receives DuplicateSymbol errors, which belong to no symbol.
	Reporter diag.Reporter
}

func (d *Declarer) declare(name string, sym symbols.Symbol, span source.Span) (*symbols.Entry, bool) {
	ent, err := d.Engine.reg.Declare(name, sym, span)
	if err != nil {
		var de *diag.Error
		if errors.As(err, &de) && d.Reporter != nil {
			diag.Emit(d.Reporter, de.Diag)
		}
		return nil, false
	}
	if _, poisoned := ent.Poison(); poisoned {
		return nil, false
	}
	return ent, true
}

func (d *Declarer) Function(fn *ast.Function) {
	ent, ok := d.declare(fn.QName, &symbols.UnresolvedFunction{Decl: fn}, fn.NameSpan)
	if !ok {
		return
	}
	d.Spawn(fn.QName, func(ctx context.Context) error {
		return d.Engine.FinalizeFunction(ctx, ent, Owner{})
	})
}

// Structure declares a struct or trait. Trait members arrive separately
// through Function.
func (d *Declarer) Structure(st *ast.Structure) {
	ent, ok := d.declare(st.QName, &symbols.UnresolvedStructure{Decl: st}, st.NameSpan)
	if !ok {
		return
	}
	d.Spawn(st.QName, func(ctx context.Context) error {
		return d.Engine.FinalizeStructure(ctx, ent)
	})
}

// Implementor declares the member functions right away so callers can
// await them; their tasks are started by the implementor task once the
// target and the trait are known.
func (d *Declarer) Implementor(impl *ast.Implementor) {
	name := ImplMarker(impl)
	if name != "" {
		sp := impl.Span
		if impl.Target != nil {
			sp = impl.Target.Span
		}
		// a duplicate implementor brings nothing new
		if _, ok := d.declare(name, &symbols.UnresolvedImplementation{Decl: impl}, sp); !ok {
			return
		}
	} else {
		name = "impl " + impl.Target.String()
	}
	for _, m := range impl.Members {
		d.declare(m.QName, &symbols.UnresolvedFunction{Decl: m}, m.NameSpan)
	}
	d.Spawn(name, func(ctx context.Context) error {
		return d.Engine.FinalizeImplementor(ctx, impl, d.Spawn)
	})
}

// Malformed poisons a declaration the parser could not read.
func (d *Declarer) Malformed(qname string, err *diag.Error) {
	d.Engine.reg.Poison(qname, err)
}
