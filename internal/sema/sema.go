package sema

import (
	"context"
	"errors"
	"strings"

	"ember/internal/diag"
	"ember/internal/source"
	"ember/internal/symbols"
	"ember/internal/types"
)

// SelfName is the type name bound inside trait and implementor members.
const SelfName = "Self"

// Engine finalizes symbols against one registry. It has no state of its own
// and is safe for concurrent use.
type Engine struct {
	reg *symbols.Registry
}

func New(reg *symbols.Registry) *Engine {
	return &Engine{reg: reg}
}

func (e *Engine) Registry() *symbols.Registry { return e.reg }

// Spawner starts a symbol task. The implementation must register the task
// with the registry before returning.
type Spawner func(name string, run func(ctx context.Context) error)

// Owner is the trait or implementor a member function is finalized for.
type Owner struct {
	// Self is what `Self` means in the member: the implementor target, or a
	// placeholder bounded by the trait inside trait members.
	Self *types.Type
	// Trait is the implemented trait, nil for free functions and inherent
	// implementors.
	Trait *types.Type
}

func (o Owner) generics() GenericContext {
	g := make(GenericContext)
	if o.Self != nil {
		g[SelfName] = o.Self
	}
	return g
}

// await is Registry.Await with poison turned into a dependent error
// reported at the reference.
func (e *Engine) await(ctx context.Context, req symbols.Request) (*symbols.Entry, symbols.Symbol, error) {
	ent, sym, err := e.reg.Await(ctx, req)
	if err == nil {
		return ent, sym, nil
	}
	var de *diag.Error
	if errors.As(err, &de) {
		what := req.Display
		if what == "" {
			what = req.Name
		}
		return nil, nil, diag.Dependent(req.Span, what, de)
	}
	return nil, nil, err
}

// fail poisons name with err. Dependent errors are re-anchored at the
// symbol so the chain always points at the root. Context errors are
// returned untouched.
func (e *Engine) fail(name string, span source.Span, err error) error {
	var de *diag.Error
	if !errors.As(err, &de) {
		return err
	}
	poison := de
	if de.Code() == diag.SemaPoisonedDependency {
		poison = diag.Dependent(span, name, de)
	}
	e.reg.Poison(name, poison)
	if p, ok := e.lookupPoison(name); ok {
		return p
	}
	return poison
}

func (e *Engine) lookupPoison(name string) (*diag.Error, bool) {
	ent, _, ok := e.reg.Lookup(name)
	if !ok {
		return nil, false
	}
	return ent.Poison()
}

// entryOf returns the registry entry behind a Basic or Generic type.
func entryOf(t *types.Type) *symbols.Entry {
	if t == nil {
		return nil
	}
	ent, _ := t.Sym.(*symbols.Entry)
	return ent
}

// genericNames lists the generic parameters of a structure symbol in any
// stage.
func genericNames(sym symbols.Symbol) []string {
	switch s := sym.(type) {
	case *symbols.UnresolvedStructure:
		return s.Decl.Generics.Names()
	case *symbols.FinalizedStructure:
		return s.St.GenericNames()
	}
	return nil
}

// parentName strips the last path segment: "geo::Shape::area" -> "geo::Shape".
func parentName(qname string) string {
	if i := strings.LastIndex(qname, "::"); i >= 0 {
		return qname[:i]
	}
	return ""
}

// shortName returns the last path segment.
func shortName(qname string) string {
	if i := strings.LastIndex(qname, "::"); i >= 0 {
		return qname[i+2:]
	}
	return qname
}

// MarkerName is the registry key recording that target implements trait.
func MarkerName(target, trait string) string {
	return target + "::impl::" + trait
}
