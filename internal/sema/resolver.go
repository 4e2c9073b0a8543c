package sema

import (
	"context"
	"maps"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/ir"
	"ember/internal/symbols"
	"ember/internal/types"
)

// GenericContext maps the generic parameters in scope to placeholders.
// They shadow global names.
type GenericContext map[string]*types.Type

func (g GenericContext) clone() GenericContext {
	out := make(GenericContext, len(g))
	maps.Copy(out, g)
	return out
}

// Resolver turns written types into type handles for one file.
type Resolver struct {
	e       *Engine
	imports *ast.Imports
}

func (e *Engine) Resolver(imports *ast.Imports) *Resolver {
	return &Resolver{e: e, imports: imports}
}

func (r *Resolver) qualify(name string) string {
	if r.imports == nil {
		return name
	}
	return r.imports.Qualify(name)
}

// Resolve never needs more than StageDeclared: a type handle only names its
// structure, so mutually referring structures and functions resolve in any
// order.
func (r *Resolver) Resolve(ctx context.Context, ref *ast.TypeRef, gctx GenericContext) (*types.Type, error) {
	if ref == nil {
		return nil, nil
	}
	if ref.Ref || ref.Array {
		inner, err := r.Resolve(ctx, ref.Inner(), gctx)
		if err != nil {
			return nil, err
		}
		if ref.Ref {
			return types.Reference(inner), nil
		}
		return types.Array(inner), nil
	}

	if t, ok := gctx[ref.Name]; ok {
		if len(ref.Args) > 0 {
			return nil, diag.Failf(diag.SemaGenericArity, ref.Span,
				"generic parameter %s does not take arguments", ref.Name)
		}
		return t, nil
	}

	ent, sym, err := r.e.await(ctx, symbols.Request{
		Name:    r.qualify(ref.Name),
		Stage:   symbols.StageDeclared,
		Span:    ref.Span,
		Display: ref.Name,
	})
	if err != nil {
		return nil, err
	}
	if !symbols.IsStructure(sym) {
		return nil, diag.Failf(diag.SemaNotAType, ref.Span, "%s is a %s, not a type", ref.Name, symbols.KindName(sym))
	}
	if want := ent.Arity(); want != len(ref.Args) {
		return nil, diag.Failf(diag.SemaGenericArity, ref.Span,
			"%s expects %d generic argument(s), got %d", ref.Name, want, len(ref.Args))
	}

	args := make([]*types.Type, 0, len(ref.Args))
	for _, a := range ref.Args {
		t, err := r.Resolve(ctx, a, gctx)
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}
	return types.Generic(ent, args), nil
}

// Generics resolves a generic parameter list on top of outer. Parameters
// are visible to the bounds that follow them.
func (r *Resolver) Generics(ctx context.Context, params ast.Generics, outer GenericContext) ([]ir.GenericParam, GenericContext, error) {
	gctx := outer.clone()
	out := make([]ir.GenericParam, 0, len(params))
	for _, p := range params {
		var bound *types.Type
		if p.Bound != nil {
			b, err := r.Resolve(ctx, p.Bound, gctx)
			if err != nil {
				return nil, nil, err
			}
			if ent := entryOf(b); ent == nil || !symbols.IsTrait(ent.Symbol()) {
				return nil, nil, diag.Failf(diag.SemaNotAType, p.Bound.Span,
					"bound %s of %s is not a trait", p.Bound, p.Name)
			}
			bound = b
		}
		gctx[p.Name] = types.Placeholder(p.Name, bound)
		out = append(out, ir.GenericParam{Name: p.Name, Bound: bound})
	}
	return out, gctx, nil
}
