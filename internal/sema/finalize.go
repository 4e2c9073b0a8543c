package sema

import (
	"context"
	"fmt"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/ir"
	"ember/internal/source"
	"ember/internal/symbols"
	"ember/internal/types"
)

// Signature resolves everything a caller needs: generics with their bounds,
// arguments and the return type. With includeRefs every argument is taken by
// reference, the convention of trait members and their implementations.
func (e *Engine) Signature(ctx context.Context, fn *ast.Function, includeRefs bool, owner Owner) (*ir.Signature, *ast.Block, error) {
	r := e.Resolver(fn.Imports)
	generics, gctx, err := r.Generics(ctx, fn.Generics, owner.generics())
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]source.Span, len(fn.Params))
	params := make([]ir.Field, 0, len(fn.Params))
	for _, p := range fn.Params {
		if prev, dup := seen[p.Name]; dup {
			d := diag.Errorf(diag.SemaDuplicateSymbol, p.Span, "argument %s is declared twice", p.Name).
				WithNote(prev, "first declared here")
			return nil, nil, diag.Wrap(d)
		}
		seen[p.Name] = p.Span

		t, err := r.Resolve(ctx, p.Type, gctx)
		if err != nil {
			return nil, nil, err
		}
		if includeRefs {
			t = types.Reference(t)
		}
		params = append(params, ir.Field{Name: p.Name, Type: t, Mods: p.Mods, Attrs: p.Attrs, Span: p.Span})
	}

	ret, err := r.Resolve(ctx, fn.Return, gctx)
	if err != nil {
		return nil, nil, err
	}

	op, _ := fn.Attrs.Operator()
	return &ir.Signature{
		Name:     fn.QName,
		Generics: generics,
		Params:   params,
		Return:   ret,
		Mods:     fn.Mods,
		Attrs:    fn.Attrs,
		Operator: op,
		Span:     fn.NameSpan,
		Order:    fn.Order,
	}, fn.Body, nil
}

// FinalizeBody publishes sig, which releases every caller waiting for it,
// then checks the body. Functions without code get an empty body that
// counts as complete.
func (e *Engine) FinalizeBody(ctx context.Context, fn *ast.Function, sig *ir.Signature, owner Owner) (*ir.Function, error) {
	if err := e.reg.Publish(sig.Name, &symbols.FunctionSignature{Sig: sig}); err != nil {
		return nil, err
	}
	if fn.Bodiless() {
		return &ir.Function{Signature: sig, Body: &ir.Body{Returns: true}}, nil
	}
	block := fn.Body
	if block == nil {
		// `fn f() -> T;` outside a trait checks as an empty body
		end := fn.Span
		end.Start = end.End
		block = &ast.Block{Pos: ast.Pos{Span: end}}
	}

	gctx := owner.generics()
	for name, t := range sig.Placeholders() {
		gctx[name] = t
	}
	scope := NewScope()
	for _, p := range sig.Params {
		scope.Define(p.Name, p.Type)
	}

	body, err := e.CheckBody(ctx, block, scope, Env{
		Imports:  fn.Imports,
		Generics: gctx,
		Return:   sig.Return,
	})
	if err != nil {
		return nil, err
	}

	if !body.Returns {
		switch {
		case sig.Return == nil:
			body.Stmts = append(body.Stmts, &ir.Return{Implicit: true})
			body.Returns = true
		case fn.Mods.Has(ast.ModTrait):
			// default bodies of trait members may fall through
		default:
			end := block.Span
			end.Start = end.End
			d := diag.Errorf(diag.SemaMissingReturn, fn.NameSpan,
				"%s must return %s on every path", fn.Name, sig.Return).
				WithNote(end, "control reaches the end of the body here")
			return nil, diag.Wrap(d)
		}
	}
	return &ir.Function{Signature: sig, Body: body}, nil
}

// FinalizeFunction runs both phases for entry and completes it, or poisons
// it with the first error. Trait members resolve `Self` to a placeholder
// bounded by their trait. A *diag.Error result has already been recorded as
// poison; any other error is a cancellation or an internal failure.
func (e *Engine) FinalizeFunction(ctx context.Context, entry *symbols.Entry, owner Owner) error {
	uf, ok := entry.Symbol().(*symbols.UnresolvedFunction)
	if !ok {
		return nil
	}
	fn := uf.Decl
	name := entry.QualifiedName()

	trait := fn.Mods.Has(ast.ModTrait)
	if trait && owner.Self == nil {
		self, err := e.traitSelf(ctx, fn)
		if err != nil {
			return e.fail(name, fn.NameSpan, err)
		}
		owner.Self = self
	}

	sig, _, err := e.Signature(ctx, fn, trait || owner.Trait != nil, owner)
	if err != nil {
		return e.fail(name, fn.NameSpan, err)
	}
	out, err := e.FinalizeBody(ctx, fn, sig, owner)
	if err != nil {
		return e.fail(name, fn.NameSpan, err)
	}
	if err := e.reg.Complete(name, &symbols.FinalizedFunction{Fn: out}); err != nil {
		return fmt.Errorf("sema: %w", err)
	}
	return nil
}

// traitSelf builds the `Self` placeholder of a trait member: bounded by the
// trait, instantiated with the trait's own generic parameters.
func (e *Engine) traitSelf(ctx context.Context, fn *ast.Function) (*types.Type, error) {
	traitName := parentName(fn.QName)
	ent, sym, err := e.await(ctx, symbols.Request{
		Name:    traitName,
		Stage:   symbols.StageDeclared,
		Span:    fn.NameSpan,
		Display: shortName(traitName),
	})
	if err != nil {
		return nil, err
	}
	names := genericNames(sym)
	args := make([]*types.Type, len(names))
	for i, n := range names {
		args[i] = types.Placeholder(n, nil)
	}
	return types.Placeholder(SelfName, types.Generic(ent, args)), nil
}

// FinalizeStructure resolves generic bounds and field types. Trait member
// functions are separate symbols; only their names are recorded here.
func (e *Engine) FinalizeStructure(ctx context.Context, entry *symbols.Entry) error {
	us, ok := entry.Symbol().(*symbols.UnresolvedStructure)
	if !ok {
		return nil
	}
	st := us.Decl
	name := entry.QualifiedName()
	r := e.Resolver(st.Imports)

	outer := GenericContext{}
	if st.IsTrait() {
		outer[SelfName] = types.Placeholder(SelfName, nil)
	}
	generics, gctx, err := r.Generics(ctx, st.Generics, outer)
	if err != nil {
		return e.fail(name, st.NameSpan, err)
	}

	seen := make(map[string]source.Span, len(st.Fields))
	fields := make([]ir.Field, 0, len(st.Fields))
	for _, f := range st.Fields {
		if prev, dup := seen[f.Name]; dup {
			d := diag.Errorf(diag.SemaDuplicateSymbol, f.Span, "field %s is declared twice", f.Name).
				WithNote(prev, "first declared here")
			return e.fail(name, st.NameSpan, diag.Wrap(d))
		}
		seen[f.Name] = f.Span

		t, err := r.Resolve(ctx, f.Type, gctx)
		if err != nil {
			return e.fail(name, st.NameSpan, err)
		}
		fields = append(fields, ir.Field{Name: f.Name, Type: t, Mods: f.Mods, Attrs: f.Attrs, Span: f.Span})
	}

	members := make([]string, 0, len(st.Members))
	for _, m := range st.Members {
		members = append(members, m.QName)
	}

	out := &ir.Structure{
		Name:     name,
		Generics: generics,
		Fields:   fields,
		Mods:     st.Mods,
		Attrs:    st.Attrs,
		Span:     st.NameSpan,
		Members:  members,
	}
	if err := e.reg.Complete(name, &symbols.FinalizedStructure{St: out, Decl: st}); err != nil {
		return fmt.Errorf("sema: %w", err)
	}
	return nil
}
