package sema

import (
	"errors"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/ir"
	"ember/internal/source"
	"ember/internal/symbols"
	"ember/internal/types"
)

func (c *checker) call(x *ast.Call) (ir.Expr, error) {
	_, sym, err := c.e.await(c.ctx, symbols.Request{
		Name:    c.res.qualify(x.Callee),
		Stage:   symbols.StageSignature,
		Span:    x.Span,
		Display: x.Callee,
	})
	if err != nil {
		return nil, err
	}
	sig := signatureOf(sym)
	if sig == nil {
		return nil, diag.Failf(diag.SemaNotCallable, x.Span, "%s is a %s, not a function", x.Callee, symbols.KindName(sym))
	}
	args, err := c.args(x.Args, sig, 0)
	if err != nil {
		return nil, err
	}
	return c.apply(sig, args, x.Span, "")
}

// methodCall looks `recv.m(...)` up as `<RecvType>::m`, or as a member of
// the bound trait when the receiver is a generic parameter. The receiver is
// the first argument.
func (c *checker) methodCall(x *ast.MethodCall) (ir.Expr, error) {
	recv, err := c.value(x.Recv, nil)
	if err != nil {
		return nil, err
	}
	rt := recv.Type().Deref()

	var owner string
	switch rt.Kind {
	case types.KindBasic, types.KindGeneric:
		owner = rt.QualifiedName()
	case types.KindPlaceholder:
		if rt.Bound != nil {
			owner = rt.Bound.QualifiedName()
		}
	}
	if owner == "" {
		return nil, diag.Failf(diag.SemaNoOverload, x.Span, "%s has no methods", typeName(rt))
	}

	_, sym, err := c.e.await(c.ctx, symbols.Request{
		Name:    owner + "::" + x.Name,
		Stage:   symbols.StageSignature,
		Span:    x.Span,
		Display: typeName(rt) + "." + x.Name,
	})
	if err != nil {
		return nil, err
	}
	sig := signatureOf(sym)
	if sig == nil {
		return nil, diag.Failf(diag.SemaNotCallable, x.Span, "%s.%s is not a method", typeName(rt), x.Name)
	}
	rest, err := c.args(x.Args, sig, 1)
	if err != nil {
		return nil, err
	}
	return c.apply(sig, append([]ir.Expr{recv}, rest...), x.Span, "")
}

// args lowers call arguments; parameters without placeholders serve as
// hints. skip is the number of parameters taken by a receiver.
func (c *checker) args(xs []ast.Expr, sig *ir.Signature, skip int) ([]ir.Expr, error) {
	out := make([]ir.Expr, 0, len(xs)+skip)
	for i, ax := range xs {
		var hint *types.Type
		if j := i + skip; j < len(sig.Params) && !sig.Params[j].Type.HasPlaceholders() {
			hint = sig.Params[j].Type.Deref()
		}
		v, err := c.value(ax, hint)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// apply binds the callee's placeholders against args, checks bounds and
// adapts every argument to its instantiated parameter type.
func (c *checker) apply(sig *ir.Signature, args []ir.Expr, at source.Span, op string) (*ir.Call, error) {
	name := shortName(sig.Name)
	if len(args) != len(sig.Params) {
		return nil, diag.Failf(diag.SemaTypeMismatch, at, "%s expects %d argument(s), got %d", name, len(sig.Params), len(args))
	}
	b := make(types.Bindings)
	for i, p := range sig.Params {
		if _, ok := bind(p.Type, args[i].Type(), b); !ok {
			return nil, diag.Failf(diag.SemaTypeMismatch, args[i].Where(),
				"argument %s of %s: expected %s, got %s", p.Name, name, typeName(p.Type), typeName(args[i].Type()))
		}
	}
	for _, g := range sig.Generics {
		got, ok := b[g.Name]
		if !ok || got == nil {
			return nil, diag.Failf(diag.SemaTypeMismatch, at, "cannot infer generic parameter %s of %s", g.Name, name)
		}
		if g.Bound == nil {
			continue
		}
		if err := c.satisfies(got, types.Substitute(g.Bound, b), at); err != nil {
			return nil, err
		}
	}

	out := make([]ir.Expr, len(args))
	for i, p := range sig.Params {
		v, err := c.assign(args[i], types.Substitute(p.Type, b), args[i].Where())
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return &ir.Call{
		ExprBase: ir.ExprBase{T: types.Substitute(sig.Return, b), Span: at},
		Func:     sig.Name,
		Args:     out,
		Op:       op,
	}, nil
}

// satisfies checks that t implements trait. Concrete types are looked up
// through their implementation marker with an optional request: a marker
// nobody declares is swept as informational and reported here instead.
func (c *checker) satisfies(t, trait *types.Type, at source.Span) error {
	t = t.Deref()
	if t.Kind == types.KindPlaceholder {
		if t.Bound != nil && t.Bound.QualifiedName() == trait.QualifiedName() {
			return nil
		}
		return diag.Failf(diag.SemaBoundNotSatisfied, at, "%s is not bounded by %s", typeName(t), typeName(trait))
	}
	if t.QualifiedName() == "" {
		return diag.Failf(diag.SemaBoundNotSatisfied, at, "%s does not implement %s", typeName(t), typeName(trait))
	}

	marker := MarkerName(t.QualifiedName(), trait.QualifiedName())
	_, _, err := c.e.reg.Await(c.ctx, symbols.Request{
		Name:     marker,
		Stage:    symbols.StageFinalized,
		Span:     at,
		Display:  typeName(t) + ": " + typeName(trait),
		Optional: true,
	})
	if err == nil {
		return nil
	}
	var de *diag.Error
	if !errors.As(err, &de) {
		return err
	}
	if de.Code() != diag.SemaUnresolvedSymbol {
		// the implementor exists but failed
		return diag.Dependent(at, marker, de)
	}
	return diag.Failf(diag.SemaBoundNotSatisfied, at, "%s does not implement %s", typeName(t), typeName(trait))
}
