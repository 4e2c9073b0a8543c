package sema

import (
	"errors"
	"strings"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/ir"
	"ember/internal/source"
	"ember/internal/symbols"
	"ember/internal/types"
)

// AssignOp is the built-in assignment pattern.
const AssignOp = "{}={}"

const slot = "{}"

func (c *checker) operation(x *ast.Operation) (ir.Expr, error) {
	segs := strings.Split(x.Op, slot)
	if len(segs)-1 != len(x.Operands) {
		return nil, diag.Failf(diag.UnknownCode, x.Span, "operation %s has %d operands", x.Op, len(x.Operands))
	}

	// `a = <rest>` assigns whatever the rest of the chain resolves to
	if len(segs) >= 3 && segs[0] == "" && segs[1] == "=" {
		return c.assignment(x, segs)
	}

	args := make([]ir.Expr, 0, len(x.Operands))
	for _, o := range x.Operands {
		v, err := c.value(o, nil)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return c.resolveOp(segs, args, x.Span)
}

func (c *checker) assignment(x *ast.Operation, segs []string) (ir.Expr, error) {
	switch x.Operands[0].(type) {
	case *ast.Ident, *ast.FieldAccess:
	default:
		return nil, diag.Failf(diag.SemaTypeMismatch, x.Operands[0].Where(), "cannot assign to %s", describe(x.Operands[0]))
	}
	target, err := c.value(x.Operands[0], nil)
	if err != nil {
		return nil, err
	}
	// assigning through a reference writes the referenced value
	want := target.Type().Deref()

	var val ir.Expr
	if len(x.Operands) == 2 {
		val, err = c.value(x.Operands[1], want)
	} else {
		rest := &ast.Operation{
			Pos:      ast.Pos{Span: x.Operands[1].Where().Cover(x.Operands[len(x.Operands)-1].Where())},
			Op:       strings.Join(append([]string{""}, segs[2:]...), slot),
			Operands: x.Operands[1:],
		}
		val, err = c.operation(rest)
	}
	if err != nil {
		return nil, err
	}
	if val.Type() == nil {
		return nil, diag.Failf(diag.SemaTypeMismatch, x.Operands[1].Where(), "%s has no value", describe(x.Operands[1]))
	}
	if val, err = c.assign(val, want, x.Operands[1].Where()); err != nil {
		return nil, err
	}
	return &ir.Assign{ExprBase: ir.ExprBase{Span: x.Span}, Target: target, Value: val}, nil
}

// resolveOp picks the overload of the whole pattern. A chain nobody
// declared as a whole folds left to right: `a + b * c` becomes
// `(a + b) * c`.
func (c *checker) resolveOp(segs []string, args []ir.Expr, at source.Span) (ir.Expr, error) {
	pattern := strings.Join(segs, slot)
	call, found, err := c.overload(pattern, args, at)
	if err != nil || found {
		return call, err
	}
	if len(args) > 2 && segs[0] == "" {
		head, err := c.resolveOp([]string{"", segs[1], ""}, args[:2], args[0].Where().Cover(args[1].Where()))
		if err != nil {
			return nil, err
		}
		rest := append([]string{""}, segs[2:]...)
		return c.resolveOp(rest, append([]ir.Expr{head}, args[2:]...), at)
	}
	return nil, diag.Failf(diag.SemaNoOverload, at, "no operator %s for (%s)", pattern, typeNames(exprTypes(args)))
}

type candidate struct {
	sig   *ir.Signature
	score int
}

// overload scores every function declared for pattern; found is false when
// no function declares the pattern at all.
func (c *checker) overload(pattern string, args []ir.Expr, at source.Span) (*ir.Call, bool, error) {
	if pattern == AssignOp {
		return nil, true, diag.Failf(diag.SemaTypeMismatch, at, "left side of an assignment must be a variable or a field")
	}
	entries, err := c.e.reg.Operators(c.ctx, pattern)
	if err != nil {
		return nil, false, err
	}
	if len(entries) == 0 {
		return nil, false, nil
	}

	var (
		best     []candidate
		poisoned *diag.Error
	)
	for _, ent := range entries {
		_, sym, err := c.e.reg.Await(c.ctx, symbols.Request{
			Name:    ent.QualifiedName(),
			Stage:   symbols.StageSignature,
			Span:    at,
			Display: pattern,
		})
		if err != nil {
			var de *diag.Error
			if !errors.As(err, &de) {
				return nil, true, err
			}
			if poisoned == nil {
				poisoned = de
			}
			continue
		}
		sig := signatureOf(sym)
		if sig == nil || len(sig.Params) != len(args) {
			continue
		}
		score, ok := scoreCandidate(sig, args)
		if !ok {
			continue
		}
		switch {
		case len(best) == 0 || score > best[0].score:
			best = []candidate{{sig: sig, score: score}}
		case score == best[0].score:
			best = append(best, candidate{sig: sig, score: score})
		}
	}

	if len(best) == 0 {
		if poisoned != nil {
			return nil, true, diag.Dependent(at, pattern, poisoned)
		}
		return nil, true, diag.Failf(diag.SemaNoOverload, at, "no overload of %s accepts (%s)", pattern, typeNames(exprTypes(args)))
	}

	sigs := make([]*ir.Signature, len(best))
	for i, b := range best {
		sigs[i] = b.sig
	}
	sortEntries(sigs)
	if sigs[0].Span.File != sigs[len(sigs)-1].Span.File {
		d := diag.Errorf(diag.SemaAmbiguousOverload, at, "ambiguous operator %s for (%s)", pattern, typeNames(exprTypes(args)))
		for _, s := range sigs {
			d = d.WithNote(s.Span, "candidate "+s.Name)
		}
		return nil, true, diag.Wrap(d)
	}
	// same file: the earliest declaration wins
	call, err := c.apply(sigs[0], args, at, pattern)
	return call, true, err
}

func scoreCandidate(sig *ir.Signature, args []ir.Expr) (int, bool) {
	b := make(types.Bindings)
	total := 0
	for i, p := range sig.Params {
		n, ok := bind(p.Type, args[i].Type(), b)
		if !ok {
			return 0, false
		}
		total += n
	}
	for _, g := range sig.Generics {
		if b[g.Name] == nil {
			return 0, false
		}
	}
	return total, true
}

func exprTypes(xs []ir.Expr) []*types.Type {
	out := make([]*types.Type, len(xs))
	for i, x := range xs {
		out[i] = x.Type()
	}
	return out
}
