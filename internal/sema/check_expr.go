package sema

import (
	"sort"
	"strings"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/ir"
	"ember/internal/prelude"
	"ember/internal/source"
	"ember/internal/symbols"
	"ember/internal/types"
)

// expr lowers x. want is a hint for expressions that cannot infer their own
// type (empty arrays); the caller still checks assignability.
func (c *checker) expr(x ast.Expr, want *types.Type) (ir.Expr, error) {
	switch x := x.(type) {
	case *ast.Literal:
		return c.literal(x)
	case *ast.Ident:
		t, ok := c.scope.Lookup(x.Name)
		if !ok {
			return nil, diag.Failf(diag.SemaUnknownVariable, x.Span, "unknown variable %s", x.Name)
		}
		return &ir.Var{ExprBase: ir.ExprBase{T: t, Span: x.Span}, Name: x.Name}, nil
	case *ast.Call:
		return c.call(x)
	case *ast.MethodCall:
		return c.methodCall(x)
	case *ast.FieldAccess:
		return c.fieldAccess(x)
	case *ast.New:
		return c.newExpr(x)
	case *ast.Borrow:
		inner, err := c.value(x.X, nil)
		if err != nil {
			return nil, err
		}
		return &ir.Borrow{ExprBase: ir.ExprBase{T: types.Reference(inner.Type()), Span: x.Span}, X: inner}, nil
	case *ast.ArrayLit:
		return c.array(x, want)
	case *ast.Operation:
		return c.operation(x)
	}
	return nil, diag.Failf(diag.UnknownCode, x.Where(), "unsupported expression %T", x)
}

// value is expr for positions that need a value.
func (c *checker) value(x ast.Expr, want *types.Type) (ir.Expr, error) {
	out, err := c.expr(x, want)
	if err != nil {
		return nil, err
	}
	if out.Type() == nil {
		return nil, diag.Failf(diag.SemaTypeMismatch, x.Where(), "%s has no value", describe(x))
	}
	return out, nil
}

func (c *checker) literal(x *ast.Literal) (ir.Expr, error) {
	var (
		qname string
		kind  ir.LitKind
	)
	switch x.Kind {
	case ast.LitInt:
		qname, kind = prelude.Int, ir.LitInt
	case ast.LitFloat:
		qname, kind = prelude.Float, ir.LitFloat
	case ast.LitString:
		qname, kind = prelude.Str, ir.LitString
	default:
		qname, kind = prelude.Bool, ir.LitBool
	}
	t, err := c.prim(qname, x.Span)
	if err != nil {
		return nil, err
	}
	return &ir.Literal{ExprBase: ir.ExprBase{T: t, Span: x.Span}, Kind: kind, Text: x.Text}, nil
}

func (c *checker) fieldAccess(x *ast.FieldAccess) (ir.Expr, error) {
	recv, err := c.value(x.X, nil)
	if err != nil {
		return nil, err
	}
	t := recv.Type().Deref()
	st, err := c.structure(t, x.Span)
	if err != nil {
		return nil, err
	}
	f, ok := st.Field(x.Name)
	if !ok {
		return nil, diag.Failf(diag.SemaUnknownField, x.Span, "%s has no field %s", typeName(t), x.Name)
	}
	ft := types.Substitute(f.Type, types.BindArgs(st.GenericNames(), t.Args))
	return &ir.FieldGet{ExprBase: ir.ExprBase{T: ft, Span: x.Span}, X: recv, Name: x.Name}, nil
}

// structure waits for the finalized structure behind t.
func (c *checker) structure(t *types.Type, at source.Span) (*ir.Structure, error) {
	if t == nil || (t.Kind != types.KindBasic && t.Kind != types.KindGeneric) {
		return nil, diag.Failf(diag.SemaUnknownField, at, "%s has no fields", typeName(t))
	}
	_, sym, err := c.e.await(c.ctx, symbols.Request{
		Name:    t.QualifiedName(),
		Stage:   symbols.StageFinalized,
		Span:    at,
		Display: typeName(t),
	})
	if err != nil {
		return nil, err
	}
	fs, ok := sym.(*symbols.FinalizedStructure)
	if !ok {
		return nil, diag.Failf(diag.SemaNotAType, at, "%s is not a structure", typeName(t))
	}
	return fs.St, nil
}

func (c *checker) newExpr(x *ast.New) (ir.Expr, error) {
	t, err := c.res.Resolve(c.ctx, x.Type, c.env.Generics)
	if err != nil {
		return nil, err
	}
	st, err := c.structure(t, x.Type.Span)
	if err != nil {
		return nil, err
	}
	if st.IsTrait() {
		return nil, diag.Failf(diag.SemaNotAType, x.Type.Span, "cannot construct trait %s", x.Type)
	}

	b := types.BindArgs(st.GenericNames(), t.Args)
	seen := make(map[string]source.Span, len(x.Inits))
	inits := make([]ir.FieldInit, 0, len(x.Inits))
	for _, in := range x.Inits {
		f, ok := st.Field(in.Name)
		if !ok {
			return nil, diag.Failf(diag.SemaUnknownField, in.Span, "%s has no field %s", typeName(t), in.Name)
		}
		if prev, dup := seen[in.Name]; dup {
			d := diag.Errorf(diag.SemaDuplicateSymbol, in.Span, "field %s is initialized twice", in.Name).
				WithNote(prev, "first initialized here")
			return nil, diag.Wrap(d)
		}
		seen[in.Name] = in.Span

		ft := types.Substitute(f.Type, b)
		val, err := c.value(in.Value, ft)
		if err != nil {
			return nil, err
		}
		if val, err = c.assign(val, ft, in.Value.Where()); err != nil {
			return nil, err
		}
		inits = append(inits, ir.FieldInit{Name: in.Name, Value: val})
	}

	var missing []string
	for _, f := range st.Fields {
		if _, ok := seen[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return nil, diag.Failf(diag.SemaTypeMismatch, x.Span, "new %s: missing field(s) %s", x.Type, strings.Join(missing, ", "))
	}
	return &ir.New{ExprBase: ir.ExprBase{T: t, Span: x.Span}, Inits: inits}, nil
}

func (c *checker) array(x *ast.ArrayLit, want *types.Type) (ir.Expr, error) {
	var elem *types.Type
	if want != nil && want.Kind == types.KindArray {
		elem = want.Elem
	}
	elems := make([]ir.Expr, 0, len(x.Elems))
	for _, ax := range x.Elems {
		v, err := c.value(ax, elem)
		if err != nil {
			return nil, err
		}
		if elem == nil {
			elem = v.Type()
		}
		if v, err = c.assign(v, elem, ax.Where()); err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	if elem == nil {
		return nil, diag.Failf(diag.SemaTypeMismatch, x.Span, "cannot infer the element type of an empty array")
	}
	return &ir.Array{ExprBase: ir.ExprBase{T: types.Array(elem), Span: x.Span}, Elems: elems}, nil
}

// assign adapts x to want: equal types pass, a T is borrowed where a &T is
// expected and a &T is copied where a T is expected.
func (c *checker) assign(x ir.Expr, want *types.Type, at source.Span) (ir.Expr, error) {
	got := x.Type()
	switch {
	case types.Equal(got, want):
		return x, nil
	case want.IsReference() && types.Equal(got, want.Elem):
		return &ir.Borrow{ExprBase: ir.ExprBase{T: want, Span: x.Where()}, X: x}, nil
	case got.IsReference() && types.Equal(got.Elem, want):
		return &ir.Copy{ExprBase: ir.ExprBase{T: want, Span: x.Where()}, X: x}, nil
	}
	return nil, diag.Failf(diag.SemaTypeMismatch, at, "expected %s, got %s", typeName(want), typeName(got))
}

// bind matches a parameter against an argument type and scores the match:
// 2 for an exact type, 1 when placeholders had to be bound or the argument
// is implicitly borrowed or copied. b is only updated on success.
func bind(param, arg *types.Type, b types.Bindings) (int, bool) {
	if param == nil || arg == nil {
		return 0, false
	}
	try := func(a *types.Type) (int, bool) {
		trial := make(types.Bindings, len(b))
		for k, v := range b {
			trial[k] = v
		}
		n, ok := types.Unify(param, a, trial)
		if !ok {
			return 0, false
		}
		for k, v := range trial {
			b[k] = v
		}
		return n, true
	}
	if _, ok := try(arg); ok {
		if param.HasPlaceholders() {
			return 1, true
		}
		return 2, true
	}
	if param.IsReference() && !arg.IsReference() {
		if _, ok := try(types.Reference(arg)); ok {
			return 1, true
		}
	}
	if arg.IsReference() {
		if _, ok := try(arg.Deref()); ok {
			return 1, true
		}
	}
	return 0, false
}

func signatureOf(sym symbols.Symbol) *ir.Signature {
	switch s := sym.(type) {
	case *symbols.FunctionSignature:
		return s.Sig
	case *symbols.FinalizedFunction:
		return s.Fn.Signature
	}
	return nil
}

// typeName prints t without the prelude module prefix.
func typeName(t *types.Type) string {
	return strings.ReplaceAll(t.String(), ast.PreludeModule+"::", "")
}

func typeNames(ts []*types.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = typeName(t)
	}
	return strings.Join(parts, ", ")
}

func describe(x ast.Expr) string {
	switch x := x.(type) {
	case *ast.Call:
		return "call to " + x.Callee
	case *ast.MethodCall:
		return "method call " + x.Name
	case *ast.Operation:
		return "operation " + x.Op
	case *ast.Ident:
		return x.Name
	}
	return "expression"
}

// sortEntries orders overload candidates by file then position.
func sortEntries(sigs []*ir.Signature) {
	sort.SliceStable(sigs, func(i, j int) bool {
		if sigs[i].Span.File != sigs[j].Span.File {
			return sigs[i].Span.File < sigs[j].Span.File
		}
		return sigs[i].Order < sigs[j].Order
	})
}
