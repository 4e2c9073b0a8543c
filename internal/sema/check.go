package sema

import (
	"context"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/ir"
	"ember/internal/prelude"
	"ember/internal/source"
	"ember/internal/symbols"
	"ember/internal/types"
)

// Env is what a body sees besides its local variables.
type Env struct {
	Imports  *ast.Imports
	Generics GenericContext
	// Return is the declared return type, nil for void.
	Return *types.Type
}

type checker struct {
	e     *Engine
	ctx   context.Context
	env   Env
	scope *Scope
	res   *Resolver
	prims map[string]*types.Type
}

// CheckBody type-checks block and lowers it. The scope must already hold
// the arguments. The only effect on the outside world is waiting on the
// registry.
func (e *Engine) CheckBody(ctx context.Context, block *ast.Block, scope *Scope, env Env) (*ir.Body, error) {
	if env.Generics == nil {
		env.Generics = GenericContext{}
	}
	c := &checker{
		e:     e,
		ctx:   ctx,
		env:   env,
		scope: scope,
		res:   e.Resolver(env.Imports),
		prims: make(map[string]*types.Type, 4),
	}
	return c.block(block)
}

func (c *checker) block(b *ast.Block) (*ir.Body, error) {
	c.scope.Push()
	defer c.scope.Pop()

	out := &ir.Body{Stmts: make([]ir.Stmt, 0, len(b.Stmts))}
	for _, s := range b.Stmts {
		st, returns, err := c.stmt(s)
		if err != nil {
			return nil, err
		}
		out.Stmts = append(out.Stmts, st)
		if returns {
			out.Returns = true
		}
	}
	return out, nil
}

// stmt lowers s and reports whether it closes every path through it.
func (c *checker) stmt(s ast.Stmt) (ir.Stmt, bool, error) {
	switch s := s.(type) {
	case *ast.Block:
		body, err := c.block(s)
		if err != nil {
			return nil, false, err
		}
		return &ir.Block{Body: body}, body.Returns, nil

	case *ast.LetStmt:
		return c.let(s)

	case *ast.ReturnStmt:
		return c.ret(s)

	case *ast.IfStmt:
		return c.ifStmt(s)

	case *ast.WhileStmt:
		cond, err := c.condition(s.Cond)
		if err != nil {
			return nil, false, err
		}
		body, err := c.block(s.Body)
		if err != nil {
			return nil, false, err
		}
		// `while true` only exits through a return
		return &ir.While{Cond: cond, Body: body}, isTrue(s.Cond) && body.Returns, nil

	case *ast.ExprStmt:
		x, err := c.expr(s.X, nil)
		if err != nil {
			return nil, false, err
		}
		return &ir.ExprStmt{X: x}, false, nil
	}
	return nil, false, diag.Failf(diag.UnknownCode, s.Where(), "unsupported statement %T", s)
}

func (c *checker) let(s *ast.LetStmt) (ir.Stmt, bool, error) {
	var declared *types.Type
	if s.Type != nil {
		t, err := c.res.Resolve(c.ctx, s.Type, c.env.Generics)
		if err != nil {
			return nil, false, err
		}
		declared = t
	}
	val, err := c.expr(s.Value, declared)
	if err != nil {
		return nil, false, err
	}
	if val.Type() == nil {
		return nil, false, diag.Failf(diag.SemaTypeMismatch, s.Value.Where(), "%s has no value", describe(s.Value))
	}
	t := val.Type()
	if declared != nil {
		val, err = c.assign(val, declared, s.Value.Where())
		if err != nil {
			return nil, false, err
		}
		t = declared
	}
	c.scope.Define(s.Name, t)
	return &ir.Let{Name: s.Name, Type: t, Value: val}, false, nil
}

func (c *checker) ret(s *ast.ReturnStmt) (ir.Stmt, bool, error) {
	want := c.env.Return
	if s.Value == nil {
		if want != nil {
			return nil, false, diag.Failf(diag.SemaTypeMismatch, s.Span, "missing return value of type %s", want)
		}
		return &ir.Return{}, true, nil
	}
	if want == nil {
		return nil, false, diag.Failf(diag.SemaTypeMismatch, s.Value.Where(), "function does not return a value")
	}
	val, err := c.expr(s.Value, want)
	if err != nil {
		return nil, false, err
	}
	val, err = c.assign(val, want, s.Value.Where())
	if err != nil {
		return nil, false, err
	}
	return &ir.Return{Value: val}, true, nil
}

func (c *checker) ifStmt(s *ast.IfStmt) (ir.Stmt, bool, error) {
	cond, err := c.condition(s.Cond)
	if err != nil {
		return nil, false, err
	}
	then, err := c.block(s.Then)
	if err != nil {
		return nil, false, err
	}
	out := &ir.If{Cond: cond, Then: then}
	if s.Else == nil {
		return out, false, nil
	}

	var elseReturns bool
	switch alt := s.Else.(type) {
	case *ast.Block:
		body, err := c.block(alt)
		if err != nil {
			return nil, false, err
		}
		out.Else, elseReturns = body, body.Returns
	default:
		st, returns, err := c.stmt(alt)
		if err != nil {
			return nil, false, err
		}
		out.Else = &ir.Body{Stmts: []ir.Stmt{st}, Returns: returns}
		elseReturns = returns
	}
	return out, then.Returns && elseReturns, nil
}

func (c *checker) condition(x ast.Expr) (ir.Expr, error) {
	boolT, err := c.prim(prelude.Bool, x.Where())
	if err != nil {
		return nil, err
	}
	cond, err := c.expr(x, boolT)
	if err != nil {
		return nil, err
	}
	return c.assign(cond, boolT, x.Where())
}

func isTrue(x ast.Expr) bool {
	lit, ok := x.(*ast.Literal)
	return ok && lit.Kind == ast.LitBool && lit.Text == "true"
}

// prim returns the prelude type qname.
func (c *checker) prim(qname string, at source.Span) (*types.Type, error) {
	if t, ok := c.prims[qname]; ok {
		return t, nil
	}
	ent, _, err := c.e.await(c.ctx, symbols.Request{
		Name:    qname,
		Stage:   symbols.StageDeclared,
		Span:    at,
		Display: shortName(qname),
	})
	if err != nil {
		return nil, err
	}
	t := types.Basic(ent)
	c.prims[qname] = t
	return t, nil
}
