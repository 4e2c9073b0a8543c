package ast

import (
	"strings"

	"ember/internal/source"
)

type Expr interface {
	Where() source.Span
	exprNode()
}

type LitKind uint8

const (
	LitInt LitKind = iota + 1
	LitFloat
	LitString
	LitBool
)

type Literal struct {
	Pos
	Kind LitKind
	Text string
}

// Ident is a variable or a path such as `geo::origin`.
type Ident struct {
	Pos
	Name string
}

// Call is `path(args)`.
type Call struct {
	Pos
	Callee string
	Args   []Expr
}

// MethodCall is `recv.name(args)`.
type MethodCall struct {
	Pos
	Recv Expr
	Name string
	Args []Expr
}

// FieldAccess is `x.name`.
type FieldAccess struct {
	Pos
	X    Expr
	Name string
}

type FieldInit struct {
	Pos
	Name  string
	Value Expr
}

// New is `new T { f: e, ... }`.
type New struct {
	Pos
	Type  *TypeRef
	Inits []FieldInit
}

// Borrow is `&x`.
type Borrow struct {
	Pos
	X Expr
}

type ArrayLit struct {
	Pos
	Elems []Expr
}

// Operation is an operator expression flattened to its text pattern: `{}`
// marks every operand slot, in Operands order. `a + b * c` is
// {Op: "{}+{}*{}", Operands: [a b c]}.
type Operation struct {
	Pos
	Op       string
	Operands []Expr
}

// Arity is the number of operand slots in Op.
func (o *Operation) Arity() int {
	return strings.Count(o.Op, "{}")
}

func (*Literal) exprNode()     {}
func (*Ident) exprNode()       {}
func (*Call) exprNode()        {}
func (*MethodCall) exprNode()  {}
func (*FieldAccess) exprNode() {}
func (*New) exprNode()         {}
func (*Borrow) exprNode()      {}
func (*ArrayLit) exprNode()    {}
func (*Operation) exprNode()   {}
