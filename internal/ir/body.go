package ir

import (
	"ember/internal/source"
	"ember/internal/types"
)

// Body is a checked block. Returns is true when every path ends in a return.
type Body struct {
	Stmts   []Stmt
	Returns bool
}

type Stmt interface {
	stmtNode()
}

type Let struct {
	Name  string
	Type  *types.Type
	Value Expr
}

type Return struct {
	Value Expr // nil for void
	// Implicit marks the return appended to a void function.
	Implicit bool
}

type If struct {
	Cond Expr
	Then *Body
	Else *Body // nil without else
}

type While struct {
	Cond Expr
	Body *Body
}

type Block struct {
	Body *Body
}

type ExprStmt struct {
	X Expr
}

func (*Let) stmtNode()      {}
func (*Return) stmtNode()   {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*Block) stmtNode()    {}
func (*ExprStmt) stmtNode() {}

type Expr interface {
	Type() *types.Type
	Where() source.Span
}

type ExprBase struct {
	T    *types.Type
	Span source.Span
}

func (e ExprBase) Type() *types.Type  { return e.T }
func (e ExprBase) Where() source.Span { return e.Span }

type LitKind uint8

const (
	LitInt LitKind = iota + 1
	LitFloat
	LitString
	LitBool
)

type Literal struct {
	ExprBase
	Kind LitKind
	Text string
}

type Var struct {
	ExprBase
	Name string
}

// Call invokes a function by qualified name. Method calls carry the
// receiver as the first argument.
type Call struct {
	ExprBase
	Func string
	Args []Expr
	// Op is the operator pattern when the call came from an operation.
	Op string
}

type FieldGet struct {
	ExprBase
	X    Expr
	Name string
}

type FieldInit struct {
	Name  string
	Value Expr
}

type New struct {
	ExprBase
	Inits []FieldInit
}

// Borrow takes a reference, explicit or implicit.
type Borrow struct {
	ExprBase
	X Expr
}

// Copy is the implicit dereference of a &T used where a T is expected.
type Copy struct {
	ExprBase
	X Expr
}

type Array struct {
	ExprBase
	Elems []Expr
}

type Assign struct {
	ExprBase
	Target Expr
	Value  Expr
}
