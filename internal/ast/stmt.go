package ast

import "ember/internal/source"

// Pos carries the span of a statement or expression.
type Pos struct {
	Span source.Span
}

func (p Pos) Where() source.Span { return p.Span }

type Stmt interface {
	Where() source.Span
	stmtNode()
}

type Block struct {
	Pos
	Stmts []Stmt
}

type LetStmt struct {
	Pos
	Name  string
	Type  *TypeRef // nil when inferred
	Value Expr
}

type ReturnStmt struct {
	Pos
	Value Expr // nil for bare `return;`
}

type IfStmt struct {
	Pos
	Cond Expr
	Then *Block
	Else Stmt // nil, *Block or *IfStmt
}

type WhileStmt struct {
	Pos
	Cond Expr
	Body *Block
}

type ExprStmt struct {
	Pos
	X Expr
}

func (*Block) stmtNode()      {}
func (*LetStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode() {}
func (*IfStmt) stmtNode()     {}
func (*WhileStmt) stmtNode()  {}
func (*ExprStmt) stmtNode()   {}
