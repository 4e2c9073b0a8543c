package symbols

import (
	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/ir"
)

// Stage is how far a symbol has progressed. Stages are ordered.
type Stage uint8

const (
	StageNone Stage = iota
	// StageDeclared: the name exists. Enough to form a type handle.
	StageDeclared
	// StageSignature: a function has a codeless signature, a structure is
	// finalized.
	StageSignature
	// StageFinalized: fully finalized.
	StageFinalized
)

func (s Stage) String() string {
	switch s {
	case StageDeclared:
		return "declared"
	case StageSignature:
		return "signature"
	case StageFinalized:
		return "finalized"
	default:
		return "none"
	}
}

// Symbol is the sealed set of registry values.
type Symbol interface {
	Stage() Stage
	Arity() int
	symbol()
}

type UnresolvedFunction struct{ Decl *ast.Function }

type FunctionSignature struct{ Sig *ir.Signature }

type FinalizedFunction struct{ Fn *ir.Function }

type UnresolvedStructure struct{ Decl *ast.Structure }

// FinalizedStructure keeps its declaration: implementors clone default
// methods from the members of a finalized trait.
type FinalizedStructure struct {
	St   *ir.Structure
	Decl *ast.Structure
}

// UnresolvedImplementation is an implementor waiting for its base and target.
// Its name is the `<Target>::impl::<Trait>` marker.
type UnresolvedImplementation struct{ Decl *ast.Implementor }

// Implementation is the `<Target>::impl::<Trait>` marker of a finalized
// implementor.
type Implementation struct{ Impl *ir.Implementation }

// Poisoned is a permanent failure. Requests resolve to it like to any other
// terminal value.
type Poisoned struct{ Err *diag.Error }

func (*UnresolvedFunction) Stage() Stage       { return StageDeclared }
func (*FunctionSignature) Stage() Stage        { return StageSignature }
func (*FinalizedFunction) Stage() Stage        { return StageFinalized }
func (*UnresolvedStructure) Stage() Stage      { return StageDeclared }
func (*FinalizedStructure) Stage() Stage       { return StageFinalized }
func (*UnresolvedImplementation) Stage() Stage { return StageDeclared }
func (*Implementation) Stage() Stage           { return StageFinalized }
func (*Poisoned) Stage() Stage                 { return StageNone }

func (s *UnresolvedFunction) Arity() int     { return len(s.Decl.Generics) }
func (s *FunctionSignature) Arity() int      { return len(s.Sig.Generics) }
func (s *FinalizedFunction) Arity() int      { return len(s.Fn.Generics) }
func (s *UnresolvedStructure) Arity() int    { return len(s.Decl.Generics) }
func (s *FinalizedStructure) Arity() int     { return len(s.St.Generics) }
func (*UnresolvedImplementation) Arity() int { return 0 }
func (*Implementation) Arity() int           { return 0 }
func (*Poisoned) Arity() int                 { return 0 }

func (*UnresolvedFunction) symbol()        {}
func (*FunctionSignature) symbol()         {}
func (*FinalizedFunction) symbol()         {}
func (*UnresolvedStructure) symbol()       {}
func (*FinalizedStructure) symbol()        {}
func (*UnresolvedImplementation) symbol()  {}
func (*Implementation) symbol()            {}
func (*Poisoned) symbol()                  {}

// IsStructure reports whether sym denotes a structure or trait, resolved or not.
func IsStructure(sym Symbol) bool {
	switch sym.(type) {
	case *UnresolvedStructure, *FinalizedStructure:
		return true
	}
	return false
}

// IsTrait reports whether sym is a trait declaration.
func IsTrait(sym Symbol) bool {
	switch s := sym.(type) {
	case *UnresolvedStructure:
		return s.Decl.IsTrait()
	case *FinalizedStructure:
		return s.St.IsTrait()
	}
	return false
}

// KindName is a short label for listings.
func KindName(sym Symbol) string {
	switch s := sym.(type) {
	case *UnresolvedFunction:
		return "fn (unresolved)"
	case *FunctionSignature:
		return "fn (signature)"
	case *FinalizedFunction:
		return "fn"
	case *UnresolvedStructure:
		if s.Decl.IsTrait() {
			return "trait (unresolved)"
		}
		return "struct (unresolved)"
	case *FinalizedStructure:
		if s.St.IsTrait() {
			return "trait"
		}
		return "struct"
	case *UnresolvedImplementation:
		return "impl (unresolved)"
	case *Implementation:
		return "impl"
	case *Poisoned:
		return "poisoned"
	}
	return "?"
}
