// Package ir is the finalized, fully typed form handed to code generation.
// Values are built once by the finalizer and never mutated afterwards.
package ir

import (
	"ember/internal/ast"
	"ember/internal/source"
	"ember/internal/types"
)

type Field struct {
	Name  string
	Type  *types.Type
	Mods  ast.Modifiers
	Attrs ast.Attributes
	Span  source.Span
}

type GenericParam struct {
	Name  string
	Bound *types.Type // nil when unbounded
}

// Signature is a codeless function: everything callers need, no body.
type Signature struct {
	Name     string
	Generics []GenericParam
	Params   []Field
	Return   *types.Type // nil means void
	Mods     ast.Modifiers
	Attrs    ast.Attributes
	// Operator is the pattern of an `#[operator(...)]` function.
	Operator string
	Span     source.Span
	Order    int
}

// Placeholders returns the generic parameters as placeholder types.
func (s *Signature) Placeholders() map[string]*types.Type {
	out := make(map[string]*types.Type, len(s.Generics))
	for _, g := range s.Generics {
		out[g.Name] = types.Placeholder(g.Name, g.Bound)
	}
	return out
}

type Function struct {
	*Signature
	Body *Body
}

type Structure struct {
	Name     string
	Generics []GenericParam
	Fields   []Field
	Mods     ast.Modifiers
	Attrs    ast.Attributes
	Span     source.Span
	// Members of a trait, by qualified name.
	Members []string
}

// Field looks a field up by name.
func (s *Structure) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s *Structure) GenericNames() []string {
	out := make([]string, len(s.Generics))
	for i, g := range s.Generics {
		out[i] = g.Name
	}
	return out
}

func (s *Structure) IsTrait() bool { return s.Mods.Has(ast.ModTrait) }

// Implementation records that Target implements Trait.
type Implementation struct {
	Name    string // <Target>::impl::<Trait>
	Trait   *types.Type
	Target  *types.Type
	Methods []string
	Span    source.Span
}

// Program is the set of finalized symbols, sorted by name.
type Program struct {
	Structures      []*Structure
	Functions       []*Function
	Implementations []*Implementation
}
