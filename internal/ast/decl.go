package ast

import "ember/internal/source"

// GenericParam is one `<Name: Bound>` entry. Bound is nil when unbounded.
type GenericParam struct {
	Name  string
	Bound *TypeRef
	Span  source.Span
}

// Generics keeps declaration order.
type Generics []GenericParam

func (g Generics) Names() []string {
	out := make([]string, len(g))
	for i, p := range g {
		out[i] = p.Name
	}
	return out
}

// Field is a struct field or a function argument.
type Field struct {
	Name  string
	Type  *TypeRef
	Mods  Modifiers
	Attrs Attributes
	Span  source.Span
}

// Function is an unresolved function: a free function, a trait member or an
// implementor method.
type Function struct {
	Name     string // short name as written
	QName    string // fully-qualified registry key
	Generics Generics
	Params   []Field
	Return   *TypeRef // nil means no return value
	Body     *Block   // nil for `fn f();`
	Mods     Modifiers
	Attrs    Attributes
	Span     source.Span
	NameSpan source.Span
	Imports  *Imports
	// Order is the position of the declaration within its file.
	Order int
}

// Bodiless reports whether the function has no code to check: internal and
// extern functions, and trait members declared without a default body.
func (f *Function) Bodiless() bool {
	return f.Mods.Bodiless() || (f.Body == nil && f.Mods.Has(ModTrait))
}

// Clone copies the descriptor under a new qualified name. The body and type
// references are shared; they are never mutated.
func (f *Function) Clone(qname string) *Function {
	cp := *f
	cp.QName = qname
	return &cp
}

// Structure is an unresolved struct or trait.
type Structure struct {
	Name     string
	QName    string
	Generics Generics
	Fields   []Field
	// Members lists trait functions, already qualified as <Trait>::<fn>.
	Members  []*Function
	Mods     Modifiers
	Attrs    Attributes
	Span     source.Span
	NameSpan source.Span
	Imports  *Imports
	Order    int
}

func (s *Structure) IsTrait() bool { return s.Mods.Has(ModTrait) }

// Implementor is `impl<G> Base for Target { ... }`.
type Implementor struct {
	Generics Generics
	Base     *TypeRef
	Target   *TypeRef
	Members  []*Function
	Span     source.Span
	Imports  *Imports
	Order    int
}
