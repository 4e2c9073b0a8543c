package ast

import (
	"strings"

	"ember/internal/source"
)

// TypeRef is a type as written: a path with generic arguments, optionally
// wrapped as a reference (`&T`) or an array (`[T]`). Exactly one of Ref,
// Array or Name is meaningful: Ref and Array wrap Args[0].
type TypeRef struct {
	Name  string
	Args  []*TypeRef
	Ref   bool
	Array bool
	Span  source.Span
}

// Named builds a plain path reference.
func Named(name string, sp source.Span, args ...*TypeRef) *TypeRef {
	return &TypeRef{Name: name, Args: args, Span: sp}
}

// RefTo builds `&inner`.
func RefTo(inner *TypeRef, sp source.Span) *TypeRef {
	return &TypeRef{Ref: true, Args: []*TypeRef{inner}, Span: sp}
}

// ArrayOf builds `[inner]`.
func ArrayOf(inner *TypeRef, sp source.Span) *TypeRef {
	return &TypeRef{Array: true, Args: []*TypeRef{inner}, Span: sp}
}

// Inner returns the wrapped reference of a Ref or Array.
func (t *TypeRef) Inner() *TypeRef {
	if (t.Ref || t.Array) && len(t.Args) == 1 {
		return t.Args[0]
	}
	return nil
}

func (t *TypeRef) String() string {
	if t == nil {
		return "<nil>"
	}
	switch {
	case t.Ref:
		return "&" + t.Inner().String()
	case t.Array:
		return "[" + t.Inner().String() + "]"
	}
	if len(t.Args) == 0 {
		return t.Name
	}
	var sb strings.Builder
	sb.WriteString(t.Name)
	sb.WriteByte('<')
	for i, a := range t.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte('>')
	return sb.String()
}
