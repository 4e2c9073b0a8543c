package types

import (
	"strings"
)

// Symbol is the handle a resolved type keeps on its structure.
// It is implemented by the registry entry.
type Symbol interface {
	QualifiedName() string
	Arity() int
}

type Kind uint8

const (
	KindInvalid Kind = iota
	KindBasic
	KindGeneric
	KindReference
	KindArray
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindGeneric:
		return "generic"
	case KindReference:
		return "reference"
	case KindArray:
		return "array"
	case KindPlaceholder:
		return "placeholder"
	default:
		return "invalid"
	}
}

type Type struct {
	Kind Kind
	Sym  Symbol  // Basic, Generic
	Args []*Type // Generic
	Elem *Type   // Reference, Array
	Name string  // Placeholder
	// Bound is the trait a placeholder must implement, or nil.
	Bound *Type
}

func Basic(sym Symbol) *Type {
	return &Type{Kind: KindBasic, Sym: sym}
}

// Generic instantiates sym. An empty argument list yields a Basic type.
func Generic(sym Symbol, args []*Type) *Type {
	if len(args) == 0 {
		return Basic(sym)
	}
	return &Type{Kind: KindGeneric, Sym: sym, Args: append([]*Type(nil), args...)}
}

// Reference wraps elem; a reference to a reference collapses.
func Reference(elem *Type) *Type {
	if elem != nil && elem.Kind == KindReference {
		return elem
	}
	return &Type{Kind: KindReference, Elem: elem}
}

func Array(elem *Type) *Type {
	return &Type{Kind: KindArray, Elem: elem}
}

func Placeholder(name string, bound *Type) *Type {
	return &Type{Kind: KindPlaceholder, Name: name, Bound: bound}
}

// QualifiedName of the symbol for Basic and Generic, "" otherwise.
func (t *Type) QualifiedName() string {
	if t == nil || t.Sym == nil {
		return ""
	}
	return t.Sym.QualifiedName()
}

// Deref strips one reference.
func (t *Type) Deref() *Type {
	if t != nil && t.Kind == KindReference {
		return t.Elem
	}
	return t
}

func (t *Type) IsReference() bool { return t != nil && t.Kind == KindReference }

// Is reports whether t is the Basic type named qname.
func (t *Type) Is(qname string) bool {
	return t != nil && t.Kind == KindBasic && t.QualifiedName() == qname
}

// HasPlaceholders reports whether any placeholder occurs in t.
func (t *Type) HasPlaceholders() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindPlaceholder:
		return true
	case KindReference, KindArray:
		return t.Elem.HasPlaceholders()
	case KindGeneric:
		for _, a := range t.Args {
			if a.HasPlaceholders() {
				return true
			}
		}
	}
	return false
}

// Equal is structural equality. Symbols compare by qualified name.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindBasic:
		return a.QualifiedName() == b.QualifiedName()
	case KindGeneric:
		if a.QualifiedName() != b.QualifiedName() || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case KindReference, KindArray:
		return Equal(a.Elem, b.Elem)
	case KindPlaceholder:
		return a.Name == b.Name
	}
	return false
}

func (t *Type) String() string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case KindBasic:
		return t.QualifiedName()
	case KindGeneric:
		var sb strings.Builder
		sb.WriteString(t.QualifiedName())
		sb.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.String())
		}
		sb.WriteByte('>')
		return sb.String()
	case KindReference:
		return "&" + t.Elem.String()
	case KindArray:
		return "[" + t.Elem.String() + "]"
	case KindPlaceholder:
		return t.Name
	}
	return "<invalid>"
}
