package types

// Bindings maps placeholder names to concrete types.
type Bindings map[string]*Type

// Substitute replaces bound placeholders in t. Unbound placeholders stay.
func Substitute(t *Type, b Bindings) *Type {
	if t == nil || len(b) == 0 {
		return t
	}
	switch t.Kind {
	case KindPlaceholder:
		if r, ok := b[t.Name]; ok && r != nil {
			return r
		}
		return t
	case KindReference:
		return Reference(Substitute(t.Elem, b))
	case KindArray:
		return Array(Substitute(t.Elem, b))
	case KindGeneric:
		args := make([]*Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = Substitute(a, b)
		}
		return Generic(t.Sym, args)
	}
	return t
}

// BindArgs pairs the ordered generic parameter names of a structure with the
// arguments of an instantiation.
func BindArgs(names []string, args []*Type) Bindings {
	if len(names) == 0 {
		return nil
	}
	b := make(Bindings, len(names))
	for i, n := range names {
		if i < len(args) {
			b[n] = args[i]
		}
	}
	return b
}

// Unify matches a parameter type against an argument type, binding
// placeholders of param in b. It returns the number of placeholder bindings
// used and whether the types are compatible. A placeholder already bound must
// match its previous binding.
func Unify(param, arg *Type, b Bindings) (bound int, ok bool) {
	if param == nil || arg == nil {
		return 0, param == arg
	}
	if param.Kind == KindPlaceholder {
		if prev, seen := b[param.Name]; seen && prev != nil {
			return 0, Equal(prev, arg)
		}
		b[param.Name] = arg
		return 1, true
	}
	if param.Kind != arg.Kind {
		return 0, false
	}
	switch param.Kind {
	case KindBasic:
		return 0, param.QualifiedName() == arg.QualifiedName()
	case KindReference, KindArray:
		return Unify(param.Elem, arg.Elem, b)
	case KindGeneric:
		if param.QualifiedName() != arg.QualifiedName() || len(param.Args) != len(arg.Args) {
			return 0, false
		}
		total := 0
		for i := range param.Args {
			n, ok := Unify(param.Args[i], arg.Args[i], b)
			if !ok {
				return 0, false
			}
			total += n
		}
		return total, true
	}
	return 0, false
}
