package ast

import "strings"

// Modifiers is a set of declaration modifiers.
type Modifiers uint8

const (
	ModPub Modifiers = 1 << iota
	ModMut
	ModInternal
	ModExtern
	// ModTrait marks trait declarations and functions declared inside a trait.
	ModTrait
)

func (m Modifiers) Has(x Modifiers) bool { return m&x == x }

// Bodiless reports whether declarations with these modifiers never carry code.
func (m Modifiers) Bodiless() bool {
	return m&(ModInternal|ModExtern) != 0
}

func (m Modifiers) String() string {
	if m == 0 {
		return ""
	}
	var parts []string
	for _, p := range []struct {
		mod  Modifiers
		name string
	}{
		{ModPub, "pub"}, {ModMut, "mut"}, {ModInternal, "internal"}, {ModExtern, "extern"}, {ModTrait, "trait"},
	} {
		if m.Has(p.mod) {
			parts = append(parts, p.name)
		}
	}
	return strings.Join(parts, " ")
}
