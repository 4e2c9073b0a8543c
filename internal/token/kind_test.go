package token

import "testing"

func TestKeywordsRoundTrip(t *testing.T) {
	for word, kind := range keywords {
		got, ok := LookupKeyword(word)
		if !ok || got != kind {
			t.Fatalf("LookupKeyword(%q) = %v, %v", word, got, ok)
		}
		if kind != BoolLit && kind.String() != word {
			t.Fatalf("%v prints as %q, want %q", kind, kind.String(), word)
		}
	}
	if _, ok := LookupKeyword("Fn"); ok {
		t.Fatalf("keywords are case sensitive")
	}
}

func TestModifierKinds(t *testing.T) {
	for _, k := range []Kind{KwPub, KwMut, KwInternal, KwExtern} {
		if !k.IsModifier() || !k.IsKeyword() {
			t.Fatalf("%v must be a modifier keyword", k)
		}
	}
	if KwFn.IsModifier() || Ident.IsKeyword() {
		t.Fatalf("unexpected classification")
	}
}
