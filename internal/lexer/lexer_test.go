package lexer

import (
	"testing"

	"ember/internal/diag"
	"ember/internal/source"
	"ember/internal/token"
)

func lex(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.em", "t", []byte(src))
	bag := diag.NewBag(0)
	return Tokenize(fs.Get(id), Options{Reporter: diag.BagReporter{Bag: bag}}), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexDeclaration(t *testing.T) {
	toks, bag := lex(t, "pub fn add<T: Any>(a: &T) -> Int { return a == 1.5; } // tail")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	want := []token.Kind{
		token.KwPub, token.KwFn, token.Ident, token.Operator, token.Ident, token.Colon, token.Ident, token.Operator,
		token.LParen, token.Ident, token.Colon, token.Operator, token.Ident, token.RParen, token.Arrow, token.Ident,
		token.LBrace, token.KwReturn, token.Ident, token.Operator, token.Operator, token.FloatLit, token.Semicolon,
		token.RBrace, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestLexPathsAttributesStrings(t *testing.T) {
	toks, bag := lex(t, `#[operator("{}+{}")] import geo::shapes; /* block */ "a\"b"`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if toks[0].Kind != token.HashBracket || toks[3].Kind != token.StringLit || toks[3].Text != "{}+{}" {
		t.Fatalf("bad attribute tokens: %v", toks[:4])
	}
	if toks[8].Kind != token.ColonColon {
		t.Fatalf("expected ::, got %v", toks[8])
	}
	last := toks[len(toks)-2]
	if last.Kind != token.StringLit || last.Text != `a"b` {
		t.Fatalf("string literal = %v", last)
	}
}

func TestLexNormalizesIdentifiers(t *testing.T) {
	// "é" как e + combining acute и как один кодпоинт
	toks, _ := lex(t, "cafe\u0301 caf\u00e9")
	if toks[0].Text != toks[1].Text {
		t.Fatalf("identifiers not normalized: %q vs %q", toks[0].Text, toks[1].Text)
	}
}

func TestLexReportsErrors(t *testing.T) {
	_, bag := lex(t, "let x = 12ab; $ \"open")
	codes := map[diag.Code]bool{}
	for _, d := range bag.Items() {
		codes[d.Code] = true
	}
	for _, c := range []diag.Code{diag.LexBadNumber, diag.LexUnknownChar, diag.LexUnterminatedString} {
		if !codes[c] {
			t.Fatalf("missing %v in %v", c, bag.Items())
		}
	}
}

func TestIntFollowedByDot(t *testing.T) {
	toks, _ := lex(t, "1.x 2.5")
	if toks[0].Kind != token.IntLit || toks[1].Kind != token.Dot || toks[3].Kind != token.FloatLit {
		t.Fatalf("unexpected tokens %v", toks)
	}
}
