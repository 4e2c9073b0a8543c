package token

import "fmt"

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident

	KwFn
	KwLet
	KwIf
	KwElse
	KwWhile
	KwReturn
	KwImport
	KwAs
	KwStruct
	KwTrait
	KwImpl
	KwFor
	KwNew
	KwPub
	KwMut
	KwInternal
	KwExtern

	IntLit
	FloatLit
	StringLit
	BoolLit

	// Operator is a single operator character: + - * / % < > = ! & | ^
	Operator

	LParen      // (
	RParen      // )
	LBrace      // {
	RBrace      // }
	LBracket    // [
	RBracket    // ]
	Comma       // ,
	Semicolon   // ;
	Colon       // :
	ColonColon  // ::
	Dot         // .
	Arrow       // ->
	HashBracket // #[
)

var kindNames = [...]string{
	Invalid:     "invalid",
	EOF:         "EOF",
	Ident:       "identifier",
	KwFn:        "fn",
	KwLet:       "let",
	KwIf:        "if",
	KwElse:      "else",
	KwWhile:     "while",
	KwReturn:    "return",
	KwImport:    "import",
	KwAs:        "as",
	KwStruct:    "struct",
	KwTrait:     "trait",
	KwImpl:      "impl",
	KwFor:       "for",
	KwNew:       "new",
	KwPub:       "pub",
	KwMut:       "mut",
	KwInternal:  "internal",
	KwExtern:    "extern",
	IntLit:      "int literal",
	FloatLit:    "float literal",
	StringLit:   "string literal",
	BoolLit:     "bool literal",
	Operator:    "operator",
	LParen:      "(",
	RParen:      ")",
	LBrace:      "{",
	RBrace:      "}",
	LBracket:    "[",
	RBracket:    "]",
	Comma:       ",",
	Semicolon:   ";",
	Colon:       ":",
	ColonColon:  "::",
	Dot:         ".",
	Arrow:       "->",
	HashBracket: "#[",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= KwFn && k <= KwExtern
}

// IsModifier reports whether k starts a declaration modifier.
func (k Kind) IsModifier() bool {
	switch k {
	case KwPub, KwMut, KwInternal, KwExtern:
		return true
	default:
		return false
	}
}
