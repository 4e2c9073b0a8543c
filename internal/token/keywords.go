package token

var keywords = map[string]Kind{
	"fn":       KwFn,
	"let":      KwLet,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"return":   KwReturn,
	"import":   KwImport,
	"as":       KwAs,
	"struct":   KwStruct,
	"trait":    KwTrait,
	"impl":     KwImpl,
	"for":      KwFor,
	"new":      KwNew,
	"pub":      KwPub,
	"mut":      KwMut,
	"internal": KwInternal,
	"extern":   KwExtern,
	"true":     BoolLit,
	"false":    BoolLit,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
