package lexer

import (
	"ember/internal/diag"
	"ember/internal/token"
)

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	b := lx.cursor.Bump()
	kind := token.Invalid
	switch b {
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	case ',':
		kind = token.Comma
	case ';':
		kind = token.Semicolon
	case '.':
		kind = token.Dot
	case ':':
		kind = token.Colon
		if lx.cursor.Eat(':') {
			kind = token.ColonColon
		}
	case '#':
		if lx.cursor.Eat('[') {
			kind = token.HashBracket
		}
	case '-':
		kind = token.Operator
		if lx.cursor.Eat('>') {
			kind = token.Arrow
		}
	default:
		if isOperatorByte(b) {
			kind = token.Operator
		}
	}
	sp := lx.cursor.SpanFrom(start)
	if kind == token.Invalid {
		// съедаем остаток многобайтовой руны, чтобы не плодить ошибки
		for !lx.cursor.EOF() && lx.cursor.Peek()&0xC0 == 0x80 {
			lx.cursor.Bump()
		}
		sp = lx.cursor.SpanFrom(start)
		lx.report(diag.LexUnknownChar, sp, "unexpected character")
	}
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
