package parser

import (
	"ember/internal/diag"
	"ember/internal/source"
	"ember/internal/token"
)

// advance: съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan: на EOF указываем на позицию сразу после последнего токена
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect: ожидаем конкретный токен. Если нет: репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.getDiagnosticSpan()
	p.report(code, sp, msg+", got "+describe(p.lx.Peek()))
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

// expectOp ожидает одиночный символ-оператор, например '<' или '='.
func (p *Parser) expectOp(op string) bool {
	if p.lx.Peek().IsOp(op) {
		p.advance()
		return true
	}
	p.err(diag.SynUnexpectedToken, "expected '"+op+"', got "+describe(p.lx.Peek()))
	return false
}

func (p *Parser) atOp(op string) bool {
	return p.lx.Peek().IsOp(op)
}

func (p *Parser) parseIdent() (token.Token, bool) {
	return p.expect(token.Ident, diag.SynExpectIdentifier, "expected identifier")
}

// parsePath reads `a::b::c`.
func (p *Parser) parsePath() (string, source.Span, bool) {
	first, ok := p.parseIdent()
	if !ok {
		return "", first.Span, false
	}
	name, sp := first.Text, first.Span
	for p.at(token.ColonColon) {
		p.advance()
		next, ok := p.parseIdent()
		if !ok {
			return name, sp, false
		}
		name += "::" + next.Text
		sp = sp.Cover(next.Span)
	}
	return name, sp, true
}

func (p *Parser) err(code diag.Code, msg string) {
	p.report(code, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sp source.Span, msg string, fixes ...diag.Fix) {
	p.opts.CurrentErrors++
	if p.opts.Reporter == nil || p.opts.Enough() && p.opts.CurrentErrors > p.opts.MaxErrors {
		return
	}
	b := diag.ReportError(p.opts.Reporter, code, sp, msg)
	for _, f := range fixes {
		b.WithFix(f.Title, f.Edits...)
	}
	b.Emit()
}

func describe(tok token.Token) string {
	if tok.Kind == token.EOF {
		return "end of file"
	}
	return "\"" + tok.Text + "\""
}
