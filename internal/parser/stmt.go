package parser

import (
	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/source"
	"ember/internal/token"
)

// parseBlock: "{" { stmt } "}"
// Ошибки внутри инструкций восстанавливаются на уровне блока: разбор
// продолжается, а объявление всё равно считается испорченным.
func (p *Parser) parseBlock() (*ast.Block, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'")
	if !ok {
		return nil, false
	}
	b := &ast.Block{}
	for !p.at(token.RBrace) {
		if p.at(token.EOF) || isItemStarter(p.lx.Peek().Kind) {
			p.err(diag.SynUnclosedDelimiter, "expected '}' to close block")
			return b, false
		}
		st, ok := p.parseStmt()
		if !ok {
			p.resyncStmt()
			continue
		}
		b.Stmts = append(b.Stmts, st)
	}
	closeTok := p.advance()
	b.Span = open.Span.Cover(closeTok.Span)
	return b, true
}

// isItemStarter: токены, которые не могут встретиться внутри тела.
func isItemStarter(k token.Kind) bool {
	switch k {
	case token.KwFn, token.KwStruct, token.KwTrait, token.KwImpl, token.KwImport, token.HashBracket:
		return true
	}
	return false
}

// resyncStmt skips to the end of the broken statement: past ';' or up to
// the '}' that closes the current block.
func (p *Parser) resyncStmt() {
	depth := 0
	for !p.at(token.EOF) && !isItemStarter(p.lx.Peek().Kind) {
		switch p.lx.Peek().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) parseStmt() (ast.Stmt, bool) {
	start := p.lx.Peek().Span
	switch p.lx.Peek().Kind {
	case token.KwLet:
		p.advance()
		name, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		st := &ast.LetStmt{Name: name.Text}
		if p.at(token.Colon) {
			p.advance()
			if st.Type, ok = p.parseType(); !ok {
				return nil, false
			}
		}
		if !p.expectOp("=") {
			return nil, false
		}
		if st.Value, ok = p.parseExpr(true); !ok {
			return nil, false
		}
		if !p.semicolon() {
			return nil, false
		}
		st.Span = start.Cover(p.lastSpan)
		return st, true

	case token.KwReturn:
		p.advance()
		st := &ast.ReturnStmt{}
		if !p.at(token.Semicolon) {
			var ok bool
			if st.Value, ok = p.parseExpr(true); !ok {
				return nil, false
			}
		}
		if !p.semicolon() {
			return nil, false
		}
		st.Span = start.Cover(p.lastSpan)
		return st, true

	case token.KwIf:
		return p.parseIf()

	case token.KwWhile:
		p.advance()
		cond, ok := p.parseExpr(false)
		if !ok {
			return nil, false
		}
		body, ok := p.parseBlock()
		if !ok {
			return nil, false
		}
		return &ast.WhileStmt{Pos: ast.Pos{Span: start.Cover(body.Span)}, Cond: cond, Body: body}, true

	case token.LBrace:
		return p.parseBlock()

	default:
		x, ok := p.parseExpr(true)
		if !ok {
			return nil, false
		}
		if !p.semicolon() {
			return nil, false
		}
		return &ast.ExprStmt{Pos: ast.Pos{Span: start.Cover(p.lastSpan)}, X: x}, true
	}
}

func (p *Parser) parseIf() (ast.Stmt, bool) {
	start := p.advance().Span
	cond, ok := p.parseExpr(false)
	if !ok {
		return nil, false
	}
	then, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	st := &ast.IfStmt{Cond: cond, Then: then}
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.KwIf) {
			st.Else, ok = p.parseIf()
		} else {
			st.Else, ok = p.parseBlock()
		}
		if !ok {
			return nil, false
		}
	}
	st.Span = start.Cover(p.lastSpan)
	return st, true
}

// semicolon ждёт ';'; ошибка несёт исправление со вставкой ';' сразу после
// предыдущего токена.
func (p *Parser) semicolon() bool {
	if p.at(token.Semicolon) {
		p.advance()
		return true
	}
	at := source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	p.report(diag.SynExpectSemicolon, p.getDiagnosticSpan(), "expected ';', got "+describe(p.lx.Peek()),
		diag.Fix{Title: "insert ';'", Edits: []diag.FixEdit{{Span: at, NewText: ";"}}})
	return false
}
