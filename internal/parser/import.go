package parser

import (
	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/token"
)

// parseImport: import a::b::C [as D];
func (p *Parser) parseImport() bool {
	kw := p.advance()
	path, sp, ok := p.parsePath()
	if !ok {
		return false
	}
	im := ast.Import{Path: path}
	if p.at(token.KwAs) {
		p.advance()
		alias, ok := p.parseIdent()
		if !ok {
			return false
		}
		im.Alias = alias.Text
		sp = sp.Cover(alias.Span)
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after import"); !ok {
		return false
	}
	im.Span = kw.Span.Cover(sp)
	p.imports.AddImport(im)
	return true
}
