package parser

import (
	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/token"
)

// parseType: "&" type | "[" type "]" | path [ "<" type {"," type} ">" ]
func (p *Parser) parseType() (*ast.TypeRef, bool) {
	start := p.lx.Peek().Span
	switch {
	case p.atOp("&"):
		p.advance()
		inner, ok := p.parseType()
		if !ok {
			return nil, false
		}
		return ast.RefTo(inner, start.Cover(p.lastSpan)), true
	case p.at(token.LBracket):
		p.advance()
		inner, ok := p.parseType()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' after array element type"); !ok {
			return nil, false
		}
		return ast.ArrayOf(inner, start.Cover(p.lastSpan)), true
	case p.at(token.Ident):
	default:
		p.err(diag.SynExpectType, "expected type, got "+describe(p.lx.Peek()))
		return nil, false
	}

	name, sp, ok := p.parsePath()
	if !ok {
		return nil, false
	}
	ref := ast.Named(name, sp)
	if !p.atOp("<") {
		return ref, true
	}
	p.advance()
	for {
		arg, ok := p.parseType()
		if !ok {
			return nil, false
		}
		ref.Args = append(ref.Args, arg)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if !p.expectOp(">") {
		return nil, false
	}
	ref.Span = start.Cover(p.lastSpan)
	return ref, true
}
