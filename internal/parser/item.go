package parser

import (
	"fmt"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/source"
	"ember/internal/token"
)

// parseItem разбирает attributes, modifiers и одно объявление.
// Any syntax error inside a named declaration poisons that name.
func (p *Parser) parseItem() bool {
	start := p.lx.Peek().Span
	attrs, ok := p.parseAttributes()
	if !ok {
		return false
	}
	mods := p.parseModifiers()

	switch p.lx.Peek().Kind {
	case token.KwFn:
		return p.parseFnItem(start, attrs, mods)
	case token.KwStruct, token.KwTrait:
		return p.parseStructItem(start, attrs, mods)
	case token.KwImpl:
		return p.parseImplItem(start)
	default:
		p.err(diag.SynUnexpectedTopLevel, "expected 'fn', 'struct', 'trait', 'impl' or 'import', got "+describe(p.lx.Peek()))
		if !p.at(token.EOF) {
			p.advance()
		}
		return false
	}
}

// parseAttributes: { "#[" Ident [ "(" String ")" ] "]" }
func (p *Parser) parseAttributes() (ast.Attributes, bool) {
	var attrs ast.Attributes
	for p.at(token.HashBracket) {
		open := p.advance()
		name, ok := p.parseIdent()
		if !ok {
			return attrs, false
		}
		attr := ast.Attribute{Name: name.Text}
		if p.at(token.LParen) {
			p.advance()
			arg, ok := p.expect(token.StringLit, diag.SynUnexpectedToken, "expected string attribute argument")
			if !ok {
				return attrs, false
			}
			attr.Arg, attr.HasArg = arg.Text, true
			if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'"); !ok {
				return attrs, false
			}
		}
		closeTok, ok := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' after attribute")
		if !ok {
			return attrs, false
		}
		attr.Span = open.Span.Cover(closeTok.Span)
		attrs = append(attrs, attr)
	}
	return attrs, true
}

func (p *Parser) parseModifiers() ast.Modifiers {
	var mods ast.Modifiers
	for {
		switch p.lx.Peek().Kind {
		case token.KwPub:
			mods |= ast.ModPub
		case token.KwMut:
			mods |= ast.ModMut
		case token.KwInternal:
			mods |= ast.ModInternal
		case token.KwExtern:
			mods |= ast.ModExtern
		default:
			return mods
		}
		p.advance()
	}
}

// itemGuard tracks the errors raised while one named declaration is parsed.
type itemGuard struct {
	p      *Parser
	errors uint
	names  []string // qualified lazily, see flush
	span   source.Span
}

func (p *Parser) guard() *itemGuard {
	return &itemGuard{p: p, errors: p.opts.CurrentErrors}
}

func (g *itemGuard) failed() bool { return g.p.opts.CurrentErrors > g.errors }

// poison queues a Malformed for every name read so far.
func (g *itemGuard) poison(qualify func(string) string) {
	names := g.names
	span := g.span
	g.p.pending = append(g.p.pending, func(s Sink) {
		for _, n := range names {
			q := qualify(n)
			err := diag.Wrap(diag.New(diag.SevInfo, diag.SynMalformedDeclaration, span,
				fmt.Sprintf("%s was not declared because of syntax errors", q)))
			s.Malformed(q, err)
		}
	})
}

func (p *Parser) parseFnItem(start source.Span, attrs ast.Attributes, mods ast.Modifiers) bool {
	g := p.guard()
	fn, ok := p.parseFn(g, attrs, mods)
	if fn != nil {
		fn.Span = start.Cover(fn.Span)
	}
	if !ok || g.failed() {
		g.poison(p.imports.Join)
		return ok
	}
	p.imports.AddLocal(fn.Name)
	p.out.Functions = append(p.out.Functions, fn)
	p.pending = append(p.pending, func(s Sink) {
		fn.QName = p.imports.Join(fn.Name)
		s.Function(fn)
	})
	return true
}

// parseFn: "fn" Ident [generics] "(" params ")" ["->" type] (block | ";")
func (p *Parser) parseFn(g *itemGuard, attrs ast.Attributes, mods ast.Modifiers) (*ast.Function, bool) {
	kw, _ := p.expect(token.KwFn, diag.SynUnexpectedToken, "expected 'fn'")
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	g.names = append(g.names, name.Text)
	if g.span.Empty() {
		g.span = name.Span
	}

	fn := &ast.Function{
		Name:     name.Text,
		NameSpan: name.Span,
		Mods:     mods,
		Attrs:    attrs,
		Imports:  p.imports,
		Order:    p.nextOrder(),
	}
	if fn.Generics, ok = p.parseGenerics(); !ok {
		return fn, false
	}
	if fn.Params, ok = p.parseParams(); !ok {
		return fn, false
	}
	if p.at(token.Arrow) {
		p.advance()
		if fn.Return, ok = p.parseType(); !ok {
			return fn, false
		}
	}
	if p.at(token.Semicolon) {
		p.advance()
	} else {
		if fn.Body, ok = p.parseBlock(); !ok {
			return fn, false
		}
	}
	fn.Span = kw.Span.Cover(p.lastSpan)
	return fn, true
}

// parseGenerics: "<" Ident [":" type] {"," Ident [":" type]} ">"
func (p *Parser) parseGenerics() (ast.Generics, bool) {
	if !p.atOp("<") {
		return nil, true
	}
	p.advance()
	var out ast.Generics
	for {
		name, ok := p.parseIdent()
		if !ok {
			return out, false
		}
		gp := ast.GenericParam{Name: name.Text, Span: name.Span}
		if p.at(token.Colon) {
			p.advance()
			if gp.Bound, ok = p.parseType(); !ok {
				return out, false
			}
		}
		out = append(out, gp)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	return out, p.expectOp(">")
}

func (p *Parser) parseParams() ([]ast.Field, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return nil, false
	}
	var out []ast.Field
	for !p.at(token.RParen) {
		f, ok := p.parseField()
		if !ok {
			return out, false
		}
		out = append(out, f)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	_, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after parameters")
	return out, ok
}

// parseField: {modifier} Ident ":" type
func (p *Parser) parseField() (ast.Field, bool) {
	start := p.lx.Peek().Span
	attrs, ok := p.parseAttributes()
	if !ok {
		return ast.Field{}, false
	}
	f := ast.Field{Mods: p.parseModifiers(), Attrs: attrs}
	name, ok := p.parseIdent()
	if !ok {
		return f, false
	}
	f.Name = name.Text
	if _, ok := p.expect(token.Colon, diag.SynExpectType, "expected ':' before type"); !ok {
		return f, false
	}
	if f.Type, ok = p.parseType(); !ok {
		return f, false
	}
	f.Span = start.Cover(p.lastSpan)
	return f, true
}

// parseStructItem: struct/trait Name [generics] { ... }
func (p *Parser) parseStructItem(start source.Span, attrs ast.Attributes, mods ast.Modifiers) bool {
	g := p.guard()
	isTrait := p.at(token.KwTrait)
	p.advance()
	name, ok := p.parseIdent()
	if !ok {
		return false
	}
	g.names = append(g.names, name.Text)
	g.span = name.Span
	p.imports.AddLocal(name.Text)
	if isTrait {
		mods |= ast.ModTrait
	}
	st := &ast.Structure{
		Name:     name.Text,
		NameSpan: name.Span,
		Mods:     mods,
		Attrs:    attrs,
		Imports:  p.imports,
		Order:    p.nextOrder(),
	}
	ok = p.parseStructBody(g, st, isTrait)
	st.Span = start.Cover(p.lastSpan)
	if !ok || g.failed() {
		// члены трейта отравляются вместе с ним
		trait := name.Text
		g.poison(func(n string) string {
			if n == trait {
				return p.imports.Join(n)
			}
			return p.imports.Join(trait) + "::" + n
		})
		return ok
	}
	p.out.Structures = append(p.out.Structures, st)
	p.pending = append(p.pending, func(s Sink) {
		st.QName = p.imports.Join(st.Name)
		for _, m := range st.Members {
			m.QName = st.QName + "::" + m.Name
		}
		s.Structure(st)
		for _, m := range st.Members {
			s.Function(m)
		}
	})
	return true
}

func (p *Parser) parseStructBody(g *itemGuard, st *ast.Structure, isTrait bool) bool {
	var ok bool
	if st.Generics, ok = p.parseGenerics(); !ok {
		return false
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'"); !ok {
		return false
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if isTrait {
			fn, ok := p.parseMember(g)
			if fn != nil {
				fn.Mods |= ast.ModTrait
				fn.Generics = append(append(ast.Generics(nil), st.Generics...), fn.Generics...)
				st.Members = append(st.Members, fn)
			}
			if !ok {
				return false
			}
			continue
		}
		f, ok := p.parseField()
		if !ok {
			return false
		}
		st.Fields = append(st.Fields, f)
		if p.atOr(token.Semicolon, token.Comma) {
			p.advance()
		} else if !p.at(token.RBrace) {
			p.err(diag.SynExpectSemicolon, "expected ';' after field")
			return false
		}
	}
	_, ok = p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}'")
	return ok
}

// parseMember: {attribute} {modifier} fn
func (p *Parser) parseMember(g *itemGuard) (*ast.Function, bool) {
	start := p.lx.Peek().Span
	attrs, ok := p.parseAttributes()
	if !ok {
		return nil, false
	}
	mods := p.parseModifiers()
	if !p.at(token.KwFn) {
		p.err(diag.SynUnexpectedToken, "expected 'fn', got "+describe(p.lx.Peek()))
		return nil, false
	}
	fn, ok := p.parseFn(g, attrs, mods)
	if fn != nil {
		fn.Span = start.Cover(fn.Span)
	}
	return fn, ok
}

// parseImplItem: impl [generics] type [for type] { members }
func (p *Parser) parseImplItem(start source.Span) bool {
	g := p.guard()
	p.advance()
	im := &ast.Implementor{Imports: p.imports, Order: p.nextOrder()}
	ok := p.parseImplBody(g, im)
	im.Span = start.Cover(p.lastSpan)
	if !ok || g.failed() {
		if target := im.Target; target != nil {
			g.span = target.Span
			g.poison(func(n string) string { return p.imports.Qualify(target.Name) + "::" + n })
		}
		return ok
	}
	p.out.Implementors = append(p.out.Implementors, im)
	p.pending = append(p.pending, func(s Sink) {
		owner := p.imports.Qualify(im.Target.Name)
		for _, m := range im.Members {
			m.QName = owner + "::" + m.Name
		}
		s.Implementor(im)
	})
	return true
}

func (p *Parser) parseImplBody(g *itemGuard, im *ast.Implementor) bool {
	var ok bool
	if im.Generics, ok = p.parseGenerics(); !ok {
		return false
	}
	first, ok := p.parseType()
	if !ok {
		return false
	}
	if p.at(token.KwFor) {
		p.advance()
		im.Base = first
		if im.Target, ok = p.parseType(); !ok {
			return false
		}
	} else {
		im.Target = first
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'"); !ok {
		return false
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fn, ok := p.parseMember(g)
		if fn != nil {
			fn.Generics = append(append(ast.Generics(nil), im.Generics...), fn.Generics...)
			im.Members = append(im.Members, fn)
		}
		if !ok {
			return false
		}
	}
	_, ok = p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}'")
	return ok
}
