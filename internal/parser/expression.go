package parser

import (
	"strings"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/token"
)

// parseExpr собирает операторное выражение в один плоский ast.Operation:
// текст операторов с `{}` на месте операндов и операнды по порядку.
// Приоритеты здесь не применяются.
//
// With allowList, a comma after a right-hand operand turns the remaining
// comma-separated operands into one implicit array: `x = 1, 2, 3` has the
// operands x and [1, 2, 3].
func (p *Parser) parseExpr(allowList bool) (ast.Expr, bool) {
	first, ok := p.parseUnary()
	if !ok {
		return nil, false
	}
	if !p.at(token.Operator) {
		return first, true
	}

	var pattern strings.Builder
	pattern.WriteString("{}")
	operands := []ast.Expr{first}
	for p.at(token.Operator) {
		pattern.WriteString(p.operatorText())
		pattern.WriteString("{}")
		rhs, ok := p.parseUnary()
		if !ok {
			return nil, false
		}
		if allowList && p.at(token.Comma) {
			if rhs, ok = p.parseImplicitArray(rhs); !ok {
				return nil, false
			}
		}
		operands = append(operands, rhs)
	}
	return &ast.Operation{
		Pos:      ast.Pos{Span: first.Where().Cover(p.lastSpan)},
		Op:       pattern.String(),
		Operands: operands,
	}, true
}

// operatorText склеивает соседние символы-операторы без пробелов: `==`, `<=`.
func (p *Parser) operatorText() string {
	tok := p.advance()
	text := tok.Text
	end := tok.Span.End
	for p.at(token.Operator) && p.lx.Peek().Span.Start == end {
		next := p.advance()
		text += next.Text
		end = next.Span.End
	}
	return text
}

func (p *Parser) parseImplicitArray(first ast.Expr) (ast.Expr, bool) {
	elems := []ast.Expr{first}
	for p.at(token.Comma) {
		p.advance()
		e, ok := p.parseUnary()
		if !ok {
			return nil, false
		}
		elems = append(elems, e)
	}
	return &ast.ArrayLit{Pos: ast.Pos{Span: first.Where().Cover(p.lastSpan)}, Elems: elems}, true
}

// parseUnary: "&" unary | ("-" | "!") unary | postfix
func (p *Parser) parseUnary() (ast.Expr, bool) {
	start := p.lx.Peek().Span
	switch {
	case p.atOp("&"):
		p.advance()
		x, ok := p.parseUnary()
		if !ok {
			return nil, false
		}
		return &ast.Borrow{Pos: ast.Pos{Span: start.Cover(p.lastSpan)}, X: x}, true
	case p.atOp("-"), p.atOp("!"):
		op := p.advance().Text
		x, ok := p.parseUnary()
		if !ok {
			return nil, false
		}
		return &ast.Operation{Pos: ast.Pos{Span: start.Cover(p.lastSpan)}, Op: op + "{}", Operands: []ast.Expr{x}}, true
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, bool) {
	x, ok := p.parsePrimary()
	if !ok {
		return nil, false
	}
	for p.at(token.Dot) {
		p.advance()
		name, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		if p.at(token.LParen) {
			args, ok := p.parseArgs()
			if !ok {
				return nil, false
			}
			x = &ast.MethodCall{Pos: ast.Pos{Span: x.Where().Cover(p.lastSpan)}, Recv: x, Name: name.Text, Args: args}
			continue
		}
		x = &ast.FieldAccess{Pos: ast.Pos{Span: x.Where().Cover(name.Span)}, X: x, Name: name.Text}
	}
	return x, true
}

func (p *Parser) parseArgs() ([]ast.Expr, bool) {
	p.advance() // (
	var args []ast.Expr
	for !p.at(token.RParen) {
		a, ok := p.parseExpr(false)
		if !ok {
			return nil, false
		}
		args = append(args, a)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	_, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after arguments")
	return args, ok
}

func (p *Parser) parsePrimary() (ast.Expr, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit, token.FloatLit, token.StringLit, token.BoolLit:
		p.advance()
		return &ast.Literal{Pos: ast.Pos{Span: tok.Span}, Kind: litKind(tok.Kind), Text: tok.Text}, true

	case token.Ident:
		path, sp, ok := p.parsePath()
		if !ok {
			return nil, false
		}
		if p.at(token.LParen) {
			args, ok := p.parseArgs()
			if !ok {
				return nil, false
			}
			return &ast.Call{Pos: ast.Pos{Span: sp.Cover(p.lastSpan)}, Callee: path, Args: args}, true
		}
		return &ast.Ident{Pos: ast.Pos{Span: sp}, Name: path}, true

	case token.KwNew:
		return p.parseNew()

	case token.LBracket:
		p.advance()
		arr := &ast.ArrayLit{}
		for !p.at(token.RBracket) {
			e, ok := p.parseExpr(false)
			if !ok {
				return nil, false
			}
			arr.Elems = append(arr.Elems, e)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		if _, ok := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']'"); !ok {
			return nil, false
		}
		arr.Span = tok.Span.Cover(p.lastSpan)
		return arr, true

	case token.LParen:
		p.advance()
		x, ok := p.parseExpr(false)
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'"); !ok {
			return nil, false
		}
		return x, true
	}
	p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
	return nil, false
}

// parseNew: "new" type "{" [ Ident ":" expr { "," Ident ":" expr } ] "}"
func (p *Parser) parseNew() (ast.Expr, bool) {
	start := p.advance().Span
	typ, ok := p.parseType()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after type in new"); !ok {
		return nil, false
	}
	n := &ast.New{Type: typ}
	for !p.at(token.RBrace) {
		name, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after field name"); !ok {
			return nil, false
		}
		v, ok := p.parseExpr(false)
		if !ok {
			return nil, false
		}
		n.Inits = append(n.Inits, ast.FieldInit{Pos: ast.Pos{Span: name.Span.Cover(p.lastSpan)}, Name: name.Text, Value: v})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}'"); !ok {
		return nil, false
	}
	n.Span = start.Cover(p.lastSpan)
	return n, true
}

func litKind(k token.Kind) ast.LitKind {
	switch k {
	case token.FloatLit:
		return ast.LitFloat
	case token.StringLit:
		return ast.LitString
	case token.BoolLit:
		return ast.LitBool
	default:
		return ast.LitInt
	}
}

