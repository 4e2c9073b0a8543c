package parser

import (
	"slices"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/lexer"
	"ember/internal/source"
	"ember/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
	// Prelude names are visible in every file without an import.
	Prelude map[string]struct{}
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Sink receives the declarations of a file once the whole file is parsed,
// in source order. Malformed is called for every declaration whose name was
// read before a syntax error; the registry poisons that name.
type Sink interface {
	Function(fn *ast.Function)
	Structure(st *ast.Structure)
	Implementor(im *ast.Implementor)
	Malformed(qname string, err *diag.Error)
}

type Result struct {
	File   *ast.File
	Errors uint
}

// Parser: состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer
	file     *source.File
	opts     Options
	imports  *ast.Imports
	out      *ast.File
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
	order    int
	pending  []func(Sink)
}

// ParseFile разбирает файл целиком и затем отдаёт объявления в sink.
// sink may be nil when only the AST is needed.
func ParseFile(file *source.File, lx *lexer.Lexer, opts Options, sink Sink) Result {
	imports := ast.NewImports(file.Module, opts.Prelude)
	p := Parser{
		lx:       lx,
		file:     file,
		opts:     opts,
		imports:  imports,
		out:      &ast.File{ID: file.ID, Imports: imports},
		lastSpan: lx.EmptySpan(),
	}
	p.parseItems()
	if sink != nil {
		for _, emit := range p.pending {
			emit(sink)
		}
	}
	return Result{File: p.out, Errors: p.opts.CurrentErrors}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

func (p *Parser) nextOrder() int {
	p.order++
	return p.order
}

// parseItems: основной цикл верхнего уровня.
func (p *Parser) parseItems() {
	for !p.at(token.EOF) {
		if p.at(token.KwImport) {
			if !p.parseImport() {
				p.resyncTop()
			}
			continue
		}
		if !p.parseItem() {
			p.resyncTop()
		}
	}
}

// resyncTop: восстановление после ошибки на верхнем уровне:
// прокручиваем до стартового токена следующего item или EOF.
func (p *Parser) resyncTop() {
	for !p.at(token.EOF) && !isTopLevelStarter(p.lx.Peek().Kind) {
		p.advance()
	}
}

func isTopLevelStarter(k token.Kind) bool {
	switch k {
	case token.KwImport, token.KwFn, token.KwStruct, token.KwTrait, token.KwImpl,
		token.KwPub, token.KwInternal, token.KwExtern, token.HashBracket:
		return true
	default:
		return false
	}
}
