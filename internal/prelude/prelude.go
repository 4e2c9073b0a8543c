// Package prelude carries the std::prelude source compiled with every
// program: the primitive structures and their operator functions.
package prelude

import (
	_ "embed"
	"sync"

	"ember/internal/ast"
	"ember/internal/lexer"
	"ember/internal/source"
	"ember/internal/token"
)

// Path is the virtual file name the prelude is registered under.
const Path = "<prelude>/prelude.em"

//go:embed prelude.em
var src []byte

// Qualified names of the primitive types.
const (
	Any   = ast.PreludeModule + "::Any"
	Int   = ast.PreludeModule + "::Int"
	Float = ast.PreludeModule + "::Float"
	Bool  = ast.PreludeModule + "::Bool"
	Str   = ast.PreludeModule + "::Str"
)

// Source returns the prelude text.
func Source() []byte { return src }

// Add registers the prelude in fs and returns its file id.
func Add(fs *source.FileSet) source.FileID {
	return fs.AddVirtual(Path, ast.PreludeModule, src)
}

var (
	namesOnce sync.Once
	names     map[string]struct{}
)

// Names is the set of short names the prelude declares. Files resolve these
// to std::prelude unless shadowed by an import or a local declaration.
func Names() map[string]struct{} {
	namesOnce.Do(func() {
		names = scanNames(src)
	})
	return names
}

// scanNames collects the identifier after every declaring keyword at
// brace depth zero.
func scanNames(content []byte) map[string]struct{} {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual(Path, ast.PreludeModule, content))
	toks := lexer.Tokenize(file, lexer.Options{})

	out := make(map[string]struct{})
	depth := 0
	for i, tok := range toks {
		switch tok.Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		case token.KwStruct, token.KwTrait, token.KwFn:
			if depth == 0 && i+1 < len(toks) && toks[i+1].Kind == token.Ident {
				out[toks[i+1].Text] = struct{}{}
			}
		}
	}
	return out
}
