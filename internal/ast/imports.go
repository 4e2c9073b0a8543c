package ast

import (
	"strings"

	"ember/internal/source"
)

// PreludeModule is the module every file sees implicitly.
const PreludeModule = "std::prelude"

// Import is `import a::b::C as D;`.
type Import struct {
	Path  string
	Alias string
	Span  source.Span
}

// Name is the local name the import binds.
func (im Import) Name() string {
	if im.Alias != "" {
		return im.Alias
	}
	if i := strings.LastIndex(im.Path, "::"); i >= 0 {
		return im.Path[i+2:]
	}
	return im.Path
}

// Imports is the name environment of one file. It is filled by the parser
// before any declaration of the file is emitted and is read-only afterwards.
type Imports struct {
	Module  string
	List    []Import
	aliases map[string]string
	locals  map[string]struct{}
	prelude map[string]struct{}
}

func NewImports(module string, prelude map[string]struct{}) *Imports {
	return &Imports{
		Module:  module,
		aliases: make(map[string]string),
		locals:  make(map[string]struct{}),
		prelude: prelude,
	}
}

// AddImport binds im.Name() to im.Path. A later import of the same name wins.
func (m *Imports) AddImport(im Import) {
	m.List = append(m.List, im)
	m.aliases[im.Name()] = im.Path
}

// AddLocal records a top-level name declared in this file.
func (m *Imports) AddLocal(name string) {
	m.locals[name] = struct{}{}
}

// Qualify maps a name as written in this file to its registry key:
// a path whose first segment is an import alias is expanded, other paths
// are absolute; short names go through imports, local declarations, the
// prelude and finally the file's own module.
func (m *Imports) Qualify(name string) string {
	if head, rest, ok := strings.Cut(name, "::"); ok {
		if full, ok := m.aliases[head]; ok {
			return full + "::" + rest
		}
		return name
	}
	if full, ok := m.aliases[name]; ok {
		return full
	}
	if _, ok := m.locals[name]; ok {
		return m.Join(name)
	}
	if _, ok := m.prelude[name]; ok {
		return PreludeModule + "::" + name
	}
	return m.Join(name)
}

// Join returns <module>::<name>.
func (m *Imports) Join(name string) string {
	if m.Module == "" {
		return name
	}
	return m.Module + "::" + name
}
