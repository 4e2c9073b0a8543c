package symbols

import (
	"sync/atomic"

	"ember/internal/diag"
	"ember/internal/source"
)

// Entry is the registry slot of one name. Its symbol is replaced on every
// transition; readers see a consistent snapshot without taking the
// registry lock.
type Entry struct {
	name string
	span source.Span
	seq  int
	sym  atomic.Pointer[box]

	// guarded by Registry.mu
	redeclared bool
}

type box struct{ sym Symbol }

func newEntry(name string, span source.Span, seq int, sym Symbol) *Entry {
	e := &Entry{name: name, span: span, seq: seq}
	e.store(sym)
	return e
}

func (e *Entry) store(sym Symbol) { e.sym.Store(&box{sym: sym}) }

func (e *Entry) QualifiedName() string { return e.name }

// Span is where the name was first declared (or first failed).
func (e *Entry) Span() source.Span { return e.span }

// Seq is the registry-wide declaration order.
func (e *Entry) Seq() int { return e.seq }

func (e *Entry) Symbol() Symbol { return e.sym.Load().sym }

func (e *Entry) Arity() int { return e.Symbol().Arity() }

// Poison returns the failure of a poisoned entry.
func (e *Entry) Poison() (*diag.Error, bool) {
	if p, ok := e.Symbol().(*Poisoned); ok {
		return p.Err, true
	}
	return nil, false
}
