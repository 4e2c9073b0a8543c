package symbols

import (
	"context"
	"fmt"
	"sync"

	"ember/internal/diag"
	"ember/internal/source"
	"ember/internal/trace"
)

// Request asks for a name at a stage.
type Request struct {
	Name  string
	Stage Stage
	// Span of the reference, used when the sweep poisons the name.
	Span source.Span
	// Display is the name as written, for messages.
	Display string
	// Optional requests probe for a symbol; if only optional requests were
	// pending the sweep poisons the name with an informational diagnostic.
	Optional bool
}

type result struct {
	entry *Entry
	sym   Symbol
	err   error
}

type waiter struct {
	req Request
	ch  chan result
}

type Options struct {
	Tracer trace.Tracer
}

// Registry is the process-wide symbol table of one compilation.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Entry
	order   []*Entry
	waiters map[string][]*waiter
	pending int

	// task accounting for the sweep
	active  int
	blocked int
	sweeps  int

	sealed      bool
	sealCh      chan struct{}
	sealWaiters int
	operators   map[string][]*Entry

	tracer trace.Tracer
}

func NewRegistry(opts Options) *Registry {
	tr := opts.Tracer
	if tr == nil {
		tr = trace.Nop
	}
	return &Registry{
		entries:   make(map[string]*Entry),
		waiters:   make(map[string][]*waiter),
		sealCh:    make(chan struct{}),
		operators: make(map[string][]*Entry),
		tracer:    tr,
	}
}

// Declare inserts a new name. Declaring over a name that holds a live
// symbol is a DuplicateSymbol error. Declaring over a poisoned name is
// accepted once and leaves the poison in place; the returned entry is
// still poisoned and the caller must not finalize it.
func (r *Registry) Declare(name string, sym Symbol, span source.Span) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[name]; ok {
		if _, poisoned := e.Symbol().(*Poisoned); poisoned && !e.redeclared {
			e.redeclared = true
			return e, nil
		}
		d := diag.Errorf(diag.SemaDuplicateSymbol, span, "%s is already declared", name).
			WithNote(e.span, "previous declaration here")
		return e, diag.Wrap(d)
	}

	e := r.insertLocked(name, span, sym)
	if fn, ok := sym.(*UnresolvedFunction); ok && !r.sealed {
		if op, ok := fn.Decl.Attrs.Operator(); ok {
			r.operators[op] = append(r.operators[op], e)
		}
	}
	trace.Point(r.tracer, trace.ScopeNode, "declare", name)
	r.wakeLocked(e)
	return e, nil
}

func (r *Registry) insertLocked(name string, span source.Span, sym Symbol) *Entry {
	e := newEntry(name, span, len(r.order), sym)
	r.entries[name] = e
	r.order = append(r.order, e)
	return e
}

// Lookup is a non-suspending snapshot.
func (r *Registry) Lookup(name string) (*Entry, Symbol, bool) {
	r.mu.Lock()
	e, ok := r.entries[name]
	r.mu.Unlock()
	if !ok {
		return nil, nil, false
	}
	return e, e.Symbol(), true
}

// Await suspends until req.Name reaches req.Stage or is poisoned. A poisoned
// name returns its *diag.Error. Only goroutines counted by BeginTask should
// call Await, otherwise the sweep cannot tell when everybody is stuck.
func (r *Registry) Await(ctx context.Context, req Request) (*Entry, Symbol, error) {
	if req.Stage == StageNone {
		req.Stage = StageDeclared
	}

	r.mu.Lock()
	if e, ok := r.entries[req.Name]; ok {
		if res, done := ready(e, req.Stage); done {
			r.mu.Unlock()
			return res.entry, res.sym, res.err
		}
	}
	w := &waiter{req: req, ch: make(chan result, 1)}
	r.waiters[req.Name] = append(r.waiters[req.Name], w)
	r.pending++
	r.blocked++
	r.maybeSweepLocked()
	r.mu.Unlock()

	select {
	case res := <-w.ch:
		return res.entry, res.sym, res.err
	case <-ctx.Done():
	}

	r.mu.Lock()
	if r.dropWaiterLocked(req.Name, w) {
		r.pending--
		r.blocked--
		r.mu.Unlock()
		return nil, nil, ctx.Err()
	}
	r.mu.Unlock()
	// разбудили одновременно с отменой
	res := <-w.ch
	return res.entry, res.sym, res.err
}

func ready(e *Entry, want Stage) (result, bool) {
	sym := e.Symbol()
	if p, ok := sym.(*Poisoned); ok {
		return result{entry: e, sym: sym, err: p.Err}, true
	}
	if sym.Stage() >= want {
		return result{entry: e, sym: sym}, true
	}
	return result{}, false
}

func (r *Registry) dropWaiterLocked(name string, w *waiter) bool {
	ws := r.waiters[name]
	for i, cur := range ws {
		if cur == w {
			ws = append(ws[:i], ws[i+1:]...)
			if len(ws) == 0 {
				delete(r.waiters, name)
			} else {
				r.waiters[name] = ws
			}
			return true
		}
	}
	return false
}

// wakeLocked resumes every request on e satisfied by its current symbol.
func (r *Registry) wakeLocked(e *Entry) {
	ws := r.waiters[e.name]
	if len(ws) == 0 {
		return
	}
	kept := ws[:0]
	for _, w := range ws {
		res, done := ready(e, w.req.Stage)
		if !done {
			kept = append(kept, w)
			continue
		}
		w.ch <- res
		r.pending--
		r.blocked--
	}
	if len(kept) == 0 {
		delete(r.waiters, e.name)
	} else {
		r.waiters[e.name] = kept
	}
}

// Publish stores the codeless signature of a declared function.
func (r *Registry) Publish(name string, sig *FunctionSignature) error {
	return r.transition(name, sig, StageSignature)
}

// Complete stores the finalized form of a declared symbol.
func (r *Registry) Complete(name string, sym Symbol) error {
	return r.transition(name, sym, StageFinalized)
}

func (r *Registry) transition(name string, sym Symbol, want Stage) error {
	if sym == nil || sym.Stage() != want {
		return fmt.Errorf("symbols: %s: expected a %s symbol", name, want)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("symbols: %s is not declared", name)
	}
	cur := e.Symbol()
	if p, ok := cur.(*Poisoned); ok {
		return p.Err
	}
	if cur.Stage() >= want {
		return fmt.Errorf("symbols: %s is already %s", name, cur.Stage())
	}
	e.store(sym)
	r.wakeLocked(e)
	return nil
}

// Poison permanently fails name, creating the entry if needed, and wakes
// every pending request. The first poison wins and finalized names are
// never poisoned; both cases return false.
func (r *Registry) Poison(name string, err *diag.Error) bool {
	if err == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.poisonLocked(name, err)
}

func (r *Registry) poisonLocked(name string, err *diag.Error) bool {
	e, ok := r.entries[name]
	if !ok {
		e = r.insertLocked(name, err.Diag.Primary, &Poisoned{Err: err})
	} else {
		cur := e.Symbol()
		if _, poisoned := cur.(*Poisoned); poisoned || cur.Stage() == StageFinalized {
			return false
		}
		e.store(&Poisoned{Err: err})
	}
	trace.Point(r.tracer, trace.ScopeModule, "poison", name+": "+err.Diag.Code.ID())
	r.wakeLocked(e)
	return true
}

// Entries returns every entry in declaration order.
func (r *Registry) Entries() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Entry(nil), r.order...)
}

// Operators returns the functions declared with `#[operator(op)]` in
// declaration order. It waits for the declaration seal.
func (r *Registry) Operators(ctx context.Context, op string) ([]*Entry, error) {
	if err := r.AwaitSeal(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Entry(nil), r.operators[op]...), nil
}

