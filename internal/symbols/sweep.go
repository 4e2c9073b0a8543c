package symbols

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ember/internal/diag"
	"ember/internal/trace"
)

// BeginTask registers a running task. Call it before starting the goroutine
// and call done when the task returns.
func (r *Registry) BeginTask() (done func()) {
	r.mu.Lock()
	r.active++
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			r.active--
			r.maybeSweepLocked()
			r.mu.Unlock()
		})
	}
}

// Seal marks the end of top-level declarations and releases AwaitSeal.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealLocked()
}

func (r *Registry) sealLocked() bool {
	if r.sealed {
		return false
	}
	r.sealed = true
	close(r.sealCh)
	woke := r.sealWaiters > 0
	r.blocked -= r.sealWaiters
	r.sealWaiters = 0
	trace.Point(r.tracer, trace.ScopePass, "seal", fmt.Sprintf("%d symbols", len(r.order)))
	return woke
}

// AwaitSeal blocks until Seal.
func (r *Registry) AwaitSeal(ctx context.Context) error {
	r.mu.Lock()
	if r.sealed {
		r.mu.Unlock()
		return nil
	}
	r.sealWaiters++
	r.blocked++
	ch := r.sealCh
	r.maybeSweepLocked()
	r.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sealed {
		r.sealWaiters--
		r.blocked--
		return ctx.Err()
	}
	return nil
}

// Sweep fails every pending request now. Drivers call it after all tasks
// finished; during a compilation the registry sweeps by itself when every
// task is blocked.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked()
}

func (r *Registry) maybeSweepLocked() {
	if r.active > 0 && r.blocked >= r.active {
		r.sweepLocked()
	}
}

// sweepLocked makes progress in the cheapest way available: seal if
// nobody did, else poison names nobody declared, else poison declared
// names that can no longer advance.
func (r *Registry) sweepLocked() int {
	if r.sealLocked() {
		return 0
	}
	if len(r.waiters) == 0 {
		return 0
	}

	names := make([]string, 0, len(r.waiters))
	undeclared := false
	for name := range r.waiters {
		names = append(names, name)
		if _, ok := r.entries[name]; !ok {
			undeclared = true
		}
	}
	sort.Strings(names)

	poisoned := 0
	for _, name := range names {
		ws := r.waiters[name]
		if len(ws) == 0 {
			continue
		}
		e, declared := r.entries[name]
		if undeclared && declared {
			continue
		}
		req := firstRequired(ws)
		display := req.Display
		if display == "" {
			display = name
		}
		var d diag.Diagnostic
		if declared {
			d = diag.Errorf(diag.SemaCyclicDependency, req.Span, "%s can never reach the %s stage", display, req.Stage).
				WithNote(e.span, "declared here")
		} else {
			d = diag.Errorf(diag.SemaUnresolvedSymbol, req.Span, "unknown symbol %s", display)
		}
		if req.Optional {
			d.Severity = diag.SevInfo
		}
		if r.poisonLocked(name, diag.Wrap(d)) {
			poisoned++
		}
	}
	r.sweeps++
	trace.Point(r.tracer, trace.ScopePass, "sweep", fmt.Sprintf("poisoned %d", poisoned))
	return poisoned
}

// firstRequired prefers a non-optional request.
func firstRequired(ws []*waiter) Request {
	for _, w := range ws {
		if !w.req.Optional {
			return w.req
		}
	}
	return ws[0].req
}
