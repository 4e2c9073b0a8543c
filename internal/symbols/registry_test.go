package symbols

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/ir"
	"ember/internal/source"
)

func fnDecl(name string, attrs ...ast.Attribute) *UnresolvedFunction {
	return &UnresolvedFunction{Decl: &ast.Function{Name: name, QName: name, Attrs: attrs}}
}

func sigOf(name string) *FunctionSignature {
	return &FunctionSignature{Sig: &ir.Signature{Name: name}}
}

func finalOf(name string) *FinalizedFunction {
	return &FinalizedFunction{Fn: &ir.Function{Signature: &ir.Signature{Name: name}, Body: &ir.Body{Returns: true}}}
}

func withTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// runTasks starts each fn as a registry task and waits for all of them.
func runTasks(t *testing.T, r *Registry, fns ...func() error) []error {
	t.Helper()
	errs := make([]error, len(fns))
	var wg sync.WaitGroup
	for i, fn := range fns {
		done := r.BeginTask()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer done()
			errs[i] = fn()
		}()
	}
	wg.Wait()
	return errs
}

func finalizeVia(ctx context.Context, r *Registry, self, other string) func() error {
	return func() error {
		if err := r.Publish(self, sigOf(self)); err != nil {
			return err
		}
		if _, _, err := r.Await(ctx, Request{Name: other, Stage: StageSignature}); err != nil {
			return err
		}
		return r.Complete(self, finalOf(self))
	}
}

func TestMutualRecursionEitherOrder(t *testing.T) {
	for _, order := range [][2]string{{"m::a", "m::b"}, {"m::b", "m::a"}} {
		ctx := withTimeout(t)
		r := NewRegistry(Options{})
		// второй символ объявляется только после старта задачи первого
		if _, err := r.Declare(order[0], fnDecl(order[0]), source.Span{}); err != nil {
			t.Fatalf("declare: %v", err)
		}
		errs := runTasks(t, r,
			finalizeVia(ctx, r, order[0], order[1]),
			func() error {
				if _, err := r.Declare(order[1], fnDecl(order[1]), source.Span{}); err != nil {
					return err
				}
				return finalizeVia(ctx, r, order[1], order[0])()
			},
		)
		for _, err := range errs {
			if err != nil {
				t.Fatalf("order %v: %v", order, err)
			}
		}
		for _, name := range order {
			_, sym, _ := r.Lookup(name)
			if sym.Stage() != StageFinalized {
				t.Fatalf("%s not finalized: %T", name, sym)
			}
		}
	}
}

func TestQuiescenceSweepsUnknownNames(t *testing.T) {
	ctx := withTimeout(t)
	r := NewRegistry(Options{})
	r.Seal()
	span := source.Span{File: 1, Start: 4, End: 11}
	errs := runTasks(t, r, func() error {
		_, _, err := r.Await(ctx, Request{Name: "m::Missing", Stage: StageDeclared, Span: span, Display: "Missing"})
		return err
	})
	if !diag.IsCode(errs[0], diag.SemaUnresolvedSymbol) {
		t.Fatalf("expected UnknownSymbol, got %v", errs[0])
	}
	e, sym, ok := r.Lookup("m::Missing")
	if !ok {
		t.Fatalf("missing name not poisoned")
	}
	if _, poisoned := sym.(*Poisoned); !poisoned || e.Span() != span {
		t.Fatalf("unexpected entry %T at %v", sym, e.Span())
	}
	if st := r.Stats(); st.Pending != 0 || st.Sweeps == 0 || st.Poisoned != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestSweepOptionalIsInformational(t *testing.T) {
	ctx := withTimeout(t)
	r := NewRegistry(Options{})
	r.Seal()
	errs := runTasks(t, r, func() error {
		_, _, err := r.Await(ctx, Request{Name: "m::Int::impl::m::Show", Stage: StageFinalized, Optional: true})
		return err
	})
	var de *diag.Error
	if !errors.As(errs[0], &de) || de.Diag.Severity != diag.SevInfo {
		t.Fatalf("expected informational poison, got %v", errs[0])
	}
}

func TestSweepPrefersUndeclaredNames(t *testing.T) {
	ctx := withTimeout(t)
	r := NewRegistry(Options{})
	r.Seal()
	if _, err := r.Declare("m::stuck", fnDecl("m::stuck"), source.Span{}); err != nil {
		t.Fatal(err)
	}
	errs := runTasks(t, r,
		func() error {
			// m::stuck finalizes only after m::Ghost, which never appears
			_, _, err := r.Await(ctx, Request{Name: "m::Ghost"})
			if err != nil {
				r.Poison("m::stuck", diag.Dependent(source.Span{}, "m::stuck", diag.AsError(err, source.Span{})))
			}
			return err
		},
		func() error {
			_, _, err := r.Await(ctx, Request{Name: "m::stuck", Stage: StageFinalized})
			return err
		},
	)
	if !diag.IsCode(errs[0], diag.SemaUnresolvedSymbol) {
		t.Fatalf("ghost: %v", errs[0])
	}
	if !diag.IsCode(errs[1], diag.SemaPoisonedDependency) {
		t.Fatalf("stuck should carry the dependency poison, got %v", errs[1])
	}
}

func TestCycleIsPoisonedWhenNothingElseMoves(t *testing.T) {
	ctx := withTimeout(t)
	r := NewRegistry(Options{})
	r.Seal()
	for _, n := range []string{"m::x", "m::y"} {
		if _, err := r.Declare(n, fnDecl(n), source.Span{}); err != nil {
			t.Fatal(err)
		}
	}
	await := func(name string) func() error {
		return func() error {
			_, _, err := r.Await(ctx, Request{Name: name, Stage: StageFinalized})
			return err
		}
	}
	errs := runTasks(t, r, await("m::x"), await("m::y"))
	for _, err := range errs {
		if !diag.IsCode(err, diag.SemaCyclicDependency) {
			t.Fatalf("expected cyclic poison, got %v", err)
		}
	}
}

func TestDuplicateAndPoisonRedeclaration(t *testing.T) {
	r := NewRegistry(Options{})
	if _, err := r.Declare("m::f", fnDecl("m::f"), source.Span{}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Declare("m::f", fnDecl("m::f"), source.Span{}); !diag.IsCode(err, diag.SemaDuplicateSymbol) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	bad := diag.Failf(diag.SynMalformedDeclaration, source.Span{}, "malformed")
	if !r.Poison("m::g", bad) {
		t.Fatalf("first poison must win")
	}
	if r.Poison("m::g", diag.Failf(diag.SemaTypeMismatch, source.Span{}, "later")) {
		t.Fatalf("second poison must be a no-op")
	}
	e, err := r.Declare("m::g", fnDecl("m::g"), source.Span{})
	if err != nil {
		t.Fatalf("declare over poison: %v", err)
	}
	if perr, ok := e.Poison(); !ok || perr != bad {
		t.Fatalf("poison replaced: %v", e.Symbol())
	}
	if _, err := r.Declare("m::g", fnDecl("m::g"), source.Span{}); !diag.IsCode(err, diag.SemaDuplicateSymbol) {
		t.Fatalf("second declaration over poison must be duplicate, got %v", err)
	}
}

func TestPoisonIgnoresFinalized(t *testing.T) {
	r := NewRegistry(Options{})
	if _, err := r.Declare("m::f", fnDecl("m::f"), source.Span{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Publish("m::f", sigOf("m::f")); err != nil {
		t.Fatal(err)
	}
	if err := r.Complete("m::f", finalOf("m::f")); err != nil {
		t.Fatal(err)
	}
	if r.Poison("m::f", diag.Failf(diag.SemaTypeMismatch, source.Span{}, "late")) {
		t.Fatalf("finalized symbol poisoned")
	}
	if err := r.Complete("m::f", finalOf("m::f")); err == nil {
		t.Fatalf("second completion accepted")
	}
}

func TestAwaitCancelRemovesRequest(t *testing.T) {
	r := NewRegistry(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, _, err := r.Await(ctx, Request{Name: "m::later"})
		errc <- err
	}()
	deadline := time.Now().Add(5 * time.Second)
	for r.Stats().Pending == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if st := r.Stats(); st.Pending != 0 || st.Blocked != 0 {
		t.Fatalf("request leaked: %+v", st)
	}
}

func TestOperatorsWaitForSeal(t *testing.T) {
	ctx := withTimeout(t)
	r := NewRegistry(Options{})
	op := ast.Attribute{Name: "operator", Arg: "{}+{}", HasArg: true}
	// токен драйвера держит реестр от авто-запечатывания
	driverDone := r.BeginTask()
	taskDone := r.BeginTask()
	got := make(chan []*Entry, 1)
	go func() {
		defer taskDone()
		entries, err := r.Operators(ctx, "{}+{}")
		if err != nil {
			t.Error(err)
		}
		got <- entries
	}()
	for _, n := range []string{"m::add_int", "m::add_str"} {
		if _, err := r.Declare(n, fnDecl(n, op), source.Span{}); err != nil {
			t.Fatal(err)
		}
	}
	r.Seal()
	driverDone()
	entries := <-got
	if len(entries) != 2 || entries[0].QualifiedName() != "m::add_int" {
		t.Fatalf("unexpected operator set %v", entries)
	}
}
