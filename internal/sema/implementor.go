package sema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/ir"
	"ember/internal/symbols"
	"ember/internal/types"
)

// ImplMarker returns the registry key of a trait implementor, or "" for an
// inherent `impl T { ... }` and for targets that are not plain paths.
func ImplMarker(impl *ast.Implementor) string {
	if impl.Base == nil || impl.Target == nil || impl.Target.Name == "" || impl.Base.Name == "" {
		return ""
	}
	return MarkerName(impl.Imports.Qualify(impl.Target.Name), impl.Imports.Qualify(impl.Base.Name))
}

// FinalizeImplementor resolves the base trait and the target, then spawns a
// task for every member already declared under `<Target>::<fn>` and for
// every trait default method the implementor does not override. The marker
// is completed once the member set is known; member bodies are checked by
// their own tasks.
func (e *Engine) FinalizeImplementor(ctx context.Context, impl *ast.Implementor, spawn Spawner) error {
	marker := ImplMarker(impl)
	r := e.Resolver(impl.Imports)

	_, gctx, err := r.Generics(ctx, impl.Generics, nil)
	if err != nil {
		return e.failImplementor(impl, marker, err)
	}
	target, err := r.Resolve(ctx, impl.Target, gctx)
	if err != nil {
		return e.failImplementor(impl, marker, err)
	}
	tent := entryOf(target)
	if tent == nil || target.Kind == types.KindPlaceholder {
		return e.failImplementor(impl, marker, diag.Failf(diag.SemaNotAType, impl.Target.Span,
			"cannot implement methods for %s", impl.Target))
	}
	if symbols.IsTrait(tent.Symbol()) {
		return e.failImplementor(impl, marker, diag.Failf(diag.SemaNotAType, impl.Target.Span,
			"%s is a trait; implementors target structures", impl.Target))
	}

	var (
		trait   *types.Type
		members []*ast.Function
	)
	if impl.Base != nil {
		trait, err = r.Resolve(ctx, impl.Base, gctx)
		if err != nil {
			return e.failImplementor(impl, marker, err)
		}
		bent := entryOf(trait)
		if bent == nil || !symbols.IsTrait(bent.Symbol()) {
			return e.failImplementor(impl, marker, diag.Failf(diag.SemaNotAType, impl.Base.Span,
				"%s is not a trait", impl.Base))
		}
		_, sym, err := e.await(ctx, symbols.Request{
			Name:    bent.QualifiedName(),
			Stage:   symbols.StageFinalized,
			Span:    impl.Base.Span,
			Display: impl.Base.Name,
		})
		if err != nil {
			return e.failImplementor(impl, marker, err)
		}
		members = sym.(*symbols.FinalizedStructure).Decl.Members
	}

	owner := Owner{Self: target, Trait: trait}
	have := make(map[string]bool, len(impl.Members))
	var methods []string
	for _, m := range impl.Members {
		have[m.Name] = true
		if !e.declares(m) {
			// the name belongs to another declaration
			continue
		}
		ent, _, _ := e.reg.Lookup(m.QName)
		methods = append(methods, m.QName)
		spawn(m.QName, func(ctx context.Context) error {
			return e.FinalizeFunction(ctx, ent, owner)
		})
	}

	var problem *diag.Error
	if trait != nil {
		known := make(map[string]bool, len(members))
		var missing []string
		for _, tm := range members {
			known[tm.Name] = true
			if have[tm.Name] {
				continue
			}
			if tm.Bodiless() {
				missing = append(missing, tm.Name)
				continue
			}
			clone := tm.Clone(tent.QualifiedName() + "::" + tm.Name)
			ent, err := e.reg.Declare(clone.QName, &symbols.UnresolvedFunction{Decl: clone}, impl.Target.Span)
			if err != nil {
				var de *diag.Error
				if errors.As(err, &de) && problem == nil {
					problem = de
				}
				continue
			}
			if _, poisoned := ent.Poison(); poisoned {
				continue
			}
			methods = append(methods, clone.QName)
			spawn(clone.QName, func(ctx context.Context) error {
				return e.FinalizeFunction(ctx, ent, owner)
			})
		}
		for _, m := range impl.Members {
			if !known[m.Name] && problem == nil {
				problem = diag.Failf(diag.SemaUnresolvedSymbol, m.NameSpan,
					"%s is not a member of trait %s", m.Name, impl.Base.Name)
			}
		}
		if len(missing) > 0 && problem == nil {
			problem = diag.Failf(diag.SemaMissingTraitMethod, impl.Target.Span,
				"%s does not implement %s: missing %s", impl.Target, impl.Base, strings.Join(missing, ", "))
		}
	}

	if marker == "" {
		return nil
	}
	if problem != nil {
		return e.fail(marker, impl.Target.Span, problem)
	}
	done := &ir.Implementation{
		Name:    marker,
		Trait:   trait,
		Target:  target,
		Methods: methods,
		Span:    impl.Span,
	}
	if err := e.reg.Complete(marker, &symbols.Implementation{Impl: done}); err != nil {
		return fmt.Errorf("sema: %w", err)
	}
	return nil
}

// failImplementor records err on the marker and poisons every member that
// now has no task to finalize it. Inherent implementors have no marker; the
// first member carries the error instead.
func (e *Engine) failImplementor(impl *ast.Implementor, marker string, err error) error {
	var de *diag.Error
	if !errors.As(err, &de) {
		return err
	}
	var own []*ast.Function
	for _, m := range impl.Members {
		if e.declares(m) {
			own = append(own, m)
		}
	}
	out := err
	if marker != "" {
		out = e.fail(marker, impl.Target.Span, de)
	} else if len(own) > 0 {
		out = e.fail(own[0].QName, own[0].NameSpan, de)
		own = own[1:]
	}
	for _, m := range own {
		e.fail(m.QName, m.NameSpan, diag.Dependent(m.NameSpan, m.QName, de))
	}
	return out
}

// declares reports whether the registry entry of m.QName is still m's own
// unresolved declaration.
func (e *Engine) declares(m *ast.Function) bool {
	_, sym, ok := e.reg.Lookup(m.QName)
	if !ok {
		return false
	}
	uf, ok := sym.(*symbols.UnresolvedFunction)
	return ok && uf.Decl == m
}
