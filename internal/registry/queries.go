package registry

import (
	"context"
	"reflect"

	"github.com/softglow/assetdb/internal/typekey"
)

// Queries are package-level generic functions because Go methods cannot
// introduce type parameters. Every query forces EnsureLoaded; a load
// error still leaves a sealed (possibly empty) table, so queries answer
// over whatever the load gathered and never fail; absence is the only
// negative result. Load errors surface through EnsureLoaded and Count.

// Exact returns the first payload whose concrete type is exactly T,
// located by binary search over T's type key. T must be a concrete type;
// an interface T is a configuration error and panics. Query interfaces
// with Any or All instead.
func Exact[T any](ctx context.Context, r *Registry) (T, bool) {
	var zero T
	if reflect.TypeFor[T]().Kind() == reflect.Interface {
		panic("registry: Exact requires a concrete type, got interface " + reflect.TypeFor[T]().String())
	}
	if err := r.EnsureLoaded(ctx); err != nil {
		return zero, false
	}

	lo, hi := r.table.Run(typekey.Of[T]())
	for i := lo; i < hi; i++ {
		// The key run can hold colliding or ancestor entries of other
		// types; the assertion is what decides.
		if v, ok := r.table.At(i).(T); ok {
			return v, true
		}
	}
	return zero, false
}

// Any returns the first payload assignable to T, which may be an
// interface. This is the scan path: payloads are tested in arrival
// order, O(n) over distinct payloads.
func Any[T any](ctx context.Context, r *Registry) (T, bool) {
	var zero T
	if err := r.EnsureLoaded(ctx); err != nil {
		return zero, false
	}

	for _, p := range r.table.Payloads() {
		if v, ok := p.(T); ok {
			return v, true
		}
	}
	return zero, false
}

// All returns every payload assignable to T. Payloads that declared T in
// their capability set come first, in key-run order; remaining assignable
// payloads follow in arrival order. Each payload appears once even when
// it owns several entries under T's key.
func All[T any](ctx context.Context, r *Registry) []T {
	if err := r.EnsureLoaded(ctx); err != nil {
		return nil
	}

	var out []T
	seen := make(map[any]struct{})

	lo, hi := r.table.Run(typekey.Of[T]())
	for i := lo; i < hi; i++ {
		p := r.table.At(i)
		v, ok := p.(T)
		if !ok {
			continue // key collision with an unrelated type
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, v)
	}

	// The capability run only covers payloads that declared T as an
	// ancestor; a full scan picks up assignable payloads that did not.
	for _, p := range r.table.Payloads() {
		v, ok := p.(T)
		if !ok {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, v)
	}
	return out
}
