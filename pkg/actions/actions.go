// Package actions binds named operations to a store.
//
// Actions contain no propagation logic of their own. They read with Unwrap
// and write with Publish, so anything that offers those two methods can be
// bound, including persisted stores.
//
//	counter := actions.Create(0, func(unwrap func() int, publish func(int)) actions.Map {
//	    return actions.Map{
//	        "increment": func(...any) { publish(unwrap() + 1) },
//	        "reset":     func(...any) { publish(0) },
//	    }
//	})
//	counter.Actions.Call("increment")
//
// For common shapes prefer the typed wrappers Toggle, Counter and List.
package actions

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/vango-dev/vstore/pkg/store"
)

// ErrUnknownAction is returned by Map.Call for a name that is not bound.
var ErrUnknownAction = errors.New("actions: unknown action")

// Mutable is the read/write pair actions operate on.
type Mutable[T any] interface {
	Unwrap() T
	Publish(T)
}

// Factory builds a set of actions from accessors bound to one store.
type Factory[T, A any] func(unwrap func() T, publish func(T)) A

// Bind calls factory with s's Unwrap and Publish and returns its result.
func Bind[T, A any](s Mutable[T], factory Factory[T, A]) A {
	return factory(s.Unwrap, s.Publish)
}

// Map is a set of actions addressed by name.
type Map map[string]func(args ...any)

// Call runs the named action.
func (m Map) Call(name string, args ...any) error {
	fn, ok := m[name]
	if !ok || fn == nil {
		return fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	fn(args...)
	return nil
}

// Names returns the bound action names in sorted order.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bound is a store merged with the actions bound to it.
type Bound[T, A any] struct {
	*store.Store[T]

	// Actions is the value returned by the factory.
	Actions A
}

// Create creates a store holding initial and binds factory to it.
func Create[T, A any](initial T, factory Factory[T, A], opts ...store.Option) *Bound[T, A] {
	s := store.New(initial, opts...)
	return &Bound[T, A]{Store: s, Actions: Bind[T, A](s, factory)}
}

// CreateAsync is Create for a store with an asynchronous initial value.
// Actions are usable immediately; they see the zero value until the
// initializer settles.
func CreateAsync[T, A any](ctx context.Context, produce func(context.Context) (T, error), factory Factory[T, A], opts ...store.Option) *Bound[T, A] {
	s := store.NewAsync(ctx, produce, opts...)
	return &Bound[T, A]{Store: s, Actions: Bind[T, A](s, factory)}
}
