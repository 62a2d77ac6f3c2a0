package store

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Source is a store that a Computed can depend on. *Store[T] and
// *Computed[T] implement it, as does any type embedding *Store[T].
type Source interface {
	Name() string

	// watch registers fn to run after every accepted publish, without the
	// immediate delivery Subscribe performs.
	watch(fn func()) Unsubscribe
}

// Readable is a Source whose value can be read with Unwrap.
type Readable[T any] interface {
	Source
	Unwrap() T
}

// Computed is a read-only store derived from one or more parents.
//
// Its value is the combiner applied to the current values of all parents. It
// is computed eagerly at construction and again after every parent publish;
// each recomputation is published on the computed store whether or not the
// result changed.
type Computed[T any] struct {
	store   *Store[T]
	combine func() T

	// parents are detached on Close.
	mu      sync.Mutex
	parents []Unsubscribe

	// computing guards against a combiner re-entering its own recompute.
	computing atomic.Bool
}

// Derive creates a computed store from a combiner that reads its parents.
// parents lists every store combine depends on; combine must be pure and must
// not publish to any of them.
//
// Derive panics when parents is empty.
//
//	full := store.Derive([]store.Source{first, last}, func() string {
//	    return first.Unwrap() + " " + last.Unwrap()
//	})
func Derive[T any](parents []Source, combine func() T, opts ...Option) *Computed[T] {
	if len(parents) == 0 {
		panic("store: Derive requires at least one parent")
	}

	o := applyOptions(opts)
	c := &Computed[T]{
		store:   newStore[T](o),
		combine: combine,
	}
	close(c.store.done)

	value, err := c.evaluate()
	c.store.observer.StoreRecomputed(c.store.name, err)
	if err != nil {
		c.store.ReportError(err)
	} else {
		c.store.value = value
	}

	detach := make([]Unsubscribe, 0, len(parents))
	for _, p := range parents {
		detach = append(detach, p.watch(c.recompute))
	}
	c.mu.Lock()
	c.parents = detach
	c.mu.Unlock()
	return c
}

// Computed1 derives a store from a single parent.
func Computed1[A, T any](a Readable[A], combine func(A) T, opts ...Option) *Computed[T] {
	return Derive([]Source{a}, func() T {
		return combine(a.Unwrap())
	}, opts...)
}

// Computed2 derives a store from two parents.
func Computed2[A, B, T any](a Readable[A], b Readable[B], combine func(A, B) T, opts ...Option) *Computed[T] {
	return Derive([]Source{a, b}, func() T {
		return combine(a.Unwrap(), b.Unwrap())
	}, opts...)
}

// Computed3 derives a store from three parents.
func Computed3[A, B, C, T any](a Readable[A], b Readable[B], c Readable[C], combine func(A, B, C) T, opts ...Option) *Computed[T] {
	return Derive([]Source{a, b, c}, func() T {
		return combine(a.Unwrap(), b.Unwrap(), c.Unwrap())
	}, opts...)
}

// ComputedN derives a store from any number of parents of the same type.
// combine receives the parents' values in the order of parents.
func ComputedN[A, T any](parents []Readable[A], combine func([]A) T, opts ...Option) *Computed[T] {
	sources := make([]Source, len(parents))
	for i, p := range parents {
		sources[i] = p
	}
	return Derive(sources, func() T {
		values := make([]A, len(parents))
		for i, p := range parents {
			values[i] = p.Unwrap()
		}
		return combine(values)
	}, opts...)
}

// evaluate runs the combiner, converting a panic into a CombineError.
func (c *Computed[T]) evaluate() (value T, err error) {
	if !c.computing.CompareAndSwap(false, true) {
		return value, fmt.Errorf("store %q: %w", c.store.name, ErrCycle)
	}
	defer c.computing.Store(false)

	defer func() {
		if r := recover(); r != nil {
			err = &CombineError{Store: c.store.name, Value: r}
		}
	}()
	return c.combine(), nil
}

// recompute is the callback registered on every parent.
func (c *Computed[T]) recompute() {
	if c.store.Closed() {
		return
	}

	value, err := c.evaluate()
	c.store.observer.StoreRecomputed(c.store.name, err)
	if err != nil {
		c.store.ReportError(err)
		return
	}
	c.store.Publish(value)
}

// Name returns the computed store's name.
func (c *Computed[T]) Name() string {
	return c.store.Name()
}

// Unwrap returns the most recently computed value.
func (c *Computed[T]) Unwrap() T {
	return c.store.Unwrap()
}

// Subscribe registers fn, calls it once with the current value, and then on
// every recomputation.
func (c *Computed[T]) Subscribe(fn func(T)) Unsubscribe {
	return c.store.Subscribe(fn)
}

func (c *Computed[T]) watch(fn func()) Unsubscribe {
	return c.store.watch(fn)
}

// OnError registers fn on the computed store's error side channel, which
// receives combiner panics, cycles and subscriber panics.
func (c *Computed[T]) OnError(fn func(error)) Unsubscribe {
	return c.store.OnError(fn)
}

// Subscribers returns the number of registered subscribers.
func (c *Computed[T]) Subscribers() int {
	return c.store.Subscribers()
}

// Close detaches the computed store from all its parents and closes it.
// Parents are not affected. Close is idempotent.
func (c *Computed[T]) Close() {
	c.mu.Lock()
	parents := c.parents
	c.parents = nil
	c.mu.Unlock()

	for _, detach := range parents {
		detach()
	}
	c.store.Close()
}

// Closed reports whether Close has been called.
func (c *Computed[T]) Closed() bool {
	return c.store.Closed()
}

var (
	_ Readable[int] = (*Store[int])(nil)
	_ Readable[int] = (*Computed[int])(nil)
)
