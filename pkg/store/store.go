package store

import (
	"context"
	"log/slog"
	"sync"
)

// State is the initialization state of a store.
type State int

const (
	Ready   State = iota // Value set, either at construction or by the initializer
	Pending              // Asynchronous initializer still running
	Failed               // Asynchronous initializer returned an error
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Pending:
		return "pending"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Unsubscribe removes a registration. Calling it more than once is a no-op.
type Unsubscribe func()

// Store is a reactive single-value container.
//
// The zero Store is not usable; create one with New, NewFunc or NewAsync.
type Store[T any] struct {
	name     string
	logger   *slog.Logger
	observer Observer

	// mu protects every field below. It is never held while calling
	// subscribers, error handlers or the observer.
	mu     sync.Mutex
	value  T
	seq    uint64 // incremented on every accepted value
	closed bool
	state  State
	err    error
	subs   registry[func(T)]
	errs   registry[func(error)]

	// done is closed when the store leaves the Pending state or is closed.
	done   chan struct{}
	cancel context.CancelFunc
}

// New creates a store holding initial.
func New[T any](initial T, opts ...Option) *Store[T] {
	s := newStore[T](applyOptions(opts))
	s.value = initial
	close(s.done)
	return s
}

// NewFunc creates a store whose initial value is the result of produce.
// produce is called exactly once, before NewFunc returns.
func NewFunc[T any](produce func() T, opts ...Option) *Store[T] {
	return New(produce(), opts...)
}

// NewAsync creates a store whose initial value is produced asynchronously.
//
// The store starts Pending, holding the zero value. produce runs on its own
// goroutine; when it returns a value and the store is still open, the value
// is applied exactly like Publish and the store becomes Ready. When it fails
// or panics, the value stays unset, the store becomes Failed and an
// *InitError is reported on the error side channel.
//
// Closing the store cancels the context passed to produce and discards
// whatever it returns.
func NewAsync[T any](ctx context.Context, produce func(context.Context) (T, error), opts ...Option) *Store[T] {
	s := newStore[T](applyOptions(opts))
	s.state = Pending

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.initialize(ctx, produce)
	return s
}

func newStore[T any](o options) *Store[T] {
	s := &Store[T]{
		name:     o.name,
		logger:   o.logger,
		observer: o.observer,
		done:     make(chan struct{}),
	}
	for _, fn := range o.onError {
		s.errs.add(fn)
	}
	return s
}

// initialize runs the asynchronous producer and settles the store.
func (s *Store[T]) initialize(ctx context.Context, produce func(context.Context) (T, error)) {
	defer s.cancel()

	value, err := runProducer(ctx, produce)
	if err != nil {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		initErr := &InitError{Store: s.name, Err: err}
		s.state = Failed
		s.err = initErr
		s.mu.Unlock()

		s.observer.StoreSettled(s.name, err)
		close(s.done)
		s.ReportError(initErr)
		return
	}

	s.accept(value, true)
}

func runProducer[T any](ctx context.Context, produce func(context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return produce(ctx)
}

// Name returns the store's name.
func (s *Store[T]) Name() string {
	return s.name
}

// Unwrap returns the most recently accepted value. It never blocks.
func (s *Store[T]) Unwrap() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Publish sets the value and synchronously notifies every current subscriber
// in registration order. It is a no-op on a closed store.
//
// A publish on a Pending store is accepted; the initializer's result, when it
// arrives, is applied on top of it like any later publish.
func (s *Store[T]) Publish(value T) {
	s.accept(value, false)
}

// Update publishes fn applied to the current value. The read and the publish
// are not atomic with respect to other goroutines publishing concurrently.
func (s *Store[T]) Update(fn func(T) T) {
	s.Publish(fn(s.Unwrap()))
}

// accept applies value and notifies subscribers. settle marks the end of the
// asynchronous initialization. It reports whether the value was accepted.
func (s *Store[T]) accept(value T, settle bool) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.value = value
	s.seq++
	if settle {
		s.state = Ready
	}
	subs := s.subs.snapshot()
	s.mu.Unlock()

	s.observer.StorePublished(s.name)
	if settle {
		// done closes before delivery so a subscriber may call Wait.
		s.observer.StoreSettled(s.name, nil)
		close(s.done)
	}
	for _, sub := range subs {
		s.deliver(sub.id, sub.fn, value)
	}
	return true
}

// deliver calls one subscriber, turning a panic into a SubscriberError.
func (s *Store[T]) deliver(id uint64, fn func(T), value T) {
	defer func() {
		if r := recover(); r != nil {
			s.observer.SubscriberFailed(s.name)
			s.ReportError(&SubscriberError{Store: s.name, Subscription: id, Value: r})
		}
	}()
	fn(value)
}

// Subscribe registers fn and calls it once with the current value before
// returning. fn is then called on every accepted publish until the returned
// Unsubscribe is called. A value accepted concurrently with Subscribe is
// delivered after the initial one, never before it.
//
// Subscribing to a closed store still delivers the current value once; no
// further deliveries follow since the store no longer accepts publishes.
func (s *Store[T]) Subscribe(fn func(T)) Unsubscribe {
	return s.subscribe(fn, true)
}

// watch registers fn for future publishes only. It backs Source.
func (s *Store[T]) watch(fn func()) Unsubscribe {
	return s.subscribe(func(T) { fn() }, false)
}

func (s *Store[T]) subscribe(fn func(T), immediate bool) Unsubscribe {
	if fn == nil {
		return func() {}
	}

	var id uint64
	if immediate {
		id = s.subscribeCurrent(fn)
	} else {
		s.mu.Lock()
		id = s.subs.add(fn)
		s.mu.Unlock()
		s.observer.StoreSubscribed(s.name)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			removed := s.subs.remove(id)
			s.mu.Unlock()
			if removed {
				s.observer.StoreUnsubscribed(s.name)
			}
		})
	}
}

// subscribeCurrent delivers the current value to fn and registers it. Values
// accepted while a delivery runs are delivered before fn joins the registry,
// so fn never misses a value and never sees an older value after a newer one.
func (s *Store[T]) subscribeCurrent(fn func(T)) uint64 {
	s.mu.Lock()
	id := s.subs.reserve()
	value, seq := s.value, s.seq
	s.mu.Unlock()

	s.observer.StoreSubscribed(s.name)
	s.deliver(id, fn, value)

	s.mu.Lock()
	for s.seq != seq {
		value, seq = s.value, s.seq
		s.mu.Unlock()
		s.deliver(id, fn, value)
		s.mu.Lock()
	}
	s.subs.put(id, fn)
	s.mu.Unlock()
	return id
}

// Subscribers returns the number of registered subscribers.
func (s *Store[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs.len()
}

// Close permanently stops the store from accepting publishes. It is
// idempotent. Subscribers stay registered and are not notified; a pending
// asynchronous initializer is cancelled and its result discarded.
func (s *Store[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.state == Pending {
		close(s.done)
	}
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.observer.StoreClosed(s.name)
}

// Closed reports whether Close has been called.
func (s *Store[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// State returns the initialization state.
func (s *Store[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the asynchronous initializer's failure, if any.
func (s *Store[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done returns a channel that is closed once the store is no longer Pending,
// either because the initializer settled or because the store was closed.
// For stores created with New or NewFunc it is already closed.
func (s *Store[T]) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the asynchronous initializer settles. It returns the
// initializer's *InitError, ErrClosed if the store was closed first, or the
// context's error.
func (s *Store[T]) Wait(ctx context.Context) error {
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Pending {
		return ErrClosed
	}
	return s.err
}

// OnError registers fn on the store's error side channel. Handlers receive
// subscriber panics, initializer failures and errors reported by layers built
// on the store (persistence, computed stores).
func (s *Store[T]) OnError(fn func(error)) Unsubscribe {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	id := s.errs.add(fn)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.errs.remove(id)
			s.mu.Unlock()
		})
	}
}

// ReportError delivers err to every error handler. With no handlers
// registered, err is logged.
func (s *Store[T]) ReportError(err error) {
	if err == nil {
		return
	}

	s.mu.Lock()
	handlers := s.errs.snapshot()
	s.mu.Unlock()

	if len(handlers) == 0 {
		s.logger.Error("vstore: unhandled store error", "store", s.name, "error", err)
		return
	}
	for _, h := range handlers {
		s.handle(h.fn, err)
	}
}

func (s *Store[T]) handle(fn func(error), err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("vstore: error handler panicked", "store", s.name, "error", err, "panic", r)
		}
	}()
	fn(err)
}
