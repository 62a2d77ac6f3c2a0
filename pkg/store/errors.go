package store

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Wait when the store was closed before its
// asynchronous initializer settled.
var ErrClosed = errors.New("store: closed")

// ErrCycle is reported when a combiner causes its own computed store to
// recompute while it is still being evaluated. The nested recomputation is
// dropped.
var ErrCycle = errors.New("store: computed dependency cycle")

// SubscriberError is reported on the error side channel when a subscriber
// panics during delivery.
type SubscriberError struct {
	// Store is the name of the store that was delivering.
	Store string

	// Subscription identifies the registration that panicked.
	Subscription uint64

	// Value is the value passed to panic.
	Value any
}

// Error implements the error interface.
func (e *SubscriberError) Error() string {
	return fmt.Sprintf("store %q: subscriber %d panicked: %v", e.Store, e.Subscription, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *SubscriberError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// CombineError is reported when a computed store's combiner panics.
// The computed value is left unchanged.
type CombineError struct {
	Store string
	Value any
}

// Error implements the error interface.
func (e *CombineError) Error() string {
	return fmt.Sprintf("store %q: combiner panicked: %v", e.Store, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *CombineError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// InitError wraps the failure of an asynchronous initializer.
type InitError struct {
	Store string
	Err   error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return fmt.Sprintf("store %q: initializer failed: %v", e.Store, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *InitError) Unwrap() error {
	return e.Err
}

// panicError converts a recovered panic value from an initializer.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
