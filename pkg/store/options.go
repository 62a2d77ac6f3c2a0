package store

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Option is a functional option for configuring stores and computed stores.
type Option func(*options)

type options struct {
	name     string
	logger   *slog.Logger
	observer Observer
	onError  []func(error)
}

// WithName sets the name used in logs, metrics and errors.
// By default a store is named "store-N".
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger used for errors nobody handled.
// If nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver attaches an instrumentation hook.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithErrorHandler registers an error side-channel handler at construction,
// so failures during initial computation or async init are not missed.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		if fn != nil {
			o.onError = append(o.onError, fn)
		}
	}
}

var idCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = fmt.Sprintf("store-%d", nextID())
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.observer == nil {
		o.observer = NopObserver{}
	}
	return o
}
