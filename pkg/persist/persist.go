package persist

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vstore/pkg/store"
)

// DefaultKey is the storage key used when WithKey is not given.
const DefaultKey = "store"

const tracerName = "github.com/vango-dev/vstore/pkg/persist"

// Option configures persistence.
type Option func(*config)

type config struct {
	key     string
	storage Storage
	tracer  trace.Tracer
}

// WithKey sets the storage key. Default: "store".
func WithKey(key string) Option {
	return func(c *config) {
		c.key = key
	}
}

// WithStorage sets the backend. Default: a fresh MemoryStorage.
func WithStorage(s Storage) Option {
	return func(c *config) {
		c.storage = s
	}
}

// WithTracer sets the tracer used for hydrate and save spans.
// Default: the tracer from the global OpenTelemetry provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *config) {
		c.tracer = t
	}
}

// Persisted is a store whose accepted publishes are written to a Storage.
//
// It embeds the wrapped store, so it can be read, subscribed to, used as a
// Computed parent and bound to actions. Publish is overridden to save after
// every publish the store accepts.
type Persisted[T any] struct {
	*store.Store[T]

	key     string
	storage Storage
	codec   Codec[T]
	tracer  trace.Tracer

	// saveCtx carries the values of the context given to Persist, without
	// its cancellation, for saves triggered by Publish.
	saveCtx context.Context

	mu      sync.Mutex
	last    string
	hasLast bool
	stop    func()
}

// Persist wraps s with JSON persistence. See PersistCodec.
func Persist[T any](ctx context.Context, s *store.Store[T], opts ...Option) (*Persisted[T], error) {
	return PersistCodec(ctx, s, JSON[T](), opts...)
}

// PersistCodec wraps s so that every accepted publish is encoded with codec
// and written to storage.
//
// At construction the stored value, if any, is decoded and published once on
// s. When the backend implements Watcher, changes made by other writers are
// decoded and published on s as well; those publishes are not written back.
//
// ctx bounds the initial read and the watch. Failures after construction go
// to the store's error side channel as *Error.
func PersistCodec[T any](ctx context.Context, s *store.Store[T], codec Codec[T], opts ...Option) (*Persisted[T], error) {
	cfg := config{key: DefaultKey}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.storage == nil {
		cfg.storage = NewMemoryStorage()
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer(tracerName)
	}

	p := &Persisted[T]{
		Store:   s,
		key:     cfg.key,
		storage: cfg.storage,
		codec:   codec,
		tracer:  cfg.tracer,
		saveCtx: context.WithoutCancel(ctx),
	}

	if err := p.hydrate(ctx); err != nil {
		return nil, err
	}

	if w, ok := p.storage.(Watcher); ok {
		stop, err := w.Watch(ctx, p.key, p.external)
		switch {
		case errors.Is(err, ErrWatchUnsupported):
		case err != nil:
			return nil, &Error{Op: OpWatch, Key: p.key, Err: err}
		default:
			p.stop = stop
		}
	}
	return p, nil
}

func (p *Persisted[T]) spanAttrs() trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("vstore.key", p.key),
		attribute.String("vstore.store", p.Name()),
	)
}

// hydrate seeds the store from storage.
func (p *Persisted[T]) hydrate(ctx context.Context) (err error) {
	ctx, span := p.tracer.Start(ctx, "vstore.persist.hydrate", p.spanAttrs())
	defer func() {
		endSpan(span, err)
	}()

	raw, ok, err := p.storage.GetItem(ctx, p.key)
	if err != nil {
		return &Error{Op: OpHydrate, Key: p.key, Err: err}
	}
	span.SetAttributes(attribute.Bool("vstore.found", ok))
	if !ok {
		return nil
	}

	value, err := p.codec.Decode(raw)
	if err != nil {
		return &Error{Op: OpDecode, Key: p.key, Err: err}
	}
	p.remember(raw)
	p.Store.Publish(value)
	return nil
}

// Publish publishes value on the store and, if the store accepted it, writes
// it to storage.
func (p *Persisted[T]) Publish(value T) {
	if p.Closed() {
		return
	}
	p.Store.Publish(value)
	if err := p.save(value); err != nil {
		p.ReportError(err)
	}
}

// Update publishes fn applied to the current value and saves the result.
func (p *Persisted[T]) Update(fn func(T) T) {
	p.Publish(fn(p.Unwrap()))
}

func (p *Persisted[T]) save(value T) (err error) {
	ctx, span := p.tracer.Start(p.saveCtx, "vstore.persist.save", p.spanAttrs())
	defer func() {
		endSpan(span, err)
	}()

	raw, err := p.codec.Encode(value)
	if err != nil {
		return &Error{Op: OpEncode, Key: p.key, Err: err}
	}
	p.remember(raw)
	if err := p.storage.SetItem(ctx, p.key, raw); err != nil {
		return &Error{Op: OpSave, Key: p.key, Err: err}
	}
	return nil
}

// external handles a change reported by the backend's watcher.
func (p *Persisted[T]) external(raw string) {
	p.mu.Lock()
	if p.hasLast && p.last == raw {
		p.mu.Unlock()
		return
	}
	p.last, p.hasLast = raw, true
	p.mu.Unlock()

	value, err := p.codec.Decode(raw)
	if err != nil {
		p.ReportError(&Error{Op: OpDecode, Key: p.key, Err: err})
		return
	}
	p.Store.Publish(value)
}

// remember records the payload last read or written so the watcher echo of
// our own write is ignored.
func (p *Persisted[T]) remember(raw string) {
	p.mu.Lock()
	p.last, p.hasLast = raw, true
	p.mu.Unlock()
}

// Key returns the storage key.
func (p *Persisted[T]) Key() string {
	return p.key
}

// Remove deletes the stored value. The store's current value is unchanged.
func (p *Persisted[T]) Remove(ctx context.Context) error {
	if err := p.storage.RemoveItem(ctx, p.key); err != nil {
		return &Error{Op: OpRemove, Key: p.key, Err: err}
	}
	p.mu.Lock()
	p.last, p.hasLast = "", false
	p.mu.Unlock()
	return nil
}

// Close stops watching the backend and closes the store. It is idempotent.
func (p *Persisted[T]) Close() {
	p.mu.Lock()
	stop := p.stop
	p.stop = nil
	p.mu.Unlock()

	if stop != nil {
		stop()
	}
	p.Store.Close()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
