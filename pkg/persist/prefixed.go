package persist

import "context"

type prefixed struct {
	inner  Storage
	prefix string
}

// Prefixed returns a Storage that stores every key under prefix in inner.
// It is a Watcher when inner is; otherwise Watch reports ErrWatchUnsupported.
func Prefixed(inner Storage, prefix string) Storage {
	return &prefixed{inner: inner, prefix: prefix}
}

func (p *prefixed) GetItem(ctx context.Context, key string) (string, bool, error) {
	return p.inner.GetItem(ctx, p.prefix+key)
}

func (p *prefixed) SetItem(ctx context.Context, key, value string) error {
	return p.inner.SetItem(ctx, p.prefix+key, value)
}

func (p *prefixed) RemoveItem(ctx context.Context, key string) error {
	return p.inner.RemoveItem(ctx, p.prefix+key)
}

func (p *prefixed) Watch(ctx context.Context, key string, fn func(string)) (func(), error) {
	w, ok := p.inner.(Watcher)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	return w.Watch(ctx, p.prefix+key, fn)
}

var _ Watcher = (*prefixed)(nil)
