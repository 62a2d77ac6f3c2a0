package persist

import (
	"context"
	"net/url"
	"sync"
)

// QueryStorage keeps items as URL query parameters.
// After every change OnChange receives the re-encoded query, which callers
// use to redirect or rewrite the location the state lives in.
type QueryStorage struct {
	mu       sync.Mutex
	values   url.Values
	onChange func(encoded string)
}

// NewQueryStorage parses rawQuery (without the leading '?').
func NewQueryStorage(rawQuery string, onChange func(encoded string)) (*QueryStorage, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, err
	}
	return &QueryStorage{values: values, onChange: onChange}, nil
}

// GetItem returns the first value of the parameter key.
func (q *QueryStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	vs, ok := q.values[key]
	if !ok || len(vs) == 0 {
		return "", false, nil
	}
	return vs[0], true, nil
}

// SetItem replaces the parameter key.
func (q *QueryStorage) SetItem(ctx context.Context, key, value string) error {
	q.mu.Lock()
	q.values.Set(key, value)
	encoded := q.values.Encode()
	q.mu.Unlock()

	q.changed(encoded)
	return nil
}

// RemoveItem deletes the parameter key.
func (q *QueryStorage) RemoveItem(ctx context.Context, key string) error {
	q.mu.Lock()
	q.values.Del(key)
	encoded := q.values.Encode()
	q.mu.Unlock()

	q.changed(encoded)
	return nil
}

// Encode returns the current query string.
func (q *QueryStorage) Encode() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.values.Encode()
}

func (q *QueryStorage) changed(encoded string) {
	if q.onChange != nil {
		q.onChange(encoded)
	}
}

var _ Storage = (*QueryStorage)(nil)
