package persist

import (
	"context"
	"sync"
)

// MemoryStorage is an in-process Storage. It is the default backend and
// supports Watch, so several persisted stores sharing one MemoryStorage and
// key stay in sync.
type MemoryStorage struct {
	mu       sync.RWMutex
	items    map[string]string
	watchers map[string]map[uint64]func(string)
	nextID   uint64
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items:    make(map[string]string),
		watchers: make(map[string]map[uint64]func(string)),
	}
}

// GetItem returns the value stored under key.
func (m *MemoryStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	return v, ok, nil
}

// SetItem stores value and notifies the key's watchers synchronously.
func (m *MemoryStorage) SetItem(ctx context.Context, key, value string) error {
	m.mu.Lock()
	m.items[key] = value
	watchers := make([]func(string), 0, len(m.watchers[key]))
	for _, fn := range m.watchers[key] {
		watchers = append(watchers, fn)
	}
	m.mu.Unlock()

	for _, fn := range watchers {
		fn(value)
	}
	return nil
}

// RemoveItem deletes key.
func (m *MemoryStorage) RemoveItem(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// Watch calls fn after every SetItem on key.
func (m *MemoryStorage) Watch(ctx context.Context, key string, fn func(string)) (func(), error) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	if m.watchers[key] == nil {
		m.watchers[key] = make(map[uint64]func(string))
	}
	m.watchers[key][id] = fn
	m.mu.Unlock()

	stopped := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(stopped)
			m.mu.Lock()
			delete(m.watchers[key], id)
			if len(m.watchers[key]) == 0 {
				delete(m.watchers, key)
			}
			m.mu.Unlock()
		})
	}

	if done := ctx.Done(); done != nil {
		go func() {
			select {
			case <-done:
				stop()
			case <-stopped:
			}
		}()
	}
	return stop, nil
}

// Len returns the number of stored keys.
// This is for monitoring/testing purposes.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

var (
	_ Storage = (*MemoryStorage)(nil)
	_ Watcher = (*MemoryStorage)(nil)
)
