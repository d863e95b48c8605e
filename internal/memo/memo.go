// Package memo provides read-once memoization for artifacts that never change
// within a process: parsed tables and model files. There is no eviction.
package memo

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Outcome labels a lookup for a Recorder.
type Outcome string

const (
	Hit   Outcome = "hit"
	Miss  Outcome = "miss"
	Error Outcome = "error"
)

// Recorder observes lookups. metrics.Collectors implements it.
type Recorder interface {
	ObserveLookup(cache string, outcome Outcome)
}

// LoadFunc produces the value for a key on first access.
type LoadFunc[T any] func(ctx context.Context, key string) (T, error)

// Memo caches successful loads by key. Concurrent first accesses for the same
// key share a single load. Failed loads are not cached.
type Memo[T any] struct {
	name string
	load LoadFunc[T]
	rec  Recorder

	mu     sync.RWMutex
	values map[string]T
	group  singleflight.Group
}

// New returns a Memo named name (used as the metrics label). rec may be nil.
func New[T any](name string, load LoadFunc[T], rec Recorder) *Memo[T] {
	return &Memo[T]{name: name, load: load, rec: rec, values: make(map[string]T)}
}

// Get returns the cached value for key, loading it on first access.
func (m *Memo[T]) Get(ctx context.Context, key string) (T, error) {
	m.mu.RLock()
	v, ok := m.values[key]
	m.mu.RUnlock()
	if ok {
		m.observe(Hit)
		return v, nil
	}
	res, err, _ := m.group.Do(key, func() (any, error) {
		m.mu.RLock()
		v, ok := m.values[key]
		m.mu.RUnlock()
		if ok {
			return v, nil
		}
		v, err := m.load(ctx, key)
		if err != nil {
			return v, err
		}
		m.mu.Lock()
		m.values[key] = v
		m.mu.Unlock()
		return v, nil
	})
	if err != nil {
		m.observe(Error)
		var zero T
		return zero, err
	}
	m.observe(Miss)
	return res.(T), nil
}

// Cached reports whether key has a stored value.
func (m *Memo[T]) Cached(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.values[key]
	return ok
}

// Len returns the number of stored values.
func (m *Memo[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

func (m *Memo[T]) observe(o Outcome) {
	if m.rec != nil {
		m.rec.ObserveLookup(m.name, o)
	}
}
