package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
)

func init() {
	Register("memory", func(string) (Store, error) { return NewMemory(nil), nil })
}

type memoryBackend struct {
	mu     sync.RWMutex
	values map[string]decimal.NullDecimal
}

// NewMemory returns a Store over a copy of values.
func NewMemory(values map[string]decimal.NullDecimal) Store {
	m := maps.Clone(values)
	if m == nil {
		m = make(map[string]decimal.NullDecimal)
	}
	return newCached(&memoryBackend{values: m})
}

func (m *memoryBackend) get(_ context.Context, name string) (decimal.NullDecimal, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[name]
	return v, ok, nil
}

func (m *memoryBackend) put(_ context.Context, name string, v decimal.NullDecimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = v
	return nil
}

func (m *memoryBackend) names(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Collect(maps.Keys(m.values)), nil
}

func (m *memoryBackend) close() error { return nil }
