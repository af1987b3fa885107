// Package store provides persistent value stores usable as formula
// resolvers. Backends register themselves by name:
//
//	s, err := store.Open("sqlite", "values.db")
//	defer s.Close()
//	_ = s.Set(ctx, "baseRate", decimal.NewNullDecimal(decimal.NewFromInt(4)))
//
// Stores hold the current generation only: a primed key ("x#") of a known
// name resolves to null.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wildfunctions/formula/pkg/expr"
)

// Store is a resolver whose values can be written.
type Store interface {
	expr.Resolver
	Set(ctx context.Context, key string, v decimal.NullDecimal) error
	Close() error
}

// backend is the storage a Store caches in front of.
type backend interface {
	get(ctx context.Context, name string) (v decimal.NullDecimal, ok bool, err error)
	put(ctx context.Context, name string, v decimal.NullDecimal) error
	names(ctx context.Context) ([]string, error)
	close() error
}

var (
	registryMu sync.RWMutex
	registry   = map[string]func(dsn string) (Store, error){}
)

// Register adds a store constructor to the registry.
func Register(name string, open func(dsn string) (Store, error)) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = open
}

// Open opens a store by backend name.
func Open(name, dsn string) (Store, error) {
	registryMu.RLock()
	open, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown store: %s (available: %v)", name, Names())
	}
	return open(dsn)
}

// Names returns all registered store names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// cached serves reads from the values primed by Init and falls through to
// the backend for everything else.
type cached struct {
	b     backend
	mu    sync.RWMutex
	cache map[string]decimal.NullDecimal
}

func newCached(b backend) *cached {
	return &cached{b: b, cache: make(map[string]decimal.NullDecimal)}
}

// Init loads every variable referenced by formulas into the cache. Names the
// backend does not hold are skipped.
func (c *cached) Init(ctx context.Context, formulas []string, _ int) error {
	loaded := make(map[string]decimal.NullDecimal)
	for _, f := range formulas {
		for _, ref := range expr.References(f) {
			name, _ := splitKey(ref)
			if _, done := loaded[name]; done {
				continue
			}
			v, ok, err := c.b.get(ctx, name)
			if err != nil {
				return fmt.Errorf("prime %s: %w", name, err)
			}
			if ok {
				loaded[name] = v
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range loaded {
		c.cache[k] = v
	}
	return nil
}

func (c *cached) lookup(ctx context.Context, name string) (decimal.NullDecimal, bool, error) {
	c.mu.RLock()
	v, ok := c.cache[name]
	c.mu.RUnlock()
	if ok {
		return v, true, nil
	}
	return c.b.get(ctx, name)
}

func (c *cached) Resolve(key string) (decimal.NullDecimal, error) {
	name, marks := splitKey(key)
	v, ok, err := c.lookup(context.Background(), name)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("resolve %s: %w", key, err)
	}
	if !ok {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s", expr.ErrNotFound, key)
	}
	if marks > 0 {
		return decimal.NullDecimal{}, nil
	}
	return v, nil
}

func (c *cached) ContainsKey(key string) bool {
	name, _ := splitKey(key)
	_, ok, err := c.lookup(context.Background(), name)
	return err == nil && ok
}

// Keys returns the stored names, or nil if the backend cannot list them.
func (c *cached) Keys() []string {
	names, err := c.b.names(context.Background())
	if err != nil {
		return nil
	}
	sort.Strings(names)
	return names
}

func (c *cached) Set(ctx context.Context, key string, v decimal.NullDecimal) error {
	name, marks := splitKey(key)
	if marks > 0 || name == "" {
		return fmt.Errorf("set %q: invalid key", key)
	}
	if err := c.b.put(ctx, name, v); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, primed := c.cache[name]; primed {
		c.cache[name] = v
	}
	return nil
}

func (c *cached) Close() error {
	return c.b.close()
}

func splitKey(key string) (string, int) {
	name := strings.Trim(key, string(expr.PrimeMarker))
	return name, len(key) - len(name)
}
