// Package history resolves primed variables against past generations of
// values. "[x]" reads the current frame, "[x#]" the one before it, "[x##]"
// two generations back and so on.
package history

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wildfunctions/formula/pkg/expr"
)

// Frame holds the values of one generation.
type Frame map[string]decimal.NullDecimal

// Resolver keeps the current frame plus up to depth-1 past frames.
// It is safe for concurrent use.
type Resolver struct {
	mu     sync.RWMutex
	depth  int
	frames []Frame // frames[0] is the current generation
	known  map[string]bool
}

var _ expr.Resolver = (*Resolver)(nil)

// New returns a Resolver holding depth generations. A depth below one is
// treated as one.
func New(depth int) *Resolver {
	return &Resolver{
		depth: max(depth, 1),
		known: make(map[string]bool),
	}
}

// Depth returns the number of generations kept.
func (r *Resolver) Depth() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.depth
}

// Len returns the number of generations recorded so far, at most Depth.
func (r *Resolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.frames)
}

// Push records frame as the current generation. The oldest generation is
// dropped once Depth frames are held. The frame is copied.
func (r *Resolver) Push(frame Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := maps.Clone(frame)
	if f == nil {
		f = Frame{}
	}
	for k := range f {
		r.known[k] = true
	}
	r.frames = append([]Frame{f}, r.frames...)
	if len(r.frames) > r.depth {
		r.frames = r.frames[:r.depth]
	}
}

// Init sets the depth to steps, or when steps is not positive to the
// largest priming count among formulas. Entries may be formulas or the bare
// names an alias resolver forwards.
func (r *Resolver) Init(ctx context.Context, formulas []string, steps int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	depth := steps
	if depth <= 0 {
		depth = 1
		for _, f := range formulas {
			for _, ref := range expr.References(f) {
				_, marks := split(ref)
				depth = max(depth, marks+1)
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.depth = depth
	if len(r.frames) > depth {
		r.frames = r.frames[:depth]
	}
	return nil
}

// Resolve returns the value of key in the generation selected by its priming
// markers. A key seen in any frame but missing from the requested generation
// is null.
func (r *Resolver) Resolve(key string) (decimal.NullDecimal, error) {
	name, gen := split(key)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.known[name] {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s", expr.ErrNotFound, key)
	}
	if gen >= len(r.frames) {
		return decimal.NullDecimal{}, nil
	}
	return r.frames[gen][name], nil
}

func (r *Resolver) ContainsKey(key string) bool {
	name, _ := split(key)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.known[name]
}

func (r *Resolver) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.known))
}

func split(key string) (string, int) {
	name := strings.Trim(key, string(expr.PrimeMarker))
	return name, len(key) - len(name)
}
