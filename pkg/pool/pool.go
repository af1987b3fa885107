// Package pool generates random formula trees over a set of variable names.
// Generators are used to exercise the parser and printer with inputs no one
// wrote by hand.
package pool

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/wildfunctions/formula/pkg/expr"
)

// Pool provides random building blocks for constructing expression trees.
type Pool interface {
	Name() string
	RandomLeaf(rng *rand.Rand, vars []string) expr.ExprNode
	RandomBinary(rng *rand.Rand) expr.BinaryOp
	RandomTree(rng *rand.Rand, vars []string, maxDepth int) expr.ExprNode
}

var registry = map[string]func() Pool{}

// Register adds a pool constructor to the registry.
func Register(name string, constructor func() Pool) {
	registry[name] = constructor
}

// Get returns a pool by name.
func Get(name string) (Pool, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown pool: %s (available: %v)", name, Names())
	}
	return ctor(), nil
}

// Names returns all registered pool names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// randomTree is a shared helper for building random trees.
func randomTree(p Pool, rng *rand.Rand, vars []string, maxDepth int) expr.ExprNode {
	if maxDepth <= 1 {
		return p.RandomLeaf(rng, vars)
	}
	// Bias toward leaves at shallow depths to keep trees small
	r := rng.Float64()
	switch {
	case r < 0.4:
		return p.RandomLeaf(rng, vars)
	case r < 0.55:
		return expr.Neg(randomTree(p, rng, vars, maxDepth-1))
	default:
		return expr.Binary(
			p.RandomBinary(rng),
			randomTree(p, rng, vars, maxDepth-1),
			randomTree(p, rng, vars, maxDepth-1),
		)
	}
}

// randomVar picks a variable, optionally primed. It returns nil when vars is
// empty.
func randomVar(rng *rand.Rand, vars []string, primeRate float64) expr.ExprNode {
	if len(vars) == 0 {
		return nil
	}
	name := vars[rng.Intn(len(vars))]
	if rng.Float64() < primeRate {
		name += string(expr.PrimeMarker)
	}
	return expr.Var(name)
}
