package pool

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wildfunctions/formula/pkg/expr"
)

var testVars = []string{"a", "b", "c"}

func testResolver() expr.MapResolver {
	return expr.MapResolver{
		"a":  decimal.NewFromInt(3),
		"b":  decimal.NewFromInt(-2),
		"c":  decimal.RequireFromString("0.5"),
		"a#": decimal.NewFromInt(1),
		"b#": decimal.NewFromInt(4),
		"c#": decimal.NewFromInt(0),
	}
}

func TestArithmeticPool(t *testing.T) {
	p, err := Get("arithmetic")
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(42))

	// Generate many random trees and verify they evaluate cleanly
	r := testResolver()
	successes := 0
	total := 1000
	for i := 0; i < total; i++ {
		tree := p.RandomTree(rng, testVars, 4)
		if tree.IsValid() != expr.OK {
			t.Fatalf("generated invalid tree %s", tree)
		}
		if strings.Contains(tree.String(), "#") {
			t.Fatalf("arithmetic pool primed a variable: %s", tree)
		}
		v, err := tree.Evaluate(r)
		if err != nil {
			t.Fatalf("Evaluate(%s): %v", tree, err)
		}
		if v.Valid {
			successes++
		}
	}

	// Only division by zero yields null here.
	if float64(successes)/float64(total) < 0.8 {
		t.Errorf("Only %d/%d trees produced a value", successes, total)
	}
	t.Logf("Arithmetic pool: %d/%d trees produced a value", successes, total)
}

func TestComparisonPool(t *testing.T) {
	p, err := Get("comparison")
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(42))

	primed := 0
	for i := 0; i < 500; i++ {
		tree := p.RandomTree(rng, testVars, 4)
		if tree.IsValid() != expr.OK {
			t.Fatalf("generated invalid tree %s", tree)
		}
		if tree.VarSteps() > 2 {
			t.Errorf("tree %s reaches back %d steps", tree, tree.VarSteps())
		}
		if tree.VarSteps() == 2 {
			primed++
		}
	}
	if primed == 0 {
		t.Error("Expected some trees with primed variables")
	}
}

func TestPool_NoVariables(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, name := range Names() {
		p, _ := Get(name)
		for i := 0; i < 100; i++ {
			tree := p.RandomTree(rng, nil, 3)
			if vars := tree.Variables(); len(vars) != 0 {
				t.Fatalf("%s: tree %s has variables %v", name, tree, vars)
			}
		}
	}
}

func TestPoolRegistry(t *testing.T) {
	names := Names()
	if len(names) < 2 {
		t.Errorf("Expected at least 2 registered pools, got %d", len(names))
	}

	for _, name := range names {
		p, err := Get(name)
		if err != nil {
			t.Errorf("Get(%q) failed: %v", name, err)
			continue
		}
		if p.Name() != name {
			t.Errorf("Pool name mismatch: %q vs %q", p.Name(), name)
		}
	}
}

func TestUnknownPool(t *testing.T) {
	_, err := Get("nonexistent")
	if err == nil {
		t.Error("Expected error for unknown pool")
	}
}
