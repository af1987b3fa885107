package expr

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Resolver maps variable names to their current, possibly absent, values.
//
// Resolve wraps ErrNotFound for unknown keys. A known key without a value
// resolves to an invalid NullDecimal and a nil error.
//
// Init is a one-time priming pass over the formulas that will be evaluated;
// steps is the number of generations the formulas reach back (see VarSteps).
type Resolver interface {
	Resolve(key string) (decimal.NullDecimal, error)
	ContainsKey(key string) bool
	Keys() []string
	Init(ctx context.Context, formulas []string, steps int) error
}

// MapResolver resolves keys from a map whose entries always carry a value.
type MapResolver map[string]decimal.Decimal

func (m MapResolver) Resolve(key string) (decimal.NullDecimal, error) {
	v, ok := m[key]
	if !ok {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return decimal.NewNullDecimal(v), nil
}

func (m MapResolver) ContainsKey(key string) bool {
	_, ok := m[key]
	return ok
}

func (m MapResolver) Keys() []string {
	return sortedKeys(m)
}

func (m MapResolver) Init(context.Context, []string, int) error { return nil }

// NullMapResolver resolves keys from a map of nullable values.
type NullMapResolver map[string]decimal.NullDecimal

func (m NullMapResolver) Resolve(key string) (decimal.NullDecimal, error) {
	v, ok := m[key]
	if !ok {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return v, nil
}

func (m NullMapResolver) ContainsKey(key string) bool {
	_, ok := m[key]
	return ok
}

func (m NullMapResolver) Keys() []string {
	return sortedKeys(m)
}

func (m NullMapResolver) Init(context.Context, []string, int) error { return nil }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// References returns the distinct variable names text refers to, in order of
// first appearance. Text without any bracketed name that is neither a number
// nor an expression is taken to be a bare name itself, which lets priming
// passes accept both formulas and alias targets.
func References(text string) []string {
	var (
		names []string
		seen  = map[string]bool{}
		buf   strings.Builder
		inVar bool
	)
	for _, c := range text {
		switch {
		case inVar && c == ']':
			name := buf.String()
			if name != "" && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			buf.Reset()
			inVar = false
		case inVar:
			buf.WriteRune(c)
		case c == '[':
			inVar = true
		}
	}
	if len(names) > 0 {
		return names
	}

	bare := strings.TrimSpace(text)
	if bare == "" || strings.ContainsAny(bare, "()[]") {
		return nil
	}
	if _, err := parseConstant(bare); err == nil {
		return nil
	}
	for _, c := range bare {
		if IsOperator(c) && c != '-' {
			return nil
		}
	}
	return []string{bare}
}
