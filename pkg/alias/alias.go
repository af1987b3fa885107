// Package alias lets many numerically identified entities share one formula
// variable namespace.
//
// Formulas may carry alias blocks such as
//
//	{rate:baseRate; cap:100}
//	[rate] * [cap]
//
// Entries are key:value pairs separated by newlines or ';', braces optional.
// Parsed under a Scope, key and value are prefixed with the scope id
// ("7_rate" -> "7_baseRate") unless the value is a numeric literal, so two
// entities can use the same local names without colliding.
package alias

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wildfunctions/formula/pkg/expr"
)

// ErrNotInitialized is returned when a Resolver is used before one of its
// Init methods configured an inner resolver.
var ErrNotInitialized = errors.New("alias resolver not initialized")

// Definition is one key:value alias entry.
type Definition struct {
	Key   string
	Value string
}

// ScopedFormula is formula text parsed under an entity id, or without one
// when Global is set.
type ScopedFormula struct {
	ID     int64
	Global bool
	Text   string
}

func (f ScopedFormula) scope(a *Resolver) Scope {
	if f.Global {
		return a.Unscoped()
	}
	return a.Scope(f.ID)
}

// Resolver rewrites variable names through an alias table before handing
// them to an inner expr.Resolver.
//
// The table is only written by Parse and the Init methods; once initialized
// a Resolver may be read concurrently.
type Resolver struct {
	aliases map[string]string // lower-cased key -> value
	names   map[string]string // lower-cased key -> key as written
	inner   expr.Resolver
}

var _ expr.Resolver = (*Resolver)(nil)

// New returns an empty Resolver.
func New() *Resolver {
	return &Resolver{
		aliases: make(map[string]string),
		names:   make(map[string]string),
	}
}

// Scope is a view of a Resolver with an entity id applied. The zero Scope
// of a Resolver is unscoped.
type Scope struct {
	r     *Resolver
	id    int64
	valid bool
}

// Scope returns the view for entity id.
func (a *Resolver) Scope(id int64) Scope {
	return Scope{r: a, id: id, valid: true}
}

// Unscoped returns the view without an entity id.
func (a *Resolver) Unscoped() Scope {
	return Scope{r: a}
}

// Parse registers the alias entries in text without a scope and returns the
// remaining formula text.
func (a *Resolver) Parse(text string) string {
	return a.Unscoped().Parse(text)
}

// ResolveKey rewrites key without a scope.
func (a *Resolver) ResolveKey(key string) string {
	return a.Unscoped().ResolveKey(key)
}

// ID returns the scope id and whether one is set.
func (s Scope) ID() (int64, bool) {
	return s.id, s.valid
}

func (s Scope) prefix(name string) string {
	if !s.valid {
		return name
	}
	return strconv.FormatInt(s.id, 10) + "_" + name
}

// Parse registers the alias entries in text under the scope and returns the
// remaining formula text.
func (s Scope) Parse(text string) string {
	residual, defs := Split(text)
	for _, d := range defs {
		key := s.prefix(d.Key)
		value := d.Value
		if !isLiteral(value) {
			value = s.prefix(value)
		}
		s.r.aliases[strings.ToLower(key)] = value
		s.r.names[strings.ToLower(key)] = key
	}
	return residual
}

// ResolveKey rewrites a variable name: priming markers are set aside, the
// name is prefixed with the scope id and looked up in the alias table. A
// name without alias is returned unmodified. Markers are re-appended.
func (s Scope) ResolveKey(key string) string {
	name, marks := stripMarkers(key)
	resolved, ok := s.r.aliases[strings.ToLower(s.prefix(name))]
	if !ok {
		resolved = name
	}
	return resolved + strings.Repeat(string(expr.PrimeMarker), marks)
}

// Rewriter adapts the scope for expr.WithKeyRewriter.
func (s Scope) Rewriter() expr.ParseOption {
	return expr.WithKeyRewriter(s.ResolveKey)
}

// Split separates alias entries from formula text without registering them.
// Lines holding a ':' are alias entries, everything else is returned as
// residual text joined by newlines.
func Split(text string) (string, []Definition) {
	var (
		residual []string
		defs     []Definition
	)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "{" || trimmed == "}" || trimmed == "{}" {
			continue
		}
		if !strings.Contains(trimmed, ":") {
			if trimmed != "" {
				residual = append(residual, line)
			}
			continue
		}
		trimmed = strings.TrimPrefix(trimmed, "{")
		trimmed = strings.TrimSuffix(trimmed, "}")
		for _, entry := range strings.Split(trimmed, ";") {
			key, value, ok := strings.Cut(entry, ":")
			if !ok {
				continue
			}
			key = strings.TrimSpace(strings.Trim(strings.TrimSpace(key), "{}"))
			value = strings.TrimSpace(strings.Trim(strings.TrimSpace(value), "{}"))
			if key == "" || value == "" {
				continue
			}
			defs = append(defs, Definition{Key: key, Value: value})
		}
	}
	return strings.Join(residual, "\n"), defs
}

// Definitions returns the registered entries sorted by key.
func (a *Resolver) Definitions() []Definition {
	defs := make([]Definition, 0, len(a.aliases))
	for lower, value := range a.aliases {
		defs = append(defs, Definition{Key: a.names[lower], Value: value})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Key < defs[j].Key })
	return defs
}

// InitDict initializes the resolver over a map of values.
func (a *Resolver) InitDict(ctx context.Context, values map[string]decimal.Decimal, formulas []string, steps int) error {
	return a.InitResolver(ctx, expr.MapResolver(values), formulas, steps)
}

// InitResolver parses the alias entries of formulas without a scope and
// primes inner with the alias targets and the rewritten variables of the
// remaining formula text.
func (a *Resolver) InitResolver(ctx context.Context, inner expr.Resolver, formulas []string, steps int) error {
	scoped := make([]ScopedFormula, len(formulas))
	for i, f := range formulas {
		scoped[i] = ScopedFormula{Global: true, Text: f}
	}
	return a.InitScoped(ctx, inner, scoped, steps)
}

// InitScoped parses each formula's alias entries under its own id and
// primes inner like InitResolver.
func (a *Resolver) InitScoped(ctx context.Context, inner expr.Resolver, formulas []ScopedFormula, steps int) error {
	if inner == nil {
		return fmt.Errorf("init: %w: nil inner resolver", ErrNotInitialized)
	}
	a.inner = inner
	var refs []string
	for _, f := range formulas {
		scope := f.scope(a)
		residual := scope.Parse(f.Text)
		for _, ref := range expr.References(residual) {
			refs = append(refs, scope.ResolveKey(ref))
		}
	}
	return a.primeInner(ctx, steps, refs)
}

// Init implements expr.Resolver for a Resolver whose inner resolver was set
// by an earlier InitDict, InitResolver or InitScoped.
func (a *Resolver) Init(ctx context.Context, formulas []string, steps int) error {
	if a.inner == nil {
		return fmt.Errorf("init: %w", ErrNotInitialized)
	}
	return a.InitResolver(ctx, a.inner, formulas, steps)
}

// primeInner forwards the distinct non-literal alias targets, then refs, to
// the inner resolver's Init.
func (a *Resolver) primeInner(ctx context.Context, steps int, refs []string) error {
	seen := make(map[string]bool)
	var targets []string
	add := func(name string) {
		if stripped, _ := stripMarkers(name); isLiteral(stripped) || seen[name] {
			return
		}
		seen[name] = true
		targets = append(targets, name)
	}
	for _, d := range a.Definitions() {
		add(d.Value)
	}
	for _, ref := range refs {
		add(ref)
	}
	if err := a.inner.Init(ctx, targets, steps); err != nil {
		return fmt.Errorf("prime inner resolver: %w", err)
	}
	return nil
}

// Resolve rewrites key and resolves it. A rewritten key that is a numeric
// literal resolves to itself.
func (a *Resolver) Resolve(key string) (decimal.NullDecimal, error) {
	if a.inner == nil {
		return decimal.NullDecimal{}, fmt.Errorf("resolve %q: %w", key, ErrNotInitialized)
	}
	return a.Rewritten().Resolve(a.ResolveKey(key))
}

// Rewritten returns a resolver for keys that were already rewritten, such as
// the variables of a tree parsed with Scope.Rewriter. It resolves literal
// targets and passes every other key to the inner resolver unchanged, so an
// alias is followed exactly once.
func (a *Resolver) Rewritten() expr.Resolver {
	return rewritten{a}
}

type rewritten struct{ a *Resolver }

func (r rewritten) Resolve(key string) (decimal.NullDecimal, error) {
	if r.a.inner == nil {
		return decimal.NullDecimal{}, fmt.Errorf("resolve %q: %w", key, ErrNotInitialized)
	}
	if v, ok := literal(key); ok {
		return v, nil
	}
	return r.a.inner.Resolve(key)
}

func (r rewritten) ContainsKey(key string) bool {
	if _, ok := literal(key); ok {
		return true
	}
	return r.a.inner != nil && r.a.inner.ContainsKey(key)
}

func (r rewritten) Keys() []string {
	if r.a.inner == nil {
		return nil
	}
	return r.a.inner.Keys()
}

func (r rewritten) Init(ctx context.Context, formulas []string, steps int) error {
	return r.a.Init(ctx, formulas, steps)
}

func (a *Resolver) ContainsKey(key string) bool {
	return a.Rewritten().ContainsKey(a.ResolveKey(key))
}

// Keys lists the alias names and the inner resolver's keys.
func (a *Resolver) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, name := range a.names {
		add(name)
	}
	if a.inner != nil {
		for _, k := range a.inner.Keys() {
			add(k)
		}
	}
	sort.Strings(keys)
	return keys
}

// stripMarkers removes leading and trailing priming markers and counts them.
func stripMarkers(key string) (string, int) {
	name := strings.Trim(key, string(expr.PrimeMarker))
	return name, len(key) - len(name)
}

// literal parses key, markers aside, as a numeric literal.
func literal(key string) (decimal.NullDecimal, bool) {
	name, _ := stripMarkers(key)
	v, err := decimal.NewFromString(strings.TrimSpace(name))
	if err != nil {
		return decimal.NullDecimal{}, false
	}
	return decimal.NewNullDecimal(v), true
}

func isLiteral(s string) bool {
	_, err := decimal.NewFromString(strings.TrimSpace(s))
	return err == nil
}
