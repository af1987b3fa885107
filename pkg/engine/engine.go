// Package engine evaluates batches of named formulas against one resolver.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/wildfunctions/formula/pkg/alias"
	"github.com/wildfunctions/formula/pkg/expr"
	"github.com/wildfunctions/formula/pkg/logging"
)

// Engine runs formula batches.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a new engine from the given config.
func New(cfg Config) (*Engine, error) {
	switch cfg.Format {
	case "":
		cfg.Format = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("unknown output format: %s (available: text, json)", cfg.Format)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Steps < 0 {
		return nil, fmt.Errorf("steps must not be negative, got %d", cfg.Steps)
	}
	return &Engine{cfg: cfg, logger: logging.OrDiscard(cfg.Logger)}, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Run parses every formula, primes inner through an alias resolver and
// evaluates all formulas in parallel. Per-formula problems are reported in
// the results; an error is returned only when the run as a whole fails.
func (e *Engine) Run(ctx context.Context, formulas []Formula, inner expr.Resolver) (Report, error) {
	if inner == nil {
		return Report{}, errors.New("run: nil resolver")
	}
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	report := Report{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
		Steps:   e.steps(formulas),
		Results: make([]Result, len(formulas)),
		Counts:  make(map[expr.Validity]int),
	}
	logger := e.logger.With("run_id", report.RunID)
	logger.Info("run started", "formulas", len(formulas), "workers", e.cfg.Workers, "steps", report.Steps)
	runFormulas.Observe(float64(len(formulas)))

	aliases := alias.New()
	scoped := make([]alias.ScopedFormula, len(formulas))
	for i, f := range formulas {
		scoped[i] = alias.ScopedFormula{Global: f.ID == nil, Text: f.Text}
		if f.ID != nil {
			scoped[i].ID = *f.ID
		}
	}
	if err := aliases.InitScoped(ctx, inner, scoped, report.Steps); err != nil {
		runTotal.WithLabelValues("error").Inc()
		return report, fmt.Errorf("run %s: %w", report.RunID, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, f := range formulas {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Results[i] = e.evaluate(aliases, f, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		runTotal.WithLabelValues("error").Inc()
		return report, fmt.Errorf("run %s: %w", report.RunID, err)
	}

	for _, r := range report.Results {
		report.Counts[r.Validity]++
	}
	report.Duration = time.Since(report.Started)
	runTotal.WithLabelValues("ok").Inc()
	logger.Info("run finished", "duration", report.Duration, "ok", report.Counts[expr.OK],
		"null", report.Counts[expr.Null], "not_found", report.Counts[expr.NotFound],
		"parse_error", report.Counts[expr.ParseError])
	return report, nil
}

// steps is the configured history depth, or the deepest priming reach of
// the formulas. Rewriting keys keeps their markers, so the raw text is
// enough to measure it.
func (e *Engine) steps(formulas []Formula) int {
	if e.cfg.Steps > 0 {
		return e.cfg.Steps
	}
	steps := 1
	for _, f := range formulas {
		residual, _ := alias.Split(f.Text)
		if node, err := expr.Parse(residual); err == nil {
			steps = max(steps, node.VarSteps())
		}
	}
	return steps
}

// evaluate parses and evaluates one formula.
func (e *Engine) evaluate(aliases *alias.Resolver, f Formula, logger *slog.Logger) Result {
	start := time.Now()
	defer func() { evaluationDuration.Observe(time.Since(start).Seconds()) }()

	res := Result{Name: f.Name, ID: f.ID}
	scope := aliases.Unscoped()
	if f.ID != nil {
		scope = aliases.Scope(*f.ID)
	}

	residual, _ := alias.Split(f.Text)
	node, err := expr.Parse(residual, scope.Rewriter())
	if err != nil {
		res.Validity = expr.ParseError
		res.Error = err.Error()
		logger.Debug("formula rejected", "name", f.Name, "error", err)
		return e.finish(res, start)
	}
	res.Expr = node.String()
	res.Simplified = expr.Simplify(node).String()
	res.Depth = node.Depth()
	res.Steps = node.VarSteps()
	res.Variables = node.Variables()

	resolver := aliases.Rewritten()
	res.Validity, err = node.Validate(resolver)
	if err != nil {
		resolverErrors.Inc()
		res.Error = err.Error()
		logger.Debug("formula validation failed", "name", f.Name, "error", err)
		return e.finish(res, start)
	}
	if res.Validity != expr.OK {
		return e.finish(res, start)
	}

	res.Value, err = node.Evaluate(resolver)
	if err != nil {
		resolverErrors.Inc()
		res.Value = decimal.NullDecimal{}
		res.Error = err.Error()
		logger.Debug("formula evaluation failed", "name", f.Name, "error", err)
	}
	return e.finish(res, start)
}

func (e *Engine) finish(res Result, start time.Time) Result {
	res.Duration = time.Since(start)
	evaluationTotal.WithLabelValues(res.Validity.String()).Inc()
	return res
}
