package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wildfunctions/formula/pkg/alias"
	"github.com/wildfunctions/formula/pkg/config"
	"github.com/wildfunctions/formula/pkg/engine"
	"github.com/wildfunctions/formula/pkg/expr"
	"github.com/wildfunctions/formula/pkg/filter"
	"github.com/wildfunctions/formula/pkg/series"
)

var (
	smoothName     string
	smoothWindow   int
	smoothBoundary string
)

var smoothCmd = &cobra.Command{
	Use:   "smooth FILE",
	Short: "Evaluate a formula over the frames of a set and median-filter the values",
	Long: `Evaluate one formula of a formula set once per frame, oldest first, so
that primed variables ([x#]) read earlier frames, then smooth the values
with a sliding-window median.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("window") {
			cfg.Filter.Window = smoothWindow
		}
		if flags.Changed("boundary") {
			cfg.Filter.Boundary = smoothBoundary
		}
		return smoothSet(cmd.Context(), args[0], smoothName, cmd.OutOrStdout())
	},
}

func init() {
	smoothCmd.Flags().StringVar(&smoothName, "name", "", "formula to evaluate (default: the first)")
	smoothCmd.Flags().IntVar(&smoothWindow, "window", 3, "median window size (odd, at least 3)")
	smoothCmd.Flags().StringVar(&smoothBoundary, "boundary", "shrink", "boundary policy (repeat, shrink, drop)")
}

func smoothSet(ctx context.Context, path, name string, w io.Writer) error {
	set, err := config.LoadFormulaSet(path)
	if err != nil {
		return err
	}
	entry, err := pickFormula(set, name)
	if err != nil {
		return err
	}
	boundary, err := filter.ParseBoundary(cfg.Filter.Boundary)
	if err != nil {
		return err
	}
	frames, err := set.HistoryFrames()
	if err != nil {
		return err
	}

	aliases := alias.New()
	scope := aliases.Unscoped()
	if entry.ID != nil {
		scope = aliases.Scope(*entry.ID)
	}
	node, err := expr.Parse(scope.Parse(entry.Text), scope.Rewriter())
	if err != nil {
		return err
	}

	res, err := series.Evaluate(ctx, node, frames)
	if err != nil {
		return err
	}
	smoothed, err := series.Smooth(res, boundary, cfg.Filter.Window)
	if err != nil {
		return err
	}
	logger.Debug("series smoothed", "formula", entry.Name, "generations", len(res.Points),
		"boundary", boundary, "window", cfg.Filter.Window)
	return engine.WriteSeries(w, engine.SeriesReport{Result: res, Smoothed: smoothed}, cfg.Engine.Format)
}

func pickFormula(set *config.FormulaSet, name string) (config.FormulaEntry, error) {
	if len(set.Formulas) == 0 {
		return config.FormulaEntry{}, fmt.Errorf("formula set has no formulas")
	}
	if name == "" {
		return set.Formulas[0], nil
	}
	for _, f := range set.Formulas {
		if f.Name == name {
			return f, nil
		}
	}
	return config.FormulaEntry{}, fmt.Errorf("formula %q not found", name)
}
