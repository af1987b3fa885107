package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wildfunctions/formula/pkg/config"
	"github.com/wildfunctions/formula/pkg/engine"
	"github.com/wildfunctions/formula/pkg/store"
)

var seedStore bool

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Evaluate a formula set",
	Long: `Evaluate every formula of a formula set file against the configured
store. With the memory store, or with --seed, the set's values are written
to the store first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSet(cmd.Context(), args[0], cmd.OutOrStdout())
	},
}

func init() {
	runCmd.Flags().BoolVar(&seedStore, "seed", false, "write the set's values into the store before running")
	watchCmd.Flags().BoolVar(&seedStore, "seed", false, "write the set's values into the store before each run")
}

// runSet loads the formula set at path, evaluates it and writes the report.
func runSet(ctx context.Context, path string, w io.Writer) error {
	set, err := config.LoadFormulaSet(path)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, set)
	if err != nil {
		return err
	}
	defer st.Close()

	e, err := engine.New(engineConfig())
	if err != nil {
		return err
	}
	report, err := e.Run(ctx, formulas(set), st)
	if err != nil {
		return err
	}
	return engine.WriteReport(w, report, cfg.Engine.Format)
}

// openStore opens the configured store, seeding it from the set when asked
// or when it is the in-memory store.
func openStore(ctx context.Context, set *config.FormulaSet) (store.Store, error) {
	st, err := store.Open(cfg.Store.Backend, cfg.Store.DSN)
	if err != nil {
		return nil, err
	}
	if !seedStore && cfg.Store.Backend != "memory" {
		return st, nil
	}

	values, err := set.Resolver()
	if err != nil {
		st.Close()
		return nil, err
	}
	for k, v := range values {
		if err := st.Set(ctx, k, v); err != nil {
			st.Close()
			return nil, fmt.Errorf("seed store: %w", err)
		}
	}
	logger.Debug("store seeded", "backend", cfg.Store.Backend, "values", len(values))
	return st, nil
}

func engineConfig() engine.Config {
	ec := engine.DefaultConfig()
	ec.Workers = cfg.Engine.Workers
	ec.Steps = cfg.Engine.Steps
	ec.Format = cfg.Engine.Format
	ec.Timeout = cfg.Engine.Timeout
	ec.Logger = logger
	return ec
}

func formulas(set *config.FormulaSet) []engine.Formula {
	out := make([]engine.Formula, len(set.Formulas))
	for i, f := range set.Formulas {
		out[i] = engine.Formula{Name: f.Name, ID: f.ID, Text: f.Text}
	}
	return out
}
