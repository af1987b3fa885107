package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/wildfunctions/formula/pkg/config"
	"github.com/wildfunctions/formula/pkg/engine"
	"github.com/wildfunctions/formula/pkg/expr"
)

var (
	evalValues string
	evalSet    []string
)

var evalCmd = &cobra.Command{
	Use:   "eval FORMULA",
	Short: "Evaluate a single formula",
	Example: `  formula eval "[x]*2+1" --set x=4
  formula eval "{r:rate}
[r]^2" --values values.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values := expr.NullMapResolver{}
		if evalValues != "" {
			set, err := config.LoadFormulaSet(evalValues)
			if err != nil {
				return err
			}
			if values, err = set.Resolver(); err != nil {
				return err
			}
		}
		if err := parseAssignments(evalSet, values); err != nil {
			return err
		}
		return evalFormula(cmd.Context(), args[0], values, cmd.OutOrStdout())
	},
}

func init() {
	evalCmd.Flags().StringVar(&evalValues, "values", "", "formula set file to take values from")
	evalCmd.Flags().StringArrayVar(&evalSet, "set", nil, "name=value assignment; value may be null (repeatable)")
}

func evalFormula(ctx context.Context, text string, values expr.NullMapResolver, w io.Writer) error {
	e, err := engine.New(engineConfig())
	if err != nil {
		return err
	}
	report, err := e.Run(ctx, []engine.Formula{{Name: "formula", Text: text}}, values)
	if err != nil {
		return err
	}

	res := report.Results[0]
	if cfg.Engine.Format == "json" {
		return engine.WriteJSONReport(w, report)
	}
	if res.Validity == expr.OK {
		fmt.Fprintln(w, res.Value.Decimal.String())
		return nil
	}
	fmt.Fprintln(w, res.Validity)
	if res.Error != "" {
		return fmt.Errorf("%s", res.Error)
	}
	return nil
}

// parseAssignments adds name=value pairs to values.
func parseAssignments(assignments []string, values expr.NullMapResolver) error {
	for _, a := range assignments {
		name, raw, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("invalid assignment %q: want name=value", a)
		}
		raw = strings.TrimSpace(raw)
		if strings.EqualFold(raw, "null") {
			values[name] = decimal.NullDecimal{}
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid assignment %q: %w", a, err)
		}
		values[name] = decimal.NewNullDecimal(d)
	}
	return nil
}
