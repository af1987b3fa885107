package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wildfunctions/formula/pkg/alias"
	"github.com/wildfunctions/formula/pkg/expr"
)

var checkCmd = &cobra.Command{
	Use:   "check FORMULA...",
	Short: "Parse formulas and describe them without evaluating",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkFormulas(args, cmd.OutOrStdout())
	},
}

// checkFormulas prints the parsed form of each formula and fails if any
// does not parse.
func checkFormulas(texts []string, w io.Writer) error {
	failed := 0
	for _, text := range texts {
		aliases := alias.New()
		residual := aliases.Parse(text)
		node, err := expr.Parse(residual, aliases.Unscoped().Rewriter())
		if err != nil {
			failed++
			fmt.Fprintf(w, "%s\n  error:      %v\n", strings.TrimSpace(text), err)
			continue
		}
		fmt.Fprintf(w, "%s\n", node)
		fmt.Fprintf(w, "  simplified: %s\n", expr.Simplify(node))
		fmt.Fprintf(w, "  depth:      %d\n", node.Depth())
		fmt.Fprintf(w, "  steps:      %d\n", node.VarSteps())
		fmt.Fprintf(w, "  variables:  %s\n", strings.Join(node.Variables(), ", "))
		for _, d := range aliases.Definitions() {
			fmt.Fprintf(w, "  alias:      %s -> %s\n", d.Key, d.Value)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d formulas failed to parse", failed, len(texts))
	}
	return nil
}
