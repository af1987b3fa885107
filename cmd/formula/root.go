package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wildfunctions/formula/pkg/config"
	"github.com/wildfunctions/formula/pkg/logging"
)

var (
	configPath string
	logLevel   string
	logJSON    bool
	format     string
	workers    int
	steps      int

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "formula",
	Short: "Evaluate decimal formulas over named quantities",
	Long: `formula parses and evaluates arithmetic formulas such as

    {rate:baseRate}
    [rate] * 2 + [offset#]

against values from YAML files or a sqlite/badger store. Every result
carries a validity: ok, null, not_found or parse_error.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default: ./formula.yaml if present)")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&logJSON, "log-json", false, "log as JSON")
	flags.StringVar(&format, "format", "", "output format (text, json)")
	flags.IntVar(&workers, "workers", 0, "number of parallel workers")
	flags.IntVar(&steps, "steps", 0, "history depth (0 = derive from formulas)")

	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(smoothCmd)
	rootCmd.AddCommand(watchCmd)
}

// setup loads configuration and applies flag overrides.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		loaded.Log.Level = logLevel
	}
	if flags.Changed("log-json") {
		loaded.Log.JSON = logJSON
	}
	if flags.Changed("format") {
		loaded.Engine.Format = format
	}
	if flags.Changed("workers") {
		loaded.Engine.Workers = workers
	}
	if flags.Changed("steps") {
		loaded.Engine.Steps = steps
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(loaded.Log.Level)
	if err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	cfg = loaded
	logger = logging.New(logging.Config{
		Level:   level,
		JSON:    loaded.Log.JSON,
		Service: "formula",
	})
	return nil
}
