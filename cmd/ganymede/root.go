package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ganymede",
	Short: "Stratum Ganymede - rule-driven agent simulation engine",
	Long: `Stratum Ganymede is a rule-driven agent-based simulation engine.

It evolves a population of agents tick by tick under a set of declarative
rules, providing:
  - Declarative rule sets loaded from YAML with hot reload
  - Deterministic tick scheduling with conflict resolution
  - Per-tick result aggregation persisted to SQLite
  - Model state checkpointing and restore
  - Prometheus metrics for tick and rule evaluation timing`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "ganymede.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
