package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"stratum-hq/ganymede/pkg/cli"
	"stratum-hq/ganymede/pkg/config"
	"stratum-hq/ganymede/pkg/sim/rules"
	"stratum-hq/ganymede/pkg/sim/ruleset"
)

var validateFlags struct {
	rulesPath string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and rule files",
	Long: `Validate the configuration file and, optionally, a rule set file
without running a simulation.

The validate command loads and validates the configuration the same way
the run command does, then builds every rule in the given rule set to
surface unknown kinds, malformed parameters, and duplicate names.

Examples:
  # Validate the default config
  ganymede validate

  # Validate a specific config
  ganymede validate --config /etc/ganymede/ganymede.yaml

  # Validate a rule set as well
  ganymede validate --rules rules.yaml`,
	RunE: validateFiles,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.rulesPath, "rules", "", "rule set file or directory to validate")
}

func validateFiles(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigOrDefault(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	fmt.Println("✓ Configuration valid")

	rulesPath := validateFlags.rulesPath
	if rulesPath == "" {
		rulesPath = cfg.Rules.Path
	}
	if rulesPath == "" {
		return nil
	}

	factory := ruleset.NewFactory()
	if err := rules.RegisterKinds(factory); err != nil {
		return cli.NewCommandError("validate", err)
	}

	loader := ruleset.NewLoader(rulesPath, slog.Default())
	doc, err := loader.Load()
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	built, err := factory.BuildAll(doc)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	fmt.Printf("✓ Rule set valid (%d rules)\n", len(built))
	for _, r := range built {
		fmt.Printf("  - %s (scope %s, priority %d)\n", r.Name(), r.Scope(), r.Priority())
	}
	return nil
}
