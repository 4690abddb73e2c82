package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"stratum-hq/ganymede/pkg/cli"
	"stratum-hq/ganymede/pkg/sim/rules"
	"stratum-hq/ganymede/pkg/sim/ruleset"
)

var rulesFlags struct {
	file   string
	format string
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List rule kinds and loaded rule specs",
	Long: `List the built-in rule kinds available to rule set files.

With --file, the rule set at the given path is loaded and its rule
specs are listed instead.

Examples:
  # List built-in kinds
  ganymede rules

  # List the rules a rule set defines
  ganymede rules --file rules.yaml

  # Machine-readable output
  ganymede rules --format json`,
	RunE: listRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringVar(&rulesFlags.file, "file", "", "rule set file or directory to list")
	rulesCmd.Flags().StringVar(&rulesFlags.format, "format", "text", "output format: text, json")
}

type ruleInfo struct {
	Name     string `json:"name"`
	Scope    string `json:"scope"`
	Priority int    `json:"priority"`
}

func listRules(cmd *cobra.Command, args []string) error {
	factory := ruleset.NewFactory()
	if err := rules.RegisterKinds(factory); err != nil {
		return cli.NewCommandError("rules", err)
	}

	if rulesFlags.file == "" {
		kinds := factory.Kinds()
		if rulesFlags.format == "json" {
			formatter := cli.NewFormatter(cli.FormatJSON)
			return formatter.FormatTo(cmd.OutOrStdout(), kinds)
		}
		fmt.Println("Built-in rule kinds:")
		for _, kind := range kinds {
			fmt.Printf("  - %s\n", kind)
		}
		return nil
	}

	loader := ruleset.NewLoader(rulesFlags.file, slog.Default())
	doc, err := loader.Load()
	if err != nil {
		return cli.NewCommandError("rules", err)
	}
	built, err := factory.BuildAll(doc)
	if err != nil {
		return cli.NewCommandError("rules", err)
	}

	infos := make([]ruleInfo, 0, len(built))
	for _, r := range built {
		infos = append(infos, ruleInfo{
			Name:     r.Name(),
			Scope:    string(r.Scope()),
			Priority: r.Priority(),
		})
	}

	if rulesFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(cmd.OutOrStdout(), infos)
	}

	fmt.Printf("Rules in %s:\n", rulesFlags.file)
	for _, info := range infos {
		fmt.Printf("  - %s (scope %s, priority %d)\n", info.Name, info.Scope, info.Priority)
	}
	return nil
}
