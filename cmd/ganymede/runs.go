package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"stratum-hq/ganymede/pkg/cli"
	"stratum-hq/ganymede/pkg/config"
	"stratum-hq/ganymede/pkg/results"
)

var runsFlags struct {
	limit  int
	format string
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded simulation runs",
	Long: `List simulation runs recorded in the results store, newest first.

Examples:
  # List the most recent runs
  ganymede runs

  # List up to 50 runs as JSON
  ganymede runs --limit 50 --format json

  # Export as CSV
  ganymede runs --format csv`,
	RunE: listRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVar(&runsFlags.limit, "limit", 20, "maximum number of runs to list")
	runsCmd.Flags().StringVar(&runsFlags.format, "format", "text", "output format: text, json, csv")
}

// runList adapts run records for the CSV formatter.
type runList []*results.RunRecord

func (runList) CSVHeader() []string {
	return []string{"id", "description", "started_at", "finished_at", "agents", "seed", "ticks"}
}

func (l runList) CSVRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, run := range l {
		finished := ""
		if !run.FinishedAt.IsZero() {
			finished = run.FinishedAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			run.ID,
			run.Description,
			run.StartedAt.Format(time.RFC3339),
			finished,
			strconv.Itoa(run.Agents),
			strconv.FormatInt(run.Seed, 10),
			strconv.FormatUint(run.Ticks, 10),
		})
	}
	return rows
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigOrDefault(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	store, err := openResultsStore(cfg)
	if err != nil {
		return cli.NewCommandError("runs", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), runsFlags.limit)
	if err != nil {
		return cli.NewCommandError("runs", err)
	}

	switch runsFlags.format {
	case "json":
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(cmd.OutOrStdout(), runs)
	case "csv":
		formatter := cli.NewFormatter(cli.FormatCSV)
		return formatter.FormatTo(cmd.OutOrStdout(), runList(runs))
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %8s  %6s  %s\n", "RUN ID", "STARTED", "AGENTS", "TICKS", "DESCRIPTION")
	for _, run := range runs {
		fmt.Printf("%-36s  %-20s  %8d  %6d  %s\n",
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Agents,
			run.Ticks,
			run.Description,
		)
	}
	return nil
}
