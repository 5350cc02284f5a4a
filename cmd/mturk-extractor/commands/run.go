package commands

import (
	"fmt"
	"log/slog"
	"time"

	"mturk-extractor/services/extractor"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	runForce bool
	runFile  string
	runDelay time.Duration
)

func init() {
	runCmd.Flags().BoolVar(&runForce, "force", false, "Run even if the pipeline already completed today.")
	runCmd.Flags().StringVar(&runFile, "file", "", "Read the dashboard from a saved html file instead of fetching it.")
	runCmd.Flags().DurationVar(&runDelay, "delay", 0, "How long to wait before starting.")
	rootCmd.AddCommand(runCmd)
}

func printResults(outcome extractor.Outcome) {
	t := NewTable()
	t.AppendHeader(table.Row{"Sink", "Result"})
	for _, result := range outcome.Results {
		status := "delivered"
		if result.Err != nil {
			status = result.Err.Error()
		}
		t.AppendRow(table.Row{result.Sink, status})
	}
	t.Render()
}

var runCmd = &cobra.Command{
	Use:   "run [--force] [--file <dashboard.html>] [--delay <duration>]",
	Short: "Extracts the dashboard and delivers the record, at most once a day.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		config, err := readConfig(configPath)
		if err != nil {
			return err
		}
		a, err := openApp(ctx, config, runFile)
		if err != nil {
			return err
		}
		defer a.Close()

		if !sleep(ctx, runDelay) {
			return ctx.Err()
		}

		outcome, err := a.service.Run(ctx, runForce)
		if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}
		if outcome.Skipped {
			slog.Info("already ran today, use --force to run again")
			return nil
		}

		slog.Info(
			"run complete",
			"worker_id", outcome.Record.WorkerId,
			"todays_earnings", outcome.Record.TodaysEarnings,
			"run_count", outcome.Record.DailyRunInfo.RunCount,
		)
		if len(outcome.Results) > 0 {
			printResults(outcome)
		}
		return nil
	},
}
