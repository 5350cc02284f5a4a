package commands

import (
	"log/slog"
	"time"

	"mturk-extractor/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	watchInterval     time.Duration
	watchDelay        time.Duration
	watchFile         string
	watchPerfInterval time.Duration
)

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Hour, "How often to check whether the pipeline should run.")
	watchCmd.Flags().DurationVar(&watchDelay, "delay", time.Second*3, "How long to wait before the first check.")
	watchCmd.Flags().StringVar(&watchFile, "file", "", "Read the dashboard from a saved html file instead of fetching it.")
	watchCmd.Flags().DurationVar(&watchPerfInterval, "perf-interval", time.Second*15, "How often process stats are recorded.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--interval <duration>] [--delay <duration>]",
	Short: "Keeps running, the pipeline is run once every calendar day.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		config, err := readConfig(configPath)
		if err != nil {
			return err
		}
		a, err := openApp(ctx, config, watchFile)
		if err != nil {
			return err
		}
		defer a.Close()

		telemetry.InstrumentPerfStats(ctx, watchPerfInterval)

		if !sleep(ctx, watchDelay) {
			return nil
		}

		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()
		for {
			outcome, err := a.service.Run(ctx, false)
			switch {
			case err != nil:
				slog.Error("run failed, retrying on the next tick", "err", err)
			case !outcome.Skipped:
				slog.Info(
					"run complete",
					"worker_id", outcome.Record.WorkerId,
					"todays_earnings", outcome.Record.TodaysEarnings,
					"run_count", outcome.Record.DailyRunInfo.RunCount,
				)
				if err := outcome.Results.Err(); err != nil {
					slog.Warn("some deliveries failed", "err", err)
				}
			}

			select {
			case <-ctx.Done():
				slog.Info("stopping")
				return nil
			case <-ticker.C:
			}
		}
	},
}
