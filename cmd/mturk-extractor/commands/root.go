package commands

import (
	"context"

	"mturk-extractor/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	dumpHttp   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "mturk-extractor",
	Short: "mturk-extractor reads the MTurk worker dashboard and sends a daily earnings record to webhooks.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "The config file to read, <name>.local.<ext> is merged on top of it.")
	rootCmd.PersistentFlags().StringVar(&dumpHttp, "dump-http", "", "A directory to dump every http request and response to.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages.")
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
