package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(resetCmd)
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forgets the last run date and the run counter.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		config, err := readConfig(configPath)
		if err != nil {
			return err
		}
		store, database, err := openStore(ctx, config)
		if err != nil {
			return err
		}
		defer database.Close()

		err = store.Reset(ctx)
		if err != nil {
			return err
		}
		slog.Info("run state cleared")
		return nil
	},
}
