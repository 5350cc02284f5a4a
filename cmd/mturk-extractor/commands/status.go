package commands

import (
	"fmt"

	"mturk-extractor/lib/chrono"
	"mturk-extractor/lib/runstate"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Prints the run state and whether the pipeline would run now.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		config, err := readConfig(configPath)
		if err != nil {
			return err
		}
		clock, err := chrono.NewStandardTime(config.Timezone)
		if err != nil {
			return fmt.Errorf("load timezone: %w", err)
		}
		store, database, err := openStore(ctx, config)
		if err != nil {
			return err
		}
		defer database.Close()

		values, err := store.Values(ctx)
		if err != nil {
			return err
		}
		gate := runstate.NewGate(store, clock)
		shouldRun, err := gate.ShouldRun(ctx)
		if err != nil {
			return err
		}

		t := NewTable()
		t.AppendHeader(table.Row{"Key", "Value"})
		for _, v := range values {
			t.AppendRow(table.Row{v.Key, v.Value})
		}
		t.AppendSeparator()
		t.AppendRow(table.Row{"today", gate.Today()})
		t.AppendRow(table.Row{"would run", shouldRun})
		t.Render()
		return nil
	},
}
