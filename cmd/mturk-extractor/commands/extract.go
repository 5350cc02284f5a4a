package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"mturk-extractor/services/extractor"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	extractFile string
	extractJson bool
)

func init() {
	extractCmd.Flags().StringVar(&extractFile, "file", "", "Read the dashboard from a saved html file instead of fetching it.")
	extractCmd.Flags().BoolVar(&extractJson, "json", false, "Print the record as json.")
	rootCmd.AddCommand(extractCmd)
}

func printRecord(record extractor.Record) {
	t := NewTable()
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Worker ID", record.WorkerId},
		{"IP Address", record.IpAddress},
		{"Today's Earnings", record.TodaysEarnings},
		{"Projected Earnings", record.ProjectedEarnings},
		{"Current Earnings", record.CurrentEarnings},
		{"Next Transfer", record.NextTransferDate},
		{"Approved HITs", record.ApprovedHits},
		{"Approval Rate", record.ApprovalRate},
		{"Extracted At", record.ExtractionDate},
	})
	t.Render()

	if len(record.RawTableData) == 0 {
		return
	}
	days := NewTable()
	days.AppendHeader(table.Row{"Date", "Earnings"})
	for _, entry := range record.RawTableData {
		days.AppendRow(table.Row{entry.Date, fmt.Sprintf("$%.2f", entry.Earnings)})
	}
	days.Render()
}

var extractCmd = &cobra.Command{
	Use:   "extract [--file <dashboard.html>] [--json]",
	Short: "Extracts the dashboard and prints the record without delivering it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		config, err := readConfig(configPath)
		if err != nil {
			return err
		}
		a, err := openApp(ctx, config, extractFile)
		if err != nil {
			return err
		}
		defer a.Close()

		record, err := a.service.Extract(ctx)
		if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}

		if extractJson {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(record)
		}
		printRecord(record)
		return nil
	},
}
