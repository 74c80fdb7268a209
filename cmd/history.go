package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"layout-lens/internal/report"
)

var flagLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent check runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		limit := flagLimit
		if limit <= 0 {
			limit = cfg.HistoryLimit
		}

		records, err := report.NewLog("").Recent(limit)
		if err != nil {
			return err
		}

		if cfg.Format == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		if len(records) == 0 {
			fmt.Println("no history yet")
			return nil
		}
		for _, r := range records {
			line := fmt.Sprintf("%s  %-11s %s", r.Time.Local().Format("2006-01-02 15:04:05"), r.Result, r.File)
			if r.Result == "ok" {
				line += fmt.Sprintf("  (%d tabs)", r.Tabs)
			} else if r.Violations > 0 {
				line += fmt.Sprintf("  (%d violations)", r.Violations)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 0, "number of entries to show (default: history_limit from config)")
	rootCmd.AddCommand(historyCmd)
}
