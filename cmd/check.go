package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"layout-lens/internal/document"
	"layout-lens/internal/report"
	"layout-lens/internal/session"
	"layout-lens/internal/validate"
)

var flagNoHistory bool

// checkResult is the JSON shape of one check run.
type checkResult struct {
	File       string               `json:"file"`
	OK         bool                 `json:"ok"`
	Result     string               `json:"result"` // "ok", "parse_error", "invalid"
	Tabs       int                  `json:"tabs,omitempty"`
	Violations []validate.Violation `json:"violations,omitempty"`
	Error      string               `json:"error,omitempty"`
	DurationMs int64                `json:"duration_ms"`
}

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a layout document and report every violation",
	Long: `Parse a layout document, build its tab sequence and keybind table, and
check the structural invariants. All violations are reported at once; a
document with any violation produces no session structures.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tel, err := initTelemetry(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer tel.Shutdown(cmd.Context())

		file := resolveFile(cfg, args)
		start := time.Now()

		s, buildErr := session.Load(file)
		elapsed := time.Since(start)

		out := checkResult{File: file, DurationMs: elapsed.Milliseconds()}
		var invalid *session.InvalidDocumentError
		var parseErr *document.ParseError
		switch {
		case buildErr == nil:
			out.OK = true
			out.Result = "ok"
			out.Tabs = len(s.Tabs)
		case errors.As(buildErr, &invalid):
			out.Result = "invalid"
			out.Violations = invalid.Violations
			for _, v := range invalid.Violations {
				tel.Metrics.RecordViolation(cmd.Context(), string(v.Rule))
			}
		case errors.As(buildErr, &parseErr):
			out.Result = "parse_error"
			out.Error = parseErr.Error()
		default:
			// Reading the file failed, or a builder rejected something the
			// validator does not cover.
			out.Result = "invalid"
			out.Error = buildErr.Error()
		}

		tel.Metrics.RecordBuild(cmd.Context(), out.Result, elapsed)

		if !flagNoHistory {
			rec := report.Record{
				Time:       time.Now().UTC(),
				File:       file,
				Result:     out.Result,
				Violations: len(out.Violations),
				Tabs:       out.Tabs,
				DurationMs: out.DurationMs,
			}
			if err := report.NewLog("").Append(rec); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not write history: %v\n", err)
			}
		}

		if cfg.Format == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
		} else {
			printCheckText(out)
		}

		if !out.OK {
			return fmt.Errorf("%s is not a valid layout document", file)
		}
		return nil
	},
}

func printCheckText(out checkResult) {
	if out.OK {
		fmt.Printf("%s: ok (%d tabs, %dms)\n", out.File, out.Tabs, out.DurationMs)
		return
	}
	if out.Error != "" {
		fmt.Println(out.Error)
	}
	for _, v := range out.Violations {
		fmt.Printf("%s: %s\n", out.File, v)
	}
}

func init() {
	checkCmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "do not record this run in the history log")
	rootCmd.AddCommand(checkCmd)
}
