package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"layout-lens/internal/config"
	"layout-lens/internal/otel"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

var (
	// Global flags.
	flagFile   string
	flagFormat string
)

var rootCmd = &cobra.Command{
	Use:   "layout-lens",
	Short: "Parse, validate, and preview terminal multiplexer layout documents",
	Long: `layout-lens interprets declarative layout documents for terminal
multiplexers: tab and split-pane trees, default tab templates, and macro
keybinding tables.

It parses the document into tabs and a chord-to-action table, checks the
structural invariants (single focused tab, no pane with both a command and
children, recognized plugin schemes, known actions), and reports every
violation at once. The built structures are what an external multiplexer
runtime would consume; layout-lens itself never spawns panes.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagFile, "file", "f", "", "layout document (default: layout_file from config)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "output format: text, json (default: format from config)")
}

// loadConfig loads settings and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagFormat != "" {
		cfg.Format = flagFormat
	}
	return cfg, nil
}

// resolveFile picks the layout document: positional argument, then --file,
// then the configured default.
func resolveFile(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if flagFile != "" {
		return flagFile
	}
	return cfg.LayoutFile
}

// initTelemetry sets up OTEL from config. With no endpoint configured the
// returned instruments are no-ops.
func initTelemetry(ctx context.Context, cfg *config.Config) (*otel.Telemetry, error) {
	otel.Version = Version
	return otel.Init(ctx, otel.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
}
