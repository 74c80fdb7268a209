package cmd

import (
	"github.com/spf13/cobra"

	"layout-lens/internal/session"
	"layout-lens/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Live-preview a layout document, rebuilding on every save",
	Long: `Watch a layout document and show the resolved tab tree and keybind table,
rebuilt on every save. A broken save keeps the previous snapshot on screen
alongside the errors; the snapshot is only replaced once the document builds
cleanly again.`,
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

		// An invalid document is fine at startup: watch mode exists to edit
		// towards a valid one.
		initial, initialErr := session.Load(file)
		holder := session.NewHolder(initial)

		watcher, err := session.NewWatcher(file, holder, cfg.WatchDebounceDuration)
		if err != nil {
			return err
		}
		defer watcher.Close()

		// Count reloads on the way through to the TUI.
		events := make(chan session.ReloadEvent, 16)
		go func() {
			defer close(events)
			for ev := range watcher.Start() {
				tel.Metrics.RecordReload(cmd.Context(), ev.Err == nil)
				events <- ev
			}
		}()

		return tui.Run(tui.Options{
			Path:       file,
			Holder:     holder,
			Events:     events,
			InitialErr: initialErr,
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
