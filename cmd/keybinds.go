package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"layout-lens/internal/session"
)

var flagScope string

// bindEntry is the JSON shape of one resolved binding.
type bindEntry struct {
	Scope   string   `json:"scope"`
	Chord   string   `json:"chord"`
	Actions []string `json:"actions"`
}

var keybindsCmd = &cobra.Command{
	Use:   "keybinds [file]",
	Short: "Print the resolved keybind table",
	Long: `Build a layout document and print its chord-to-action table, one scope at
a time. Shared blocks are already expanded into the concrete modes, and
later bindings for the same chord have already replaced earlier ones.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		file := resolveFile(cfg, args)

		s, err := session.Load(file)
		if err != nil {
			return err
		}

		var entries []bindEntry
		if s.Keybinds != nil {
			for _, scope := range s.Keybinds.Scopes() {
				if flagScope != "" && scope.Name != flagScope {
					continue
				}
				for _, b := range scope.Bindings() {
					actions := make([]string, 0, len(b.Actions))
					for _, a := range b.Actions {
						actions = append(actions, a.String())
					}
					entries = append(entries, bindEntry{
						Scope:   scope.Name,
						Chord:   b.Chord,
						Actions: actions,
					})
				}
			}
		}

		if cfg.Format == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		current := ""
		for _, e := range entries {
			if e.Scope != current {
				current = e.Scope
				fmt.Printf("%s:\n", current)
			}
			fmt.Printf("  %-14s %s\n", e.Chord, strings.Join(e.Actions, "; "))
		}
		return nil
	},
}

func init() {
	keybindsCmd.Flags().StringVar(&flagScope, "scope", "", "only show one scope (e.g. normal)")
	rootCmd.AddCommand(keybindsCmd)
}
