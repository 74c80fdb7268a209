package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"layout-lens/internal/layout"
	"layout-lens/internal/session"
)

var flagRenderFormat string

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Print the resolved tab tree",
	Long: `Build a layout document and print the resolved tab sequence with the
default tab template already spliced in. The text format round-trips: it is
valid document syntax that builds to an equivalent tree.`,
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

		switch flagRenderFormat {
		case "text":
			fmt.Print(layout.Render(s.Tabs))
			return nil
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(s.Tabs)
		case "yaml":
			data, err := yaml.Marshal(s.Tabs)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		default:
			return fmt.Errorf("unknown render format %q (want text, json, or yaml)", flagRenderFormat)
		}
	},
}

func init() {
	renderCmd.Flags().StringVar(&flagRenderFormat, "format", "text", "output format: text, json, yaml")
	rootCmd.AddCommand(renderCmd)
}
