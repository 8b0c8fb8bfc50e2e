package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/cmd/mdcatalog/cmdutil"
	"github.com/marmos91/mdcatalog/internal/cli/output"
	"github.com/marmos91/mdcatalog/pkg/config"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective configuration with defaults applied.

Outputs YAML unless --output json is given.

Examples:
  # Show the default config file
  mdcatalog config show

  # Show a specific config file as JSON
  mdcatalog config show --config /etc/mdcatalog/config.yaml -o json`,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(cmdutil.Flags.ConfigFile)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(cmdutil.Flags.Output)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	default:
		return output.PrintYAML(cmd.OutOrStdout(), cfg)
	}
}
