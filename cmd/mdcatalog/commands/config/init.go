package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/cmd/mdcatalog/cmdutil"
	"github.com/marmos91/mdcatalog/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a configuration file holding every default value.

Without --config the file is written to $XDG_CONFIG_HOME/mdcatalog/config.yaml.

Examples:
  # Create the default config file
  mdcatalog config init

  # Overwrite a custom config file
  mdcatalog config init --config ./mdcatalog.yaml --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cmdutil.Flags.ConfigFile

	var err error
	if path != "" {
		err = config.InitConfigToPath(path, initForce)
	} else {
		path, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", path)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Edit the configuration file to select the database and drafts backend")
	_, _ = fmt.Fprintln(out, "  2. Apply the schema with: mdcatalog migrate")
	_, _ = fmt.Fprintf(out, "  3. Start the catalog with: mdcatalog start --config %s\n", path)
	return nil
}
