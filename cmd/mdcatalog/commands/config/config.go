// Package config implements the config subcommands.
package config

import "github.com/spf13/cobra"

// Cmd is the parent command for configuration management.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage the mdcatalog configuration file.

Subcommands:
  init      Write a default configuration file
  show      Display the effective configuration
  validate  Validate a configuration file
  schema    Generate the JSON schema of the configuration`,
}

func init() {
	Cmd.AddCommand(initCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(schemaCmd)
}
