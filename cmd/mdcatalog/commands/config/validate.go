package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/cmd/mdcatalog/cmdutil"
	"github.com/marmos91/mdcatalog/pkg/catalog/store"
	"github.com/marmos91/mdcatalog/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the mdcatalog configuration file.

Checks for syntax errors, missing required fields and invalid values.

Examples:
  # Validate default config
  mdcatalog config validate

  # Validate specific config file
  mdcatalog config validate --config /etc/mdcatalog/config.yaml`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := cmdutil.Flags.ConfigFile

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if cfg.Drafts.Backend == config.DraftBackendBadger && cfg.Drafts.Badger.InMemory {
		warnings = append(warnings, "Drafts are kept in memory and will be lost on shutdown")
	}
	if cfg.Database.Type == store.DatabaseTypePostgres && cfg.Database.Postgres.Password == "" {
		warnings = append(warnings, "PostgreSQL password not configured (set MDCATALOG_DATABASE_POSTGRES_PASSWORD)")
	}
	if cfg.Server.IsEnabled() && !cfg.Metrics.Enabled {
		warnings = append(warnings, "Metrics disabled - /metrics will not be served")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Database type:   %s\n", cfg.Database.Type)
	_, _ = fmt.Fprintf(out, "  Drafts backend:  %s\n", cfg.Drafts.Backend)
	_, _ = fmt.Fprintf(out, "  API port:        %d\n", cfg.Server.Port)
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)

	return nil
}
