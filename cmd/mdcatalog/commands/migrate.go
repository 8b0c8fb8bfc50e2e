package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/cmd/mdcatalog/cmdutil"
	"github.com/marmos91/mdcatalog/internal/logger"
	"github.com/marmos91/mdcatalog/pkg/catalog/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Bring the catalog database schema up to date.

SQLite databases are migrated with GORM AutoMigrate. PostgreSQL databases
apply the embedded SQL migrations and report the resulting schema version.
The command is idempotent.

Examples:
  # Run migrations with default config
  mdcatalog migrate

  # Run migrations with custom config
  mdcatalog migrate --config /etc/mdcatalog/config.yaml`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	if err := cmdutil.InitLogger(cfg); err != nil {
		return err
	}

	ctx := logger.EnsureContext(cmd.Context())
	logger.InfoCtx(ctx, "Running database migrations", "type", cfg.Database.Type)

	// Open migrates before returning.
	db, err := store.Open(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Healthcheck(ctx); err != nil {
		return fmt.Errorf("migration verification failed: %w", err)
	}

	version, dirty, err := db.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	result := struct {
		Database string `json:"database" yaml:"database"`
		Version  uint   `json:"version" yaml:"version"`
		Dirty    bool   `json:"dirty" yaml:"dirty"`
	}{string(db.Type()), version, dirty}

	msg := fmt.Sprintf("Migrations completed successfully (database type: %s)", db.Type())
	if db.Type() == store.DatabaseTypePostgres {
		msg = fmt.Sprintf("%s, schema version %d", msg, version)
	}
	return cmdutil.PrintResult(cmd, result, msg)
}
