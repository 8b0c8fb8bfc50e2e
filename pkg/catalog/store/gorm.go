package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	catalogerrors "github.com/marmos91/mdcatalog/pkg/catalog/errors"
	"github.com/marmos91/mdcatalog/pkg/catalog/models"
)

// GORMStore holds the published and draft tables in one SQL database.
// It supports both SQLite and PostgreSQL backends via the same codebase.
type GORMStore struct {
	db     *gorm.DB
	config *Config

	metadata *gormRepository[models.Metadata, *models.Metadata]
	drafts   *gormRepository[models.MetadataDraft, *models.MetadataDraft]
}

// Open creates a catalog store based on the configuration and brings the
// schema up to date. SQLite uses GORM AutoMigrate; PostgreSQL applies the
// embedded SQL migrations.
func Open(ctx context.Context, config *Config) (*GORMStore, error) {
	if config == nil {
		config = &Config{}
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	var dialector gorm.Dialector
	switch config.Type {
	case DatabaseTypeSQLite:
		if err := os.MkdirAll(filepath.Dir(config.SQLite.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		// WAL for concurrent readers, busy_timeout to wait on a locked database
		dsn := config.SQLite.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		dialector = sqlite.Open(dsn)

	case DatabaseTypePostgres:
		dialector = postgres.Open(config.Postgres.DSN())

	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if config.Type == DatabaseTypePostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying database: %w", err)
		}
		sqlDB.SetMaxOpenConns(config.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(config.Postgres.MaxIdleConns)
	}

	s := &GORMStore{
		db:       db,
		config:   config,
		metadata: newGORMRepository[models.Metadata](db, models.KindMetadata),
		drafts:   newGORMRepository[models.MetadataDraft](db, models.KindDraft),
	}

	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// Migrate brings the schema up to date. It is idempotent.
func (s *GORMStore) Migrate(ctx context.Context) error {
	switch s.config.Type {
	case DatabaseTypePostgres:
		if err := runMigrations(ctx, s.config.Postgres.DSN()); err != nil {
			return fmt.Errorf("failed to run database migration: %w", err)
		}
	default:
		if err := s.db.WithContext(ctx).AutoMigrate(models.AllModels()...); err != nil {
			return fmt.Errorf("failed to run database migration: %w", err)
		}
	}
	return nil
}

// Metadata returns the repository over published records.
func (s *GORMStore) Metadata() Repository {
	return s.metadata
}

// Drafts returns the repository over draft records.
func (s *GORMStore) Drafts() Repository {
	return s.drafts
}

// DB returns the underlying GORM database connection.
// This is useful for advanced queries or testing.
func (s *GORMStore) DB() *gorm.DB {
	return s.db
}

// Type returns the configured database backend.
func (s *GORMStore) Type() DatabaseType {
	return s.config.Type
}

// Healthcheck pings the database.
func (s *GORMStore) Healthcheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the database connection pool.
func (s *GORMStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isUniqueConstraintError checks if the error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLite or PostgreSQL unique constraint errors
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "duplicate key value violates unique constraint")
}

// convertError maps GORM and driver errors to catalog errors. Errors that
// already carry a catalog code are returned unchanged.
func convertError(store string, op string, id int, err error) error {
	var storeErr *catalogerrors.StoreError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &storeErr):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return catalogerrors.NewNotFoundError(store, id)
	case isUniqueConstraintError(err):
		return catalogerrors.NewAlreadyExistsError(store, id)
	default:
		return catalogerrors.NewStoreFailureError(store, op, err)
	}
}
