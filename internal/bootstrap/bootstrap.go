// Package bootstrap turns a loaded configuration into a ready-to-use
// catalog. It opens the SQL store and the draft store selected by
// drafts.backend, then builds the DraftManager with optional metrics.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marmos91/mdcatalog/internal/logger"
	"github.com/marmos91/mdcatalog/pkg/api/handlers"
	"github.com/marmos91/mdcatalog/pkg/catalog/manager"
	"github.com/marmos91/mdcatalog/pkg/catalog/models"
	"github.com/marmos91/mdcatalog/pkg/catalog/store"
	"github.com/marmos91/mdcatalog/pkg/catalog/store/badger"
	"github.com/marmos91/mdcatalog/pkg/config"
	"github.com/marmos91/mdcatalog/pkg/metrics"
)

var (
	catalogMetricsOnce sync.Once
	catalogMetrics     *metrics.CatalogMetrics
)

// Catalog holds the opened stores and the manager built on them.
type Catalog struct {
	Config   *config.Config
	Manager  *manager.DraftManager
	Database *store.GORMStore
	Registry *prometheus.Registry

	// badgerDrafts is set when drafts live in BadgerDB.
	badgerDrafts *badger.DraftStore
	draftBackend string
}

// Open opens every store named by cfg and builds the DraftManager.
// The caller must Close the returned Catalog.
func Open(ctx context.Context, cfg *config.Config) (*Catalog, error) {
	db, err := store.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	c := &Catalog{Config: cfg, Database: db, draftBackend: string(cfg.Database.Type)}

	drafts := db.Drafts()
	if cfg.Drafts.Backend == config.DraftBackendBadger {
		bs, err := badger.Open(cfg.Drafts.Badger)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to open draft store: %w", err)
		}
		c.badgerDrafts = bs
		c.draftBackend = string(config.DraftBackendBadger)
		drafts = bs
	}

	var opts []manager.Option
	if cfg.Metrics.Enabled {
		c.Registry = metrics.InitRegistry()
		opts = append(opts, manager.WithMetrics(sharedCatalogMetrics(c.Registry)))
	}

	// Tracing wraps are no-ops unless telemetry was initialized first.
	c.Manager = manager.NewDraftManager(store.WithTracing(db.Metadata()), store.WithTracing(drafts), opts...)

	logger.Info("Catalog opened",
		"database", cfg.Database.Type,
		"drafts_backend", cfg.Drafts.Backend,
		"metrics", cfg.Metrics.Enabled)

	return c, nil
}

// sharedCatalogMetrics registers the manager metrics once per process.
func sharedCatalogMetrics(reg prometheus.Registerer) *metrics.CatalogMetrics {
	catalogMetricsOnce.Do(func() {
		catalogMetrics = metrics.NewCatalogMetrics(reg)
	})
	return catalogMetrics
}

// HealthChecks returns one check per store for the readiness probe.
func (c *Catalog) HealthChecks() []handlers.StoreCheck {
	checks := []handlers.StoreCheck{{
		Name:    models.KindMetadata.String(),
		Backend: string(c.Database.Type()),
		Checker: c.Database,
	}}

	var draftChecker handlers.Checker = c.Database
	if c.badgerDrafts != nil {
		draftChecker = c.badgerDrafts
	}
	checks = append(checks, handlers.StoreCheck{
		Name:    models.KindDraft.String(),
		Backend: c.draftBackend,
		Checker: draftChecker,
	})

	return checks
}

// Gatherer returns the metrics registry as a gatherer, or nil when metrics
// are disabled.
func (c *Catalog) Gatherer() prometheus.Gatherer {
	if c.Registry == nil {
		return nil
	}
	return c.Registry
}

// Close closes every store. Errors are joined.
func (c *Catalog) Close() error {
	var errs []error
	if c.badgerDrafts != nil {
		errs = append(errs, c.badgerDrafts.Close())
	}
	errs = append(errs, c.Database.Close())
	return errors.Join(errs...)
}
