package manager

import (
	"context"
	"time"

	"github.com/marmos91/mdcatalog/internal/logger"
	catalogerrors "github.com/marmos91/mdcatalog/pkg/catalog/errors"
	"github.com/marmos91/mdcatalog/pkg/catalog/models"
	"github.com/marmos91/mdcatalog/pkg/catalog/query"
	"github.com/marmos91/mdcatalog/pkg/catalog/store"
	"github.com/marmos91/mdcatalog/pkg/metrics"
)

// BaseManager manages published records.
//
// Calls that carry a draft record, updater, specification or path fail with
// a TypeMismatch error from the published store.
type BaseManager struct {
	published store.Repository
	metrics   *metrics.CatalogMetrics
}

var _ Manager = (*BaseManager)(nil)

// NewBaseManager creates a manager over the published store.
func NewBaseManager(published store.Repository, opts ...Option) *BaseManager {
	o := applyOptions(opts)
	return &BaseManager{
		published: published,
		metrics:   o.metrics,
	}
}

// Published returns the published store.
func (m *BaseManager) Published() store.Repository {
	return m.published
}

func (m *BaseManager) storeName() string {
	return m.published.Kind().String()
}

// ============================================================================
// Manager Implementation
// ============================================================================

// Save implements Manager.
func (m *BaseManager) Save(ctx context.Context, record models.Record) (models.Record, error) {
	defer m.metrics.ObserveDuration(opSave, time.Now())
	if isNilRecord(record) {
		return nil, errNilRecord
	}
	return m.save(ctx, record)
}

// Get implements Manager.
func (m *BaseManager) Get(ctx context.Context, id int) (models.Record, error) {
	defer m.metrics.ObserveDuration(opGet, time.Now())
	return m.get(ctx, id)
}

// Exists implements Manager.
func (m *BaseManager) Exists(ctx context.Context, id int) (bool, error) {
	defer m.metrics.ObserveDuration(opExists, time.Now())
	return m.exists(ctx, id)
}

// Update implements Manager.
func (m *BaseManager) Update(ctx context.Context, id int, updater query.Updater) (models.Record, error) {
	defer m.metrics.ObserveDuration(opUpdate, time.Now())
	return m.update(ctx, id, updater)
}

// UpdateOwner implements Manager.
func (m *BaseManager) UpdateOwner(ctx context.Context, id, owner, groupOwner int) error {
	defer m.metrics.ObserveDuration(opUpdateOwner, time.Now())
	if err := validateOwner(id, owner, groupOwner); err != nil {
		return err
	}

	unlock := lockOwner(m.metrics)
	defer unlock()

	return m.updateOwner(ctx, id, owner, groupOwner)
}

// Delete implements Manager.
func (m *BaseManager) Delete(ctx context.Context, id int) error {
	defer m.metrics.ObserveDuration(opDelete, time.Now())
	return m.delete(ctx, id)
}

// DeleteAll implements Manager.
func (m *BaseManager) DeleteAll(ctx context.Context, spec query.Specification) (int64, error) {
	defer m.metrics.ObserveDuration(opDeleteAll, time.Now())
	return m.deleteAll(ctx, spec)
}

// BatchUpdate implements Manager.
func (m *BaseManager) BatchUpdate(ctx context.Context, path query.PathSpec, value string, spec query.Specification) (int64, error) {
	defer m.metrics.ObserveDuration(opBatchUpdate, time.Now())
	return m.batchUpdate(ctx, path, value, spec)
}

// FindAllSourceInfo implements Manager.
func (m *BaseManager) FindAllSourceInfo(ctx context.Context, spec query.Specification) (map[int]models.SourceInfo, error) {
	defer m.metrics.ObserveDuration(opFindAllSourceInfo, time.Now())
	return m.findAllSourceInfo(ctx, spec)
}

// ============================================================================
// Published Store Calls
// ============================================================================
//
// The unexported variants are shared with DraftManager so that facade calls
// are timed once, at the facade.

func (m *BaseManager) save(ctx context.Context, record models.Record) (models.Record, error) {
	saved, err := m.published.Save(ctx, record)
	m.metrics.ObserveStoreCall(opSave, m.storeName(), err)
	return saved, err
}

func (m *BaseManager) get(ctx context.Context, id int) (models.Record, error) {
	rec, err := m.published.Get(ctx, id)
	m.metrics.ObserveStoreCall(opGet, m.storeName(), err)
	return rec, err
}

func (m *BaseManager) exists(ctx context.Context, id int) (bool, error) {
	found, err := m.published.Exists(ctx, id)
	m.metrics.ObserveStoreCall(opExists, m.storeName(), err)
	return found, err
}

func (m *BaseManager) update(ctx context.Context, id int, updater query.Updater) (models.Record, error) {
	rec, err := m.published.Update(ctx, id, updater)
	m.metrics.ObserveStoreCall(opUpdate, m.storeName(), err)
	return rec, err
}

// updateOwner must be called with ownerMu held.
func (m *BaseManager) updateOwner(ctx context.Context, id, owner, groupOwner int) error {
	group := groupOwner
	_, err := m.published.Update(ctx, id, query.SetOwner(m.published.Kind(), owner, &group))
	m.metrics.ObserveStoreCall(opUpdateOwner, m.storeName(), err)
	if err != nil {
		return err
	}
	logger.DebugCtx(ctx, "Updated record owner",
		logger.RecordID(id), logger.Store(m.storeName()),
		logger.Owner(owner), logger.GroupOwner(groupOwner))
	return nil
}

func (m *BaseManager) delete(ctx context.Context, id int) error {
	err := m.published.Delete(ctx, id)
	m.metrics.ObserveStoreCall(opDelete, m.storeName(), err)
	return err
}

func (m *BaseManager) deleteAll(ctx context.Context, spec query.Specification) (int64, error) {
	n, err := m.published.DeleteAll(ctx, spec)
	m.metrics.ObserveStoreCall(opDeleteAll, m.storeName(), err)
	return n, err
}

func (m *BaseManager) batchUpdate(ctx context.Context, path query.PathSpec, value string, spec query.Specification) (int64, error) {
	n, err := m.published.BatchUpdate(ctx, path, value, spec)
	m.metrics.ObserveStoreCall(opBatchUpdate, m.storeName(), err)
	return n, err
}

func (m *BaseManager) findAllSourceInfo(ctx context.Context, spec query.Specification) (map[int]models.SourceInfo, error) {
	infos, err := m.published.FindAllSourceInfo(ctx, spec)
	m.metrics.ObserveStoreCall(opFindAllSourceInfo, m.storeName(), err)
	return infos, err
}

// validateOwner rejects negative ids.
var errNilRecord = catalogerrors.NewInvalidArgumentError("record must not be nil")

// isNilRecord reports whether record is nil or a nil pointer of a known
// record type.
func isNilRecord(record models.Record) bool {
	switch rec := record.(type) {
	case nil:
		return true
	case *models.Metadata:
		return rec == nil
	case *models.MetadataDraft:
		return rec == nil
	}
	return false
}

func validateOwner(id, owner, groupOwner int) error {
	switch {
	case id <= 0:
		return catalogerrors.NewInvalidArgumentError("record id must be positive")
	case owner < 0:
		return catalogerrors.NewInvalidArgumentError("owner must not be negative")
	case groupOwner < 0:
		return catalogerrors.NewInvalidArgumentError("group owner must not be negative")
	}
	return nil
}
