package manager

import (
	"context"
	"errors"
	"time"

	"github.com/marmos91/mdcatalog/internal/logger"
	catalogerrors "github.com/marmos91/mdcatalog/pkg/catalog/errors"
	"github.com/marmos91/mdcatalog/pkg/catalog/models"
	"github.com/marmos91/mdcatalog/pkg/catalog/query"
	"github.com/marmos91/mdcatalog/pkg/catalog/store"
)

// DraftManager manages published and draft records behind one interface.
//
// Routing is by explicit kind: records by their concrete type, updaters,
// specifications and paths by Kind(). A value that targets neither store
// fails with an UnrecognizedType error naming its Go type.
type DraftManager struct {
	*BaseManager
	drafts store.Repository
}

var _ Manager = (*DraftManager)(nil)

// NewDraftManager creates the dual-store manager.
func NewDraftManager(published, drafts store.Repository, opts ...Option) *DraftManager {
	return &DraftManager{
		BaseManager: NewBaseManager(published, opts...),
		drafts:      drafts,
	}
}

// Drafts returns the draft store.
func (m *DraftManager) Drafts() store.Repository {
	return m.drafts
}

func (m *DraftManager) draftStoreName() string {
	return m.drafts.Kind().String()
}

// ============================================================================
// Single Record Operations
// ============================================================================

// Save persists a published record to the published store and a draft to
// the draft store.
func (m *DraftManager) Save(ctx context.Context, record models.Record) (models.Record, error) {
	defer m.metrics.ObserveDuration(opSave, time.Now())

	if isNilRecord(record) {
		return nil, errNilRecord
	}

	switch rec := record.(type) {
	case *models.Metadata:
		return m.save(ctx, rec)
	case *models.MetadataDraft:
		saved, err := m.drafts.Save(ctx, rec)
		m.metrics.ObserveStoreCall(opSave, m.draftStoreName(), err)
		return saved, err
	default:
		return nil, catalogerrors.NewUnrecognizedTypeError(record, nil)
	}
}

// Get looks the id up in the published store, then in the draft store.
func (m *DraftManager) Get(ctx context.Context, id int) (models.Record, error) {
	defer m.metrics.ObserveDuration(opGet, time.Now())

	rec, err := m.get(ctx, id)
	if err == nil || !catalogerrors.IsNotFoundError(err) {
		return rec, err
	}

	rec, err = m.drafts.Get(ctx, id)
	m.metrics.ObserveStoreCall(opGet, m.draftStoreName(), err)
	return rec, err
}

// Exists reports whether either store holds the id.
func (m *DraftManager) Exists(ctx context.Context, id int) (bool, error) {
	defer m.metrics.ObserveDuration(opExists, time.Now())

	found, err := m.exists(ctx, id)
	if err != nil || found {
		return found, err
	}
	return m.draftExists(ctx, opExists, id)
}

func (m *DraftManager) draftExists(ctx context.Context, op string, id int) (bool, error) {
	found, err := m.drafts.Exists(ctx, id)
	m.metrics.ObserveStoreCall(op, m.draftStoreName(), err)
	return found, err
}

// Update applies updater to the record with the given id.
//
// A published-kind updater is tried on the published store first. If that
// does not produce a result the failure is logged and swallowed, and the
// call falls through: a draft-kind updater is then applied to the draft
// store, anything else fails with UnrecognizedType carrying the published
// failure as its cause.
func (m *DraftManager) Update(ctx context.Context, id int, updater query.Updater) (models.Record, error) {
	defer m.metrics.ObserveDuration(opUpdate, time.Now())

	var kind models.Kind
	if updater != nil {
		kind = updater.Kind()
	}

	var publishedErr error
	if kind == models.KindMetadata {
		rec, err := m.update(ctx, id, updater)
		if err == nil {
			return rec, nil
		}
		if catalogerrors.IsTypeMismatchError(err) {
			logger.DebugCtx(ctx, "Updater rejected by published store",
				logger.RecordID(id), logger.Err(err))
		} else {
			logger.ErrorCtx(ctx, "Published store update failed",
				logger.RecordID(id), logger.Err(err))
			publishedErr = err
		}
		m.metrics.ObserveFallback(opUpdate)
	}

	if kind == models.KindDraft {
		rec, err := m.drafts.Update(ctx, id, updater)
		m.metrics.ObserveStoreCall(opUpdate, m.draftStoreName(), err)
		return rec, err
	}

	return nil, catalogerrors.NewUnrecognizedTypeError(updater, publishedErr)
}

// UpdateOwner replaces the owner and group owner of a record. If the draft
// store holds the id the draft is updated, otherwise the published record.
// The existence check and the update run under the process-wide owner lock.
func (m *DraftManager) UpdateOwner(ctx context.Context, id, owner, groupOwner int) error {
	defer m.metrics.ObserveDuration(opUpdateOwner, time.Now())
	if err := validateOwner(id, owner, groupOwner); err != nil {
		return err
	}

	unlock := lockOwner(m.metrics)
	defer unlock()

	isDraft, err := m.draftExists(ctx, opUpdateOwner, id)
	if err != nil {
		return err
	}
	if !isDraft {
		return m.updateOwner(ctx, id, owner, groupOwner)
	}

	group := groupOwner
	_, err = m.drafts.Update(ctx, id, query.SetOwner(models.KindDraft, owner, &group))
	m.metrics.ObserveStoreCall(opUpdateOwner, m.draftStoreName(), err)
	if err != nil {
		return err
	}
	logger.DebugCtx(ctx, "Updated record owner",
		logger.RecordID(id), logger.Store(m.draftStoreName()),
		logger.Owner(owner), logger.GroupOwner(groupOwner))
	return nil
}

// Delete removes the record from the published store and then, whatever
// the outcome, removes any draft with the same id.
//
// A NotFound from the published store is not reported when a draft was
// removed. Other failures from either store are joined. The two deletes
// are not atomic: if the draft delete fails after the published delete
// succeeded, the draft remains and Reconcile will not remove it (it only
// removes drafts shadowing a published record).
func (m *DraftManager) Delete(ctx context.Context, id int) error {
	defer m.metrics.ObserveDuration(opDelete, time.Now())

	publishedErr := m.delete(ctx, id)

	var draftErr error
	draftRemoved := false
	isDraft, err := m.draftExists(ctx, opDelete, id)
	switch {
	case err != nil:
		draftErr = err
	case isDraft:
		err := m.drafts.Delete(ctx, id)
		m.metrics.ObserveStoreCall(opDelete, m.draftStoreName(), err)
		if err != nil && !catalogerrors.IsNotFoundError(err) {
			draftErr = err
		}
		draftRemoved = err == nil
	}

	if draftRemoved && catalogerrors.IsNotFoundError(publishedErr) {
		publishedErr = nil
	}
	if draftErr != nil {
		logger.ErrorCtx(ctx, "Draft delete failed",
			logger.RecordID(id), logger.Err(draftErr))
	}
	return errors.Join(publishedErr, draftErr)
}

// ============================================================================
// Bulk Operations
// ============================================================================

// DeleteAll removes every record matching spec from the store spec targets.
func (m *DraftManager) DeleteAll(ctx context.Context, spec query.Specification) (int64, error) {
	defer m.metrics.ObserveDuration(opDeleteAll, time.Now())

	switch kindOf(spec) {
	case models.KindMetadata:
		return m.deleteAll(ctx, spec)
	case models.KindDraft:
		n, err := m.drafts.DeleteAll(ctx, spec)
		m.metrics.ObserveStoreCall(opDeleteAll, m.draftStoreName(), err)
		return n, err
	default:
		return 0, catalogerrors.NewUnrecognizedTypeError(spec, nil)
	}
}

// BatchUpdate sets the column named by path on every record matching spec.
// The path decides the store. A spec the store rejects cannot be served by
// the other store either, since the path only exists in one of them, so the
// call fails with UnrecognizedType naming the spec.
func (m *DraftManager) BatchUpdate(ctx context.Context, path query.PathSpec, value string, spec query.Specification) (int64, error) {
	defer m.metrics.ObserveDuration(opBatchUpdate, time.Now())

	var kind models.Kind
	if path != nil {
		kind = path.Kind()
	}

	var (
		n   int64
		err error
	)
	switch kind {
	case models.KindMetadata:
		n, err = m.batchUpdate(ctx, path, value, spec)
	case models.KindDraft:
		n, err = m.drafts.BatchUpdate(ctx, path, value, spec)
		m.metrics.ObserveStoreCall(opBatchUpdate, m.draftStoreName(), err)
	default:
		return 0, catalogerrors.NewUnrecognizedTypeError(path, nil)
	}

	if catalogerrors.IsTypeMismatchError(err) {
		logger.DebugCtx(ctx, "Specification rejected by the store of the path",
			logger.Store(kind.String()), logger.Err(err))
		return 0, catalogerrors.NewUnrecognizedTypeError(spec, err)
	}
	return n, err
}

// FindAllSourceInfo returns the union of the source info found in both
// stores. A store that does not accept spec contributes nothing; this
// operation never fails with UnrecognizedType. Draft entries are merged
// last and win on an id present in both stores.
func (m *DraftManager) FindAllSourceInfo(ctx context.Context, spec query.Specification) (map[int]models.SourceInfo, error) {
	defer m.metrics.ObserveDuration(opFindAllSourceInfo, time.Now())

	out := make(map[int]models.SourceInfo)

	published, err := m.findAllSourceInfo(ctx, spec)
	switch {
	case err == nil:
		for id, info := range published {
			out[id] = info
		}
	case catalogerrors.IsTypeMismatchError(err):
		logger.DebugCtx(ctx, "Specification rejected by published store", logger.Err(err))
	default:
		return nil, err
	}

	drafts, err := m.drafts.FindAllSourceInfo(ctx, spec)
	m.metrics.ObserveStoreCall(opFindAllSourceInfo, m.draftStoreName(), err)
	switch {
	case err == nil:
		for id, info := range drafts {
			out[id] = info
		}
	case catalogerrors.IsTypeMismatchError(err):
		logger.DebugCtx(ctx, "Specification rejected by draft store", logger.Err(err))
	default:
		return nil, err
	}

	return out, nil
}

// ============================================================================
// Consistency
// ============================================================================

// Reconcile removes drafts whose id is also held by the published store, so
// that every id lives in at most one store again. It returns the ids of the
// removed drafts in ascending order.
func (m *DraftManager) Reconcile(ctx context.Context) ([]int, error) {
	defer m.metrics.ObserveDuration(opReconcile, time.Now())

	publishedIDs, err := m.published.ListIDs(ctx)
	m.metrics.ObserveStoreCall(opReconcile, m.storeName(), err)
	if err != nil {
		return nil, err
	}
	draftIDs, err := m.drafts.ListIDs(ctx)
	m.metrics.ObserveStoreCall(opReconcile, m.draftStoreName(), err)
	if err != nil {
		return nil, err
	}

	inPublished := make(map[int]struct{}, len(publishedIDs))
	for _, id := range publishedIDs {
		inPublished[id] = struct{}{}
	}

	removed := []int{}
	for _, id := range draftIDs {
		if _, ok := inPublished[id]; !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		err := m.drafts.Delete(ctx, id)
		m.metrics.ObserveStoreCall(opReconcile, m.draftStoreName(), err)
		if err != nil && !catalogerrors.IsNotFoundError(err) {
			return removed, err
		}
		logger.WarnCtx(ctx, "Removed draft shadowing a published record", logger.RecordID(id))
		removed = append(removed, id)
	}

	return removed, nil
}

func kindOf(spec query.Specification) models.Kind {
	if spec == nil {
		return ""
	}
	return spec.Kind()
}
