// Package manager provides the record managers consumers use to persist
// catalog metadata.
//
// BaseManager works on the published store only. DraftManager wraps a
// BaseManager and adds the draft store: it routes each call to the store the
// record, updater, specification or path targets and merges results when an
// operation spans both. Consumers program against Manager and cannot tell
// the two apart.
//
// The two stores are independent. No operation is atomic across them; see
// DraftManager.Delete and DraftManager.Reconcile.
package manager

import (
	"context"
	"sync"
	"time"

	"github.com/marmos91/mdcatalog/pkg/catalog/models"
	"github.com/marmos91/mdcatalog/pkg/catalog/query"
	"github.com/marmos91/mdcatalog/pkg/metrics"
)

// Manager is the record manager interface shared by BaseManager and
// DraftManager.
type Manager interface {
	// Save inserts or replaces a record.
	Save(ctx context.Context, record models.Record) (models.Record, error)

	// Get returns the record with the given id.
	Get(ctx context.Context, id int) (models.Record, error)

	// Exists reports whether any managed store holds the id.
	Exists(ctx context.Context, id int) (bool, error)

	// Update loads, mutates and persists the record with the given id.
	Update(ctx context.Context, id int, updater query.Updater) (models.Record, error)

	// UpdateOwner replaces the owner and group owner of a record. Calls are
	// serialized process-wide.
	UpdateOwner(ctx context.Context, id, owner, groupOwner int) error

	// Delete removes the record with the given id.
	Delete(ctx context.Context, id int) error

	// DeleteAll removes every record matching spec.
	DeleteAll(ctx context.Context, spec query.Specification) (int64, error)

	// BatchUpdate sets the column named by path to value on every record
	// matching spec.
	BatchUpdate(ctx context.Context, path query.PathSpec, value string, spec query.Specification) (int64, error)

	// FindAllSourceInfo returns the source info of every record matching spec.
	FindAllSourceInfo(ctx context.Context, spec query.Specification) (map[int]models.SourceInfo, error)
}

// Operation names used for logging and metrics.
const (
	opSave              = "save"
	opGet               = "get"
	opExists            = "exists"
	opUpdate            = "update"
	opUpdateOwner       = "update_owner"
	opDelete            = "delete"
	opDeleteAll         = "delete_all"
	opBatchUpdate       = "batch_update"
	opFindAllSourceInfo = "find_all_source_info"
	opReconcile         = "reconcile"
)

// ownerMu serializes every owner update in the process, whichever manager
// and whichever store it goes to.
var ownerMu sync.Mutex

// lockOwner acquires ownerMu and returns its release function.
func lockOwner(m *metrics.CatalogMetrics) func() {
	start := time.Now()
	ownerMu.Lock()
	m.ObserveOwnerLockWait(time.Since(start))
	return ownerMu.Unlock
}

// Option configures a manager.
type Option func(*options)

type options struct {
	metrics *metrics.CatalogMetrics
}

// WithMetrics attaches Prometheus metrics. A nil value disables them.
func WithMetrics(m *metrics.CatalogMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
