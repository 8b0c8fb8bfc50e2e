// Package store implements persistence for catalog records.
//
// A Repository holds exactly one record kind. Every operation checks the
// kind of its argument (record, updater, specification or path) against the
// repository's own and fails with a TypeMismatch error when they differ,
// without touching the backing store. Callers that manage several stores
// route on that error.
package store

import (
	"context"
	"io"

	"github.com/marmos91/mdcatalog/pkg/catalog/models"
	"github.com/marmos91/mdcatalog/pkg/catalog/query"
)

// Repository is the persistence interface for one record kind.
//
// Implementations must be safe for concurrent use. Each call is atomic on
// its own; no transaction spans several calls.
type Repository interface {
	// Kind returns the record kind held by this repository.
	Kind() models.Kind

	// ============================================================================
	// Single Record Operations
	// ============================================================================

	// Save inserts the record or replaces the stored record with the same id.
	// The id must be positive.
	//
	// Errors: TypeMismatch, InvalidArgument, AlreadyExists (uuid clash),
	// StoreFailure.
	Save(ctx context.Context, record models.Record) (models.Record, error)

	// Get returns the record with the given id.
	//
	// Errors: NotFound, StoreFailure.
	Get(ctx context.Context, id int) (models.Record, error)

	// Exists reports whether a record with the given id is stored.
	Exists(ctx context.Context, id int) (bool, error)

	// Update loads the record, applies the updater and persists the result
	// atomically. The updater must not change the record id.
	//
	// Errors: TypeMismatch, NotFound, InvalidArgument, StoreFailure.
	Update(ctx context.Context, id int, updater query.Updater) (models.Record, error)

	// Delete removes the record with the given id.
	//
	// Errors: NotFound, StoreFailure.
	Delete(ctx context.Context, id int) error

	// ============================================================================
	// Bulk Operations
	// ============================================================================

	// DeleteAll removes every record matching spec and returns the count.
	DeleteAll(ctx context.Context, spec query.Specification) (int64, error)

	// BatchUpdate sets the column named by path to value on every record
	// matching spec and returns the count. Path and spec must both target
	// this repository's kind.
	BatchUpdate(ctx context.Context, path query.PathSpec, value string, spec query.Specification) (int64, error)

	// FindAllSourceInfo returns the source info of every record matching
	// spec, keyed by record id.
	FindAllSourceInfo(ctx context.Context, spec query.Specification) (map[int]models.SourceInfo, error)

	// ListIDs returns the ids of all stored records in ascending order.
	ListIDs(ctx context.Context) ([]int, error)
}

// Backend is a repository that owns resources and can report its health.
type Backend interface {
	Repository
	io.Closer

	// Healthcheck verifies the backend is reachable.
	Healthcheck(ctx context.Context) error
}
