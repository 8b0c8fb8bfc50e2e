// Package badger implements the draft Repository on top of BadgerDB.
//
// It lets the draft store live outside the SQL database, e.g. on the editing
// node's local disk, while published records stay in SQL. Specifications
// and paths are evaluated in memory through Matches and Set.
package badger

import (
	"context"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/mdcatalog/internal/logger"
	catalogerrors "github.com/marmos91/mdcatalog/pkg/catalog/errors"
	"github.com/marmos91/mdcatalog/pkg/catalog/models"
	"github.com/marmos91/mdcatalog/pkg/catalog/query"
	"github.com/marmos91/mdcatalog/pkg/catalog/store"
)

var storeName = models.KindDraft.String()

// Config configures the BadgerDB draft store.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string `mapstructure:"path" yaml:"path"`

	// InMemory keeps all data in memory. Intended for tests.
	InMemory bool `mapstructure:"in_memory" yaml:"in_memory"`

	// SyncWrites fsyncs every write before acknowledging it.
	SyncWrites bool `mapstructure:"sync_writes" yaml:"sync_writes"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return fmt.Errorf("badger path is required unless in_memory is set")
	}
	return nil
}

// DraftStore is a draft Repository backed by BadgerDB.
type DraftStore struct {
	db *badgerdb.DB
}

var _ store.Backend = (*DraftStore)(nil)

// Open opens (or creates) the BadgerDB draft store.
func Open(cfg Config) (*DraftStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := badgerdb.DefaultOptions(cfg.Path).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger draft store: %w", err)
	}

	logger.Debug("Opened badger draft store", "path", cfg.Path, "in_memory", cfg.InMemory)
	return &DraftStore{db: db}, nil
}

// Kind implements store.Repository.
func (s *DraftStore) Kind() models.Kind {
	return models.KindDraft
}

// ============================================================================
// Transaction Helpers
// ============================================================================

// loadDraft reads the draft with the given id inside txn.
func loadDraft(txn *badgerdb.Txn, id int) (*models.MetadataDraft, error) {
	item, err := txn.Get(keyDraft(id))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, catalogerrors.NewNotFoundError(storeName, id)
	}
	if err != nil {
		return nil, err
	}

	var draft *models.MetadataDraft
	err = item.Value(func(val []byte) error {
		var decErr error
		draft, decErr = decodeDraft(val)
		return decErr
	})
	return draft, err
}

// putDraft writes draft and keeps the uuid index consistent. prevUUID is
// the uuid currently indexed for this id, or "" for a new record.
func putDraft(txn *badgerdb.Txn, draft *models.MetadataDraft, prevUUID string) error {
	if draft.UUID != prevUUID {
		item, err := txn.Get(keyUUID(draft.UUID))
		switch {
		case err == nil:
			var owner int
			if err := item.Value(func(val []byte) error {
				var decErr error
				owner, decErr = decodeID(val)
				return decErr
			}); err != nil {
				return err
			}
			if owner != draft.ID {
				return catalogerrors.NewAlreadyExistsError(storeName, draft.ID)
			}
		case !errors.Is(err, badgerdb.ErrKeyNotFound):
			return err
		}

		if prevUUID != "" {
			if err := txn.Delete(keyUUID(prevUUID)); err != nil {
				return err
			}
		}
		if err := txn.Set(keyUUID(draft.UUID), encodeID(draft.ID)); err != nil {
			return err
		}
	}

	data, err := encodeDraft(draft)
	if err != nil {
		return err
	}
	return txn.Set(keyDraft(draft.ID), data)
}

// scan returns every draft accepted by keep. Values are decoded before the
// iterator moves on, so callers may write to txn afterwards.
func scan(txn *badgerdb.Txn, keep func(*models.MetadataDraft) bool) ([]*models.MetadataDraft, error) {
	it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
	defer it.Close()

	var out []*models.MetadataDraft
	prefix := []byte(prefixDraft)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var draft *models.MetadataDraft
		err := it.Item().Value(func(val []byte) error {
			var decErr error
			draft, decErr = decodeDraft(val)
			return decErr
		})
		if err != nil {
			return nil, err
		}
		if keep(draft) {
			out = append(out, draft)
		}
	}
	return out, nil
}

// wrap converts badger errors to catalog errors, leaving catalog errors as they are.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *catalogerrors.StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return catalogerrors.NewStoreFailureError(storeName, op, err)
}

// ============================================================================
// Single Record Operations
// ============================================================================

// Save implements store.Repository.
func (s *DraftStore) Save(ctx context.Context, record models.Record) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	draft, ok := record.(*models.MetadataDraft)
	if !ok || draft == nil {
		return nil, catalogerrors.NewTypeMismatchError(storeName, record)
	}
	if draft.ID <= 0 {
		return nil, catalogerrors.NewInvalidArgumentError("record id must be positive")
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		prevUUID := ""
		existing, err := loadDraft(txn, draft.ID)
		switch {
		case err == nil:
			prevUUID = existing.UUID
		case !catalogerrors.IsNotFoundError(err):
			return err
		}
		return putDraft(txn, draft, prevUUID)
	})
	if err != nil {
		return nil, wrap("save", err)
	}
	return draft, nil
}

// Get implements store.Repository.
func (s *DraftStore) Get(ctx context.Context, id int) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var draft *models.MetadataDraft
	err := s.db.View(func(txn *badgerdb.Txn) error {
		var err error
		draft, err = loadDraft(txn, id)
		return err
	})
	if err != nil {
		return nil, wrap("get", err)
	}
	return draft, nil
}

// Exists implements store.Repository.
func (s *DraftStore) Exists(ctx context.Context, id int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	found := false
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(keyDraft(id))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, wrap("exists", err)
	}
	return found, nil
}

// Update implements store.Repository.
func (s *DraftStore) Update(ctx context.Context, id int, updater query.Updater) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if updater == nil || updater.Kind() != models.KindDraft {
		return nil, catalogerrors.NewTypeMismatchError(storeName, updater)
	}

	var draft *models.MetadataDraft
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		var err error
		draft, err = loadDraft(txn, id)
		if err != nil {
			return err
		}
		prevUUID := draft.UUID
		if err := updater.Apply(draft); err != nil {
			return err
		}
		if draft.ID != id {
			return catalogerrors.NewInvalidArgumentError("updater must not change the record id")
		}
		return putDraft(txn, draft, prevUUID)
	})
	if err != nil {
		return nil, wrap("update", err)
	}
	return draft, nil
}

// Delete implements store.Repository.
func (s *DraftStore) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		draft, err := loadDraft(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(keyUUID(draft.UUID)); err != nil {
			return err
		}
		return txn.Delete(keyDraft(id))
	})
	return wrap("delete", err)
}

// ============================================================================
// Bulk Operations
// ============================================================================
//
// Bulk operations run in a single read-write transaction, so a very large
// match set can fail with badger.ErrTxnTooBig.

// DeleteAll implements store.Repository.
func (s *DraftStore) DeleteAll(ctx context.Context, spec query.Specification) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if spec == nil || spec.Kind() != models.KindDraft {
		return 0, catalogerrors.NewTypeMismatchError(storeName, spec)
	}

	var n int64
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		matches, err := scan(txn, func(d *models.MetadataDraft) bool { return spec.Matches(d) })
		if err != nil {
			return err
		}
		for _, d := range matches {
			if err := txn.Delete(keyUUID(d.UUID)); err != nil {
				return err
			}
			if err := txn.Delete(keyDraft(d.ID)); err != nil {
				return err
			}
		}
		n = int64(len(matches))
		return nil
	})
	if err != nil {
		return 0, wrap("delete all", err)
	}
	return n, nil
}

// BatchUpdate implements store.Repository.
func (s *DraftStore) BatchUpdate(ctx context.Context, path query.PathSpec, value string, spec query.Specification) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if path == nil || path.Kind() != models.KindDraft {
		return 0, catalogerrors.NewTypeMismatchError(storeName, path)
	}
	if spec == nil || spec.Kind() != models.KindDraft {
		return 0, catalogerrors.NewTypeMismatchError(storeName, spec)
	}

	var n int64
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		matches, err := scan(txn, func(d *models.MetadataDraft) bool { return spec.Matches(d) })
		if err != nil {
			return err
		}
		for _, d := range matches {
			prevUUID := d.UUID
			path.Set(&d.Entry, value)
			if err := putDraft(txn, d, prevUUID); err != nil {
				return err
			}
		}
		n = int64(len(matches))
		return nil
	})
	if err != nil {
		return 0, wrap("batch update", err)
	}
	return n, nil
}

// FindAllSourceInfo implements store.Repository.
func (s *DraftStore) FindAllSourceInfo(ctx context.Context, spec query.Specification) (map[int]models.SourceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if spec == nil || spec.Kind() != models.KindDraft {
		return nil, catalogerrors.NewTypeMismatchError(storeName, spec)
	}

	out := make(map[int]models.SourceInfo)
	err := s.db.View(func(txn *badgerdb.Txn) error {
		matches, err := scan(txn, func(d *models.MetadataDraft) bool { return spec.Matches(d) })
		if err != nil {
			return err
		}
		for _, d := range matches {
			out[d.ID] = d.SourceInfo
		}
		return nil
	})
	if err != nil {
		return nil, wrap("find source info", err)
	}
	return out, nil
}

// ListIDs implements store.Repository.
func (s *DraftStore) ListIDs(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := []int{}
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixDraft)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id, err := idFromDraftKey(it.Item().Key())
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, wrap("list ids", err)
	}
	return ids, nil
}

// ============================================================================
// Lifecycle
// ============================================================================

// Healthcheck verifies the database is accessible.
func (s *DraftStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return fmt.Errorf("healthcheck failed: badger draft store is closed")
	}
	if err := s.db.View(func(*badgerdb.Txn) error { return nil }); err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *DraftStore) Close() error {
	return s.db.Close()
}
