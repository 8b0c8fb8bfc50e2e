package manager

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/marmos91/mdcatalog/pkg/catalog/models"
	"github.com/marmos91/mdcatalog/pkg/catalog/query"
	"github.com/marmos91/mdcatalog/pkg/catalog/store"
	"github.com/marmos91/mdcatalog/pkg/catalog/store/badger"
)

// ============================================================================
// Fixtures
// ============================================================================

func intPtr(v int) *int { return &v }

func newEntry(id, owner int) models.Entry {
	return models.Entry{
		ID:         id,
		UUID:       fmt.Sprintf("rec-%d", id),
		Data:       "<gmd:MD_Metadata/>",
		DataInfo:   models.DataInfo{SchemaID: "iso19139", Type: models.TypeMetadata},
		SourceInfo: models.SourceInfo{Owner: owner, SourceID: "node-a"},
	}
}

func published(id, owner int) *models.Metadata {
	return &models.Metadata{Entry: newEntry(id, owner)}
}

func draft(id, owner int) *models.MetadataDraft {
	return &models.MetadataDraft{Entry: newEntry(id, owner)}
}

// openSQLStore opens a SQLite catalog in a per-test temporary directory.
func openSQLStore(t *testing.T) *store.GORMStore {
	t.Helper()
	s, err := store.Open(context.Background(), &store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: filepath.Join(t.TempDir(), "catalog.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// draftBackends lists the draft store implementations every routing test
// runs against. Published records always live in SQL.
var draftBackends = map[string]func(t *testing.T, sql *store.GORMStore) store.Repository{
	"sql": func(_ *testing.T, sql *store.GORMStore) store.Repository {
		return sql.Drafts()
	},
	"badger": func(t *testing.T, _ *store.GORMStore) store.Repository {
		s, err := badger.Open(badger.Config{InMemory: true})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	},
}

// forEachBackend runs fn once per draft backend with a fresh manager.
func forEachBackend(t *testing.T, fn func(t *testing.T, m *DraftManager)) {
	t.Helper()
	for name, newDrafts := range draftBackends {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			sql := openSQLStore(t)
			fn(t, NewDraftManager(sql.Metadata(), newDrafts(t, sql)))
		})
	}
}

// seed saves records through the manager.
func seed(t *testing.T, m Manager, records ...models.Record) {
	t.Helper()
	for _, r := range records {
		_, err := m.Save(context.Background(), r)
		require.NoError(t, err)
	}
}

// assertDisjoint checks that no id is held by both stores.
func assertDisjoint(t *testing.T, m *DraftManager) {
	t.Helper()
	ctx := context.Background()
	pubIDs, err := m.Published().ListIDs(ctx)
	require.NoError(t, err)
	draftIDs, err := m.Drafts().ListIDs(ctx)
	require.NoError(t, err)
	for _, id := range draftIDs {
		assert.NotContains(t, pubIDs, id, "id %d held by both stores", id)
	}
}

// ============================================================================
// Foreign Kinds
// ============================================================================

const kindLink models.Kind = "metadata_link"

type linkRecord struct{ models.Entry }

func (*linkRecord) RecordKind() models.Kind   { return kindLink }
func (r *linkRecord) GetID() int              { return r.ID }
func (r *linkRecord) GetEntry() *models.Entry { return &r.Entry }

type linkUpdater struct{}

func (linkUpdater) Kind() models.Kind         { return kindLink }
func (linkUpdater) Apply(models.Record) error { return nil }

type linkSpec struct{}

func (linkSpec) Kind() models.Kind          { return kindLink }
func (linkSpec) Scope(db *gorm.DB) *gorm.DB { return db }
func (linkSpec) Matches(models.Record) bool { return true }
func (linkSpec) String() string             { return "metadata_link(*)" }

type linkPath struct{}

func (linkPath) Kind() models.Kind         { return kindLink }
func (linkPath) Column() string            { return "uuid" }
func (linkPath) Set(*models.Entry, string) {}

var (
	_ models.Record       = (*linkRecord)(nil)
	_ query.Updater       = linkUpdater{}
	_ query.Specification = linkSpec{}
	_ query.PathSpec      = linkPath{}
)

// ============================================================================
// Delay Injection
// ============================================================================

// concurrencyTracker records how many tracked updates run at once.
type concurrencyTracker struct {
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32

	mu    sync.Mutex
	spans [][2]time.Time
}

func (c *concurrencyTracker) enter() time.Time {
	n := c.inFlight.Add(1)
	for {
		peak := c.peak.Load()
		if n <= peak || c.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	return time.Now()
}

func (c *concurrencyTracker) leave(start time.Time) {
	c.inFlight.Add(-1)
	c.mu.Lock()
	c.spans = append(c.spans, [2]time.Time{start, time.Now()})
	c.mu.Unlock()
}

// slowRepository delays Update so that overlapping calls would be visible.
type slowRepository struct {
	store.Repository
	tracker *concurrencyTracker
}

func (r *slowRepository) Update(ctx context.Context, id int, updater query.Updater) (models.Record, error) {
	start := r.tracker.enter()
	defer r.tracker.leave(start)
	time.Sleep(r.tracker.delay)
	return r.Repository.Update(ctx, id, updater)
}
