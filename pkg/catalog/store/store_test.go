package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogerrors "github.com/marmos91/mdcatalog/pkg/catalog/errors"
	"github.com/marmos91/mdcatalog/pkg/catalog/models"
	"github.com/marmos91/mdcatalog/pkg/catalog/query"
)

// newTestStore opens a SQLite store in a per-test temporary directory.
func newTestStore(t *testing.T) *GORMStore {
	t.Helper()

	s, err := Open(context.Background(), &Config{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: filepath.Join(t.TempDir(), "catalog.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func intPtr(v int) *int { return &v }

func newEntry(id int, owner int) models.Entry {
	now := time.Now().UTC().Truncate(time.Second)
	return models.Entry{
		ID:   id,
		UUID: fmt.Sprintf("uuid-%d", id),
		Data: "<gmd:MD_Metadata/>",
		DataInfo: models.DataInfo{
			SchemaID:   "iso19139",
			Type:       models.TypeMetadata,
			CreateDate: now,
			ChangeDate: now,
		},
		SourceInfo: models.SourceInfo{Owner: owner, SourceID: "node-a"},
	}
}

// ============================================================================
// Config Tests
// ============================================================================

func TestConfig_ApplyDefaults(t *testing.T) {
	t.Parallel()

	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{}
		cfg.ApplyDefaults()
		assert.Equal(t, DatabaseTypeSQLite, cfg.Type)
		assert.NotEmpty(t, cfg.SQLite.Path)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("postgres", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Type: DatabaseTypePostgres}
		cfg.ApplyDefaults()
		assert.Equal(t, 5432, cfg.Postgres.Port)
		assert.Equal(t, "disable", cfg.Postgres.SSLMode)
		assert.Equal(t, 25, cfg.Postgres.MaxOpenConns)
		assert.Equal(t, 5, cfg.Postgres.MaxIdleConns)
		assert.ErrorContains(t, cfg.Validate(), "host is required")
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	assert.ErrorContains(t, (&Config{Type: "oracle"}).Validate(), "unsupported database type")
	assert.ErrorContains(t, (&Config{Type: DatabaseTypeSQLite}).Validate(), "sqlite path is required")
	assert.ErrorContains(t,
		(&Config{Type: DatabaseTypePostgres, Postgres: PostgresConfig{Host: "db"}}).Validate(),
		"database is required")
}

func TestPostgresConfig_DSN(t *testing.T) {
	t.Parallel()

	cfg := PostgresConfig{
		Host: "db", Port: 5433, User: "cat", Password: "pw", Database: "catalog",
		SSLMode: "require", SSLRootCert: "/ca.pem",
	}
	assert.Equal(t,
		"host=db port=5433 user=cat password=pw dbname=catalog sslmode=require sslrootcert=/ca.pem",
		cfg.DSN())
}

// ============================================================================
// Repository Tests
// ============================================================================

func TestRepository_SaveGetExists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	saved, err := s.Metadata().Save(ctx, &models.Metadata{Entry: newEntry(1, 5)})
	require.NoError(t, err)
	assert.Equal(t, 1, saved.GetID())

	got, err := s.Metadata().Get(ctx, 1)
	require.NoError(t, err)
	require.IsType(t, &models.Metadata{}, got)
	assert.Equal(t, 5, got.GetEntry().SourceInfo.Owner)
	assert.Equal(t, "iso19139", got.GetEntry().DataInfo.SchemaID)

	ok, err := s.Metadata().Exists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	// tables are independent
	ok, err = s.Drafts().Exists(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Drafts().Get(ctx, 1)
	assert.True(t, catalogerrors.IsNotFoundError(err))
}

func TestRepository_SaveReplaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	draft := &models.MetadataDraft{Entry: newEntry(3, 1)}
	_, err := s.Drafts().Save(ctx, draft)
	require.NoError(t, err)

	draft.SourceInfo.Owner = 2
	draft.SourceInfo.GroupOwner = intPtr(4)
	_, err = s.Drafts().Save(ctx, draft)
	require.NoError(t, err)

	got, err := s.Drafts().Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, got.GetEntry().SourceInfo.Owner)
	require.NotNil(t, got.GetEntry().SourceInfo.GroupOwner)
	assert.Equal(t, 4, *got.GetEntry().SourceInfo.GroupOwner)

	ids, err := s.Drafts().ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, ids)
}

func TestRepository_SaveRejects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Metadata().Save(ctx, &models.MetadataDraft{Entry: newEntry(1, 1)})
	assert.True(t, catalogerrors.IsTypeMismatchError(err))

	_, err = s.Drafts().Save(ctx, &models.Metadata{Entry: newEntry(1, 1)})
	assert.True(t, catalogerrors.IsTypeMismatchError(err))

	_, err = s.Metadata().Save(ctx, &models.Metadata{Entry: newEntry(0, 1)})
	assert.True(t, catalogerrors.IsInvalidArgumentError(err))

	_, err = s.Metadata().Save(ctx, &models.Metadata{Entry: newEntry(1, 1)})
	require.NoError(t, err)
	dup := newEntry(2, 1)
	dup.UUID = newEntry(1, 1).UUID
	_, err = s.Metadata().Save(ctx, &models.Metadata{Entry: dup})
	assert.True(t, catalogerrors.IsAlreadyExistsError(err))
}

func TestRepository_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Metadata().Save(ctx, &models.Metadata{Entry: newEntry(7, 1)})
	require.NoError(t, err)

	updated, err := s.Metadata().Update(ctx, 7, query.UpdateMetadata(func(m *models.Metadata) {
		m.Data = "<updated/>"
	}))
	require.NoError(t, err)
	assert.Equal(t, "<updated/>", updated.GetEntry().Data)

	got, err := s.Metadata().Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "<updated/>", got.GetEntry().Data)

	t.Run("wrong kind updater", func(t *testing.T) {
		_, err := s.Metadata().Update(ctx, 7, query.UpdateDraft(func(*models.MetadataDraft) {}))
		assert.True(t, catalogerrors.IsTypeMismatchError(err))
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := s.Metadata().Update(ctx, 99, query.UpdateMetadata(func(*models.Metadata) {}))
		assert.True(t, catalogerrors.IsNotFoundError(err))
	})

	t.Run("id change rejected", func(t *testing.T) {
		_, err := s.Metadata().Update(ctx, 7, query.UpdateMetadata(func(m *models.Metadata) { m.ID = 8 }))
		assert.True(t, catalogerrors.IsInvalidArgumentError(err))
		ok, err := s.Metadata().Exists(ctx, 8)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRepository_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Drafts().Save(ctx, &models.MetadataDraft{Entry: newEntry(5, 1)})
	require.NoError(t, err)

	require.NoError(t, s.Drafts().Delete(ctx, 5))
	err = s.Drafts().Delete(ctx, 5)
	assert.True(t, catalogerrors.IsNotFoundError(err))
}

func TestRepository_BulkOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	for id := 1; id <= 4; id++ {
		e := newEntry(id, id%2)
		e.HarvestInfo = models.HarvestInfo{Harvested: id <= 3, UUID: "h-old"}
		_, err := s.Metadata().Save(ctx, &models.Metadata{Entry: e})
		require.NoError(t, err)
	}

	t.Run("find source info", func(t *testing.T) {
		infos, err := s.Metadata().FindAllSourceInfo(ctx, query.Metadata().HasOwner(1))
		require.NoError(t, err)
		assert.Len(t, infos, 2)
		assert.Equal(t, "node-a", infos[1].SourceID)
		assert.Contains(t, infos, 3)
	})

	t.Run("batch update", func(t *testing.T) {
		n, err := s.Metadata().BatchUpdate(ctx,
			query.MetadataPath(query.FieldHarvestUUID), "h-new",
			query.Metadata().HasHarvestUUID("h-old").IsHarvested(true))
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		got, err := s.Metadata().Get(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "h-new", got.GetEntry().HarvestInfo.UUID)
	})

	t.Run("kind guards", func(t *testing.T) {
		_, err := s.Metadata().BatchUpdate(ctx, query.DraftPath(query.FieldSourceID), "x", query.Metadata())
		assert.True(t, catalogerrors.IsTypeMismatchError(err))
		_, err = s.Metadata().BatchUpdate(ctx, query.MetadataPath(query.FieldSourceID), "x", query.Drafts())
		assert.True(t, catalogerrors.IsTypeMismatchError(err))
		_, err = s.Metadata().DeleteAll(ctx, query.Drafts())
		assert.True(t, catalogerrors.IsTypeMismatchError(err))
		_, err = s.Drafts().FindAllSourceInfo(ctx, query.Metadata())
		assert.True(t, catalogerrors.IsTypeMismatchError(err))
	})

	t.Run("delete all", func(t *testing.T) {
		n, err := s.Metadata().DeleteAll(ctx, query.Metadata().HasIDs(1, 2))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = s.Metadata().DeleteAll(ctx, query.Metadata())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		ids, err := s.Metadata().ListIDs(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestGORMStore_Healthcheck(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.Healthcheck(context.Background()))
	assert.Equal(t, DatabaseTypeSQLite, s.Type())

	version, dirty, err := s.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)
}
