package backup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogerrors "github.com/marmos91/mdcatalog/pkg/catalog/errors"
	"github.com/marmos91/mdcatalog/pkg/catalog/manager"
	"github.com/marmos91/mdcatalog/pkg/catalog/models"
	"github.com/marmos91/mdcatalog/pkg/catalog/store"
)

// ============================================================================
// Fixtures
// ============================================================================

func newEntry(id, owner int) models.Entry {
	return models.Entry{
		ID:         id,
		UUID:       fmt.Sprintf("rec-%d", id),
		Data:       "<gmd:MD_Metadata/>",
		DataInfo:   models.DataInfo{SchemaID: "iso19139", Type: models.TypeMetadata},
		SourceInfo: models.SourceInfo{Owner: owner, SourceID: "node-a"},
	}
}

func openCatalog(t *testing.T) (*store.GORMStore, *manager.DraftManager) {
	t.Helper()
	s, err := store.Open(context.Background(), &store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: filepath.Join(t.TempDir(), "catalog.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, manager.NewDraftManager(s.Metadata(), s.Drafts())
}

func seed(t *testing.T, m manager.Manager) {
	t.Helper()
	ctx := context.Background()
	for _, rec := range []models.Record{
		&models.Metadata{Entry: newEntry(1, 5)},
		&models.Metadata{Entry: newEntry(2, 5)},
		&models.MetadataDraft{Entry: newEntry(3, 7)},
	} {
		_, err := m.Save(ctx, rec)
		require.NoError(t, err)
	}
}

// ============================================================================
// Export / Restore
// ============================================================================

func TestExportAndRestore(t *testing.T) {
	ctx := context.Background()

	src, srcManager := openCatalog(t)
	seed(t, srcManager)

	snap, err := Export(ctx, src.Metadata(), src.Drafts())
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, snap.Version)
	require.Len(t, snap.Metadata, 2)
	require.Len(t, snap.Drafts, 1)
	assert.Equal(t, 3, snap.Drafts[0].ID)

	_, dstManager := openCatalog(t)
	res, err := Restore(ctx, dstManager, snap)
	require.NoError(t, err)
	assert.Equal(t, Result{Metadata: 2, Drafts: 1}, res)

	rec, err := dstManager.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, models.KindDraft, rec.RecordKind())
	assert.Equal(t, 7, rec.GetEntry().SourceInfo.Owner)

	rec, err = dstManager.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.KindMetadata, rec.RecordKind())
}

func TestRestoreSkipsShadowingDrafts(t *testing.T) {
	_, m := openCatalog(t)

	snap := &Snapshot{
		Version:  FormatVersion,
		Metadata: []*models.Metadata{{Entry: newEntry(1, 5)}},
		Drafts: []*models.MetadataDraft{
			{Entry: newEntry(1, 5)},
			{Entry: newEntry(2, 5)},
		},
	}
	// Distinct uuids per store row.
	snap.Drafts[0].UUID = "draft-1"

	res, err := Restore(context.Background(), m, snap)
	require.NoError(t, err)
	assert.Equal(t, Result{Metadata: 1, Drafts: 1, Skipped: 1}, res)

	exists, err := m.Drafts().Exists(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRestoreRejectsBadSnapshots(t *testing.T) {
	_, m := openCatalog(t)

	_, err := Restore(context.Background(), m, nil)
	assert.True(t, catalogerrors.IsInvalidArgumentError(err))

	_, err = Restore(context.Background(), m, &Snapshot{Version: 99})
	assert.True(t, catalogerrors.IsInvalidArgumentError(err))
}

// ============================================================================
// Targets
// ============================================================================

func TestFileTargetRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, m := openCatalog(t)
	seed(t, m)

	snap, err := Export(ctx, src.Metadata(), src.Drafts())
	require.NoError(t, err)

	for _, name := range []string{"catalog.json", "catalog.json.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			target, err := Open(ctx, path, S3Config{})
			require.NoError(t, err)

			require.NoError(t, Write(ctx, target, snap))
			assert.NoFileExists(t, path+".tmp")

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			if compressed(name) {
				assert.Equal(t, []byte{0x1f, 0x8b}, raw[:2])
			} else {
				assert.Contains(t, string(raw), `"version": 1`)
			}

			got, err := Read(ctx, target)
			require.NoError(t, err)
			assert.Len(t, got.Metadata, 2)
			assert.Len(t, got.Drafts, 1)
		})
	}
}

func TestOpenRequiresLocation(t *testing.T) {
	_, err := Open(context.Background(), "", S3Config{})
	assert.Error(t, err)
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		in      string
		bucket  string
		key     string
		wantErr bool
	}{
		{"s3://backups/catalog.json", "backups", "catalog.json", false},
		{"s3://backups/daily/catalog.json.gz", "backups", "daily/catalog.json.gz", false},
		{"s3://backups", "", "", true},
		{"s3:///catalog.json", "", "", true},
		{"/tmp/catalog.json", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			bucket, key, err := ParseS3URL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

// fakeS3 serves path-style PutObject and GetObject from memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.objects[r.URL.Path] = data
		w.Header().Set("ETag", `"fake"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(data)))
		_, _ = w.Write(data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3TargetRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	cfg := S3Config{
		Endpoint:        srv.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	}

	target, err := Open(ctx, "s3://backups/daily/catalog.json.gz", cfg)
	require.NoError(t, err)
	assert.Equal(t, "s3://backups/daily/catalog.json.gz", target.String())

	snap := &Snapshot{
		Version:  FormatVersion,
		Metadata: []*models.Metadata{{Entry: newEntry(1, 5)}},
		Drafts:   []*models.MetadataDraft{},
	}
	require.NoError(t, Write(ctx, target, snap))
	assert.Contains(t, fake.objects, "/backups/daily/catalog.json.gz")

	got, err := Read(ctx, target)
	require.NoError(t, err)
	require.Len(t, got.Metadata, 1)
	assert.Equal(t, "rec-1", got.Metadata[0].UUID)

	missing, err := Open(ctx, "s3://backups/none.json", cfg)
	require.NoError(t, err)
	_, err = Read(ctx, missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
