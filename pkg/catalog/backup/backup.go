// Package backup exports the catalog to a portable JSON snapshot and
// restores it. Snapshots are written to a local file or an S3 object and
// are gzip-compressed when the location ends in ".gz".
package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/mdcatalog/internal/logger"
	catalogerrors "github.com/marmos91/mdcatalog/pkg/catalog/errors"
	"github.com/marmos91/mdcatalog/pkg/catalog/manager"
	"github.com/marmos91/mdcatalog/pkg/catalog/models"
	"github.com/marmos91/mdcatalog/pkg/catalog/store"
)

// FormatVersion is the snapshot format written by Export.
const FormatVersion = 1

// Snapshot holds every record of both stores at the time of export.
type Snapshot struct {
	Version   int                     `json:"version"`
	CreatedAt time.Time               `json:"created_at"`
	Metadata  []*models.Metadata      `json:"metadata"`
	Drafts    []*models.MetadataDraft `json:"drafts"`
}

// Result counts the records written by Restore.
type Result struct {
	Metadata int `json:"metadata" yaml:"metadata"`
	Drafts   int `json:"drafts" yaml:"drafts"`
	Skipped  int `json:"skipped" yaml:"skipped"`
}

// Export reads every record of the published and draft stores. Records
// deleted between listing and reading are left out.
func Export(ctx context.Context, published, drafts store.Repository) (*Snapshot, error) {
	snap := &Snapshot{
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC(),
		Metadata:  []*models.Metadata{},
		Drafts:    []*models.MetadataDraft{},
	}

	for _, repo := range []store.Repository{published, drafts} {
		ids, err := repo.ListIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s records: %w", repo.Kind(), err)
		}

		for _, id := range ids {
			rec, err := repo.Get(ctx, id)
			if catalogerrors.IsNotFoundError(err) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read %s record %d: %w", repo.Kind(), id, err)
			}

			switch r := rec.(type) {
			case *models.Metadata:
				snap.Metadata = append(snap.Metadata, r)
			case *models.MetadataDraft:
				snap.Drafts = append(snap.Drafts, r)
			}
		}
	}

	logger.InfoCtx(ctx, "Catalog exported",
		"metadata", len(snap.Metadata), "drafts", len(snap.Drafts))
	return snap, nil
}

// Restore saves every record of snap through m, published records first.
// A draft whose id is also published in the snapshot is skipped so that
// every id ends up in one store.
func Restore(ctx context.Context, m manager.Manager, snap *Snapshot) (Result, error) {
	var res Result
	if snap == nil {
		return res, catalogerrors.NewInvalidArgumentError("snapshot is nil")
	}
	if snap.Version != FormatVersion {
		return res, catalogerrors.NewInvalidArgumentError(
			fmt.Sprintf("unsupported snapshot version %d (expected %d)", snap.Version, FormatVersion))
	}

	publishedIDs := make(map[int]struct{}, len(snap.Metadata))
	for _, rec := range snap.Metadata {
		if _, err := m.Save(ctx, rec); err != nil {
			return res, fmt.Errorf("failed to restore record %d: %w", rec.ID, err)
		}
		publishedIDs[rec.ID] = struct{}{}
		res.Metadata++
	}

	for _, rec := range snap.Drafts {
		if _, ok := publishedIDs[rec.ID]; ok {
			logger.WarnCtx(ctx, "Skipping draft shadowing a published record", logger.RecordID(rec.ID))
			res.Skipped++
			continue
		}
		if _, err := m.Save(ctx, rec); err != nil {
			return res, fmt.Errorf("failed to restore draft %d: %w", rec.ID, err)
		}
		res.Drafts++
	}

	logger.InfoCtx(ctx, "Catalog restored",
		"metadata", res.Metadata, "drafts", res.Drafts, "skipped", res.Skipped)
	return res, nil
}
