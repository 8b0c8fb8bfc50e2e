package store

import (
	"context"

	"gorm.io/gorm"

	catalogerrors "github.com/marmos91/mdcatalog/pkg/catalog/errors"
	"github.com/marmos91/mdcatalog/pkg/catalog/models"
	"github.com/marmos91/mdcatalog/pkg/catalog/query"
)

// recordPtr constrains P to be *T and a models.Record.
type recordPtr[T any] interface {
	*T
	models.Record
}

// gormRepository is a Repository over the table of record type T.
type gormRepository[T any, P recordPtr[T]] struct {
	db   *gorm.DB
	kind models.Kind
}

var (
	_ Repository = (*gormRepository[models.Metadata, *models.Metadata])(nil)
	_ Repository = (*gormRepository[models.MetadataDraft, *models.MetadataDraft])(nil)
)

func newGORMRepository[T any, P recordPtr[T]](db *gorm.DB, kind models.Kind) *gormRepository[T, P] {
	return &gormRepository[T, P]{db: db, kind: kind}
}

// sourceInfoRow is the projection read by FindAllSourceInfo.
type sourceInfoRow struct {
	ID         int
	Owner      int
	GroupOwner *int
	SourceID   string
}

func (r *gormRepository[T, P]) Kind() models.Kind {
	return r.kind
}

func (r *gormRepository[T, P]) mismatch(what any) error {
	return catalogerrors.NewTypeMismatchError(r.kind.String(), what)
}

func (r *gormRepository[T, P]) Save(ctx context.Context, record models.Record) (models.Record, error) {
	rec, ok := record.(P)
	if !ok || rec == nil {
		return nil, r.mismatch(record)
	}
	if rec.GetID() <= 0 {
		return nil, catalogerrors.NewInvalidArgumentError("record id must be positive")
	}
	if err := r.db.WithContext(ctx).Save(rec).Error; err != nil {
		return nil, convertError(r.kind.String(), "save", rec.GetID(), err)
	}
	return rec, nil
}

func (r *gormRepository[T, P]) Get(ctx context.Context, id int) (models.Record, error) {
	rec, err := getByField[T](r.db, ctx, "id", id)
	if err != nil {
		return nil, convertError(r.kind.String(), "get", id, err)
	}
	return P(rec), nil
}

func (r *gormRepository[T, P]) Exists(ctx context.Context, id int) (bool, error) {
	found, err := existsByField[T](r.db, ctx, "id", id)
	if err != nil {
		return false, convertError(r.kind.String(), "exists", id, err)
	}
	return found, nil
}

func (r *gormRepository[T, P]) Update(ctx context.Context, id int, updater query.Updater) (models.Record, error) {
	if updater == nil || updater.Kind() != r.kind {
		return nil, r.mismatch(updater)
	}

	var updated P
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := getByField[T](tx, ctx, "id", id)
		if err != nil {
			return err
		}
		p := P(rec)
		if err := updater.Apply(p); err != nil {
			return err
		}
		if p.GetID() != id {
			return catalogerrors.NewInvalidArgumentError("updater must not change the record id")
		}
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, convertError(r.kind.String(), "update", id, err)
	}
	return updated, nil
}

func (r *gormRepository[T, P]) Delete(ctx context.Context, id int) error {
	n, err := deleteByField[T](r.db, ctx, "id", id)
	if err != nil {
		return convertError(r.kind.String(), "delete", id, err)
	}
	if n == 0 {
		return catalogerrors.NewNotFoundError(r.kind.String(), id)
	}
	return nil
}

func (r *gormRepository[T, P]) DeleteAll(ctx context.Context, spec query.Specification) (int64, error) {
	if spec == nil || spec.Kind() != r.kind {
		return 0, r.mismatch(spec)
	}
	result := spec.Scope(bulk(r.db, ctx)).Delete(new(T))
	if result.Error != nil {
		return 0, catalogerrors.NewStoreFailureError(r.kind.String(), "delete all", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormRepository[T, P]) BatchUpdate(ctx context.Context, path query.PathSpec, value string, spec query.Specification) (int64, error) {
	if path == nil || path.Kind() != r.kind {
		return 0, r.mismatch(path)
	}
	if spec == nil || spec.Kind() != r.kind {
		return 0, r.mismatch(spec)
	}
	result := spec.Scope(bulk(r.db, ctx).Model(new(T))).Update(path.Column(), value)
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return 0, &catalogerrors.StoreError{
				Code:    catalogerrors.ErrAlreadyExists,
				Message: "batch update of " + path.Column() + " violates uniqueness",
				Store:   r.kind.String(),
				Cause:   result.Error,
			}
		}
		return 0, catalogerrors.NewStoreFailureError(r.kind.String(), "batch update", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormRepository[T, P]) FindAllSourceInfo(ctx context.Context, spec query.Specification) (map[int]models.SourceInfo, error) {
	if spec == nil || spec.Kind() != r.kind {
		return nil, r.mismatch(spec)
	}
	var rows []sourceInfoRow
	err := spec.Scope(r.db.WithContext(ctx).Model(new(T))).
		Select("id", "owner", "group_owner", "source_id").
		Find(&rows).Error
	if err != nil {
		return nil, catalogerrors.NewStoreFailureError(r.kind.String(), "find source info", err)
	}

	out := make(map[int]models.SourceInfo, len(rows))
	for _, row := range rows {
		out[row.ID] = models.SourceInfo{
			Owner:      row.Owner,
			GroupOwner: row.GroupOwner,
			SourceID:   row.SourceID,
		}
	}
	return out, nil
}

func (r *gormRepository[T, P]) ListIDs(ctx context.Context) ([]int, error) {
	ids, err := pluckInts[T](r.db, ctx, "id")
	if err != nil {
		return nil, catalogerrors.NewStoreFailureError(r.kind.String(), "list ids", err)
	}
	return ids, nil
}
