package store

import (
	"context"

	"github.com/marmos91/mdcatalog/internal/telemetry"
	"github.com/marmos91/mdcatalog/pkg/catalog/models"
	"github.com/marmos91/mdcatalog/pkg/catalog/query"
)

// tracedRepository wraps a Repository with one span per call.
type tracedRepository struct {
	next Repository
	name string
}

// WithTracing returns repo wrapped so that every call produces a span named
// "<kind>.<operation>". Returns repo unchanged when tracing is disabled.
func WithTracing(repo Repository) Repository {
	if !telemetry.IsEnabled() {
		return repo
	}
	return &tracedRepository{next: repo, name: repo.Kind().String()}
}

func (r *tracedRepository) Kind() models.Kind {
	return r.next.Kind()
}

func (r *tracedRepository) Save(ctx context.Context, record models.Record) (models.Record, error) {
	ctx, span := telemetry.StartStoreSpan(ctx, r.name, "save",
		telemetry.RecordID(record.GetID()), telemetry.Kind(record.RecordKind().String()))
	saved, err := r.next.Save(ctx, record)
	telemetry.EndSpan(span, err)
	return saved, err
}

func (r *tracedRepository) Get(ctx context.Context, id int) (models.Record, error) {
	ctx, span := telemetry.StartStoreSpan(ctx, r.name, "get", telemetry.RecordID(id))
	record, err := r.next.Get(ctx, id)
	telemetry.EndSpan(span, err)
	return record, err
}

func (r *tracedRepository) Exists(ctx context.Context, id int) (bool, error) {
	ctx, span := telemetry.StartStoreSpan(ctx, r.name, "exists", telemetry.RecordID(id))
	ok, err := r.next.Exists(ctx, id)
	telemetry.EndSpan(span, err)
	return ok, err
}

func (r *tracedRepository) Update(ctx context.Context, id int, updater query.Updater) (models.Record, error) {
	ctx, span := telemetry.StartStoreSpan(ctx, r.name, "update",
		telemetry.RecordID(id), telemetry.Kind(updater.Kind().String()))
	record, err := r.next.Update(ctx, id, updater)
	telemetry.EndSpan(span, err)
	return record, err
}

func (r *tracedRepository) Delete(ctx context.Context, id int) error {
	ctx, span := telemetry.StartStoreSpan(ctx, r.name, "delete", telemetry.RecordID(id))
	err := r.next.Delete(ctx, id)
	telemetry.EndSpan(span, err)
	return err
}

func (r *tracedRepository) DeleteAll(ctx context.Context, spec query.Specification) (int64, error) {
	ctx, span := telemetry.StartStoreSpan(ctx, r.name, "delete_all", telemetry.Spec(spec.String()))
	n, err := r.next.DeleteAll(ctx, spec)
	span.SetAttributes(telemetry.Count(n))
	telemetry.EndSpan(span, err)
	return n, err
}

func (r *tracedRepository) BatchUpdate(ctx context.Context, path query.PathSpec, value string, spec query.Specification) (int64, error) {
	ctx, span := telemetry.StartStoreSpan(ctx, r.name, "batch_update",
		telemetry.Spec(spec.String()), telemetry.Kind(path.Kind().String()))
	n, err := r.next.BatchUpdate(ctx, path, value, spec)
	span.SetAttributes(telemetry.Count(n))
	telemetry.EndSpan(span, err)
	return n, err
}

func (r *tracedRepository) FindAllSourceInfo(ctx context.Context, spec query.Specification) (map[int]models.SourceInfo, error) {
	ctx, span := telemetry.StartStoreSpan(ctx, r.name, "find_all_source_info", telemetry.Spec(spec.String()))
	infos, err := r.next.FindAllSourceInfo(ctx, spec)
	span.SetAttributes(telemetry.Count(int64(len(infos))))
	telemetry.EndSpan(span, err)
	return infos, err
}

func (r *tracedRepository) ListIDs(ctx context.Context) ([]int, error) {
	ctx, span := telemetry.StartStoreSpan(ctx, r.name, "list_ids")
	ids, err := r.next.ListIDs(ctx)
	span.SetAttributes(telemetry.Count(int64(len(ids))))
	telemetry.EndSpan(span, err)
	return ids, err
}
