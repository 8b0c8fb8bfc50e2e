package store

import (
	"context"

	"gorm.io/gorm"
)

// ============================================================================
// Generic GORM Helpers
// ============================================================================
//
// These helpers operate on the raw *gorm.DB so they can run both on the
// store connection and inside a transaction. Errors are returned as GORM
// reports them; callers translate them with convertError.

// getByField retrieves a single record of type T by matching field=value.
func getByField[T any](db *gorm.DB, ctx context.Context, field string, value any) (*T, error) {
	var result T
	if err := db.WithContext(ctx).Where(field+" = ?", value).First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// existsByField reports whether at least one record of type T matches field=value.
func existsByField[T any](db *gorm.DB, ctx context.Context, field string, value any) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(new(T)).Where(field+" = ?", value).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// deleteByField deletes records of type T matching field=value and returns
// the number of rows removed.
func deleteByField[T any](db *gorm.DB, ctx context.Context, field string, value any) (int64, error) {
	result := db.WithContext(ctx).Where(field+" = ?", value).Delete(new(T))
	return result.RowsAffected, result.Error
}

// pluckInts returns column values of type T ordered by the column.
// Returns an empty slice (not nil) when there are no records.
func pluckInts[T any](db *gorm.DB, ctx context.Context, column string) ([]int, error) {
	values := []int{}
	if err := db.WithContext(ctx).Model(new(T)).Order(column).Pluck(column, &values).Error; err != nil {
		return nil, err
	}
	return values, nil
}

// bulk returns a session that permits UPDATE and DELETE without a WHERE
// clause. An empty specification selects every record.
func bulk(db *gorm.DB, ctx context.Context) *gorm.DB {
	return db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
}
