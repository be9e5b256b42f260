// Package repository provides a generic GORM-backed store for simple
// aggregates keyed by id.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// QueryOption narrows or orders a query.
type QueryOption func(*gorm.DB) *gorm.DB

type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, resourceID any, fields map[string]any) error
	Delete(ctx context.Context, query *T) error
	BatchCreate(ctx context.Context, resources []*T) error
}

// Where adds a raw condition.
func Where(query string, args ...any) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

// OrderBy adds an ORDER BY clause. column must come from an allow list.
func OrderBy(column string, desc bool) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		if desc {
			return db.Order(column + " DESC")
		}
		return db.Order(column + " ASC")
	}
}

// Limit caps the number of rows returned. Non-positive values are ignored.
func Limit(n int) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		if n <= 0 {
			return db
		}
		return db.Limit(n)
	}
}
