// Package store persists the catalog, orders and users with gorm and enforces the
// referential rules between them.
package store

import (
	"context"
	"errors"

	"storefront-service/internal/apperr"

	"gorm.io/gorm"
)

// Store is the gorm-backed repository for every storefront entity
type Store struct {
	db *gorm.DB
}

// New creates a store on top of an opened database
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn inside a database transaction; fn receives a store bound to it
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// lookupErr converts a failed single-row lookup into NotFound or Internal
func lookupErr(err error, entity, key string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s %s not found", entity, key).Wrap(err)
	}
	return apperr.Internal("failed to load "+entity, err)
}

// writeErr converts a failed insert/update, mapping duplicate keys to Conflict
func writeErr(err error, entity string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("%s violates a uniqueness constraint", entity).Wrap(err)
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Internal("failed to save "+entity, err)
}

// exists reports whether any row of m matches the condition
func (s *Store) exists(ctx context.Context, m interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := s.conn(ctx).Model(m).Where(query, args...).Count(&count).Error; err != nil {
		return false, apperr.Internal("failed to check uniqueness", err)
	}
	return count > 0, nil
}
