// Package repository provides a small generic persistence layer over GORM.
// Services depend on the interface so tests can substitute function-field
// mocks, and transactional callers rebind a store with WithTrx.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// QueryOption customizes a single query (ordering, locking and the like).
type QueryOption func(*gorm.DB) *gorm.DB

// WithOrder applies an ORDER BY expression.
func WithOrder(expr string) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(expr)
	}
}

// WithScope applies an arbitrary GORM scope, e.g. option.LockingUpdate.
func WithScope(scope func(*gorm.DB) *gorm.DB) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(scope)
	}
}

// WithWhere adds a raw condition beyond the struct query.
func WithWhere(cond string, args ...any) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(cond, args...)
	}
}

type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, resourceID int64, resource any) error
	Count(ctx context.Context, query *T) (int64, error)
}

type store[T any] struct {
	db *gorm.DB
}

// ProvideStore builds a Repository backed by the given GORM handle.
func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	if tx == nil {
		return s
	}
	return &store[T]{db: tx}
}

func (s *store[T]) apply(ctx context.Context, query *T, opts ...QueryOption) *gorm.DB {
	db := s.db.WithContext(ctx).Model(new(T))
	if query != nil {
		db = db.Where(query)
	}
	for _, opt := range opts {
		db = opt(db)
	}
	return db
}

func (s *store[T]) Find(ctx context.Context, query *T, opts ...QueryOption) ([]*T, error) {
	var out []*T
	if err := s.apply(ctx, query, opts...).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindOne returns (nil, nil) when no row matches; callers branch on the nil
// resource rather than on gorm.ErrRecordNotFound.
func (s *store[T]) FindOne(ctx context.Context, query *T, opts ...QueryOption) (*T, error) {
	var out T
	err := s.apply(ctx, query, opts...).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (s *store[T]) Create(ctx context.Context, resource *T) error {
	return s.db.WithContext(ctx).Create(resource).Error
}

func (s *store[T]) Update(ctx context.Context, resourceID int64, resource any) error {
	return s.db.WithContext(ctx).Model(new(T)).Where("id = ?", resourceID).Updates(resource).Error
}

func (s *store[T]) Count(ctx context.Context, query *T) (int64, error) {
	var n int64
	if err := s.apply(ctx, query).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
