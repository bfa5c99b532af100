package repository

import "context"

// Store defines the generic persistence operations shared by every
// repository-backed domain collection. Concrete stores (commits,
// branches, enrichments, ...) embed this to pick up Find/Save/Delete
// without repeating the same six methods in every package.
type Store[T any] interface {
	Find(ctx context.Context, options ...Option) ([]T, error)
	FindOne(ctx context.Context, options ...Option) (T, error)
	Exists(ctx context.Context, options ...Option) (bool, error)
	Count(ctx context.Context, options ...Option) (int64, error)
	Save(ctx context.Context, t T) (T, error)
	Delete(ctx context.Context, t T) error
}

// Collection wraps a Store and exposes the read-oriented surface that
// application services expose to callers (Find/Get/Count), keeping the
// write path (Save/Delete) private to the service that owns it.
type Collection[T any] struct {
	store Store[T]
}

// NewCollection creates a Collection backed by the given store.
func NewCollection[T any](store Store[T]) Collection[T] {
	return Collection[T]{store: store}
}

// Find returns all entities matching the given options.
func (c Collection[T]) Find(ctx context.Context, options ...Option) ([]T, error) {
	return c.store.Find(ctx, options...)
}

// Get returns a single entity matching the given options.
func (c Collection[T]) Get(ctx context.Context, options ...Option) (T, error) {
	return c.store.FindOne(ctx, options...)
}

// Exists reports whether any entity matches the given options.
func (c Collection[T]) Exists(ctx context.Context, options ...Option) (bool, error) {
	return c.store.Exists(ctx, options...)
}

// Count returns the number of entities matching the given options.
func (c Collection[T]) Count(ctx context.Context, options ...Option) (int64, error) {
	return c.store.Count(ctx, options...)
}
