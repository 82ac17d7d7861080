// AngelaMos | 2026
// collection.go

package storage

import (
	"context"
	"fmt"
)

// Collection is a JSON list of T kept under a single key. Writes run
// inside Atomic so concurrent writers cannot drop each other's changes.
type Collection[T any] struct {
	store Store
	key   string
}

func NewCollection[T any](store Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

// All returns the stored list. A missing or malformed value reads as empty.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	items, err := GetJSON(ctx, c.store, c.key, []T{})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}
	return items, nil
}

// Mutate hands fn the current list and stores what it returns. An error
// from fn aborts the write and is returned as is.
func (c *Collection[T]) Mutate(
	ctx context.Context,
	fn func(items []T) ([]T, error),
) error {
	return c.store.Atomic(ctx, []string{c.key}, func(tx Tx) error {
		raw, ok := tx.Get(c.key)
		items := DecodeOr(c.key, raw, ok, []T{})

		next, err := fn(items)
		if err != nil {
			return err
		}
		return StageJSON(tx, c.key, next)
	})
}
