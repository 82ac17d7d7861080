// AngelaMos | 2026
// store.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrUndeclaredKey is returned when an Atomic callback writes a key it did
// not declare up front. Backends can only guard the declared keys.
var ErrUndeclaredKey = errors.New("write to undeclared key")

// Store is the key-value capability shared by every engine. Values are opaque
// byte slices, in practice JSON documents. Get returns core.ErrNotFound when
// the key is absent.
//
// Atomic reads a consistent snapshot of keys, runs fn against it and commits
// the staged writes as one unit. Backends may invoke fn more than once when
// an optimistic commit loses a race, so fn must not have side effects
// outside the Tx.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Atomic(ctx context.Context, keys []string, fn func(tx Tx) error) error
}

// Tx is the staged view handed to an Atomic callback.
type Tx interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Remove(key string)
}

type write struct {
	key   string
	value []byte
}

func (w write) isDelete() bool {
	return w.value == nil
}

// stagedTx buffers writes over a snapshot. It is shared by every backend so
// they only differ in how they load the snapshot and apply the writes.
type stagedTx struct {
	declared []string
	snapshot map[string][]byte
	pending  map[string][]byte
	order    []string
	invalid  []string
}

func newStagedTx(declared []string, snapshot map[string][]byte) *stagedTx {
	return &stagedTx{
		declared: declared,
		snapshot: snapshot,
		pending:  make(map[string][]byte),
	}
}

func (t *stagedTx) Get(key string) ([]byte, bool) {
	if v, ok := t.pending[key]; ok {
		if v == nil {
			return nil, false
		}
		return v, true
	}
	v, ok := t.snapshot[key]
	return v, ok
}

func (t *stagedTx) Set(key string, value []byte) {
	if value == nil {
		value = []byte{}
	}
	t.stage(key, value)
}

func (t *stagedTx) Remove(key string) {
	t.stage(key, nil)
}

func (t *stagedTx) stage(key string, value []byte) {
	if !slices.Contains(t.declared, key) {
		t.invalid = append(t.invalid, key)
		return
	}
	if _, seen := t.pending[key]; !seen {
		t.order = append(t.order, key)
	}
	t.pending[key] = value
}

func (t *stagedTx) writes() ([]write, error) {
	if len(t.invalid) > 0 {
		return nil, fmt.Errorf("atomic %v: %w", t.invalid, ErrUndeclaredKey)
	}

	out := make([]write, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, write{key: key, value: t.pending[key]})
	}
	return out, nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
