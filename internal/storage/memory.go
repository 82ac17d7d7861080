// AngelaMos | 2026
// memory.go

package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/carterperez-dev/templates/slip-market/internal/core"
)

// MemoryStore keeps everything in process. A single RWMutex serializes
// Atomic against every other read and write.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, core.ErrNotFound)
	}
	return cloneBytes(v), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = cloneBytes(value)
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0)
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Atomic(
	ctx context.Context,
	keys []string,
	fn func(tx Tx) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			snapshot[k] = cloneBytes(v)
		}
	}

	tx := newStagedTx(keys, snapshot)
	if err := fn(tx); err != nil {
		return err
	}

	writes, err := tx.writes()
	if err != nil {
		return err
	}

	for _, w := range writes {
		if w.isDelete() {
			delete(m.data, w.key)
			continue
		}
		m.data[w.key] = cloneBytes(w.value)
	}

	return nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) Name() string {
	return "memory"
}
