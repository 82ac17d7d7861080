// AngelaMos | 2026
// redis.go

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/slip-market/internal/core"
)

const (
	maxWatchRetries = 8
	scanBatchSize   = 200
)

// RedisStore maps the store onto plain string keys. Atomic uses
// WATCH/MULTI/EXEC and retries when a watched key changes underneath it.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)

	for {
		batch, next, err := s.client.Scan(
			ctx,
			cursor,
			escapeGlob(prefix)+"*",
			scanBatchSize,
		).Result()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", prefix, err)
		}

		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return dedupeSorted(keys), nil
}

func (s *RedisStore) Atomic(
	ctx context.Context,
	keys []string,
	fn func(tx Tx) error,
) error {
	txf := func(rtx *redis.Tx) error {
		snapshot := make(map[string][]byte, len(keys))
		for _, k := range keys {
			v, err := rtx.Get(ctx, k).Bytes()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get %s: %w", k, err)
			}
			snapshot[k] = v
		}

		staged := newStagedTx(keys, snapshot)
		if err := fn(staged); err != nil {
			return err
		}

		writes, err := staged.writes()
		if err != nil {
			return err
		}
		if len(writes) == 0 {
			return nil
		}

		_, err = rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, w := range writes {
				if w.isDelete() {
					pipe.Del(ctx, w.key)
					continue
				}
				pipe.Set(ctx, w.key, w.value, 0)
			}
			return nil
		})
		return err
	}

	for range maxWatchRetries {
		err := s.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	return fmt.Errorf("atomic %v: %w", keys, core.ErrConflict)
}
