// AngelaMos | 2026
// postgres.go

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/slip-market/internal/core"
)

const schema = `
	CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// PostgresStore keeps one row per key. Atomic takes a transaction-scoped
// advisory lock per declared key, so keys without a row yet are covered too,
// then reads the rows with SELECT ... FOR UPDATE.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure kv schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_store WHERE key = $1`

	var value []byte
	err := s.db.GetContext(ctx, &value, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if err := upsert(ctx, s.db, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	query := `DELETE FROM kv_store WHERE key = $1`

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	query := `SELECT key FROM kv_store WHERE key LIKE $1 ESCAPE '\' ORDER BY key`

	var keys []string
	if err := s.db.SelectContext(ctx, &keys, query, escapeLike(prefix)+"%"); err != nil {
		return nil, fmt.Errorf("list keys %s: %w", prefix, err)
	}
	return keys, nil
}

type kvRow struct {
	Key   string `db:"key"`
	Value []byte `db:"value"`
}

func (s *PostgresStore) Atomic(
	ctx context.Context,
	keys []string,
	fn func(tx Tx) error,
) error {
	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, k := range dedupeSorted(slices.Clone(keys)) {
			if _, err := tx.ExecContext(
				ctx,
				`SELECT pg_advisory_xact_lock(hashtext($1))`,
				k,
			); err != nil {
				return fmt.Errorf("lock %s: %w", k, err)
			}
		}

		query, args, err := sqlx.In(
			`SELECT key, value FROM kv_store WHERE key IN (?) ORDER BY key FOR UPDATE`,
			keys,
		)
		if err != nil {
			return fmt.Errorf("build lock query: %w", err)
		}

		var rows []kvRow
		if err := tx.SelectContext(ctx, &rows, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("lock keys: %w", err)
		}

		snapshot := make(map[string][]byte, len(rows))
		for _, r := range rows {
			snapshot[r.Key] = r.Value
		}

		staged := newStagedTx(keys, snapshot)
		if err := fn(staged); err != nil {
			return err
		}

		writes, err := staged.writes()
		if err != nil {
			return err
		}

		for _, w := range writes {
			if w.isDelete() {
				if _, err := tx.ExecContext(
					ctx,
					`DELETE FROM kv_store WHERE key = $1`,
					w.key,
				); err != nil {
					return fmt.Errorf("remove %s: %w", w.key, err)
				}
				continue
			}
			if err := upsert(ctx, tx, w.key, w.value); err != nil {
				return fmt.Errorf("set %s: %w", w.key, err)
			}
		}

		return nil
	})
}

func upsert(ctx context.Context, db sqlx.ExecerContext, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()`

	_, err := db.ExecContext(ctx, query, key, value)
	return err
}
