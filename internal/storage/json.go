// AngelaMos | 2026
// json.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carterperez-dev/templates/slip-market/internal/core"
)

// GetJSON loads key and decodes it into T. A missing key or a value that does
// not decode yields fallback with a nil error. Only backend failures are
// returned.
func GetJSON[T any](ctx context.Context, s Store, key string, fallback T) (T, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, core.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}
	return DecodeOr(key, raw, true, fallback), nil
}

// DecodeOr decodes raw into T, or returns fallback when the value is absent
// or malformed.
func DecodeOr[T any](key string, raw []byte, ok bool, fallback T) T {
	if !ok || len(raw) == 0 {
		return fallback
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		slog.Warn("discarding malformed stored value",
			"key", key,
			"error", err,
		)
		return fallback
	}
	return out
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// StageJSON encodes v and stages it on tx.
func StageJSON(tx Tx, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	tx.Set(key, raw)
	return nil
}
