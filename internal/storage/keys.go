// AngelaMos | 2026
// keys.go

package storage

import (
	"context"
	"sort"
	"strings"
)

const separator = ":"

// Namespaced prefixes every key with a fixed namespace so several installs
// can share one backend. Callers never see the prefix.
type Namespaced struct {
	inner  Store
	prefix string
}

func Namespace(inner Store, namespace string) Store {
	if namespace == "" {
		return inner
	}
	return &Namespaced{inner: inner, prefix: namespace + separator}
}

func (n *Namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *Namespaced) Remove(ctx context.Context, key string) error {
	return n.inner.Remove(ctx, n.prefix+key)
}

func (n *Namespaced) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := n.inner.Keys(ctx, n.prefix+prefix)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, n.prefix)
	}
	return keys, nil
}

func (n *Namespaced) Atomic(
	ctx context.Context,
	keys []string,
	fn func(tx Tx) error,
) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = n.prefix + k
	}
	return n.inner.Atomic(ctx, full, func(tx Tx) error {
		return fn(&namespacedTx{inner: tx, prefix: n.prefix})
	})
}

type namespacedTx struct {
	inner  Tx
	prefix string
}

func (t *namespacedTx) Get(key string) ([]byte, bool) {
	return t.inner.Get(t.prefix + key)
}

func (t *namespacedTx) Set(key string, value []byte) {
	t.inner.Set(t.prefix+key, value)
}

func (t *namespacedTx) Remove(key string) {
	t.inner.Remove(t.prefix + key)
}

// Key joins parts with the store separator.
func Key(parts ...string) string {
	return strings.Join(parts, separator)
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`*`, `\*`,
		`?`, `\?`,
		`[`, `\[`,
		`]`, `\]`,
	)
	return r.Replace(s)
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

func dedupeSorted(keys []string) []string {
	sort.Strings(keys)
	out := keys[:0]
	for i, k := range keys {
		if i > 0 && k == keys[i-1] {
			continue
		}
		out = append(out, k)
	}
	return out
}
