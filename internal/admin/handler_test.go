// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/storage"
)

type stubUsers map[access.Role]int

func (s stubUsers) CountByRole(context.Context) (map[access.Role]int, error) {
	return s, nil
}

type stubSweeper struct{ removed int }

func (s *stubSweeper) CleanupAll(context.Context) (int, error) {
	return s.removed, nil
}

func passthrough(next http.Handler) http.Handler { return next }

func newRouter(cfg HandlerConfig) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(cfg).RegisterRoutes(r, passthrough, passthrough)
	return r
}

func TestSystemStats(t *testing.T) {
	r := newRouter(HandlerConfig{
		Store:   storage.NewMemoryStore(),
		DBStats: func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 25, InUse: 2} },
		RedisStats: func() *redis.PoolStats {
			return &redis.PoolStats{Hits: 10, TotalConns: 3}
		},
		Users: stubUsers{access.RoleUser: 3, access.RoleAdmin: 1},
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data SystemStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	stats := body.Data
	assert.Equal(t, "memory", stats.Storage.Driver)
	assert.True(t, stats.Storage.Healthy)
	require.NotNil(t, stats.Database)
	assert.Equal(t, 25, stats.Database.MaxOpenConnections)
	require.NotNil(t, stats.Redis)
	assert.Equal(t, uint32(10), stats.Redis.Hits)
	assert.Equal(t, 3, stats.Users[access.RoleUser])
	assert.Equal(t, 0, stats.Users[access.RoleTipster])
	assert.Len(t, stats.Users, 4)
	assert.NotEmpty(t, stats.Runtime.GoVersion)
}

func TestSystemStatsWithoutOptionalBackends(t *testing.T) {
	r := newRouter(HandlerConfig{Store: storage.NewMemoryStore()})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"database"`)
	assert.NotContains(t, rec.Body.String(), `"redis"`)
}

func TestCleanupSubscriptions(t *testing.T) {
	r := newRouter(HandlerConfig{Sweeper: &stubSweeper{removed: 4}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/subscriptions/cleanup", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"removed":4}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	newRouter(HandlerConfig{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/subscriptions/cleanup", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
