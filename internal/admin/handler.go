// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/core"
)

type Backend interface {
	Name() string
	Ping(ctx context.Context) error
}

type UserCounter interface {
	CountByRole(ctx context.Context) (map[access.Role]int, error)
}

type Sweeper interface {
	CleanupAll(ctx context.Context) (int, error)
}

type Handler struct {
	store      Backend
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	users      UserCounter
	sweeper    Sweeper
	startedAt  time.Time
}

// HandlerConfig wires the admin surface. DBStats and RedisStats are nil
// when that backend is not connected.
type HandlerConfig struct {
	Store      Backend
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	Users      UserCounter
	Sweeper    Sweeper
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		store:      cfg.Store,
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		users:      cfg.Users,
		sweeper:    cfg.Sweeper,
		startedAt:  time.Now(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, canOperate func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(canOperate)

		r.Get("/stats", h.GetSystemStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)
		r.Post("/subscriptions/cleanup", h.CleanupSubscriptions)
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := SystemStatsResponse{
		Storage: h.storageStatus(ctx),
		Runtime: h.runtimeStats(),
	}

	if h.dbStats != nil {
		resp.Database = toDBPoolStats(h.dbStats())
	}
	if h.redisStats != nil {
		resp.Redis = toRedisPoolStats(h.redisStats())
	}

	if h.users != nil {
		counts, err := h.users.CountByRole(ctx)
		if err != nil {
			core.InternalServerError(w, err)
			return
		}
		resp.Users = make(map[access.Role]int, len(access.Ladder))
		for _, role := range access.Ladder {
			resp.Users[role] = counts[role]
		}
	}

	core.OK(w, resp)
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, h.runtimeStats())
}

// CleanupSubscriptions runs an expiry sweep across every user now instead
// of waiting for the janitor.
func (h *Handler) CleanupSubscriptions(w http.ResponseWriter, r *http.Request) {
	if h.sweeper == nil {
		core.NotFound(w, "subscription sweeper")
		return
	}

	removed, err := h.sweeper.CleanupAll(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]int{"removed": removed})
}

func (h *Handler) storageStatus(ctx context.Context) StorageStatus {
	if h.store == nil {
		return StorageStatus{}
	}

	status := StorageStatus{Driver: h.store.Name(), Healthy: true}
	if err := h.store.Ping(ctx); err != nil {
		status.Healthy = false
	}
	return status
}

func (h *Handler) runtimeStats() RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
		Uptime:       time.Since(h.startedAt).Round(time.Second).String(),
	}
}

func toDBPoolStats(stats sql.DBStats) *DBPoolStats {
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
	}
}

func toRedisPoolStats(stats *redis.PoolStats) *RedisPoolStats {
	if stats == nil {
		return nil
	}
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

type SystemStatsResponse struct {
	Storage  StorageStatus       `json:"storage"`
	Database *DBPoolStats        `json:"database,omitempty"`
	Redis    *RedisPoolStats     `json:"redis,omitempty"`
	Users    map[access.Role]int `json:"users,omitempty"`
	Runtime  RuntimeStats        `json:"runtime"`
}

type StorageStatus struct {
	Driver  string `json:"driver"`
	Healthy bool   `json:"healthy"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
	Uptime       string `json:"uptime"`
}
