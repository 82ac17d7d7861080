// AngelaMos | 2026
// service.go

package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/core"
	"github.com/carterperez-dev/templates/slip-market/internal/storage"
)

// UserCounter reports how many registered users hold each role.
type UserCounter interface {
	CountByRole(ctx context.Context) (map[access.Role]int, error)
}

// Counter reports one live figure for an admin tile.
type Counter func(ctx context.Context) (int, error)

type Service struct {
	store storage.Store
	users UserCounter
	live  map[string]Counter
}

type Option func(*Service)

// WithLiveCount replaces the admin tile key with counter's value on every
// read.
func WithLiveCount(key string, counter Counter) Option {
	return func(s *Service) {
		s.live[key] = counter
	}
}

func NewService(store storage.Store, users UserCounter, opts ...Option) *Service {
	s := &Service{
		store: store,
		users: users,
		live:  make(map[string]Counter),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func metricsKey(role access.Role) string {
	return storage.Key("dashboard_metrics", string(role))
}

// Get returns the stored metrics for role, falling back to the role's
// defaults when nothing usable is stored. Admin dashboards get live user
// counts and queue sizes layered on top.
func (s *Service) Get(ctx context.Context, role access.Role) (Metrics, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("get dashboard metrics: role %q: %w", role, core.ErrInvalidInput)
	}

	m, err := storage.GetJSON(ctx, s.store, metricsKey(role), Metrics(nil))
	if err != nil {
		return nil, fmt.Errorf("get dashboard metrics: %w", err)
	}
	if m == nil {
		m = Defaults(role)
	}

	if role == access.RoleAdmin || role == access.RoleSuperAdmin {
		s.overlayUserCounts(ctx, role, m)
		s.overlayLiveCounts(ctx, m)
	}
	return m, nil
}

func (s *Service) Set(ctx context.Context, role access.Role, m Metrics) error {
	if !role.Valid() {
		return fmt.Errorf("set dashboard metrics: role %q: %w", role, core.ErrInvalidInput)
	}
	if len(m) == 0 {
		return fmt.Errorf("set dashboard metrics: empty: %w", core.ErrInvalidInput)
	}

	if err := storage.SetJSON(ctx, s.store, metricsKey(role), m); err != nil {
		return fmt.Errorf("set dashboard metrics: %w", err)
	}
	return nil
}

// Reset drops stored metrics so the role reads its defaults again.
func (s *Service) Reset(ctx context.Context, role access.Role) error {
	if err := s.store.Remove(ctx, metricsKey(role)); err != nil {
		return fmt.Errorf("reset dashboard metrics: %w", err)
	}
	return nil
}

func (s *Service) overlayUserCounts(ctx context.Context, role access.Role, m Metrics) {
	if s.users == nil {
		return
	}

	counts, err := s.users.CountByRole(ctx)
	if err != nil {
		slog.Warn("dashboard user counts unavailable", "error", err)
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	m["totalUsers"] = total

	if role == access.RoleSuperAdmin {
		m["regularUsers"] = counts[access.RoleUser]
		m["tipsters"] = counts[access.RoleTipster]
		m["admins"] = counts[access.RoleAdmin]
		m["superAdmins"] = counts[access.RoleSuperAdmin]
	}
}

func (s *Service) overlayLiveCounts(ctx context.Context, m Metrics) {
	for key, counter := range s.live {
		n, err := counter(ctx)
		if err != nil {
			slog.Warn("dashboard live count unavailable", "key", key, "error", err)
			continue
		}
		m[key] = n
	}
}
