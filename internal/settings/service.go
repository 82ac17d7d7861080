// AngelaMos | 2026
// service.go

package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/slip-market/internal/audit"
	"github.com/carterperez-dev/templates/slip-market/internal/core"
	"github.com/carterperez-dev/templates/slip-market/internal/storage"
)

const settingsKey = "system_settings"

type Service struct {
	store   storage.Store
	auditor audit.Recorder
	now     func() time.Time
}

func NewService(store storage.Store, auditor audit.Recorder) *Service {
	return &Service{
		store:   store,
		auditor: auditor,
		now:     time.Now,
	}
}

// Get returns the stored settings, or the defaults when none are stored.
func (s *Service) Get(ctx context.Context) (*SystemSettings, error) {
	cur, err := storage.GetJSON(ctx, s.store, settingsKey, Defaults())
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &cur, nil
}

// Update applies p for the caller on ctx and records the change. A patch
// that alters nothing is not stored or audited.
func (s *Service) Update(ctx context.Context, p Patch) (*SystemSettings, error) {
	if p.empty() {
		return nil, fmt.Errorf("update settings: empty patch: %w", core.ErrInvalidInput)
	}
	return s.mutate(ctx, audit.ActionUpdateSettings, func(cur SystemSettings) (Patch, error) {
		return p, nil
	})
}

// ToggleMaintenance flips maintenance mode.
func (s *Service) ToggleMaintenance(ctx context.Context) (*SystemSettings, error) {
	return s.mutate(ctx, audit.ActionToggleMaintenance, func(cur SystemSettings) (Patch, error) {
		on := !cur.MaintenanceMode
		return Patch{MaintenanceMode: &on}, nil
	})
}

// InMaintenance reports whether maintenance mode is on. Backend errors
// read as off so a broken store cannot lock everyone out.
func (s *Service) InMaintenance(ctx context.Context) bool {
	cur, err := s.Get(ctx)
	if err != nil {
		slog.Warn("maintenance flag unavailable", "error", err)
		return false
	}
	return cur.MaintenanceMode
}

func (s *Service) mutate(
	ctx context.Context,
	action audit.Action,
	build func(cur SystemSettings) (Patch, error),
) (*SystemSettings, error) {
	actor := audit.ActorFrom(ctx)

	var (
		next    SystemSettings
		changed []string
	)
	err := s.store.Atomic(ctx, []string{settingsKey}, func(tx storage.Tx) error {
		raw, ok := tx.Get(settingsKey)
		cur := storage.DecodeOr(settingsKey, raw, ok, Defaults())

		p, err := build(cur)
		if err != nil {
			return err
		}

		next = cur
		p.apply(&next)
		if next.MinDepositAmount > next.MaxDepositAmount {
			return fmt.Errorf("deposit bounds: %w", core.ErrInvalidInput)
		}

		changed = p.changed(cur)
		if len(changed) == 0 {
			next = cur
			return nil
		}

		next.UpdatedAt = s.now().UTC()
		next.UpdatedBy = actor.ID
		return storage.StageJSON(tx, settingsKey, next)
	})
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}

	if len(changed) > 0 {
		s.record(ctx, action, "changed "+strings.Join(changed, ", "))
	}
	return &next, nil
}

func (s *Service) record(ctx context.Context, action audit.Action, details string) {
	if s.auditor == nil {
		return
	}
	_, err := s.auditor.Record(ctx, audit.Event{
		Action:     action,
		TargetID:   settingsID,
		TargetType: audit.TargetSettings,
		Details:    details,
	})
	if err != nil {
		slog.Warn("settings change not audited", "action", action, "error", err)
	}
}
