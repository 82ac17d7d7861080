// AngelaMos | 2026
// service.go

package dispute

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/slip-market/internal/audit"
	"github.com/carterperez-dev/templates/slip-market/internal/core"
	"github.com/carterperez-dev/templates/slip-market/internal/storage"
)

const disputesKey = "admin_disputes"

// SlipLookup confirms a disputed slip exists.
type SlipLookup interface {
	Exists(ctx context.Context, slipID string) (bool, error)
}

type Service struct {
	disputes *storage.Collection[Dispute]
	slips    SlipLookup
	auditor  audit.Recorder
	now      func() time.Time
}

func NewService(store storage.Store, slips SlipLookup, auditor audit.Recorder) *Service {
	return &Service{
		disputes: storage.NewCollection[Dispute](store, disputesKey),
		slips:    slips,
		auditor:  auditor,
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Dispute, error) {
	if userID == "" {
		return nil, fmt.Errorf("create dispute: %w", core.ErrUnauthorized)
	}

	if s.slips != nil {
		ok, err := s.slips.Exists(ctx, req.SlipID)
		if err != nil {
			return nil, fmt.Errorf("create dispute: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("create dispute: slip %s: %w", req.SlipID, core.ErrNotFound)
		}
	}

	d := Dispute{
		ID:        "dispute_" + uuid.New().String(),
		UserID:    userID,
		SlipID:    req.SlipID,
		Reason:    req.Reason,
		Status:    StatusOpen,
		CreatedAt: s.now().UTC(),
	}

	err := s.disputes.Mutate(ctx, func(all []Dispute) ([]Dispute, error) {
		for _, other := range all {
			if other.UserID == userID && other.SlipID == req.SlipID && other.Status == StatusOpen {
				return nil, core.ErrConflict
			}
		}
		return append(all, d), nil
	})
	if err != nil {
		return nil, fmt.Errorf("create dispute: %w", err)
	}
	return &d, nil
}

// Mine returns the disputes userID raised, newest first.
func (s *Service) Mine(ctx context.Context, userID string) ([]Dispute, error) {
	all, err := s.disputes.All(ctx)
	if err != nil {
		return nil, err
	}

	mine := slices.DeleteFunc(all, func(d Dispute) bool { return d.UserID != userID })
	slices.Reverse(mine)
	return mine, nil
}

// List returns disputes in status (all when empty), newest first.
func (s *Service) List(
	ctx context.Context,
	status Status,
	page core.PageParams,
) ([]Dispute, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("list disputes: status %q: %w", status, core.ErrInvalidInput)
	}

	all, err := s.disputes.All(ctx)
	if err != nil {
		return nil, 0, err
	}

	all = slices.DeleteFunc(all, func(d Dispute) bool {
		return status != "" && d.Status != status
	})
	slices.Reverse(all)

	total := len(all)
	start, end := page.Bounds(total)
	return all[start:end], total, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Dispute, error) {
	all, err := s.disputes.All(ctx)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(all, func(d Dispute) bool { return d.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("get dispute: %w", core.ErrNotFound)
	}
	return &all[i], nil
}

func (s *Service) Resolve(ctx context.Context, id, resolution string) (*Dispute, error) {
	return s.settle(ctx, id, StatusResolved, resolution, audit.ActionResolveDispute)
}

func (s *Service) Reject(ctx context.Context, id, resolution string) (*Dispute, error) {
	return s.settle(ctx, id, StatusRejected, resolution, audit.ActionRejectDispute)
}

// settle moves an open dispute to status. A dispute that is already closed
// yields ErrConflict.
func (s *Service) settle(
	ctx context.Context,
	id string,
	status Status,
	resolution string,
	action audit.Action,
) (*Dispute, error) {
	actor := audit.ActorFrom(ctx)

	var closed Dispute
	err := s.disputes.Mutate(ctx, func(all []Dispute) ([]Dispute, error) {
		i := slices.IndexFunc(all, func(d Dispute) bool { return d.ID == id })
		if i < 0 {
			return nil, core.ErrNotFound
		}
		if all[i].Status != StatusOpen {
			return nil, core.ErrConflict
		}

		at := s.now().UTC()
		all[i].Status = status
		all[i].Resolution = resolution
		all[i].ResolvedAt = &at
		all[i].ResolvedBy = actor.ID
		closed = all[i]
		return all, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s dispute: %w", status, err)
	}

	s.record(ctx, action, id, resolution)
	return &closed, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.disputes.Mutate(ctx, func(all []Dispute) ([]Dispute, error) {
		n := len(all)
		all = slices.DeleteFunc(all, func(d Dispute) bool { return d.ID == id })
		if len(all) == n {
			return nil, core.ErrNotFound
		}
		return all, nil
	})
	if err != nil {
		return fmt.Errorf("delete dispute: %w", err)
	}

	s.record(ctx, audit.ActionDeleteDispute, id, "dispute deleted")
	return nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	all, err := s.disputes.All(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Total: len(all)}
	for _, d := range all {
		switch d.Status {
		case StatusOpen:
			stats.Open++
		case StatusResolved:
			stats.Resolved++
		case StatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

// CountOpen reports how many disputes await an admin.
func (s *Service) CountOpen(ctx context.Context) (int, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return 0, err
	}
	return stats.Open, nil
}

func (s *Service) record(ctx context.Context, action audit.Action, id, details string) {
	if s.auditor == nil {
		return
	}
	_, err := s.auditor.Record(ctx, audit.Event{
		Action:     action,
		TargetID:   id,
		TargetType: audit.TargetDispute,
		Details:    details,
	})
	if err != nil {
		slog.Warn("dispute change not audited",
			"action", action,
			"dispute_id", id,
			"error", err,
		)
	}
}
