// AngelaMos | 2026
// service.go

package verification

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

const requestsKey = "verification_requests"

type Service struct {
	requests *storage.Collection[Request]
	auditor  audit.Recorder
	now      func() time.Time
}

func NewService(store storage.Store, auditor audit.Recorder) *Service {
	return &Service{
		requests: storage.NewCollection[Request](store, requestsKey),
		auditor:  auditor,
		now:      time.Now,
	}
}

// Submit files a request for tipsterID. It fails with ErrConflict while
// another request is pending or after the tipster was approved.
func (s *Service) Submit(
	ctx context.Context,
	tipsterID, email string,
	req SubmitRequest,
) (*Request, error) {
	if tipsterID == "" {
		return nil, fmt.Errorf("submit verification: %w", core.ErrUnauthorized)
	}

	vr := Request{
		ID:          "verification_" + uuid.New().String(),
		TipsterID:   tipsterID,
		TipsterName: req.TipsterName,
		Email:       email,
		Status:      StatusPending,
		SubmittedAt: s.now().UTC(),
	}

	err := s.requests.Mutate(ctx, func(all []Request) ([]Request, error) {
		for _, other := range all {
			if other.TipsterID != tipsterID {
				continue
			}
			if other.Status == StatusPending || other.Status == StatusApproved {
				return nil, core.ErrConflict
			}
		}
		return append(all, vr), nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit verification: %w", err)
	}
	return &vr, nil
}

// Mine returns tipsterID's requests, newest first.
func (s *Service) Mine(ctx context.Context, tipsterID string) ([]Request, error) {
	all, err := s.requests.All(ctx)
	if err != nil {
		return nil, err
	}

	mine := slices.DeleteFunc(all, func(r Request) bool { return r.TipsterID != tipsterID })
	slices.Reverse(mine)
	return mine, nil
}

// List returns requests in status (all when empty), oldest first so the
// review queue is worked in order.
func (s *Service) List(
	ctx context.Context,
	status Status,
	page core.PageParams,
) ([]Request, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("list verifications: status %q: %w", status, core.ErrInvalidInput)
	}

	all, err := s.requests.All(ctx)
	if err != nil {
		return nil, 0, err
	}

	all = slices.DeleteFunc(all, func(r Request) bool {
		return status != "" && r.Status != status
	})

	total := len(all)
	start, end := page.Bounds(total)
	return all[start:end], total, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Request, error) {
	all, err := s.requests.All(ctx)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(all, func(r Request) bool { return r.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("get verification: %w", core.ErrNotFound)
	}
	return &all[i], nil
}

func (s *Service) Approve(ctx context.Context, id, note string) (*Request, error) {
	return s.review(ctx, id, StatusApproved, note, audit.ActionApproveVerification)
}

func (s *Service) Reject(ctx context.Context, id, note string) (*Request, error) {
	return s.review(ctx, id, StatusRejected, note, audit.ActionRejectVerification)
}

func (s *Service) review(
	ctx context.Context,
	id string,
	status Status,
	note string,
	action audit.Action,
) (*Request, error) {
	actor := audit.ActorFrom(ctx)

	var reviewed Request
	err := s.requests.Mutate(ctx, func(all []Request) ([]Request, error) {
		i := slices.IndexFunc(all, func(r Request) bool { return r.ID == id })
		if i < 0 {
			return nil, core.ErrNotFound
		}
		if all[i].Status != StatusPending {
			return nil, core.ErrConflict
		}

		at := s.now().UTC()
		all[i].Status = status
		all[i].ReviewedAt = &at
		all[i].ReviewedBy = actor.ID
		all[i].Note = note
		reviewed = all[i]
		return all, nil
	})
	if err != nil {
		return nil, fmt.Errorf("review verification: %w", err)
	}

	s.record(ctx, action, id, fmt.Sprintf("%s %s", status, reviewed.TipsterID))
	return &reviewed, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.requests.Mutate(ctx, func(all []Request) ([]Request, error) {
		n := len(all)
		all = slices.DeleteFunc(all, func(r Request) bool { return r.ID == id })
		if len(all) == n {
			return nil, core.ErrNotFound
		}
		return all, nil
	})
	if err != nil {
		return fmt.Errorf("delete verification: %w", err)
	}

	s.record(ctx, audit.ActionDeleteVerification, id, "verification request deleted")
	return nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	all, err := s.requests.All(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Total: len(all)}
	for _, r := range all {
		switch r.Status {
		case StatusPending:
			stats.Pending++
		case StatusApproved:
			stats.Approved++
		case StatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

// CountPending reports how many requests await review.
func (s *Service) CountPending(ctx context.Context) (int, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return 0, err
	}
	return stats.Pending, nil
}

// IsVerified reports whether tipsterID has an approved request.
func (s *Service) IsVerified(ctx context.Context, tipsterID string) (bool, error) {
	all, err := s.requests.All(ctx)
	if err != nil {
		return false, err
	}

	return slices.ContainsFunc(all, func(r Request) bool {
		return r.TipsterID == tipsterID && r.Status == StatusApproved
	}), nil
}

func (s *Service) record(ctx context.Context, action audit.Action, id, details string) {
	if s.auditor == nil {
		return
	}
	_, err := s.auditor.Record(ctx, audit.Event{
		Action:     action,
		TargetID:   id,
		TargetType: audit.TargetVerification,
		Details:    details,
	})
	if err != nil {
		slog.Warn("verification change not audited",
			"action", action,
			"verification_id", id,
			"error", err,
		)
	}
}
