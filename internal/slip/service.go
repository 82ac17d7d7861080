// AngelaMos | 2026
// service.go

package slip

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/slip-market/internal/auth"
	"github.com/carterperez-dev/templates/slip-market/internal/core"
	"github.com/carterperez-dev/templates/slip-market/internal/storage"
)

const slipsKey = "created_slips"

// SubscriptionChecker reports whether a user may see a tipster's picks.
type SubscriptionChecker interface {
	IsSubscribed(ctx context.Context, userID, tipsterID string) (bool, error)
}

// VerificationChecker reports whether a tipster has been verified.
type VerificationChecker interface {
	IsVerified(ctx context.Context, tipsterID string) (bool, error)
}

// Directory resolves a tipster's display name.
type Directory interface {
	GetByID(ctx context.Context, id string) (*auth.UserInfo, error)
}

type Deps struct {
	Subscriptions SubscriptionChecker
	Verifications VerificationChecker
	Directory     Directory
}

type Service struct {
	slips *storage.Collection[Slip]
	deps  Deps
	now   func() time.Time
}

func NewService(store storage.Store, deps Deps) *Service {
	return &Service{
		slips: storage.NewCollection[Slip](store, slipsKey),
		deps:  deps,
		now:   time.Now,
	}
}

func (s *Service) Create(ctx context.Context, tipsterID string, req CreateRequest) (*Slip, error) {
	if tipsterID == "" {
		return nil, fmt.Errorf("create slip: %w", core.ErrUnauthorized)
	}

	now := s.now().UTC()
	picks := toPicks(req.Picks)
	sl := Slip{
		ID:          "slip_" + uuid.New().String(),
		TipsterID:   tipsterID,
		TipsterName: s.tipsterName(ctx, tipsterID),
		Title:       req.Title,
		Description: req.Description,
		Picks:       picks,
		TotalOdds:   TotalOdds(picks),
		Price:       req.Price,
		League:      req.League,
		Risk:        req.Risk,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.slips.Mutate(ctx, func(all []Slip) ([]Slip, error) {
		return append(all, sl), nil
	})
	if err != nil {
		return nil, fmt.Errorf("create slip: %w", err)
	}
	return &sl, nil
}

// Update applies req to a slip tipsterID owns. New picks are refused once
// the slip has left draft.
func (s *Service) Update(
	ctx context.Context,
	tipsterID, id string,
	req UpdateRequest,
) (*Slip, error) {
	return s.modify(ctx, tipsterID, id, func(sl *Slip) error {
		if req.Picks != nil {
			if sl.Status != StatusDraft {
				return fmt.Errorf("picks of %s slip: %w", sl.Status, core.ErrConflict)
			}
			sl.Picks = toPicks(*req.Picks)
			sl.TotalOdds = TotalOdds(sl.Picks)
		}
		if req.Title != nil {
			sl.Title = *req.Title
		}
		if req.Description != nil {
			sl.Description = *req.Description
		}
		if req.Price != nil {
			sl.Price = *req.Price
		}
		if req.League != nil {
			sl.League = *req.League
		}
		if req.Risk != nil {
			sl.Risk = *req.Risk
		}
		return nil
	})
}

func (s *Service) Publish(ctx context.Context, tipsterID, id string) (*Slip, error) {
	return s.modify(ctx, tipsterID, id, func(sl *Slip) error {
		if sl.Status != StatusDraft {
			return fmt.Errorf("publish %s slip: %w", sl.Status, core.ErrConflict)
		}
		at := s.now().UTC()
		sl.Status = StatusPublished
		sl.PublishedAt = &at
		return nil
	})
}

func (s *Service) Archive(ctx context.Context, tipsterID, id string) (*Slip, error) {
	return s.modify(ctx, tipsterID, id, func(sl *Slip) error {
		if sl.Status == StatusArchived {
			return fmt.Errorf("archive slip: %w", core.ErrConflict)
		}
		sl.Status = StatusArchived
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, tipsterID, id string) error {
	err := s.slips.Mutate(ctx, func(all []Slip) ([]Slip, error) {
		i := slices.IndexFunc(all, func(sl Slip) bool { return sl.ID == id })
		if i < 0 {
			return nil, core.ErrNotFound
		}
		if all[i].TipsterID != tipsterID {
			return nil, core.ErrForbidden
		}
		return slices.Delete(all, i, i+1), nil
	})
	if err != nil {
		return fmt.Errorf("delete slip: %w", err)
	}
	return nil
}

// Mine returns every slip tipsterID created, newest first.
func (s *Service) Mine(ctx context.Context, tipsterID string) ([]Slip, error) {
	all, err := s.slips.All(ctx)
	if err != nil {
		return nil, err
	}

	mine := slices.DeleteFunc(all, func(sl Slip) bool { return sl.TipsterID != tipsterID })
	slices.Reverse(mine)
	return mine, nil
}

// Published lists published slips matching f for viewerID, newest first.
// viewerID may be empty for anonymous callers.
func (s *Service) Published(
	ctx context.Context,
	viewerID string,
	f ListFilter,
	page core.PageParams,
) ([]View, int, error) {
	all, err := s.slips.All(ctx)
	if err != nil {
		return nil, 0, err
	}

	all = slices.DeleteFunc(all, func(sl Slip) bool {
		return sl.Status != StatusPublished || !f.matches(sl)
	})
	slices.SortStableFunc(all, func(a, b Slip) int {
		return b.PublishedAt.Compare(*a.PublishedAt)
	})

	total := len(all)
	start, end := page.Bounds(total)

	unlocked := make(map[string]bool)
	views := make([]View, 0, end-start)
	for _, sl := range all[start:end] {
		open, seen := unlocked[sl.TipsterID]
		if !seen {
			open = s.canSeePicks(ctx, viewerID, sl.TipsterID)
			unlocked[sl.TipsterID] = open
		}
		views = append(views, newView(sl, open))
	}
	return views, total, nil
}

// View returns one slip for viewerID and counts the view. Unpublished
// slips are visible to their owner only.
func (s *Service) View(ctx context.Context, viewerID, id string) (*View, error) {
	var seen Slip
	err := s.slips.Mutate(ctx, func(all []Slip) ([]Slip, error) {
		i := slices.IndexFunc(all, func(sl Slip) bool { return sl.ID == id })
		if i < 0 {
			return nil, core.ErrNotFound
		}

		owner := viewerID != "" && all[i].TipsterID == viewerID
		if !owner && all[i].Status != StatusPublished {
			return nil, core.ErrNotFound
		}
		if !owner {
			all[i].Views++
		}
		seen = all[i]
		return all, nil
	})
	if err != nil {
		return nil, fmt.Errorf("view slip: %w", err)
	}

	v := newView(seen, s.canSeePicks(ctx, viewerID, seen.TipsterID))
	return &v, nil
}

// Exists reports whether a slip with id is stored.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	all, err := s.slips.All(ctx)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(all, func(sl Slip) bool { return sl.ID == id }), nil
}

// Stats summarizes tipsterID's catalogue.
func (s *Service) Stats(ctx context.Context, tipsterID string) (*Stats, error) {
	mine, err := s.Mine(ctx, tipsterID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalSlips: len(mine)}
	var (
		oddsSum float64
		rateSum float64
		rated   int
	)
	for i := range mine {
		sl := &mine[i]
		switch sl.Status {
		case StatusDraft:
			stats.Drafts++
		case StatusPublished:
			stats.Published++
		case StatusArchived:
			stats.Archived++
		}
		stats.TotalViews += sl.Views
		oddsSum += sl.TotalOdds
		if rate, ok := sl.WinRate(); ok {
			rateSum += rate
			rated++
		}
	}
	if len(mine) > 0 {
		stats.AverageOdds = math.Round(oddsSum/float64(len(mine))*100) / 100
	}
	if rated > 0 {
		stats.WinRate = math.Round(rateSum/float64(rated)*10) / 10
	}

	if s.deps.Verifications != nil {
		verified, err := s.deps.Verifications.IsVerified(ctx, tipsterID)
		if err != nil {
			slog.Warn("verification status unavailable", "tipster_id", tipsterID, "error", err)
		}
		stats.Verified = verified
	}
	return stats, nil
}

// CountPublished reports how many slips are on sale.
func (s *Service) CountPublished(ctx context.Context) (int, error) {
	all, err := s.slips.All(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, sl := range all {
		if sl.Status == StatusPublished {
			n++
		}
	}
	return n, nil
}

func (s *Service) modify(
	ctx context.Context,
	tipsterID, id string,
	fn func(sl *Slip) error,
) (*Slip, error) {
	var updated Slip
	err := s.slips.Mutate(ctx, func(all []Slip) ([]Slip, error) {
		i := slices.IndexFunc(all, func(sl Slip) bool { return sl.ID == id })
		if i < 0 {
			return nil, core.ErrNotFound
		}
		if all[i].TipsterID != tipsterID {
			return nil, core.ErrForbidden
		}
		if err := fn(&all[i]); err != nil {
			return nil, err
		}
		all[i].UpdatedAt = s.now().UTC()
		updated = all[i]
		return all, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update slip: %w", err)
	}
	return &updated, nil
}

// canSeePicks fails closed when the subscription lookup errors.
func (s *Service) canSeePicks(ctx context.Context, viewerID, tipsterID string) bool {
	if viewerID == "" {
		return false
	}
	if viewerID == tipsterID {
		return true
	}
	if s.deps.Subscriptions == nil {
		return false
	}

	ok, err := s.deps.Subscriptions.IsSubscribed(ctx, viewerID, tipsterID)
	if err != nil {
		slog.Warn("subscription lookup failed",
			"user_id", viewerID,
			"tipster_id", tipsterID,
			"error", err,
		)
		return false
	}
	return ok
}

func (s *Service) tipsterName(ctx context.Context, tipsterID string) string {
	if s.deps.Directory == nil {
		return tipsterID
	}
	info, err := s.deps.Directory.GetByID(ctx, tipsterID)
	if err != nil || info.FullName == "" {
		return tipsterID
	}
	return info.FullName
}
