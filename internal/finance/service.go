// AngelaMos | 2026
// service.go

package finance

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/dispute"
	"github.com/carterperez-dev/templates/slip-market/internal/settings"
	"github.com/carterperez-dev/templates/slip-market/internal/subscription"
	"github.com/carterperez-dev/templates/slip-market/internal/verification"
)

const topTipsters = 10

type Ledger interface {
	Ledger(ctx context.Context) ([]subscription.LedgerEntry, error)
}

type SettingsSource interface {
	Get(ctx context.Context) (*settings.SystemSettings, error)
}

type UserCounter interface {
	CountByRole(ctx context.Context) (map[access.Role]int, error)
}

type SlipCounter interface {
	CountPublished(ctx context.Context) (int, error)
}

type DisputeStats interface {
	Stats(ctx context.Context) (*dispute.Stats, error)
}

type VerificationStats interface {
	Stats(ctx context.Context) (*verification.Stats, error)
}

// Sources feeds the service. Ledger and Settings are required; the rest
// only enrich Report and may be nil.
type Sources struct {
	Ledger        Ledger
	Settings      SettingsSource
	Users         UserCounter
	Slips         SlipCounter
	Disputes      DisputeStats
	Verifications VerificationStats
}

type Service struct {
	src Sources
	now func() time.Time
}

func NewService(src Sources) *Service {
	return &Service{src: src, now: time.Now}
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	cfg, err := s.src.Settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("finance summary: %w", err)
	}

	entries, err := s.src.Ledger.Ledger(ctx)
	if err != nil {
		return nil, fmt.Errorf("finance summary: %w", err)
	}

	now := s.now()
	sum := &Summary{
		CommissionRate: cfg.CommissionRate,
		Subscriptions:  len(entries),
		ByPlan:         make(map[subscription.Plan]PlanTotals, len(subscription.Plans)),
		GeneratedAt:    now.UTC(),
	}

	byTipster := make(map[string]*TipsterEarnings)
	for _, e := range entries {
		price := int64(e.Price)
		sum.GrossRevenue += price
		if e.ActiveAt(now) {
			sum.Active++
		}

		plan := sum.ByPlan[e.Plan]
		plan.Count++
		plan.Revenue += price
		sum.ByPlan[e.Plan] = plan

		t, ok := byTipster[e.TipsterID]
		if !ok {
			t = &TipsterEarnings{TipsterID: e.TipsterID, TipsterName: e.TipsterName}
			byTipster[e.TipsterID] = t
		}
		t.Subscribers++
		t.Revenue += price
	}

	sum.Commission = commission(sum.GrossRevenue, cfg.CommissionRate)
	sum.TipsterPayouts = sum.GrossRevenue - sum.Commission

	sum.TopTipsters = make([]TipsterEarnings, 0, len(byTipster))
	for _, t := range byTipster {
		t.Payout = t.Revenue - commission(t.Revenue, cfg.CommissionRate)
		sum.TopTipsters = append(sum.TopTipsters, *t)
	}
	slices.SortFunc(sum.TopTipsters, func(a, b TipsterEarnings) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.TipsterID, b.TipsterID)
	})
	if len(sum.TopTipsters) > topTipsters {
		sum.TopTipsters = sum.TopTipsters[:topTipsters]
	}

	return sum, nil
}

// Report gathers the admin overview. A failing optional source is logged
// and left out.
func (s *Service) Report(ctx context.Context) (*Report, error) {
	sum, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}

	r := &Report{Finance: sum}

	if s.src.Users != nil {
		if r.Users, err = s.src.Users.CountByRole(ctx); err != nil {
			slog.Warn("report user counts unavailable", "error", err)
		}
	}
	if s.src.Slips != nil {
		if r.PublishedSlips, err = s.src.Slips.CountPublished(ctx); err != nil {
			slog.Warn("report slip count unavailable", "error", err)
		}
	}
	if s.src.Disputes != nil {
		if r.Disputes, err = s.src.Disputes.Stats(ctx); err != nil {
			slog.Warn("report dispute stats unavailable", "error", err)
		}
	}
	if s.src.Verifications != nil {
		if r.Verifications, err = s.src.Verifications.Stats(ctx); err != nil {
			slog.Warn("report verification stats unavailable", "error", err)
		}
	}
	return r, nil
}

func commission(amount int64, rate float64) int64 {
	return int64(math.Round(float64(amount) * rate))
}
