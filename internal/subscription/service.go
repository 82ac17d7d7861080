// AngelaMos | 2026
// service.go

package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/slip-market/internal/core"
	"github.com/carterperez-dev/templates/slip-market/internal/metrics"
)

var tracer = otel.Tracer("slip-market/subscription")

type Service struct {
	repo    Repository
	pricing Pricing
	now     func() time.Time
}

type Option func(*Service)

// WithClock replaces the wall clock used for expiry and activation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, pricing Pricing, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		pricing: pricing,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Pricing() Pricing {
	return s.pricing
}

func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) IsSubscribed(
	ctx context.Context,
	userID, tipsterID string,
) (bool, error) {
	sub, err := s.GetSubscription(ctx, userID, tipsterID)
	if err != nil {
		return false, err
	}
	return sub != nil, nil
}

// GetSubscription returns the active subscription to tipsterID, or nil when
// there is none. Expired entries are ignored but left in place.
func (s *Service) GetSubscription(
	ctx context.Context,
	userID, tipsterID string,
) (*Subscription, error) {
	if userID == "" {
		return nil, fmt.Errorf("get subscription: %w", core.ErrUnauthorized)
	}

	subs, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	i := slices.IndexFunc(subs, func(sub Subscription) bool {
		return sub.TipsterID == tipsterID && sub.ActiveAt(now)
	})
	if i < 0 {
		return nil, nil
	}

	sub := subs[i]
	return &sub, nil
}

// List returns every stored subscription, expired ones included.
func (s *Service) List(ctx context.Context, userID string) ([]Subscription, error) {
	if userID == "" {
		return nil, fmt.Errorf("list subscriptions: %w", core.ErrUnauthorized)
	}
	return s.repo.List(ctx, userID)
}

func (s *Service) ListActive(ctx context.Context, userID string) ([]Subscription, error) {
	subs, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return slices.DeleteFunc(subs, func(sub Subscription) bool {
		return !sub.ActiveAt(now)
	}), nil
}

// AddSubscription stores sub, replacing any entry for the same tipster.
func (s *Service) AddSubscription(
	ctx context.Context,
	userID string,
	sub Subscription,
) error {
	ctx, span := tracer.Start(ctx, "subscription.add")
	defer span.End()

	if userID == "" {
		return fmt.Errorf("add subscription: %w", core.ErrUnauthorized)
	}
	if sub.TipsterID == "" || !sub.Plan.Valid() {
		return fmt.Errorf("add subscription: %w", core.ErrInvalidInput)
	}

	if err := s.repo.Upsert(ctx, userID, sub); err != nil {
		core.SetSpanError(ctx, err)
		return err
	}

	metrics.RecordSubscription(string(sub.Plan), "direct")
	return nil
}

// CleanupExpired drops every subscription whose end date has passed and
// reports how many were removed.
func (s *Service) CleanupExpired(ctx context.Context, userID string) (int, error) {
	ctx, span := tracer.Start(ctx, "subscription.cleanup")
	defer span.End()

	if userID == "" {
		return 0, fmt.Errorf("cleanup subscriptions: %w", core.ErrUnauthorized)
	}

	removed, err := s.repo.RemoveExpired(ctx, userID, s.now())
	if err != nil {
		core.SetSpanError(ctx, err)
		return 0, err
	}

	if removed > 0 {
		core.AddSpanEvent(ctx, "expired_removed", attribute.Int("count", removed))
		metrics.RecordExpiredRemoved(removed)
	}
	return removed, nil
}

// CleanupAll sweeps every user with stored subscriptions. A failure for one
// user is logged and does not stop the sweep.
func (s *Service) CleanupAll(ctx context.Context) (int, error) {
	users, err := s.repo.Users(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, userID := range users {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}

		n, err := s.CleanupExpired(ctx, userID)
		if err != nil {
			slog.Warn("cleanup failed for user",
				"user_id", userID,
				"error", err,
			)
			continue
		}
		total += n
	}
	return total, nil
}

// LedgerEntry is one stored subscription and the user holding it.
type LedgerEntry struct {
	UserID string
	Subscription
}

// Ledger lists every stored subscription across users. Entries the janitor
// has already swept are gone.
func (s *Service) Ledger(ctx context.Context) ([]LedgerEntry, error) {
	users, err := s.repo.Users(ctx)
	if err != nil {
		return nil, err
	}

	var entries []LedgerEntry
	for _, userID := range users {
		subs, err := s.repo.List(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("ledger for %s: %w", userID, err)
		}
		for _, sub := range subs {
			entries = append(entries, LedgerEntry{UserID: userID, Subscription: sub})
		}
	}
	return entries, nil
}

// SetPending overwrites the user's pending slot. A missing price is filled
// from the active price table.
func (s *Service) SetPending(
	ctx context.Context,
	userID string,
	p PendingSubscription,
) error {
	if userID == "" {
		return fmt.Errorf("set pending subscription: %w", core.ErrUnauthorized)
	}
	if !p.valid() {
		return fmt.Errorf("set pending subscription: %w", core.ErrInvalidInput)
	}
	if p.Price <= 0 {
		p.Price = s.pricing.Price(p.Plan)
	}

	if err := s.repo.SetPending(ctx, userID, p); err != nil {
		return err
	}

	metrics.RecordPendingSelection(string(p.Plan))
	return nil
}

func (s *Service) GetPending(
	ctx context.Context,
	userID string,
) (*PendingSubscription, error) {
	if userID == "" {
		return nil, fmt.Errorf("get pending subscription: %w", core.ErrUnauthorized)
	}
	return s.repo.Pending(ctx, userID)
}

func (s *Service) ClearPending(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("clear pending subscription: %w", core.ErrUnauthorized)
	}
	return s.repo.ClearPending(ctx, userID)
}

// ActivatePending turns the pending selection into a subscription starting
// now and clears the slot. It reports false, changing nothing, when the slot
// is empty.
func (s *Service) ActivatePending(ctx context.Context, userID string) (bool, error) {
	sub, err := s.Activate(ctx, userID)
	if err != nil {
		return false, err
	}
	return sub != nil, nil
}

// Activate is ActivatePending returning the stored subscription, or nil.
func (s *Service) Activate(ctx context.Context, userID string) (*Subscription, error) {
	ctx, span := tracer.Start(ctx, "subscription.activate")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("activate subscription: %w", core.ErrUnauthorized)
	}

	sub, err := s.repo.Activate(ctx, userID, func(p PendingSubscription) Subscription {
		start := s.now()
		return Subscription{
			TipsterID:   p.TipsterID,
			TipsterName: p.TipsterName,
			Plan:        p.Plan,
			Price:       p.Price,
			StartDate:   start,
			EndDate:     CalculateEndDate(p.Plan, start),
		}
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}

	core.AddSpanEvent(ctx, "activated",
		attribute.String("tipster_id", sub.TipsterID),
		attribute.String("plan", string(sub.Plan)),
	)
	metrics.RecordSubscription(string(sub.Plan), "activation")

	slog.Info("subscription activated",
		"user_id", userID,
		"tipster_id", sub.TipsterID,
		"plan", sub.Plan,
		"end_date", sub.EndDate,
	)
	return sub, nil
}
