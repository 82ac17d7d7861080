// AngelaMos | 2026
// repository.go

package subscription

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/slip-market/internal/storage"
)

const (
	usersPrefix   = "users"
	listSuffix    = "subscriptions"
	pendingSuffix = "pending_subscription"
)

func listKey(userID string) string {
	return storage.Key(usersPrefix, userID, listSuffix)
}

func pendingKey(userID string) string {
	return storage.Key(usersPrefix, userID, pendingSuffix)
}

type Repository interface {
	List(ctx context.Context, userID string) ([]Subscription, error)
	Upsert(ctx context.Context, userID string, sub Subscription) error
	RemoveExpired(ctx context.Context, userID string, now time.Time) (int, error)
	Pending(ctx context.Context, userID string) (*PendingSubscription, error)
	SetPending(ctx context.Context, userID string, p PendingSubscription) error
	ClearPending(ctx context.Context, userID string) error
	Activate(
		ctx context.Context,
		userID string,
		build func(p PendingSubscription) Subscription,
	) (*Subscription, error)
	Users(ctx context.Context) ([]string, error)
}

type repository struct {
	store storage.Store
}

func NewRepository(store storage.Store) Repository {
	return &repository{store: store}
}

func (r *repository) List(ctx context.Context, userID string) ([]Subscription, error) {
	key := listKey(userID)

	subs, err := storage.GetJSON(ctx, r.store, key, []Subscription{})
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	if subs == nil {
		subs = []Subscription{}
	}
	return subs, nil
}

func (r *repository) Upsert(ctx context.Context, userID string, sub Subscription) error {
	key := listKey(userID)

	err := r.store.Atomic(ctx, []string{key}, func(tx storage.Tx) error {
		return stageUpsert(tx, key, sub)
	})
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (r *repository) RemoveExpired(
	ctx context.Context,
	userID string,
	now time.Time,
) (int, error) {
	key := listKey(userID)
	removed := 0

	err := r.store.Atomic(ctx, []string{key}, func(tx storage.Tx) error {
		removed = 0

		raw, ok := tx.Get(key)
		if !ok {
			return nil
		}

		subs := storage.DecodeOr(key, raw, ok, []Subscription{})
		active := slices.DeleteFunc(slices.Clone(subs), func(s Subscription) bool {
			return s.ExpiredAt(now)
		})
		removed = len(subs) - len(active)
		if active == nil {
			active = []Subscription{}
		}

		if removed == 0 {
			return nil
		}
		return storage.StageJSON(tx, key, active)
	})
	if err != nil {
		return 0, fmt.Errorf("remove expired subscriptions: %w", err)
	}
	return removed, nil
}

func (r *repository) Pending(
	ctx context.Context,
	userID string,
) (*PendingSubscription, error) {
	p, err := storage.GetJSON[*PendingSubscription](ctx, r.store, pendingKey(userID), nil)
	if err != nil {
		return nil, fmt.Errorf("get pending subscription: %w", err)
	}
	if p == nil || !p.valid() {
		return nil, nil
	}
	return p, nil
}

func (r *repository) SetPending(
	ctx context.Context,
	userID string,
	p PendingSubscription,
) error {
	if err := storage.SetJSON(ctx, r.store, pendingKey(userID), p); err != nil {
		return fmt.Errorf("set pending subscription: %w", err)
	}
	return nil
}

func (r *repository) ClearPending(ctx context.Context, userID string) error {
	if err := r.store.Remove(ctx, pendingKey(userID)); err != nil {
		return fmt.Errorf("clear pending subscription: %w", err)
	}
	return nil
}

// Activate converts the pending selection into a stored subscription and
// clears the slot in the same store transaction. It returns nil when there
// is nothing pending.
func (r *repository) Activate(
	ctx context.Context,
	userID string,
	build func(p PendingSubscription) Subscription,
) (*Subscription, error) {
	lk, pk := listKey(userID), pendingKey(userID)
	var activated *Subscription

	err := r.store.Atomic(ctx, []string{lk, pk}, func(tx storage.Tx) error {
		activated = nil

		raw, ok := tx.Get(pk)
		pending := storage.DecodeOr[*PendingSubscription](pk, raw, ok, nil)
		if pending == nil || !pending.valid() {
			return nil
		}

		sub := build(*pending)
		if err := stageUpsert(tx, lk, sub); err != nil {
			return err
		}
		tx.Remove(pk)

		activated = &sub
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("activate pending subscription: %w", err)
	}
	return activated, nil
}

// Users lists every user that has a stored subscription list.
func (r *repository) Users(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, usersPrefix+":")
	if err != nil {
		return nil, fmt.Errorf("list subscription owners: %w", err)
	}

	users := make([]string, 0, len(keys))
	for _, k := range keys {
		rest, ok := strings.CutPrefix(k, usersPrefix+":")
		if !ok {
			continue
		}
		userID, ok := strings.CutSuffix(rest, ":"+listSuffix)
		if !ok || userID == "" {
			continue
		}
		users = append(users, userID)
	}
	return users, nil
}

func stageUpsert(tx storage.Tx, key string, sub Subscription) error {
	raw, ok := tx.Get(key)
	subs := storage.DecodeOr(key, raw, ok, []Subscription{})

	subs = slices.DeleteFunc(subs, func(s Subscription) bool {
		return s.TipsterID == sub.TipsterID
	})
	subs = append(subs, sub)

	return storage.StageJSON(tx, key, subs)
}
