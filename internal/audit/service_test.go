// AngelaMos | 2026
// service_test.go

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/core"
	"github.com/carterperez-dev/templates/slip-market/internal/middleware"
	"github.com/carterperez-dev/templates/slip-market/internal/storage"
)

func asAdmin(id string) context.Context {
	return middleware.WithClaims(context.Background(), &middleware.AccessTokenClaims{
		UserID: id,
		Email:  id + "@example.com",
		Role:   access.RoleSuperAdmin,
	})
}

func newTestService(t *testing.T, retention int) (*Service, storage.Store) {
	t.Helper()

	store := storage.NewMemoryStore()
	svc := NewService(store, retention)
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc, store
}

func TestRecordFillsActorAndLinksEntries(t *testing.T) {
	svc, _ := newTestService(t, 0)

	first, err := svc.Record(asAdmin("user_4"), Event{
		Action:     ActionUpdateUserRole,
		TargetID:   "user_2",
		TargetType: TargetUser,
		Details:    "user -> tipster",
	})
	require.NoError(t, err)
	assert.Equal(t, "user_4", first.AdminID)
	assert.Equal(t, "user_4@example.com", first.AdminEmail)
	assert.Equal(t, access.RoleSuperAdmin, first.AdminRole)
	assert.Empty(t, first.PrevHash)
	assert.NotEmpty(t, first.Hash)

	second, err := svc.Record(context.Background(), Event{
		Action:     ActionUpdateSettings,
		TargetID:   "settings_default",
		TargetType: TargetSettings,
	})
	require.NoError(t, err)
	assert.Equal(t, SystemActor, second.AdminID)
	assert.Equal(t, first.Hash, second.PrevHash)
}

func TestRecordRejectsIncompleteEvents(t *testing.T) {
	svc, _ := newTestService(t, 0)

	_, err := svc.Record(context.Background(), Event{TargetType: TargetUser})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Record(context.Background(), Event{
		Action:     ActionUpdateUserRole,
		TargetType: "planet",
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestListFiltersNewestFirst(t *testing.T) {
	svc, _ := newTestService(t, 0)

	for i, admin := range []string{"user_3", "user_4", "user_3"} {
		_, err := svc.Record(asAdmin(admin), Event{
			Action:     ActionResolveDispute,
			TargetID:   fmt.Sprintf("dispute_%d", i),
			TargetType: TargetDispute,
		})
		require.NoError(t, err)
	}
	_, err := svc.Record(asAdmin("user_4"), Event{
		Action:     ActionUpdateSettings,
		TargetType: TargetSettings,
	})
	require.NoError(t, err)

	page := core.PageParams{Page: 1, PageSize: 20}

	entries, total, err := svc.List(context.Background(), Filter{AdminID: "user_3", Page: page})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "dispute_2", entries[0].TargetID)
	assert.Equal(t, "dispute_0", entries[1].TargetID)

	_, total, err = svc.List(context.Background(), Filter{TargetType: TargetSettings, Page: page})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	entries, total, err = svc.List(context.Background(), Filter{
		Action: ActionResolveDispute,
		Page:   core.PageParams{Page: 2, PageSize: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, entries, 1)
	assert.Equal(t, "dispute_0", entries[0].TargetID)
}

func TestRetentionKeepsNewestAndChainStillVerifies(t *testing.T) {
	svc, _ := newTestService(t, 3)
	ctx := asAdmin("user_4")

	for i := range 5 {
		_, err := svc.Record(ctx, Event{
			Action:     ActionUpdateSettings,
			TargetID:   fmt.Sprintf("t%d", i),
			TargetType: TargetSettings,
		})
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, "t4", stats.Recent[0].TargetID)
	assert.Equal(t, 3, stats.ByAction[ActionUpdateSettings])

	report, err := svc.VerifyChain(ctx)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Equal(t, 3, report.Entries)
	assert.Equal(t, stats.Recent[0].Hash, report.Head)
}

func TestVerifyChainDetectsTampering(t *testing.T) {
	svc, store := newTestService(t, 0)
	ctx := asAdmin("user_4")

	for _, target := range []string{"a", "b", "c"} {
		_, err := svc.Record(ctx, Event{
			Action:     ActionDeleteDispute,
			TargetID:   target,
			TargetType: TargetDispute,
		})
		require.NoError(t, err)
	}

	entries, err := storage.GetJSON(ctx, store, logsKey, []Entry{})
	require.NoError(t, err)
	entries[1].Details = "nothing to see"
	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, logsKey, raw))

	report, err := svc.VerifyChain(ctx)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, entries[1].ID, report.BrokenAt)
}

func TestGetEntry(t *testing.T) {
	svc, _ := newTestService(t, 0)

	entry, err := svc.Record(asAdmin("user_4"), Event{
		Action:     ActionApproveVerification,
		TargetID:   "verification_1",
		TargetType: TargetVerification,
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Hash, got.Hash)

	_, err = svc.Get(context.Background(), "audit_missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
