// AngelaMos | 2026
// service_test.go

package finance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/dispute"
	"github.com/carterperez-dev/templates/slip-market/internal/middleware"
	"github.com/carterperez-dev/templates/slip-market/internal/settings"
	"github.com/carterperez-dev/templates/slip-market/internal/storage"
	"github.com/carterperez-dev/templates/slip-market/internal/subscription"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type failingCounter struct{}

func (failingCounter) CountByRole(context.Context) (map[access.Role]int, error) {
	return nil, errors.New("store down")
}

func seed(t *testing.T) (*subscription.Service, *settings.Service, storage.Store) {
	t.Helper()
	ctx := context.Background()

	store := storage.NewMemoryStore()
	subs := subscription.NewService(
		subscription.NewRepository(store),
		subscription.NewPricing(nil),
		subscription.WithClock(func() time.Time { return now }),
	)

	add := func(userID, tipsterID string, plan subscription.Plan, end time.Time) {
		require.NoError(t, subs.AddSubscription(ctx, userID, subscription.Subscription{
			TipsterID:   tipsterID,
			TipsterName: "Tipster " + tipsterID,
			Plan:        plan,
			Price:       subscription.PlanPrice(plan),
			StartDate:   end.Add(-time.Hour),
			EndDate:     end,
		}))
	}
	add("u1", "t1", subscription.PlanDaily, now.Add(time.Hour))
	add("u2", "t1", subscription.PlanMonthly, now.Add(time.Hour))
	add("u2", "t2", subscription.PlanWeekly, now.Add(-time.Hour))

	return subs, settings.NewService(store, nil), store
}

func TestSummarySplitsRevenue(t *testing.T) {
	subs, cfg, _ := seed(t)
	svc := NewService(Sources{Ledger: subs, Settings: cfg})
	svc.now = func() time.Time { return now }

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)

	daily := int64(subscription.PlanPrice(subscription.PlanDaily))
	weekly := int64(subscription.PlanPrice(subscription.PlanWeekly))
	monthly := int64(subscription.PlanPrice(subscription.PlanMonthly))
	gross := daily + weekly + monthly

	assert.Equal(t, gross, sum.GrossRevenue)
	assert.Equal(t, 3, sum.Subscriptions)
	assert.Equal(t, 2, sum.Active)
	assert.InDelta(t, 0.3, sum.CommissionRate, 0)
	assert.Equal(t, gross, sum.Commission+sum.TipsterPayouts)
	assert.Equal(t, PlanTotals{Count: 1, Revenue: monthly}, sum.ByPlan[subscription.PlanMonthly])

	require.Len(t, sum.TopTipsters, 2)
	assert.Equal(t, "t1", sum.TopTipsters[0].TipsterID)
	assert.Equal(t, 2, sum.TopTipsters[0].Subscribers)
	assert.Equal(t, daily+monthly, sum.TopTipsters[0].Revenue)
}

func TestSummaryFollowsCommissionSetting(t *testing.T) {
	subs, cfg, _ := seed(t)
	svc := NewService(Sources{Ledger: subs, Settings: cfg})

	zero := 0.0
	_, err := cfg.Update(context.Background(), settings.Patch{CommissionRate: &zero})
	require.NoError(t, err)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum.Commission)
	assert.Equal(t, sum.GrossRevenue, sum.TipsterPayouts)
}

func TestReportToleratesFailingSources(t *testing.T) {
	subs, cfg, store := seed(t)
	disputes := dispute.NewService(store, nil, nil)
	_, err := disputes.Create(context.Background(), "u1", dispute.CreateRequest{
		SlipID: "slip_1",
		Reason: "slip never loaded for me",
	})
	require.NoError(t, err)

	svc := NewService(Sources{
		Ledger:   subs,
		Settings: cfg,
		Users:    failingCounter{},
		Disputes: disputes,
	})

	report, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.Nil(t, report.Users)
	require.NotNil(t, report.Disputes)
	assert.Equal(t, 1, report.Disputes.Open)
	assert.Nil(t, report.Verifications)
	assert.Equal(t, 3, report.Finance.Subscriptions)
}

func TestFinanceRoutesAreGated(t *testing.T) {
	subs, cfg, _ := seed(t)
	guard := middleware.NewGuard(access.Default())

	r := chi.NewRouter()
	NewHandler(NewService(Sources{Ledger: subs, Settings: cfg})).RegisterRoutes(
		r,
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := middleware.WithClaims(req.Context(), &middleware.AccessTokenClaims{
					UserID: "caller",
					Role:   access.Role(req.Header.Get("X-Test-Role")),
				})
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		},
		guard.RequireFeature(access.FeatureFinance),
		guard.RequireFeature(access.FeatureReports),
	)

	tests := []struct {
		path string
		role access.Role
		want int
	}{
		{"/finance/summary", access.RoleTipster, http.StatusForbidden},
		{"/finance/summary", access.RoleAdmin, http.StatusOK},
		{"/reports/overview", access.RoleUser, http.StatusForbidden},
		{"/reports/overview", access.RoleSuperAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+string(tt.role), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("X-Test-Role", string(tt.role))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
