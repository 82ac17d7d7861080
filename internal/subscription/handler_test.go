// AngelaMos | 2026
// handler_test.go

package subscription

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/middleware"
	"github.com/carterperez-dev/templates/slip-market/internal/storage"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// fakeAuth trusts the X-Test-User and X-Test-Role headers.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-Test-User")
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
			UserID: userID,
			Role:   access.Role(r.Header.Get("X-Test-Role")),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func setupRouter(t *testing.T) (*chi.Mux, *Service, *testClock) {
	t.Helper()

	svc, clock := newTestService(t, storage.NewMemoryStore())
	guard := middleware.NewGuard(access.Default())

	r := chi.NewRouter()
	NewHandler(svc, time.Millisecond).RegisterRoutes(
		r,
		fakeAuth,
		guard.RequirePermission(access.PurchaseSlips),
	)
	return r, svc, clock
}

func do(
	t *testing.T,
	h http.Handler,
	method, path, body string,
	headers map[string]string,
) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

var asUser = map[string]string{"X-Test-User": "u1", "X-Test-Role": "user"}

func TestListPlansIsPublic(t *testing.T) {
	r, _, _ := setupRouter(t)

	rec, env := do(t, r, http.MethodGet, "/plans", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var plans []PlanResponse
	require.NoError(t, json.Unmarshal(env.Data, &plans))
	require.Len(t, plans, 3)
	assert.Equal(t, PlanDaily, plans[0].Plan)
	assert.Equal(t, 3000, plans[0].Price)
	assert.Equal(t, 7, plans[1].DurationDays)
	assert.Equal(t, int64(2592000000), plans[2].DurationMs)
}

func TestSubscriptionsRequireAuthAndPermission(t *testing.T) {
	r, _, _ := setupRouter(t)

	rec, env := do(t, r, http.MethodGet, "/subscriptions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)

	rec, _ = do(t, r, http.MethodGet, "/subscriptions", "", map[string]string{
		"X-Test-User": "u1",
		"X-Test-Role": "guest",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSelectAndActivateFlow(t *testing.T) {
	r, _, _ := setupRouter(t)

	body := `{"tipsterId":"t1","tipsterName":"Sharp Picks","tipsterImage":"/img/t1.png","plan":"weekly"}`
	rec, env := do(t, r, http.MethodPost, "/subscriptions/pending", body, asUser)
	require.Equal(t, http.StatusCreated, rec.Code)

	var pending PendingSubscription
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	assert.Equal(t, 7000, pending.Price)

	rec, _ = do(t, r, http.MethodGet, "/subscriptions/pending", "", asUser)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, r, http.MethodPost, "/subscriptions/pending/activate", "", asUser)
	require.Equal(t, http.StatusOK, rec.Code)

	var activated ActivateResponse
	require.NoError(t, json.Unmarshal(env.Data, &activated))
	assert.True(t, activated.Activated)
	require.NotNil(t, activated.Subscription)
	assert.True(t, activated.Subscription.Active)
	assert.Equal(t, "168h 0m 0s", activated.Subscription.Remaining)

	rec, _ = do(t, r, http.MethodGet, "/subscriptions/pending", "", asUser)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, r, http.MethodGet, "/subscriptions/t1", "", asUser)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, r, http.MethodPost, "/subscriptions/pending/activate", "", asUser)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &activated))
	assert.False(t, activated.Activated)
}

func TestSelectPlanValidation(t *testing.T) {
	r, _, _ := setupRouter(t)

	rec, env := do(t, r, http.MethodPost, "/subscriptions/pending", `{"tipsterId":"t1","tipsterName":"x","plan":"yearly"}`, asUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "plan must be one of")

	rec, _ = do(t, r, http.MethodPost, "/subscriptions/pending", `{`, asUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearPending(t *testing.T) {
	r, svc, _ := setupRouter(t)

	require.NoError(t, svc.SetPending(t.Context(), "u1", PendingSubscription{TipsterID: "t1", Plan: PlanDaily}))

	rec, _ := do(t, r, http.MethodDelete, "/subscriptions/pending", "", asUser)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	pending, err := svc.GetPending(t.Context(), "u1")
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestListHidesExpiredUnlessAsked(t *testing.T) {
	r, svc, clock := setupRouter(t)
	now := clock.Now()

	require.NoError(t, svc.AddSubscription(t.Context(), "u1", sub("old", PlanDaily, now.Add(-time.Hour))))
	require.NoError(t, svc.AddSubscription(t.Context(), "u1", sub("new", PlanDaily, now.Add(time.Hour))))

	_, env := do(t, r, http.MethodGet, "/subscriptions", "", asUser)
	var subs []SubscriptionResponse
	require.NoError(t, json.Unmarshal(env.Data, &subs))
	require.Len(t, subs, 1)
	assert.Equal(t, "new", subs[0].TipsterID)

	_, env = do(t, r, http.MethodGet, "/subscriptions?include_expired=true", "", asUser)
	require.NoError(t, json.Unmarshal(env.Data, &subs))
	assert.Len(t, subs, 2)

	rec, _ := do(t, r, http.MethodGet, "/subscriptions/old", "", asUser)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = do(t, r, http.MethodPost, "/subscriptions/cleanup", "", asUser)
	require.Equal(t, http.StatusOK, rec.Code)
	var cleaned CleanupResponse
	require.NoError(t, json.Unmarshal(env.Data, &cleaned))
	assert.Equal(t, 1, cleaned.Removed)
}

func TestCountdownJSON(t *testing.T) {
	r, svc, clock := setupRouter(t)

	require.NoError(t, svc.AddSubscription(t.Context(), "u1", sub("t1", PlanDaily, clock.Now().Add(3661*time.Second))))

	rec, env := do(t, r, http.MethodGet, "/subscriptions/t1/countdown", "", asUser)
	require.Equal(t, http.StatusOK, rec.Code)

	var cd CountdownResponse
	require.NoError(t, json.Unmarshal(env.Data, &cd))
	assert.Equal(t, "1h 1m 1s", cd.Formatted)
	assert.Equal(t, int64(3661000), cd.TotalMs)
	assert.Equal(t, 1, cd.Hours)

	rec, _ = do(t, r, http.MethodGet, "/subscriptions/missing/countdown", "", asUser)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCountdownStreamEndsAtExpired(t *testing.T) {
	svc, clock := newTestService(t, storage.NewMemoryStore())
	require.NoError(t, svc.AddSubscription(t.Context(), "u1", sub("t1", PlanDaily, clock.Now().Add(2*time.Second))))

	h := NewHandler(svc, time.Millisecond)
	h.ticker.Now = func() time.Time {
		now := clock.Now()
		clock.Advance(time.Second)
		return now
	}

	r := chi.NewRouter()
	h.RegisterRoutes(r, fakeAuth, func(next http.Handler) http.Handler { return next })

	headers := map[string]string{
		"X-Test-User": "u1",
		"X-Test-Role": "user",
		"Accept":      "text/event-stream",
	}
	rec, _ := do(t, r, http.MethodGet, "/subscriptions/t1/countdown", "", headers)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "data: 2s\n\n")
	assert.Contains(t, body, "data: 1s\n\n")
	assert.True(t, strings.HasSuffix(body, "data: Expired\n\n"))
}
