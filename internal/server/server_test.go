// AngelaMos | 2026
// server_test.go

package server

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/config"
	"github.com/carterperez-dev/templates/slip-market/internal/health"
	"github.com/carterperez-dev/templates/slip-market/internal/middleware"
	"github.com/carterperez-dev/templates/slip-market/internal/storage"
	"github.com/carterperez-dev/templates/slip-market/internal/subscription"
)

func TestRouterServesRegisteredRoutes(t *testing.T) {
	hh := health.NewHandler()
	srv := New(Config{
		ServerConfig:  config.ServerConfig{Host: "127.0.0.1", Port: 0},
		HealthHandler: hh,
	})
	hh.RegisterRoutes(srv.Router())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestShutdownFlipsHealth(t *testing.T) {
	hh := health.NewHandler()
	srv := New(Config{
		ServerConfig: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         0,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		HealthHandler: hh,
	})
	hh.RegisterRoutes(srv.Router())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx, 10*time.Millisecond))
	require.NoError(t, <-errCh)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "shutting_down")
}

func TestShutdownEndsOpenCountdownStreams(t *testing.T) {
	ctx := context.Background()

	svc := subscription.NewService(
		subscription.NewRepository(storage.NewMemoryStore()),
		subscription.NewPricing(nil),
	)
	now := time.Now()
	require.NoError(t, svc.AddSubscription(ctx, "u1", subscription.Subscription{
		TipsterID: "t1",
		Plan:      subscription.PlanMonthly,
		Price:     20000,
		StartDate: now,
		EndDate:   subscription.CalculateEndDate(subscription.PlanMonthly, now),
	}))

	asUser := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
				UserID: "u1",
				Role:   access.RoleUser,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	srv := New(Config{ServerConfig: config.ServerConfig{Host: "127.0.0.1"}})
	subscription.NewHandler(svc, 10*time.Millisecond).RegisterRoutes(
		srv.Router(),
		asUser,
		middleware.NewGuard(nil).RequirePermission(access.PurchaseSlips),
	)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	req, err := http.NewRequest(
		http.MethodGet,
		"http://"+ln.Addr().String()+"/subscriptions/t1/countdown",
		nil,
	)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "event: countdown"))

	shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	require.NoError(t, srv.Shutdown(shutdownCtx, 0))
	assert.Less(t, time.Since(start), time.Second)
	require.NoError(t, <-errCh)

	_, err = io.Copy(io.Discard, reader)
	assert.NoError(t, err)
}
