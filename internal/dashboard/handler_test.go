// AngelaMos | 2026
// handler_test.go

package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/middleware"
	"github.com/carterperez-dev/templates/slip-market/internal/storage"
)

type metricsBody struct {
	Data struct {
		Role    access.Role    `json:"role"`
		Metrics map[string]any `json:"metrics"`
	} `json:"data"`
}

func withRole(role access.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
				UserID: "u1",
				Role:   role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newRouter(role access.Role) *chi.Mux {
	guard := middleware.NewGuard(access.Default())
	h := NewHandler(NewService(storage.NewMemoryStore(), nil))

	r := chi.NewRouter()
	h.RegisterRoutes(
		r,
		withRole(role),
		guard.RequirePermission(access.ViewDashboard),
		guard.RequireFeature(access.FeatureSettings),
	)
	return r
}

func TestGetReturnsCallerRoleMetrics(t *testing.T) {
	r := newRouter(access.RoleTipster)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body metricsBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, access.RoleTipster, body.Data.Role)
	assert.Contains(t, body.Data.Metrics, "followers")
}

func TestSetRequiresSettingsFeature(t *testing.T) {
	payload := `{"openDisputes": 3}`

	req := httptest.NewRequest(http.MethodPut, "/dashboard/metrics/admin", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	newRouter(access.RoleAdmin).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	r := newRouter(access.RoleSuperAdmin)

	req = httptest.NewRequest(http.MethodPut, "/dashboard/metrics/admin", strings.NewReader(payload))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPut, "/dashboard/metrics/guest", strings.NewReader(payload))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPut, "/dashboard/metrics/admin", strings.NewReader("nope"))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/dashboard/metrics/admin", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
