// AngelaMos | 2026
// maintenance_test.go

package settings

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/middleware"
)

func gated(svc *Service, role access.Role) *httptest.ResponseRecorder {
	h := MaintenanceGate(svc, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithClaims(req.Context(), &middleware.AccessTokenClaims{
		UserID: "caller",
		Role:   role,
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMaintenanceGate(t *testing.T) {
	svc, _ := newTestService(t)

	assert.Equal(t, http.StatusNoContent, gated(svc, access.RoleUser).Code)

	_, err := svc.ToggleMaintenance(superAdmin())
	require.NoError(t, err)

	tests := []struct {
		role access.Role
		want int
	}{
		{access.RoleUser, http.StatusServiceUnavailable},
		{access.RoleTipster, http.StatusServiceUnavailable},
		{access.RoleAdmin, http.StatusServiceUnavailable},
		{access.RoleSuperAdmin, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			rec := gated(svc, tt.role)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusServiceUnavailable {
				assert.Contains(t, rec.Body.String(), "MAINTENANCE")
				assert.Equal(t, "300", rec.Header().Get("Retry-After"))
			}
		})
	}
}
