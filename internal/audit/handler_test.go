// AngelaMos | 2026
// handler_test.go

package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/middleware"
)

// fakeAuth trusts the X-Test-Role header.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := r.Header.Get("X-Test-Role")
		if role == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
			UserID: "caller",
			Role:   access.Role(role),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func setupRouter(t *testing.T) (*chi.Mux, *Service) {
	t.Helper()

	svc, _ := newTestService(t, 0)
	guard := middleware.NewGuard(access.Default())

	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(
		r,
		fakeAuth,
		guard.RequireFeature(access.FeatureAuditLog),
		guard.RequireFeature(access.FeatureProofchain),
	)
	return r, svc
}

func get(r http.Handler, path string, role access.Role) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if role != "" {
		req.Header.Set("X-Test-Role", string(role))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuditRoutesRequireSuperAdmin(t *testing.T) {
	r, _ := setupRouter(t)

	tests := []struct {
		path string
		role access.Role
		want int
	}{
		{"/audit-logs", "", http.StatusUnauthorized},
		{"/audit-logs", access.RoleAdmin, http.StatusForbidden},
		{"/audit-logs", access.RoleSuperAdmin, http.StatusOK},
		{"/proofchain", access.RoleTipster, http.StatusForbidden},
		{"/proofchain", access.RoleSuperAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, get(r, tt.path, tt.role).Code)
		})
	}
}

func TestListAndChainEndpoints(t *testing.T) {
	r, svc := setupRouter(t)

	entry, err := svc.Record(context.Background(), Event{
		Action:     ActionToggleMaintenance,
		TargetID:   "settings_default",
		TargetType: TargetSettings,
	})
	require.NoError(t, err)

	rec := get(r, "/audit-logs?action=TOGGLE_MAINTENANCE", access.RoleSuperAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Data struct {
			Items []Entry `json:"items"`
			Meta  struct {
				Total int `json:"total"`
			} `json:"meta"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Data.Meta.Total)
	assert.Equal(t, entry.ID, list.Data.Items[0].ID)

	assert.Equal(t, http.StatusOK, get(r, "/audit-logs/"+entry.ID, access.RoleSuperAdmin).Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/audit-logs/audit_nope", access.RoleSuperAdmin).Code)

	rec = get(r, "/proofchain", access.RoleSuperAdmin)
	var chain struct {
		Data ChainReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chain))
	assert.True(t, chain.Data.Valid)
	assert.Equal(t, entry.Hash, chain.Data.Head)
}
