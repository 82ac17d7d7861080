// AngelaMos | 2026
// handler_test.go

package dispute

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
)

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

func setupRouter(t *testing.T) (*chi.Mux, *Service) {
	t.Helper()

	svc, _ := newTestService(t)
	guard := middleware.NewGuard(access.Default())

	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(
		r,
		fakeAuth,
		guard.RequirePermission(access.ViewDashboard),
		guard.RequireFeature(access.FeatureDisputes),
	)
	return r, svc
}

func send(
	r http.Handler,
	method, path, body, userID string,
	role access.Role,
) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
		req.Header.Set("X-Test-Role", string(role))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRaiseAndResolveOverHTTP(t *testing.T) {
	r, _ := setupRouter(t)

	rec := send(r, http.MethodPost, "/disputes",
		`{"slipId":"slip_1","reason":"slip was edited after I paid"}`,
		"user_1", access.RoleUser)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data Dispute `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = send(r, http.MethodGet, "/disputes/mine", "", "user_1", access.RoleUser)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.Data.ID)

	path := "/admin/disputes/" + created.Data.ID + "/resolve"
	assert.Equal(t, http.StatusForbidden,
		send(r, http.MethodPost, path, `{"resolution":"refund"}`, "user_1", access.RoleUser).Code)

	assert.Equal(t, http.StatusOK,
		send(r, http.MethodPost, path, `{"resolution":"refund"}`, "user_3", access.RoleAdmin).Code)

	assert.Equal(t, http.StatusConflict,
		send(r, http.MethodPost, path, `{"resolution":"again"}`, "user_3", access.RoleAdmin).Code)
}

func TestDisputeValidation(t *testing.T) {
	r, _ := setupRouter(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{`, http.StatusBadRequest},
		{"short reason", `{"slipId":"slip_1","reason":"bad"}`, http.StatusBadRequest},
		{"missing slip", `{"reason":"this slip does not exist"}`, http.StatusBadRequest},
		{"unknown slip", `{"slipId":"slip_9","reason":"this slip does not exist"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(r, http.MethodPost, "/disputes", tt.body, "user_1", access.RoleUser)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAdminQueue(t *testing.T) {
	r, svc := setupRouter(t)
	d := raise(t, svc, "user_1", "slip_1")

	assert.Equal(t, http.StatusUnauthorized,
		send(r, http.MethodGet, "/admin/disputes", "", "", "").Code)

	rec := send(r, http.MethodGet, "/admin/disputes?status=open", "", "user_3", access.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), d.ID)

	assert.Equal(t, http.StatusBadRequest,
		send(r, http.MethodGet, "/admin/disputes?status=bogus", "", "user_3", access.RoleAdmin).Code)

	rec = send(r, http.MethodGet, "/admin/disputes/stats", "", "user_4", access.RoleSuperAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"open":1`)

	assert.Equal(t, http.StatusNoContent,
		send(r, http.MethodDelete, "/admin/disputes/"+d.ID, "", "user_3", access.RoleAdmin).Code)
	assert.Equal(t, http.StatusNotFound,
		send(r, http.MethodGet, "/admin/disputes/"+d.ID, "", "user_3", access.RoleAdmin).Code)
}
