// AngelaMos | 2026
// handler_test.go

package verification

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
			Email:  userID + "@example.com",
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
		guard.RequirePermission(access.CreateSlips),
		guard.RequireFeature(access.FeatureVerifyTipsters),
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

func TestSubmitOverHTTP(t *testing.T) {
	r, _ := setupRouter(t)

	assert.Equal(t, http.StatusForbidden,
		send(r, http.MethodPost, "/verifications", `{"tipsterName":"Regular"}`, "user_1", access.RoleUser).Code)

	rec := send(r, http.MethodPost, "/verifications", `{"tipsterName":"Sharp Picks"}`, "user_2", access.RoleTipster)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data Request `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user_2@example.com", body.Data.Email)

	assert.Equal(t, http.StatusConflict,
		send(r, http.MethodPost, "/verifications", `{"tipsterName":"Sharp Picks"}`, "user_2", access.RoleTipster).Code)

	assert.Equal(t, http.StatusBadRequest,
		send(r, http.MethodPost, "/verifications", `{"tipsterName":""}`, "user_5", access.RoleTipster).Code)

	rec = send(r, http.MethodGet, "/verifications/mine", "", "user_2", access.RoleTipster)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), body.Data.ID)
}

func TestReviewQueueOverHTTP(t *testing.T) {
	r, svc := setupRouter(t)
	vr := submit(t, svc, "user_2")

	assert.Equal(t, http.StatusForbidden,
		send(r, http.MethodGet, "/admin/verifications", "", "user_2", access.RoleTipster).Code)

	rec := send(r, http.MethodGet, "/admin/verifications?status=pending", "", "user_3", access.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), vr.ID)

	path := "/admin/verifications/" + vr.ID + "/approve"
	assert.Equal(t, http.StatusOK, send(r, http.MethodPost, path, "", "user_3", access.RoleAdmin).Code)
	assert.Equal(t, http.StatusConflict, send(r, http.MethodPost, path, "", "user_3", access.RoleAdmin).Code)

	rec = send(r, http.MethodGet, "/admin/verifications/stats", "", "user_3", access.RoleAdmin)
	assert.Contains(t, rec.Body.String(), `"approved":1`)

	assert.Equal(t, http.StatusNoContent,
		send(r, http.MethodDelete, "/admin/verifications/"+vr.ID, "", "user_3", access.RoleAdmin).Code)
	assert.Equal(t, http.StatusNotFound,
		send(r, http.MethodGet, "/admin/verifications/"+vr.ID, "", "user_3", access.RoleAdmin).Code)
}
