// AngelaMos | 2026
// handler.go

package permission

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/core"
	"github.com/carterperez-dev/templates/slip-market/internal/middleware"
)

type RoleAccessResponse struct {
	Role        access.Role         `json:"role"`
	Permissions []access.Permission `json:"permissions"`
	Features    map[string]bool     `json:"features"`
}

type FeatureAccessResponse struct {
	Feature  string              `json:"feature"`
	Allowed  bool                `json:"allowed"`
	Gated    bool                `json:"gated"`
	Requires []access.Permission `json:"requires"`
}

type RoleTableEntry struct {
	Role        access.Role         `json:"role"`
	Permissions []access.Permission `json:"permissions"`
}

// Handler exposes the access policy so clients can shape their UI to the
// caller's role.
type Handler struct {
	policy *access.Policy
}

func NewHandler(policy *access.Policy) *Handler {
	if policy == nil {
		policy = access.Default()
	}
	return &Handler{policy: policy}
}

func (h *Handler) RegisterRoutes(r chi.Router, authenticator func(http.Handler) http.Handler) {
	r.Get("/roles", h.Roles)

	r.Route("/permissions", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.Me)
		r.Get("/features/{featureID}", h.Feature)
	})
}

func (h *Handler) Roles(w http.ResponseWriter, _ *http.Request) {
	table := make([]RoleTableEntry, 0, len(access.Ladder))
	for _, role := range access.Ladder {
		table = append(table, RoleTableEntry{
			Role:        role,
			Permissions: h.policy.Permissions(role),
		})
	}
	core.OK(w, table)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetUserRole(r.Context())

	core.OK(w, RoleAccessResponse{
		Role:        role,
		Permissions: h.policy.Permissions(role),
		Features:    h.policy.Features(role),
	})
}

func (h *Handler) Feature(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetUserRole(r.Context())
	feature := chi.URLParam(r, "featureID")

	required, gated := h.policy.RequiredFor(feature)

	core.OK(w, FeatureAccessResponse{
		Feature:  feature,
		Allowed:  h.policy.CanAccessFeature(role, feature),
		Gated:    gated,
		Requires: required,
	})
}
