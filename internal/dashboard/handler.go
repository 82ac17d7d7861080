// AngelaMos | 2026
// handler.go

package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/core"
	"github.com/carterperez-dev/templates/slip-market/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, canView, canConfigure func(http.Handler) http.Handler,
) {
	r.Route("/dashboard/metrics", func(r chi.Router) {
		r.Use(authenticator)

		r.With(canView).Get("/", h.Get)
		r.With(canConfigure).Put("/{role}", h.Set)
		r.With(canConfigure).Delete("/{role}", h.Reset)
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetUserRole(r.Context())

	m, err := h.service.Get(r.Context(), role)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, map[string]any{
		"role":    role,
		"metrics": m,
	})
}

func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	role := access.Role(chi.URLParam(r, "role"))

	var m Metrics
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.service.Set(r.Context(), role, m); err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, map[string]any{
		"role":    role,
		"metrics": m,
	})
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	role := access.Role(chi.URLParam(r, "role"))
	if !role.Valid() {
		core.BadRequest(w, "unknown role")
		return
	}

	if err := h.service.Reset(r.Context(), role); err != nil {
		h.fail(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrInvalidInput) {
		core.BadRequest(w, "unknown role or empty metrics")
		return
	}
	core.InternalServerError(w, err)
}
