// AngelaMos | 2026
// handler.go

package settings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/slip-market/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, canManage func(http.Handler) http.Handler,
) {
	r.Route("/settings", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(canManage)

		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Post("/maintenance/toggle", h.ToggleMaintenance)
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cur, err := h.service.Get(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, cur)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var p Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(p); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	updated, err := h.service.Update(r.Context(), p)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, updated)
}

func (h *Handler) ToggleMaintenance(w http.ResponseWriter, r *http.Request) {
	updated, err := h.service.ToggleMaintenance(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, updated)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrInvalidInput) {
		core.BadRequest(w, "invalid settings")
		return
	}
	core.InternalServerError(w, err)
}
