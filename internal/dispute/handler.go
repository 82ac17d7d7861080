// AngelaMos | 2026
// handler.go

package dispute

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/slip-market/internal/core"
	"github.com/carterperez-dev/templates/slip-market/internal/middleware"
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

// RegisterRoutes mounts the buyer endpoints under /disputes and the review
// queue under /admin/disputes.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, canRaise, canReview func(http.Handler) http.Handler,
) {
	r.Route("/disputes", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(canRaise)

		r.Post("/", h.Create)
		r.Get("/mine", h.Mine)
	})

	r.Route("/admin/disputes", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(canReview)

		r.Get("/", h.List)
		r.Get("/stats", h.Stats)
		r.Get("/{disputeID}", h.Get)
		r.Post("/{disputeID}/resolve", h.Resolve)
		r.Post("/{disputeID}/reject", h.Reject)
		r.Delete("/{disputeID}", h.Delete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	d, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.Created(w, d)
}

func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	disputes, err := h.service.Mine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, disputes)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromQuery(r)

	disputes, total, err := h.service.List(
		r.Context(),
		Status(r.URL.Query().Get("status")),
		page,
	)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.Paginated(w, disputes, page.Page, page.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), chi.URLParam(r, "disputeID"))
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, d)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, stats)
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	h.closeWith(w, r, h.service.Resolve)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.closeWith(w, r, h.service.Reject)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "disputeID")); err != nil {
		h.fail(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) closeWith(
	w http.ResponseWriter,
	r *http.Request,
	closeFn func(ctx context.Context, id, resolution string) (*Dispute, error),
) {
	var req CloseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	d, err := closeFn(r.Context(), chi.URLParam(r, "disputeID"), req.Resolution)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, d)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "dispute")
	case errors.Is(err, core.ErrConflict):
		core.JSONError(w, core.ConflictError("dispute conflicts with its current state"))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid dispute query")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "authentication required")
	default:
		core.InternalServerError(w, err)
	}
}
