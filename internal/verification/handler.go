// AngelaMos | 2026
// handler.go

package verification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
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

// RegisterRoutes mounts tipster submissions under /verifications and the
// review queue under /admin/verifications.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, canSubmit, canReview func(http.Handler) http.Handler,
) {
	r.Route("/verifications", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(canSubmit)

		r.Post("/", h.Submit)
		r.Get("/mine", h.Mine)
	})

	r.Route("/admin/verifications", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(canReview)

		r.Get("/", h.List)
		r.Get("/stats", h.Stats)
		r.Get("/{requestID}", h.Get)
		r.Post("/{requestID}/approve", h.Approve)
		r.Post("/{requestID}/reject", h.Reject)
		r.Delete("/{requestID}", h.Delete)
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	var email string
	if claims := middleware.GetClaims(r.Context()); claims != nil {
		email = claims.Email
	}

	vr, err := h.service.Submit(r.Context(), middleware.GetUserID(r.Context()), email, req)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.Created(w, vr)
}

func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.Mine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, requests)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromQuery(r)

	requests, total, err := h.service.List(
		r.Context(),
		Status(r.URL.Query().Get("status")),
		page,
	)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.Paginated(w, requests, page.Page, page.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	vr, err := h.service.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, vr)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, stats)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.reviewWith(w, r, h.service.Approve)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.reviewWith(w, r, h.service.Reject)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "requestID")); err != nil {
		h.fail(w, err)
		return
	}

	core.NoContent(w)
}

// reviewWith accepts an empty body, since the note is optional.
func (h *Handler) reviewWith(
	w http.ResponseWriter,
	r *http.Request,
	reviewFn func(ctx context.Context, id, note string) (*Request, error),
) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	vr, err := reviewFn(r.Context(), chi.URLParam(r, "requestID"), req.Note)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, vr)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "verification request")
	case errors.Is(err, core.ErrConflict):
		core.JSONError(w, core.ConflictError("verification request conflicts with its current state"))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid verification query")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "authentication required")
	default:
		core.InternalServerError(w, err)
	}
}
