// AngelaMos | 2026
// handler.go

package slip

import (
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

// RegisterRoutes mounts the public catalogue behind optionalAuth and the
// tipster workspace behind authenticator and canCreate.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth, authenticator, canCreate func(http.Handler) http.Handler,
) {
	r.Route("/slips", func(r chi.Router) {
		r.With(optionalAuth).Get("/", h.ListPublished)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(canCreate)

			r.Post("/", h.Create)
			r.Get("/mine", h.Mine)
			r.Get("/mine/stats", h.MyStats)
			r.Patch("/{slipID}", h.Update)
			r.Post("/{slipID}/publish", h.Publish)
			r.Post("/{slipID}/archive", h.Archive)
			r.Delete("/{slipID}", h.Delete)
		})

		r.With(optionalAuth).Get("/{slipID}", h.Get)
	})
}

func (h *Handler) ListPublished(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := core.PageFromQuery(r)
	f := ListFilter{
		TipsterID: q.Get("tipster_id"),
		League:    q.Get("league"),
		Risk:      Risk(q.Get("risk")),
	}

	views, total, err := h.service.Published(r.Context(), viewer(r), f, page)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.Paginated(w, views, page.Page, page.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.View(r.Context(), viewer(r), chi.URLParam(r, "slipID"))
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, v)
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

	sl, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.Created(w, sl)
}

func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	slips, err := h.service.Mine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, slips)
}

func (h *Handler) MyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, stats)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sl, err := h.service.Update(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "slipID"),
		req,
	)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, sl)
}

func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	sl, err := h.service.Publish(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "slipID"),
	)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, sl)
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	sl, err := h.service.Archive(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "slipID"),
	)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, sl)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "slipID"),
	)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.NoContent(w)
}

// viewer is the caller's user ID, or empty for anonymous requests.
func viewer(r *http.Request) string {
	if !middleware.IsAuthenticated(r.Context()) {
		return ""
	}
	return middleware.GetUserID(r.Context())
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "slip")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "slip belongs to another tipster")
	case errors.Is(err, core.ErrConflict):
		core.JSONError(w, core.ConflictError("slip cannot change in its current status"))
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "authentication required")
	default:
		core.InternalServerError(w, err)
	}
}
