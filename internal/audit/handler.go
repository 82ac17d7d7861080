// AngelaMos | 2026
// handler.go

package audit

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/slip-market/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the audit log and its chain check. Entries are
// append-only over HTTP.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, canReadLog, canVerifyChain func(http.Handler) http.Handler,
) {
	r.Route("/audit-logs", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(canReadLog)

		r.Get("/", h.List)
		r.Get("/stats", h.Stats)
		r.Get("/{entryID}", h.Get)
	})

	r.With(authenticator, canVerifyChain).Get("/proofchain", h.VerifyChain)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		AdminID:    q.Get("admin_id"),
		Action:     Action(q.Get("action")),
		TargetType: TargetType(q.Get("target_type")),
		Page:       core.PageFromQuery(r),
	}

	entries, total, err := h.service.List(r.Context(), f)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, entries, f.Page.Page, f.Page.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.Get(r.Context(), chi.URLParam(r, "entryID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "audit entry")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, entry)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, stats)
}

func (h *Handler) VerifyChain(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.VerifyChain(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, report)
}
