// AngelaMos | 2026
// handler.go

package finance

import (
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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, canManageFinance, canViewReports func(http.Handler) http.Handler,
) {
	r.With(authenticator, canManageFinance).Get("/finance/summary", h.Summary)
	r.With(authenticator, canViewReports).Get("/reports/overview", h.Report)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summary(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, sum)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, report)
}
