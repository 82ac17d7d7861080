// AngelaMos | 2026
// handler.go

package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/slip-market/internal/core"
	"github.com/carterperez-dev/templates/slip-market/internal/countdown"
	"github.com/carterperez-dev/templates/slip-market/internal/middleware"
)

type Handler struct {
	service   *Service
	ticker    *countdown.Ticker
	validator *validator.Validate
}

func NewHandler(service *Service, tick time.Duration) *Handler {
	ticker := countdown.NewTicker(tick)
	ticker.Now = service.Now

	return &Handler{
		service:   service,
		ticker:    ticker,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, canPurchase func(http.Handler) http.Handler,
) {
	r.Get("/plans", h.ListPlans)

	r.Route("/subscriptions", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(canPurchase)

		r.Get("/", h.List)
		r.Post("/cleanup", h.Cleanup)

		r.Route("/pending", func(r chi.Router) {
			r.Get("/", h.GetPending)
			r.Post("/", h.SelectPlan)
			r.Delete("/", h.ClearPending)
			r.Post("/activate", h.Activate)
		})

		r.Get("/{tipsterID}", h.Get)
		r.Get("/{tipsterID}/countdown", h.Countdown)
	})
}

func (h *Handler) ListPlans(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, PlanTable(h.service.Pricing()))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	list := h.service.ListActive
	if r.URL.Query().Get("include_expired") == "true" {
		list = h.service.List
	}

	subs, err := list(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, ToSubscriptionResponseList(subs, h.service.Now()))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tipsterID := chi.URLParam(r, "tipsterID")

	sub, err := h.service.GetSubscription(r.Context(), userID, tipsterID)
	if err != nil {
		h.fail(w, err)
		return
	}
	if sub == nil {
		core.NotFound(w, "subscription")
		return
	}

	core.OK(w, ToSubscriptionResponse(*sub, h.service.Now()))
}

func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	removed, err := h.service.CleanupExpired(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, CleanupResponse{Removed: removed})
}

func (h *Handler) SelectPlan(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req SelectPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	plan := Plan(req.Plan)
	pending := PendingSubscription{
		TipsterID:    req.TipsterID,
		TipsterName:  req.TipsterName,
		TipsterImage: req.TipsterImage,
		Plan:         plan,
		Price:        h.service.Pricing().Price(plan),
	}

	if err := h.service.SetPending(r.Context(), userID, pending); err != nil {
		h.fail(w, err)
		return
	}

	core.Created(w, pending)
}

func (h *Handler) GetPending(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	pending, err := h.service.GetPending(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	if pending == nil {
		core.NotFound(w, "pending subscription")
		return
	}

	core.OK(w, pending)
}

func (h *Handler) ClearPending(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.service.ClearPending(r.Context(), userID); err != nil {
		h.fail(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sub, err := h.service.Activate(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}

	if sub == nil {
		core.OK(w, ActivateResponse{Activated: false})
		return
	}

	resp := ToSubscriptionResponse(*sub, h.service.Now())
	core.OK(w, ActivateResponse{Activated: true, Subscription: &resp})
}

// Countdown reports the time left on an active subscription. Clients that
// accept text/event-stream get one event per tick until Expired.
func (h *Handler) Countdown(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tipsterID := chi.URLParam(r, "tipsterID")

	sub, err := h.service.GetSubscription(r.Context(), userID, tipsterID)
	if err != nil {
		h.fail(w, err)
		return
	}
	if sub == nil {
		core.NotFound(w, "subscription")
		return
	}

	if !strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		core.OK(w, ToCountdownResponse(*sub, h.service.Now()))
		return
	}

	h.streamCountdown(w, r, sub.EndDate)
}

func (h *Handler) streamCountdown(
	w http.ResponseWriter,
	r *http.Request,
	end time.Time,
) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	rc := http.NewResponseController(w)
	//nolint:errcheck // not every writer supports deadlines
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for s := range h.ticker.Watch(ctx, end) {
		if _, err := fmt.Fprintf(w, "event: countdown\ndata: %s\n\n", s); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "authentication required")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid subscription")
	case errors.Is(err, core.ErrConflict):
		core.JSONError(w, core.ConflictError("subscription changed concurrently, retry"))
	default:
		core.InternalServerError(w, err)
	}
}
