// AngelaMos | 2026
// metrics.go

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slipmarket_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slipmarket_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	SubscriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slipmarket_subscriptions_total",
			Help: "Subscriptions written, by plan and source",
		},
		[]string{"plan", "source"},
	)

	PendingSelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slipmarket_pending_selections_total",
			Help: "Plans placed in the pending slot",
		},
		[]string{"plan"},
	)

	ExpiredRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slipmarket_expired_subscriptions_removed_total",
			Help: "Expired subscriptions purged by cleanup",
		},
	)

	PermissionDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slipmarket_permission_denials_total",
			Help: "Requests rejected by a permission or feature guard",
		},
		[]string{"role", "guard"},
	)
)

func RecordHTTPRequest(method, route, status string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func RecordSubscription(plan, source string) {
	SubscriptionsTotal.WithLabelValues(plan, source).Inc()
}

func RecordPendingSelection(plan string) {
	PendingSelectionsTotal.WithLabelValues(plan).Inc()
}

func RecordExpiredRemoved(n int) {
	if n <= 0 {
		return
	}
	ExpiredRemovedTotal.Add(float64(n))
}

func RecordPermissionDenial(role, guard string) {
	PermissionDenialsTotal.WithLabelValues(role, guard).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
