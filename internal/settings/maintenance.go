// AngelaMos | 2026
// maintenance.go

package settings

import (
	"net/http"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/core"
	"github.com/carterperez-dev/templates/slip-market/internal/middleware"
)

// MaintenanceGate answers 503 while maintenance mode is on, except to
// callers who may change system settings. It must run after Authenticator.
func MaintenanceGate(
	svc *Service,
	policy *access.Policy,
) func(http.Handler) http.Handler {
	if policy == nil {
		policy = access.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := middleware.GetUserRole(r.Context())
			if policy.HasPermission(role, access.ManageSystemSettings) ||
				!svc.InMaintenance(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Retry-After", "300")
			core.JSONError(w, core.NewAppError(
				core.ErrUnavailable,
				"platform is under maintenance",
				http.StatusServiceUnavailable,
				"MAINTENANCE",
			))
		})
	}
}
