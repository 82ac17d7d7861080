// AngelaMos | 2026
// guard.go

package middleware

import (
	"net/http"
	"strings"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/core"
	"github.com/carterperez-dev/templates/slip-market/internal/metrics"
)

// Guard gates routes on the caller's role using an access policy. It must
// run after Authenticator.
type Guard struct {
	policy *access.Policy
}

func NewGuard(policy *access.Policy) *Guard {
	if policy == nil {
		policy = access.Default()
	}
	return &Guard{policy: policy}
}

func (g *Guard) RequirePermission(perm access.Permission) func(http.Handler) http.Handler {
	return g.require(string(perm), func(role access.Role) bool {
		return g.policy.HasPermission(role, perm)
	})
}

func (g *Guard) RequireAnyPermission(perms ...access.Permission) func(http.Handler) http.Handler {
	return g.require(joinPerms("any", perms), func(role access.Role) bool {
		return g.policy.HasAnyPermission(role, perms)
	})
}

func (g *Guard) RequireAllPermissions(perms ...access.Permission) func(http.Handler) http.Handler {
	return g.require(joinPerms("all", perms), func(role access.Role) bool {
		return g.policy.HasAllPermissions(role, perms)
	})
}

func (g *Guard) RequireFeature(feature string) func(http.Handler) http.Handler {
	return g.require("feature:"+feature, func(role access.Role) bool {
		return g.policy.CanAccessFeature(role, feature)
	})
}

func (g *Guard) require(
	name string,
	allowed func(access.Role) bool,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetUserRole(r.Context())

			if role == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if !allowed(role) {
				metrics.RecordPermissionDenial(string(role), name)
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func joinPerms(mode string, perms []access.Permission) string {
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	return mode + ":" + strings.Join(names, ",")
}
