// AngelaMos | 2026
// entity.go

package dashboard

import (
	"maps"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
)

// Metrics is the flat tile map a role's dashboard renders.
type Metrics map[string]any

var defaults = map[access.Role]Metrics{
	access.RoleUser: {
		"accountBalance": 0,
		"slipsPurchased": 0,
		"winRate":        0,
		"referralBonus":  0,
	},
	access.RoleTipster: {
		"totalRevenue": 0,
		"slipsCreated": 0,
		"winRate":      0,
		"followers":    0,
	},
	access.RoleAdmin: {
		"totalUsers":           0,
		"pendingVerifications": 0,
		"platformRevenue":      0,
		"openDisputes":         0,
		"serverStatus":         "Healthy",
		"databaseStatus":       "Operational",
	},
	access.RoleSuperAdmin: {
		"totalUsers":            0,
		"systemUptime":          99.9,
		"totalRevenue":          0,
		"securityAlerts":        0,
		"apiServerStatus":       "Operational",
		"databaseClusterStatus": "Healthy",
		"cacheLayerStatus":      "Operational",
		"regularUsers":          0,
		"tipsters":              0,
		"admins":                0,
		"superAdmins":           1,
	},
}

// Defaults returns a copy of the built-in metrics for role, or an empty map
// for an unknown role.
func Defaults(role access.Role) Metrics {
	d, ok := defaults[role]
	if !ok {
		return Metrics{}
	}
	return maps.Clone(d)
}
