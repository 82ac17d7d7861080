// AngelaMos | 2026
// entity.go

package access

type Role string

const (
	RoleUser       Role = "user"
	RoleTipster    Role = "tipster"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Ladder lists the roles from least to most privileged. Each role's grant
// set must contain every permission of the role before it.
var Ladder = []Role{RoleUser, RoleTipster, RoleAdmin, RoleSuperAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleTipster, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

type Permission string

const (
	ViewDashboard        Permission = "view_dashboard"
	ViewTrending         Permission = "view_trending"
	PurchaseSlips        Permission = "purchase_slips"
	CreateSlips          Permission = "create_slips"
	ViewWallet           Permission = "view_wallet"
	WithdrawFunds        Permission = "withdraw_funds"
	ViewReferrals        Permission = "view_referrals"
	VerifyTipsters       Permission = "verify_tipsters"
	ManageFinance        Permission = "manage_finance"
	ResolveDisputes      Permission = "resolve_disputes"
	ViewReports          Permission = "view_reports"
	ManageUsers          Permission = "manage_users"
	AccessAuditLog       Permission = "access_audit_log"
	ManageSystemSettings Permission = "manage_system_settings"
	ViewProofchain       Permission = "view_proofchain"
)

// AllPermissions is the closed permission vocabulary.
var AllPermissions = []Permission{
	ViewDashboard,
	ViewTrending,
	PurchaseSlips,
	CreateSlips,
	ViewWallet,
	WithdrawFunds,
	ViewReferrals,
	VerifyTipsters,
	ManageFinance,
	ResolveDisputes,
	ViewReports,
	ManageUsers,
	AccessAuditLog,
	ManageSystemSettings,
	ViewProofchain,
}

const (
	FeatureCreateSlip     = "create-slip"
	FeatureVerifyTipsters = "verify-tipsters"
	FeatureFinance        = "finance"
	FeatureWithdrawals    = "withdrawals"
	FeatureDisputes       = "disputes"
	FeatureReports        = "reports"
	FeatureAuditLog       = "audit-log"
	FeatureSettings       = "settings"
	FeatureProofchain     = "proofchain"
)

var userGrants = []Permission{
	ViewDashboard,
	ViewTrending,
	PurchaseSlips,
	ViewWallet,
	ViewReferrals,
}

var tipsterGrants = append(clonePerms(userGrants),
	CreateSlips,
	WithdrawFunds,
)

var adminGrants = append(clonePerms(tipsterGrants),
	VerifyTipsters,
	ManageFinance,
	ResolveDisputes,
	ViewReports,
	ManageUsers,
)

var superAdminGrants = append(clonePerms(adminGrants),
	AccessAuditLog,
	ManageSystemSettings,
	ViewProofchain,
)

// DefaultRolePermissions is the marketplace's role table.
func DefaultRolePermissions() map[Role][]Permission {
	return map[Role][]Permission{
		RoleUser:       clonePerms(userGrants),
		RoleTipster:    clonePerms(tipsterGrants),
		RoleAdmin:      clonePerms(adminGrants),
		RoleSuperAdmin: clonePerms(superAdminGrants),
	}
}

// DefaultFeatureGates maps product features to the permissions they need.
// Features absent from this map are open to every role.
func DefaultFeatureGates() map[string][]Permission {
	return map[string][]Permission{
		FeatureCreateSlip:     {CreateSlips},
		FeatureVerifyTipsters: {VerifyTipsters},
		FeatureFinance:        {ManageFinance},
		FeatureWithdrawals:    {WithdrawFunds},
		FeatureDisputes:       {ResolveDisputes},
		FeatureReports:        {ViewReports},
		FeatureAuditLog:       {AccessAuditLog},
		FeatureSettings:       {ManageSystemSettings},
		FeatureProofchain:     {ViewProofchain},
	}
}

func clonePerms(p []Permission) []Permission {
	out := make([]Permission, len(p))
	copy(out, p)
	return out
}
