// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
)

// User is one entry of the registered-users list.
type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"passwordHash"`
	FullName     string      `json:"fullName"`
	Role         access.Role `json:"role"`
	TokenVersion int         `json:"tokenVersion"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// DefaultAccount is a seeded login with a plaintext password that is
// hashed on seed.
type DefaultAccount struct {
	ID       string
	Email    string
	Password string
	FullName string
	Role     access.Role
}

var seededAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

var DefaultAccounts = []DefaultAccount{
	{
		ID:       "user_1",
		Email:    "user@example.com",
		Password: "password123",
		FullName: "Regular User",
		Role:     access.RoleUser,
	},
	{
		ID:       "user_2",
		Email:    "tipster@example.com",
		Password: "tipster123",
		FullName: "Tipster User",
		Role:     access.RoleTipster,
	},
	{
		ID:       "user_3",
		Email:    "admin@bettingbrain.com",
		Password: "admin123",
		FullName: "Admin User",
		Role:     access.RoleAdmin,
	},
	{
		ID:       "user_4",
		Email:    "superadmin@bettingbrain.com",
		Password: "superadmin123",
		FullName: "Super Admin",
		Role:     access.RoleSuperAdmin,
	},
}
