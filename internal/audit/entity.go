// AngelaMos | 2026
// entity.go

package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/middleware"
)

type Action string

const (
	ActionUpdateUserRole      Action = "UPDATE_USER_ROLE"
	ActionUpdateSettings      Action = "UPDATE_SYSTEM_SETTINGS"
	ActionToggleMaintenance   Action = "TOGGLE_MAINTENANCE"
	ActionResolveDispute      Action = "RESOLVE_DISPUTE"
	ActionRejectDispute       Action = "REJECT_DISPUTE"
	ActionDeleteDispute       Action = "DELETE_DISPUTE"
	ActionApproveVerification Action = "APPROVE_VERIFICATION"
	ActionRejectVerification  Action = "REJECT_VERIFICATION"
	ActionDeleteVerification  Action = "DELETE_VERIFICATION"
)

type TargetType string

const (
	TargetUser         TargetType = "user"
	TargetDispute      TargetType = "dispute"
	TargetVerification TargetType = "verification"
	TargetSettings     TargetType = "settings"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetUser, TargetDispute, TargetVerification, TargetSettings:
		return true
	}
	return false
}

// SystemActor is recorded for changes made without an authenticated caller.
const SystemActor = "system"

// Actor is whoever made an audited change.
type Actor struct {
	ID    string      `json:"id"`
	Email string      `json:"email,omitempty"`
	Role  access.Role `json:"role,omitempty"`
}

// ActorFrom reads the verified caller off ctx.
func ActorFrom(ctx context.Context) Actor {
	claims := middleware.GetClaims(ctx)
	if claims == nil {
		return Actor{ID: SystemActor}
	}
	return Actor{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}
}

// Event is what a caller reports; the recorder fills in who and when.
type Event struct {
	Action     Action
	TargetID   string
	TargetType TargetType
	Details    string
}

// Entry is one link of the audit chain. Hash covers every other field and
// the previous entry's hash.
type Entry struct {
	ID         string      `json:"id"`
	AdminID    string      `json:"adminId"`
	AdminEmail string      `json:"adminEmail,omitempty"`
	AdminRole  access.Role `json:"adminRole,omitempty"`
	Action     Action      `json:"action"`
	TargetID   string      `json:"targetId"`
	TargetType TargetType  `json:"targetType"`
	Details    string      `json:"details"`
	Timestamp  time.Time   `json:"timestamp"`
	PrevHash   string      `json:"prevHash"`
	Hash       string      `json:"hash"`
}

func (e *Entry) digest() string {
	fields := []string{
		e.PrevHash,
		e.ID,
		e.AdminID,
		e.AdminEmail,
		string(e.AdminRole),
		string(e.Action),
		e.TargetID,
		string(e.TargetType),
		e.Details,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	sum := sha256.Sum256([]byte(strings.Join(fields, "\x1f")))
	return hex.EncodeToString(sum[:])
}
