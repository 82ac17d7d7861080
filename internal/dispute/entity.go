// AngelaMos | 2026
// entity.go

package dispute

import (
	"time"
)

type Status string

const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Dispute is a buyer's complaint about a slip. It is closed exactly once,
// by resolving or rejecting it.
type Dispute struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	SlipID     string     `json:"slipId"`
	Reason     string     `json:"reason"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy string     `json:"resolvedBy,omitempty"`
	Resolution string     `json:"resolution,omitempty"`
}

type Stats struct {
	Total    int `json:"total"`
	Open     int `json:"open"`
	Resolved int `json:"resolved"`
	Rejected int `json:"rejected"`
}
