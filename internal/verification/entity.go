// AngelaMos | 2026
// entity.go

package verification

import (
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Request is a tipster asking to be marked verified. A tipster has at most
// one pending request, and none once approved.
type Request struct {
	ID          string     `json:"id"`
	TipsterID   string     `json:"tipsterId"`
	TipsterName string     `json:"tipsterName"`
	Email       string     `json:"email"`
	Status      Status     `json:"status"`
	SubmittedAt time.Time  `json:"submittedAt"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy  string     `json:"reviewedBy,omitempty"`
	Note        string     `json:"note,omitempty"`
}

type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}
