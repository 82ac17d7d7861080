// AngelaMos | 2026
// entity.go

package subscription

import (
	"time"
)

type Plan string

const (
	PlanDaily   Plan = "daily"
	PlanWeekly  Plan = "weekly"
	PlanMonthly Plan = "monthly"
)

var Plans = []Plan{PlanDaily, PlanWeekly, PlanMonthly}

func (p Plan) Valid() bool {
	switch p {
	case PlanDaily, PlanWeekly, PlanMonthly:
		return true
	}
	return false
}

// Subscription is a paid, time-bounded grant to one tipster's content.
// A user holds at most one per tipster.
type Subscription struct {
	TipsterID   string    `json:"tipsterId"`
	TipsterName string    `json:"tipsterName"`
	Plan        Plan      `json:"plan"`
	Price       int       `json:"price"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

// ActiveAt is inclusive of the end instant.
func (s *Subscription) ActiveAt(now time.Time) bool {
	return !now.After(s.EndDate)
}

// ExpiredAt reports whether the end instant is strictly in the past.
func (s *Subscription) ExpiredAt(now time.Time) bool {
	return s.EndDate.Before(now)
}

// PendingSubscription is a selected plan awaiting a funding step. Each user
// has a single slot for it.
type PendingSubscription struct {
	TipsterID    string `json:"tipsterId"`
	TipsterName  string `json:"tipsterName"`
	TipsterImage string `json:"tipsterImage"`
	Plan         Plan   `json:"plan"`
	Price        int    `json:"price"`
}

func (p *PendingSubscription) valid() bool {
	return p.TipsterID != "" && p.Plan.Valid()
}
