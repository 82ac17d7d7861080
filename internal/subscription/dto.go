// AngelaMos | 2026
// dto.go

package subscription

import (
	"time"

	"github.com/carterperez-dev/templates/slip-market/internal/countdown"
)

type SelectPlanRequest struct {
	TipsterID    string `json:"tipsterId"    validate:"required,max=128"`
	TipsterName  string `json:"tipsterName"  validate:"required,max=200"`
	TipsterImage string `json:"tipsterImage" validate:"omitempty,max=2048"`
	Plan         string `json:"plan"         validate:"required,oneof=daily weekly monthly"`
}

type SubscriptionResponse struct {
	TipsterID   string    `json:"tipsterId"`
	TipsterName string    `json:"tipsterName"`
	Plan        Plan      `json:"plan"`
	Price       int       `json:"price"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Active      bool      `json:"active"`
	Remaining   string    `json:"remaining"`
}

type ActivateResponse struct {
	Activated    bool                  `json:"activated"`
	Subscription *SubscriptionResponse `json:"subscription,omitempty"`
}

type CleanupResponse struct {
	Removed int `json:"removed"`
}

type PlanResponse struct {
	Plan         Plan  `json:"plan"`
	Price        int   `json:"price"`
	DurationDays int   `json:"durationDays"`
	DurationMs   int64 `json:"durationMs"`
}

type CountdownResponse struct {
	TipsterID string `json:"tipsterId"`
	EndDate   string `json:"endDate"`
	TotalMs   int64  `json:"totalMs"`
	Hours     int    `json:"hours"`
	Minutes   int    `json:"minutes"`
	Seconds   int    `json:"seconds"`
	Formatted string `json:"formatted"`
}

func ToSubscriptionResponse(s Subscription, now time.Time) SubscriptionResponse {
	return SubscriptionResponse{
		TipsterID:   s.TipsterID,
		TipsterName: s.TipsterName,
		Plan:        s.Plan,
		Price:       s.Price,
		StartDate:   s.StartDate,
		EndDate:     s.EndDate,
		Active:      s.ActiveAt(now),
		Remaining:   countdown.Format(s.EndDate, now),
	}
}

func ToSubscriptionResponseList(subs []Subscription, now time.Time) []SubscriptionResponse {
	out := make([]SubscriptionResponse, len(subs))
	for i, s := range subs {
		out[i] = ToSubscriptionResponse(s, now)
	}
	return out
}

func ToCountdownResponse(s Subscription, now time.Time) CountdownResponse {
	r := countdown.Remaining(s.EndDate, now)
	return CountdownResponse{
		TipsterID: s.TipsterID,
		EndDate:   s.EndDate.UTC().Format(time.RFC3339),
		TotalMs:   r.Total.Milliseconds(),
		Hours:     r.Hours,
		Minutes:   r.Minutes,
		Seconds:   r.Seconds,
		Formatted: r.String(),
	}
}

func PlanTable(p Pricing) []PlanResponse {
	out := make([]PlanResponse, 0, len(Plans))
	for _, plan := range Plans {
		d, _ := Duration(plan)
		out = append(out, PlanResponse{
			Plan:         plan,
			Price:        p.Price(plan),
			DurationDays: int(d / day),
			DurationMs:   d.Milliseconds(),
		})
	}
	return out
}
