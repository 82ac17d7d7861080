// AngelaMos | 2026
// entity.go

package slip

import (
	"math"
	"time"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

type Result string

const (
	ResultPending Result = "pending"
	ResultWin     Result = "win"
	ResultLoss    Result = "loss"
)

type Pick struct {
	ID         string  `json:"id"`
	Match      string  `json:"match"`
	Prediction string  `json:"prediction"`
	Odds       float64 `json:"odds"`
	Result     Result  `json:"result"`
}

// Slip is a tipster's bundle of picks. Picks can only change while the
// slip is a draft.
type Slip struct {
	ID          string     `json:"id"`
	TipsterID   string     `json:"tipsterId"`
	TipsterName string     `json:"tipsterName"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Picks       []Pick     `json:"picks"`
	TotalOdds   float64    `json:"totalOdds"`
	Price       int        `json:"price"`
	League      string     `json:"league"`
	Risk        Risk       `json:"risk"`
	Status      Status     `json:"status"`
	Views       int        `json:"views"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// WinRate is the share of settled picks that won, as a percentage.
func (s *Slip) WinRate() (float64, bool) {
	won, settled := 0, 0
	for _, p := range s.Picks {
		switch p.Result {
		case ResultWin:
			won++
			settled++
		case ResultLoss:
			settled++
		}
	}
	if settled == 0 {
		return 0, false
	}
	return float64(won) * 100 / float64(settled), true
}

// TotalOdds multiplies pick odds, rounded to two places.
func TotalOdds(picks []Pick) float64 {
	if len(picks) == 0 {
		return 0
	}
	total := 1.0
	for _, p := range picks {
		total *= p.Odds
	}
	return math.Round(total*100) / 100
}

type Stats struct {
	TotalSlips  int     `json:"totalSlips"`
	Published   int     `json:"publishedSlips"`
	Drafts      int     `json:"draftSlips"`
	Archived    int     `json:"archivedSlips"`
	TotalViews  int     `json:"totalViews"`
	AverageOdds float64 `json:"averageOdds"`
	WinRate     float64 `json:"winRate"`
	Verified    bool    `json:"verified"`
}
