// AngelaMos | 2026
// entity.go

package finance

import (
	"time"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/dispute"
	"github.com/carterperez-dev/templates/slip-market/internal/subscription"
	"github.com/carterperez-dev/templates/slip-market/internal/verification"
)

type PlanTotals struct {
	Count   int   `json:"count"`
	Revenue int64 `json:"revenue"`
}

type TipsterEarnings struct {
	TipsterID   string `json:"tipsterId"`
	TipsterName string `json:"tipsterName"`
	Subscribers int    `json:"subscribers"`
	Revenue     int64  `json:"revenue"`
	Payout      int64  `json:"payout"`
}

// Summary splits stored subscription revenue between the platform and
// tipsters at the configured commission rate.
type Summary struct {
	GrossRevenue   int64                            `json:"grossRevenue"`
	Commission     int64                            `json:"commission"`
	TipsterPayouts int64                            `json:"tipsterPayouts"`
	CommissionRate float64                          `json:"commissionRate"`
	Subscriptions  int                              `json:"subscriptions"`
	Active         int                              `json:"active"`
	ByPlan         map[subscription.Plan]PlanTotals `json:"byPlan"`
	TopTipsters    []TipsterEarnings                `json:"topTipsters"`
	GeneratedAt    time.Time                        `json:"generatedAt"`
}

// Report is the admin overview across the marketplace.
type Report struct {
	Users          map[access.Role]int `json:"users"`
	PublishedSlips int                 `json:"publishedSlips"`
	Disputes       *dispute.Stats      `json:"disputes"`
	Verifications  *verification.Stats `json:"verifications"`
	Finance        *Summary            `json:"finance"`
}
