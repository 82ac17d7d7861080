// AngelaMos | 2026
// plans.go

package subscription

import (
	"log/slog"
	"time"
)

const day = 24 * time.Hour

var planDurations = map[Plan]time.Duration{
	PlanDaily:   day,
	PlanWeekly:  7 * day,
	PlanMonthly: 30 * day,
}

var defaultPrices = map[Plan]int{
	PlanDaily:   3000,
	PlanWeekly:  7000,
	PlanMonthly: 20000,
}

func Duration(plan Plan) (time.Duration, bool) {
	d, ok := planDurations[plan]
	return d, ok
}

// CalculateEndDate adds the plan's length to ref. An unknown plan adds
// nothing.
func CalculateEndDate(plan Plan, ref time.Time) time.Time {
	d, _ := Duration(plan)
	return ref.Add(d)
}

// PlanPrice returns the built-in price, or 0 for an unknown plan.
func PlanPrice(plan Plan) int {
	return defaultPrices[plan]
}

// Pricing is the price table in effect, built-in prices overlaid with
// configured overrides.
type Pricing struct {
	prices map[Plan]int
}

func NewPricing(overrides map[string]int) Pricing {
	prices := make(map[Plan]int, len(defaultPrices))
	for plan, price := range defaultPrices {
		prices[plan] = price
	}

	for name, price := range overrides {
		plan := Plan(name)
		if !plan.Valid() || price <= 0 {
			slog.Warn("ignoring plan price override", "plan", name, "price", price)
			continue
		}
		prices[plan] = price
	}

	return Pricing{prices: prices}
}

func (p Pricing) Price(plan Plan) int {
	if p.prices == nil {
		return PlanPrice(plan)
	}
	return p.prices[plan]
}
