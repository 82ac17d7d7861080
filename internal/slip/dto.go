// AngelaMos | 2026
// dto.go

package slip

import (
	"github.com/google/uuid"
)

type PickInput struct {
	Match      string  `json:"match"      validate:"required,max=200"`
	Prediction string  `json:"prediction" validate:"required,max=200"`
	Odds       float64 `json:"odds"       validate:"required,gt=1,lte=1000"`
	Result     Result  `json:"result"     validate:"omitempty,oneof=pending win loss"`
}

type CreateRequest struct {
	Title       string      `json:"title"       validate:"required,min=3,max=120"`
	Description string      `json:"description" validate:"max=2000"`
	Picks       []PickInput `json:"picks"       validate:"required,min=1,max=20,dive"`
	Price       int         `json:"price"       validate:"min=0"`
	League      string      `json:"league"      validate:"required,max=80"`
	Risk        Risk        `json:"risk"        validate:"required,oneof=low medium high"`
}

// UpdateRequest is a partial update. Nil fields are left alone.
type UpdateRequest struct {
	Title       *string      `json:"title"       validate:"omitempty,min=3,max=120"`
	Description *string      `json:"description" validate:"omitempty,max=2000"`
	Picks       *[]PickInput `json:"picks"       validate:"omitempty,min=1,max=20,dive"`
	Price       *int         `json:"price"       validate:"omitempty,min=0"`
	League      *string      `json:"league"      validate:"omitempty,min=1,max=80"`
	Risk        *Risk        `json:"risk"        validate:"omitempty,oneof=low medium high"`
}

// ListFilter narrows the public catalogue. Empty fields match everything.
type ListFilter struct {
	TipsterID string
	League    string
	Risk      Risk
}

func (f ListFilter) matches(s Slip) bool {
	if f.TipsterID != "" && s.TipsterID != f.TipsterID {
		return false
	}
	if f.League != "" && s.League != f.League {
		return false
	}
	if f.Risk != "" && s.Risk != f.Risk {
		return false
	}
	return true
}

// View is a slip as shown to a caller. Picks are withheld unless the
// caller owns the slip or subscribes to its tipster.
type View struct {
	Slip
	Locked bool `json:"locked"`
}

func newView(s Slip, unlocked bool) View {
	if unlocked {
		return View{Slip: s}
	}
	s.Picks = nil
	return View{Slip: s, Locked: true}
}

func toPicks(in []PickInput) []Pick {
	picks := make([]Pick, 0, len(in))
	for _, p := range in {
		result := p.Result
		if result == "" {
			result = ResultPending
		}
		picks = append(picks, Pick{
			ID:         "pick_" + uuid.New().String(),
			Match:      p.Match,
			Prediction: p.Prediction,
			Odds:       p.Odds,
			Result:     result,
		})
	}
	return picks
}
