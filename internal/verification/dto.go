// AngelaMos | 2026
// dto.go

package verification

type SubmitRequest struct {
	TipsterName string `json:"tipsterName" validate:"required,min=2,max=80"`
}

type ReviewRequest struct {
	Note string `json:"note" validate:"max=1000"`
}
