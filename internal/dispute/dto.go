// AngelaMos | 2026
// dto.go

package dispute

type CreateRequest struct {
	SlipID string `json:"slipId" validate:"required,max=128"`
	Reason string `json:"reason" validate:"required,min=10,max=2000"`
}

type CloseRequest struct {
	Resolution string `json:"resolution" validate:"required,max=2000"`
}
