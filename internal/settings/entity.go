// AngelaMos | 2026
// entity.go

package settings

import (
	"time"
)

const settingsID = "settings_default"

// SystemSettings are the platform-wide knobs a super admin can change.
// Money amounts are in minor units.
type SystemSettings struct {
	ID                 string    `json:"id"`
	PlatformName       string    `json:"platformName"`
	MaintenanceMode    bool      `json:"maintenanceMode"`
	MaxWithdrawalLimit int64     `json:"maxWithdrawalLimit"`
	CommissionRate     float64   `json:"commissionRate"`
	MinDepositAmount   int64     `json:"minDepositAmount"`
	MaxDepositAmount   int64     `json:"maxDepositAmount"`
	UpdatedAt          time.Time `json:"updatedAt"`
	UpdatedBy          string    `json:"updatedBy"`
}

// Defaults returns the settings used until a super admin saves any.
func Defaults() SystemSettings {
	return SystemSettings{
		ID:                 settingsID,
		PlatformName:       "BetBrain",
		MaintenanceMode:    false,
		MaxWithdrawalLimit: 500000,
		CommissionRate:     0.3,
		MinDepositAmount:   1000,
		MaxDepositAmount:   10000000,
		UpdatedBy:          "system",
	}
}

// Patch is a partial update. Nil fields are left alone.
type Patch struct {
	PlatformName       *string  `json:"platformName"       validate:"omitempty,min=1,max=80"`
	MaintenanceMode    *bool    `json:"maintenanceMode"`
	MaxWithdrawalLimit *int64   `json:"maxWithdrawalLimit" validate:"omitempty,min=0"`
	CommissionRate     *float64 `json:"commissionRate"     validate:"omitempty,min=0,max=1"`
	MinDepositAmount   *int64   `json:"minDepositAmount"   validate:"omitempty,min=0"`
	MaxDepositAmount   *int64   `json:"maxDepositAmount"   validate:"omitempty,min=0"`
}

func (p Patch) empty() bool {
	return p.PlatformName == nil &&
		p.MaintenanceMode == nil &&
		p.MaxWithdrawalLimit == nil &&
		p.CommissionRate == nil &&
		p.MinDepositAmount == nil &&
		p.MaxDepositAmount == nil
}

func (p Patch) apply(s *SystemSettings) {
	if p.PlatformName != nil {
		s.PlatformName = *p.PlatformName
	}
	if p.MaintenanceMode != nil {
		s.MaintenanceMode = *p.MaintenanceMode
	}
	if p.MaxWithdrawalLimit != nil {
		s.MaxWithdrawalLimit = *p.MaxWithdrawalLimit
	}
	if p.CommissionRate != nil {
		s.CommissionRate = *p.CommissionRate
	}
	if p.MinDepositAmount != nil {
		s.MinDepositAmount = *p.MinDepositAmount
	}
	if p.MaxDepositAmount != nil {
		s.MaxDepositAmount = *p.MaxDepositAmount
	}
}

// changed lists the JSON names of the fields p would alter on s.
func (p Patch) changed(s SystemSettings) []string {
	var out []string
	if p.PlatformName != nil && *p.PlatformName != s.PlatformName {
		out = append(out, "platformName")
	}
	if p.MaintenanceMode != nil && *p.MaintenanceMode != s.MaintenanceMode {
		out = append(out, "maintenanceMode")
	}
	if p.MaxWithdrawalLimit != nil && *p.MaxWithdrawalLimit != s.MaxWithdrawalLimit {
		out = append(out, "maxWithdrawalLimit")
	}
	if p.CommissionRate != nil && *p.CommissionRate != s.CommissionRate {
		out = append(out, "commissionRate")
	}
	if p.MinDepositAmount != nil && *p.MinDepositAmount != s.MinDepositAmount {
		out = append(out, "minDepositAmount")
	}
	if p.MaxDepositAmount != nil && *p.MaxDepositAmount != s.MaxDepositAmount {
		out = append(out, "maxDepositAmount")
	}
	return out
}
