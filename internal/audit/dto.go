// AngelaMos | 2026
// dto.go

package audit

import (
	"github.com/carterperez-dev/templates/slip-market/internal/core"
)

// Filter narrows List. Empty fields match everything.
type Filter struct {
	AdminID    string
	Action     Action
	TargetType TargetType
	Page       core.PageParams
}

func (f Filter) matches(e Entry) bool {
	if f.AdminID != "" && e.AdminID != f.AdminID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.TargetType != "" && e.TargetType != f.TargetType {
		return false
	}
	return true
}

type Stats struct {
	Total    int            `json:"total"`
	ByAction map[Action]int `json:"byAction"`
	Recent   []Entry        `json:"recent"`
}

type ChainReport struct {
	Entries  int    `json:"entries"`
	Valid    bool   `json:"valid"`
	Head     string `json:"head,omitempty"`
	BrokenAt string `json:"brokenAt,omitempty"`
}
