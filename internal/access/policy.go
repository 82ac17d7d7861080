// AngelaMos | 2026
// policy.go

package access

import (
	"errors"
	"fmt"
	"slices"
)

var ErrNotMonotone = errors.New("role permissions are not monotone")

// Policy answers permission and feature queries for a role. It is immutable
// after construction and safe for concurrent use.
type Policy struct {
	grants   map[Role]map[Permission]struct{}
	ordered  map[Role][]Permission
	features map[string][]Permission
}

// NewPolicy builds a policy and rejects tables where a role on the ladder
// lacks a permission held by the role beneath it.
func NewPolicy(
	roles map[Role][]Permission,
	features map[string][]Permission,
) (*Policy, error) {
	p := &Policy{
		grants:   make(map[Role]map[Permission]struct{}, len(roles)),
		ordered:  make(map[Role][]Permission, len(roles)),
		features: make(map[string][]Permission, len(features)),
	}

	for role, perms := range roles {
		set := make(map[Permission]struct{}, len(perms))
		list := make([]Permission, 0, len(perms))
		for _, perm := range perms {
			if _, dup := set[perm]; dup {
				continue
			}
			set[perm] = struct{}{}
			list = append(list, perm)
		}
		p.grants[role] = set
		p.ordered[role] = list
	}

	for feature, perms := range features {
		p.features[feature] = clonePerms(perms)
	}

	if err := p.checkMonotone(); err != nil {
		return nil, err
	}

	return p, nil
}

// MustNewPolicy is NewPolicy for static tables known at compile time.
func MustNewPolicy(
	roles map[Role][]Permission,
	features map[string][]Permission,
) *Policy {
	p, err := NewPolicy(roles, features)
	if err != nil {
		panic(fmt.Sprintf("access: %v", err))
	}
	return p
}

func Default() *Policy {
	return MustNewPolicy(DefaultRolePermissions(), DefaultFeatureGates())
}

func (p *Policy) checkMonotone() error {
	for i := 1; i < len(Ladder); i++ {
		lower, upper := Ladder[i-1], Ladder[i]
		for perm := range p.grants[lower] {
			if _, ok := p.grants[upper][perm]; !ok {
				return fmt.Errorf(
					"%w: %s holds %s but %s does not",
					ErrNotMonotone,
					lower,
					perm,
					upper,
				)
			}
		}
	}
	return nil
}

func (p *Policy) HasPermission(role Role, perm Permission) bool {
	set, ok := p.grants[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// HasAnyPermission is false for an empty list.
func (p *Policy) HasAnyPermission(role Role, perms []Permission) bool {
	return slices.ContainsFunc(perms, func(perm Permission) bool {
		return p.HasPermission(role, perm)
	})
}

// HasAllPermissions is true for an empty list.
func (p *Policy) HasAllPermissions(role Role, perms []Permission) bool {
	for _, perm := range perms {
		if !p.HasPermission(role, perm) {
			return false
		}
	}
	return true
}

// Permissions returns a copy of the role's grants in table order. Unknown
// roles get an empty, non-nil slice.
func (p *Policy) Permissions(role Role) []Permission {
	return clonePerms(p.ordered[role])
}

// CanAccessFeature allows any feature that has no gate entry.
//
// TODO: unmapped admin routes are open by default; confirm with product
// whether RequireFeature should fail closed for unknown feature IDs.
func (p *Policy) CanAccessFeature(role Role, feature string) bool {
	required, ok := p.features[feature]
	if !ok {
		return true
	}
	return p.HasAllPermissions(role, required)
}

// RequiredFor returns the permissions gating feature and whether the
// feature is gated at all.
func (p *Policy) RequiredFor(feature string) ([]Permission, bool) {
	required, ok := p.features[feature]
	return clonePerms(required), ok
}

// Features evaluates every gated feature for role.
func (p *Policy) Features(role Role) map[string]bool {
	out := make(map[string]bool, len(p.features))
	for feature := range p.features {
		out[feature] = p.CanAccessFeature(role, feature)
	}
	return out
}
