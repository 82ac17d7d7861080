// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/audit"
	"github.com/carterperez-dev/templates/slip-market/internal/auth"
	"github.com/carterperez-dev/templates/slip-market/internal/core"
)

type Service struct {
	repo    Repository
	policy  *access.Policy
	auditor audit.Recorder
	now     func() time.Time
}

type Option func(*Service)

// WithAuditor records every role change on rec.
func WithAuditor(rec audit.Recorder) Option {
	return func(s *Service) {
		s.auditor = rec
	}
}

func NewService(repo Repository, policy *access.Policy, opts ...Option) *Service {
	if policy == nil {
		policy = access.Default()
	}
	s := &Service{
		repo:   repo,
		policy: policy,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, fullName string,
	role access.Role,
) (*auth.UserInfo, error) {
	if !role.Valid() {
		return nil, fmt.Errorf(
			"create user: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	now := s.now().UTC()
	user := &User{
		ID:           "user_" + uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	_, err := s.repo.Update(ctx, userID, func(u *User) error {
		u.PasswordHash = passwordHash
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	return err
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, 0, err
	}

	search := strings.ToLower(params.Search)
	users = slices.DeleteFunc(users, func(u User) bool {
		if params.Role != "" && string(u.Role) != params.Role {
			return true
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Email), search) &&
			!strings.Contains(strings.ToLower(u.FullName), search) {
			return true
		}
		return false
	})

	total := len(users)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)

	return users[start:end], total, nil
}

// CountByRole tallies registered users per role.
func (s *Service) CountByRole(ctx context.Context) (map[access.Role]int, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[access.Role]int, len(access.Ladder))
	for _, u := range users {
		counts[u.Role]++
	}
	return counts, nil
}

// UpdateUserRole changes a user's role. The requester must already hold
// every permission of both the target's current role and the new one. A
// change bumps the token version so tokens carrying the old role stop
// verifying, and is recorded in the audit log.
func (s *Service) UpdateUserRole(
	ctx context.Context,
	requester access.Role,
	id string,
	role access.Role,
) (*User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	if !s.policy.HasAllPermissions(requester, s.policy.Permissions(role)) {
		return nil, fmt.Errorf("update role: grant %s: %w", role, core.ErrForbidden)
	}

	var from access.Role
	updated, err := s.repo.Update(ctx, id, func(u *User) error {
		if !s.policy.HasAllPermissions(requester, s.policy.Permissions(u.Role)) {
			return fmt.Errorf("modify %s: %w", u.Role, core.ErrForbidden)
		}
		from = u.Role
		if u.Role == role {
			return nil
		}
		u.Role = role
		u.TokenVersion++
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if from != role {
		s.recordRoleChange(ctx, id, from, role)
	}
	return updated, nil
}

func (s *Service) recordRoleChange(ctx context.Context, id string, from, to access.Role) {
	if s.auditor == nil {
		return
	}
	_, err := s.auditor.Record(ctx, audit.Event{
		Action:     audit.ActionUpdateUserRole,
		TargetID:   id,
		TargetType: audit.TargetUser,
		Details:    fmt.Sprintf("role %s -> %s", from, to),
	})
	if err != nil {
		slog.Warn("role change not audited", "user_id", id, "error", err)
	}
}

// SeedDefaults installs the default accounts. A stored user sharing an
// email or ID with a default account is replaced by it.
func (s *Service) SeedDefaults(ctx context.Context) error {
	defaults := make([]User, 0, len(DefaultAccounts))
	for _, acct := range DefaultAccounts {
		hash, err := core.HashPassword(acct.Password)
		if err != nil {
			return fmt.Errorf("seed %s: %w", acct.Email, err)
		}
		defaults = append(defaults, User{
			ID:           acct.ID,
			Email:        acct.Email,
			PasswordHash: hash,
			FullName:     acct.FullName,
			Role:         acct.Role,
			CreatedAt:    seededAt,
			UpdatedAt:    seededAt,
		})
	}

	kept, err := s.repo.Merge(ctx, defaults)
	if err != nil {
		return err
	}

	slog.Info("default accounts seeded",
		"defaults", len(defaults),
		"kept", kept,
	)
	return nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		TokenVersion: u.TokenVersion,
		CreatedAt:    u.CreatedAt,
	}
}
