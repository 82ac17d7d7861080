// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/slip-market/internal/access"
	"github.com/carterperez-dev/templates/slip-market/internal/core"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*UserInfo
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*UserInfo)}
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Create(
	ctx context.Context,
	email, passwordHash, fullName string,
	role access.Role,
) (*UserInfo, error) {
	if _, err := f.GetByEmail(ctx, email); err == nil {
		return nil, core.ErrDuplicateKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	u := &UserInfo{
		ID:           "user_" + email,
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeUsers) {
	t.Helper()

	users := newFakeUsers()
	return NewService(newTestManager(t), users), users
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	reg, err := svc.Register(ctx, RegisterRequest{
		Email:    "new@example.com",
		Password: "hunter2hunter2",
		FullName: "New Tipster",
		Role:     "tipster",
	})
	require.NoError(t, err)
	assert.Equal(t, access.RoleTipster, reg.User.Role)
	assert.Equal(t, "Bearer", reg.Tokens.TokenType)
	assert.NotEmpty(t, reg.Tokens.AccessToken)

	login, err := svc.Login(ctx, LoginRequest{
		Email:    "new@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	claims, err := svc.jwt.VerifyAccessToken(ctx, login.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, access.RoleTipster, claims.Role)
}

func TestRegisterDefaultsToUserRole(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "plain@example.com",
		Password: "password123",
		FullName: "Plain",
	})
	require.NoError(t, err)
	assert.Equal(t, access.RoleUser, resp.User.Role)
}

func TestRegisterRejectsPrivilegedRoles(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "sneaky@example.com",
		Password: "password123",
		FullName: "Sneaky",
		Role:     "admin",
	})
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	req := RegisterRequest{Email: "dup@example.com", Password: "password123", FullName: "Dup"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Register(ctx, RegisterRequest{
		Email:    "who@example.com",
		Password: "password123",
		FullName: "Who",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "who@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetCurrentUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	reg, err := svc.Register(ctx, RegisterRequest{
		Email:    "me@example.com",
		Password: "password123",
		FullName: "Me",
	})
	require.NoError(t, err)

	me, err := svc.GetCurrentUser(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", me.Email)

	_, err = svc.GetCurrentUser(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestVerifyAccessTokenRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService(t)

	reg, err := svc.Register(ctx, RegisterRequest{
		Email:    "stale@example.com",
		Password: "password123",
		FullName: "Stale",
	})
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(ctx, reg.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, 0, claims.TokenVersion)

	users.mu.Lock()
	users.users[reg.User.ID].TokenVersion++
	users.mu.Unlock()

	_, err = svc.VerifyAccessToken(ctx, reg.Tokens.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	fresh, err := svc.Login(ctx, LoginRequest{Email: "stale@example.com", Password: "password123"})
	require.NoError(t, err)

	claims, err = svc.VerifyAccessToken(ctx, fresh.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.TokenVersion)
}

func TestVerifyAccessTokenRejectsDeletedUser(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService(t)

	reg, err := svc.Register(ctx, RegisterRequest{
		Email:    "gone@example.com",
		Password: "password123",
		FullName: "Gone",
	})
	require.NoError(t, err)

	users.mu.Lock()
	delete(users.users, reg.User.ID)
	users.mu.Unlock()

	_, err = svc.VerifyAccessToken(ctx, reg.Tokens.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}
