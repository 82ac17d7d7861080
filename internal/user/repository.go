// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/carterperez-dev/templates/slip-market/internal/core"
	"github.com/carterperez-dev/templates/slip-market/internal/storage"
)

const registeredUsersKey = "registered_users"

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id string, fn func(u *User) error) (*User, error)
	List(ctx context.Context) ([]User, error)
	Merge(ctx context.Context, defaults []User) (int, error)
}

// repository keeps every registered user in one JSON list. Writes go
// through Atomic so concurrent signups cannot drop each other.
type repository struct {
	users *storage.Collection[User]
}

func NewRepository(store storage.Store) Repository {
	return &repository{
		users: storage.NewCollection[User](store, registeredUsersKey),
	}
}

func (r *repository) load(ctx context.Context) ([]User, error) {
	return r.users.All(ctx)
}

func (r *repository) mutate(
	ctx context.Context,
	fn func(users []User) ([]User, error),
) error {
	return r.users.Mutate(ctx, fn)
}

func (r *repository) Create(ctx context.Context, user *User) error {
	err := r.mutate(ctx, func(users []User) ([]User, error) {
		for _, u := range users {
			if strings.EqualFold(u.Email, user.Email) {
				return nil, core.ErrDuplicateKey
			}
			if u.ID == user.ID {
				return nil, core.ErrDuplicateKey
			}
		}
		return append(users, *user), nil
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(users, func(u User) bool { return u.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return &users[i], nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(users, func(u User) bool {
		return strings.EqualFold(u.Email, email)
	})
	if i < 0 {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	return &users[i], nil
}

func (r *repository) Update(
	ctx context.Context,
	id string,
	fn func(u *User) error,
) (*User, error) {
	var updated User

	err := r.mutate(ctx, func(users []User) ([]User, error) {
		i := slices.IndexFunc(users, func(u User) bool { return u.ID == id })
		if i < 0 {
			return nil, core.ErrNotFound
		}
		if err := fn(&users[i]); err != nil {
			return nil, err
		}
		updated = users[i]
		return users, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &updated, nil
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	return r.load(ctx)
}

// Merge puts defaults first and keeps any stored user whose email is not
// among them. It reports how many stored users were kept. A replaced user
// passes its token version on, bumped when the role changes.
func (r *repository) Merge(ctx context.Context, defaults []User) (int, error) {
	kept := 0

	err := r.mutate(ctx, func(users []User) ([]User, error) {
		kept = 0
		merged := slices.Clone(defaults)
		for _, u := range users {
			i := slices.IndexFunc(merged[:len(defaults)], func(d User) bool {
				return strings.EqualFold(d.Email, u.Email) || d.ID == u.ID
			})
			if i < 0 {
				merged = append(merged, u)
				kept++
				continue
			}

			version := u.TokenVersion
			if u.Role != merged[i].Role {
				version++
			}
			merged[i].TokenVersion = max(merged[i].TokenVersion, version)
		}
		return merged, nil
	})
	if err != nil {
		return 0, fmt.Errorf("merge users: %w", err)
	}
	return kept, nil
}
