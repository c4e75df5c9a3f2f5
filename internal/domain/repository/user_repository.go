package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-users-auth-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup or conditional update
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when the email is already registered to another user
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository defines the interface for user-related database operations.
//
// UpdateByID, SetRefreshToken and ReplaceRefreshToken each apply atomically to one
// record and return the updated user. ReplaceRefreshToken only writes when the
// stored token still equals current, otherwise it returns ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateByID(ctx context.Context, id string, p entity.UserPatch) (*entity.User, error)
	SetRefreshToken(ctx context.Context, id, token string) (*entity.User, error)
	ReplaceRefreshToken(ctx context.Context, id, current, next string) (*entity.User, error)
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.User, error)
}
