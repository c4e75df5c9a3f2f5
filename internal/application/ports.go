package application

import (
	"context"
	"io"

	"github.com/oksasatya/go-users-auth-api/internal/domain/entity"
)

// Notifier enqueues account emails. Implementations must not block on delivery.
type Notifier interface {
	UserRegistered(ctx context.Context, u *entity.User) error
	UserLoggedIn(ctx context.Context, u *entity.User) error
}

// UserIndexer keeps a searchable copy of public user fields
type UserIndexer interface {
	Index(ctx context.Context, u *entity.User) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]map[string]any, error)
}

// AvatarStorage stores avatar images and returns their public URL
type AvatarStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}
