package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-users-auth-api/internal/domain/entity"
	repo "github.com/oksasatya/go-users-auth-api/internal/domain/repository"
	"github.com/oksasatya/go-users-auth-api/pkg/helpers"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidRole     = errors.New("invalid role")
	ErrAvatarsDisabled = errors.New("avatar storage not configured")
	ErrPasswordTooLong = helpers.ErrPasswordTooLong
	// ErrStore marks infrastructure failures of the user store
	ErrStore = errors.New("user store failure")
)

// hashPassword passes ErrPasswordTooLong through unwrapped so callers can report it as bad input.
func hashPassword(plain string) (string, error) {
	hash, err := helpers.HashPassword(plain)
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

type Service struct {
	Repo     repo.UserRepository
	JWT      *helpers.JWTManager
	Logger   *logrus.Logger
	Notifier Notifier
	Index    UserIndexer
	Avatars  AvatarStorage
}

// NewService wires the required collaborators. Notifier, Index and Avatars are optional
// and may be set on the returned value.
func NewService(repo repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &Service{Repo: repo, JWT: jwt, Logger: logger}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Register creates a user with the default role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:    entity.NormalizeEmail(in.Email),
		Password: hash,
		Name:     strings.TrimSpace(in.Name),
		Role:     entity.RoleUser,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, storeErr("create user", err)
	}

	s.Logger.WithField("user_id", u.ID).Info("user registered")
	s.indexUser(ctx, u)
	if s.Notifier != nil {
		if err := s.Notifier.UserRegistered(ctx, u); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome email enqueue failed")
		}
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]*entity.User, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return u, nil
}

// UpdateInput carries optional changes; nil fields are untouched.
// Password is plain text and hashed here.
type UpdateInput struct {
	Email    *string
	Password *string
	Name     *string
	Role     *entity.Role
}

func (s *Service) UpdateUser(ctx context.Context, userID string, in UpdateInput) (*entity.User, error) {
	var p entity.UserPatch
	if in.Email != nil {
		e := entity.NormalizeEmail(*in.Email)
		p.Email = &e
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		p.Password = &hash
	}
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		p.Name = &n
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, ErrInvalidRole
		}
		p.Role = in.Role
	}
	if p.Empty() {
		return s.GetProfile(ctx, userID)
	}

	u, err := s.Repo.UpdateByID(ctx, userID, p)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrUserNotFound
	case errors.Is(err, repo.ErrEmailTaken):
		return nil, ErrEmailTaken
	case err != nil:
		return nil, storeErr("update user", err)
	}
	s.indexUser(ctx, u)
	return u, nil
}

// DeleteUser removes the record; its refresh token goes with it.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	err := s.Repo.DeleteByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return storeErr("delete user", err)
	}
	s.Logger.WithField("user_id", userID).Info("user deleted")
	if s.Index != nil {
		if err := s.Index.Remove(ctx, userID); err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("search index remove failed")
		}
	}
	return nil
}

// UploadAvatar stores the image and records its URL on the user
func (s *Service) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if s.Avatars == nil {
		return "", ErrAvatarsDisabled
	}
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := s.Avatars.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	u, err := s.Repo.UpdateByID(ctx, userID, entity.UserPatch{AvatarURL: &url})
	if errors.Is(err, repo.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", storeErr("update avatar", err)
	}
	s.indexUser(ctx, u)
	return url, nil
}

// SearchUsers queries the search index; without one it returns no hits.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.Index == nil {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	return s.Index.Search(ctx, q, size)
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("search index failed")
	}
}

// EnsureAdmin creates the account with the admin role, or promotes an existing one and
// resets its password. created reports which happened.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (u *entity.User, created bool, err error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, false, errors.New("admin email and password are required")
	}
	existing, err := s.Repo.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, false, storeErr("get user by email", err)
	}

	admin := entity.RoleAdmin
	if existing != nil {
		u, err = s.UpdateUser(ctx, existing.ID, UpdateInput{Password: &password, Role: &admin})
		return u, false, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, false, err
	}
	u = &entity.User{Email: entity.NormalizeEmail(email), Password: hash, Role: entity.RoleAdmin}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, false, storeErr("create admin", err)
	}
	s.Logger.WithField("user_id", u.ID).Info("admin created")
	s.indexUser(ctx, u)
	return u, true, nil
}
