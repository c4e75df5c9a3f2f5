package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/oksasatya/go-users-auth-api/internal/domain/entity"
	repo "github.com/oksasatya/go-users-auth-api/internal/domain/repository"
	"github.com/oksasatya/go-users-auth-api/pkg/helpers"
)

// Client-facing messages for the two unauthorized outcomes of the token flows
const (
	MsgBadCredentials = "Credentials are not ok!"
	MsgRefreshInvalid = "Refresh Token not valid!"
)

var (
	ErrBadCredentials = errors.New("bad credentials")
	// ErrRefreshInvalid is the single outcome for every rejected refresh token
	ErrRefreshInvalid = errors.New("refresh token not valid")
)

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// CheckCredentials returns the user matching email/password, or nil when either is
// wrong. Unknown emails still pay for a bcrypt comparison. Only store failures error.
func (s *Service) CheckCredentials(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, entity.NormalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		helpers.BurnPasswordCompare(password)
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get user by email", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, nil
	}
	return u, nil
}

// Login verifies credentials and issues a fresh token pair.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := s.CheckCredentials(ctx, email, password)
	if err != nil {
		return TokenPair{}, err
	}
	if u == nil {
		loginFailuresTotal.Add(1)
		return TokenPair{}, ErrBadCredentials
	}
	pair, err := s.IssuePair(ctx, u)
	if errors.Is(err, ErrUserNotFound) {
		loginFailuresTotal.Add(1)
		return TokenPair{}, ErrBadCredentials
	}
	if err != nil {
		return TokenPair{}, err
	}
	loginsTotal.Add(1)
	s.Logger.WithField("user_id", u.ID).Info("user logged in")
	if s.Notifier != nil {
		if nErr := s.Notifier.UserLoggedIn(ctx, u); nErr != nil {
			s.Logger.WithError(nErr).WithField("user_id", u.ID).Warn("login email enqueue failed")
		}
	}
	return pair, nil
}

func (s *Service) mintPair(u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.IssueAccessToken(u.ID, string(u.Role))
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.IssueRefreshToken(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// IssuePair mints an access/refresh pair and persists the refresh token on the user,
// replacing any previous one. The pair is only returned once the write succeeded.
func (s *Service) IssuePair(ctx context.Context, u *entity.User) (TokenPair, error) {
	pair, err := s.mintPair(u)
	if err != nil {
		return TokenPair{}, err
	}
	if _, err := s.Repo.SetRefreshToken(ctx, u.ID, pair.RefreshToken); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, ErrUserNotFound
		}
		return TokenPair{}, storeErr("persist refresh token", err)
	}
	return pair, nil
}

// Rotate exchanges a valid, current refresh token for a new pair. The presented
// token is consumed: the stored value is swapped only if it still equals it, so a
// replayed or concurrently used token loses. Every client-side failure yields
// ErrRefreshInvalid; store and signing failures are returned as they are.
func (s *Service) Rotate(ctx context.Context, current string) (TokenPair, error) {
	claims, err := s.JWT.VerifyRefreshToken(current)
	if err != nil {
		return TokenPair{}, s.rejectRefresh("", "verify", err)
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return TokenPair{}, s.rejectRefresh(claims.UserID, "unknown user", nil)
	}
	if err != nil {
		return TokenPair{}, storeErr("get user", err)
	}
	if u.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(u.RefreshToken), []byte(current)) != 1 {
		return TokenPair{}, s.rejectRefresh(u.ID, "not the stored token", nil)
	}

	pair, err := s.mintPair(u)
	if err != nil {
		return TokenPair{}, err
	}
	if _, err := s.Repo.ReplaceRefreshToken(ctx, u.ID, current, pair.RefreshToken); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, s.rejectRefresh(u.ID, "superseded during rotation", nil)
		}
		return TokenPair{}, storeErr("rotate refresh token", err)
	}
	refreshTotal.Add(1)
	return pair, nil
}

func (s *Service) rejectRefresh(userID, reason string, cause error) error {
	refreshRejectedTotal.Add(1)
	entry := s.Logger.WithField("reason", reason)
	if userID != "" {
		entry = entry.WithField("user_id", userID)
	}
	if cause != nil {
		entry = entry.WithError(cause)
	}
	entry.Debug("refresh token rejected")
	return ErrRefreshInvalid
}

// Logout clears the stored refresh token so it can no longer be rotated.
func (s *Service) Logout(ctx context.Context, userID string) error {
	_, err := s.Repo.SetRefreshToken(ctx, userID, "")
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("logout: %w", storeErr("clear refresh token", err))
	}
	return nil
}
