package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oksasatya/go-users-auth-api/internal/domain/entity"
	"github.com/oksasatya/go-users-auth-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-users-auth-api/pkg/helpers"
)

var errBoom = errors.New("boom")

// flakyRepo fails selected operations on top of the in-memory store.
type flakyRepo struct {
	*memory.UserRepository
	failSet     bool
	failReplace bool
	failGet     bool
}

func (r *flakyRepo) SetRefreshToken(ctx context.Context, id, token string) (*entity.User, error) {
	if r.failSet {
		return nil, errBoom
	}
	return r.UserRepository.SetRefreshToken(ctx, id, token)
}

func (r *flakyRepo) ReplaceRefreshToken(ctx context.Context, id, current, next string) (*entity.User, error) {
	if r.failReplace {
		return nil, errBoom
	}
	return r.UserRepository.ReplaceRefreshToken(ctx, id, current, next)
}

func (r *flakyRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if r.failGet {
		return nil, errBoom
	}
	return r.UserRepository.GetByID(ctx, id)
}

func newTestService(t *testing.T) (*Service, *flakyRepo) {
	t.Helper()
	r := &flakyRepo{UserRepository: memory.NewUserRepository()}
	jwt := helpers.NewJWTManager("access", "refresh", 15*time.Minute, 7*24*time.Hour)
	return NewService(r, jwt, helpers.NewDiscardLogger()), r
}

func register(t *testing.T, s *Service, email, password string) *entity.User {
	t.Helper()
	u, err := s.Register(context.Background(), RegisterInput{Email: email, Password: password})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return u
}

func TestCheckCredentials_FailsClosed(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, "a@x.com", "p")
	ctx := context.Background()

	u, err := s.CheckCredentials(ctx, "nobody@x.com", "p")
	if err != nil || u != nil {
		t.Fatalf("unknown email: expected (nil, nil), got (%v, %v)", u, err)
	}
	u, err = s.CheckCredentials(ctx, "a@x.com", "wrong")
	if err != nil || u != nil {
		t.Fatalf("wrong password: expected (nil, nil), got (%v, %v)", u, err)
	}
	u, err = s.CheckCredentials(ctx, " A@X.com ", "p")
	if err != nil || u == nil {
		t.Fatalf("valid credentials: expected user, got (%v, %v)", u, err)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, "a@x.com", "p")

	if _, err := s.Login(context.Background(), "a@x.com", "nope"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestLoginThenRotate(t *testing.T) {
	s, r := newTestService(t)
	u := register(t, s, "a@x.com", "p")
	ctx := context.Background()

	first, err := s.Login(ctx, "a@x.com", "p")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if first.AccessToken == "" || first.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	stored, _ := r.GetByID(ctx, u.ID)
	if stored.RefreshToken != first.RefreshToken {
		t.Fatal("login must persist the refresh token")
	}

	second, err := s.Rotate(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("rotation must change the refresh token")
	}
	stored, _ = r.GetByID(ctx, u.ID)
	if stored.RefreshToken != second.RefreshToken {
		t.Fatal("rotation must persist the new refresh token")
	}

	if _, err := s.Rotate(ctx, first.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("reused token: expected ErrRefreshInvalid, got %v", err)
	}
	if _, err := s.Rotate(ctx, second.RefreshToken); err != nil {
		t.Fatalf("current token should still rotate: %v", err)
	}
}

func TestRotate_SupersededByNewLogin(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, "a@x.com", "p")
	ctx := context.Background()

	old, _ := s.Login(ctx, "a@x.com", "p")
	if _, err := s.Login(ctx, "a@x.com", "p"); err != nil {
		t.Fatalf("second login: %v", err)
	}
	if _, err := s.Rotate(ctx, old.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}

func TestRotate_Garbage(t *testing.T) {
	s, _ := newTestService(t)
	if _, err := s.Rotate(context.Background(), "garbage-token"); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}

func TestRotate_Expired(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, "a@x.com", "p")
	ctx := context.Background()

	s.JWT.Now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	pair, err := s.Login(ctx, "a@x.com", "p")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	s.JWT.Now = time.Now

	if _, err := s.Rotate(ctx, pair.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}

func TestRotate_DeletedUser(t *testing.T) {
	s, _ := newTestService(t)
	u := register(t, s, "a@x.com", "p")
	ctx := context.Background()

	pair, _ := s.Login(ctx, "a@x.com", "p")
	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := s.Rotate(ctx, pair.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}

func TestRotate_AfterLogout(t *testing.T) {
	s, _ := newTestService(t)
	u := register(t, s, "a@x.com", "p")
	ctx := context.Background()

	pair, _ := s.Login(ctx, "a@x.com", "p")
	if err := s.Logout(ctx, u.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := s.Rotate(ctx, pair.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}

func TestIssuePair_PersistFailureReturnsNoTokens(t *testing.T) {
	s, r := newTestService(t)
	u := register(t, s, "a@x.com", "p")
	r.failSet = true

	pair, err := s.IssuePair(context.Background(), u)
	if !errors.Is(err, ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
	if pair.AccessToken != "" || pair.RefreshToken != "" {
		t.Fatal("tokens must be discarded when persisting fails")
	}
}

func TestIssuePair_SigningFailure(t *testing.T) {
	s, _ := newTestService(t)
	u := register(t, s, "a@x.com", "p")
	s.JWT.RefreshSecret = nil

	if _, err := s.IssuePair(context.Background(), u); !errors.Is(err, helpers.ErrSigning) {
		t.Fatalf("expected ErrSigning, got %v", err)
	}
}

func TestRotate_StoreFailureIsNotUnauthorized(t *testing.T) {
	s, r := newTestService(t)
	register(t, s, "a@x.com", "p")
	ctx := context.Background()
	pair, _ := s.Login(ctx, "a@x.com", "p")

	r.failGet = true
	_, err := s.Rotate(ctx, pair.RefreshToken)
	if !errors.Is(err, ErrStore) || errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("lookup failure: expected ErrStore, got %v", err)
	}

	r.failGet = false
	r.failReplace = true
	_, err = s.Rotate(ctx, pair.RefreshToken)
	if !errors.Is(err, ErrStore) {
		t.Fatalf("write failure: expected ErrStore, got %v", err)
	}
}

func TestRotate_ConcurrentSameToken(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, "a@x.com", "p")
	ctx := context.Background()
	pair, _ := s.Login(ctx, "a@x.com", "p")

	var ok, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Rotate(ctx, pair.RefreshToken)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrRefreshInvalid):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 1 || rejected.Load() != 7 {
		t.Fatalf("expected 1 success and 7 rejections, got %d/%d", ok.Load(), rejected.Load())
	}
}
