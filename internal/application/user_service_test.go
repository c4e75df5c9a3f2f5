package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/oksasatya/go-users-auth-api/internal/domain/entity"
	"github.com/oksasatya/go-users-auth-api/pkg/helpers"
)

type recordingNotifier struct {
	mu         sync.Mutex
	registered []string
	loggedIn   []string
}

func (n *recordingNotifier) UserRegistered(_ context.Context, u *entity.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.registered = append(n.registered, u.Email)
	return nil
}

func (n *recordingNotifier) UserLoggedIn(_ context.Context, u *entity.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.loggedIn = append(n.loggedIn, u.Email)
	return errBoom // failures must not break login
}

type memIndex struct {
	docs map[string]*entity.User
}

func (m *memIndex) Index(_ context.Context, u *entity.User) error {
	m.docs[u.ID] = u
	return nil
}

func (m *memIndex) Remove(_ context.Context, id string) error {
	delete(m.docs, id)
	return nil
}

func (m *memIndex) Search(_ context.Context, q string, _ int) ([]map[string]any, error) {
	out := []map[string]any{}
	for _, u := range m.docs {
		if strings.Contains(u.Email, q) {
			out = append(out, map[string]any{"id": u.ID, "email": u.Email})
		}
	}
	return out, nil
}

type fakeAvatars struct {
	path string
	body string
}

func (f *fakeAvatars) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	b, _ := io.ReadAll(r)
	f.path, f.body = objectPath, string(b)
	return "https://cdn.test/" + objectPath, nil
}

func TestRegister_HashesAndNormalizes(t *testing.T) {
	s, _ := newTestService(t)
	u := register(t, s, "  A@X.com", "secret")

	if u.Email != "a@x.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.Password == "secret" || !helpers.CompareHashAndPassword(u.Password, "secret") {
		t.Fatal("password must be stored as a bcrypt hash")
	}
	if u.Role != entity.RoleUser {
		t.Fatalf("expected role user, got %q", u.Role)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, "a@x.com", "p")

	_, err := s.Register(context.Background(), RegisterInput{Email: "A@x.com", Password: "p"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestPasswordTooLong(t *testing.T) {
	s, _ := newTestService(t)
	long := strings.Repeat("é", 40)

	_, err := s.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: long})
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("register: expected ErrPasswordTooLong, got %v", err)
	}

	u := register(t, s, "b@x.com", "p")
	_, err = s.UpdateUser(context.Background(), u.ID, UpdateInput{Password: &long})
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("update: expected ErrPasswordTooLong, got %v", err)
	}
	if _, _, err := s.EnsureAdmin(context.Background(), "root@x.com", long); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("ensure admin: expected ErrPasswordTooLong, got %v", err)
	}
}

func TestNotifierAndIndexAreBestEffort(t *testing.T) {
	s, _ := newTestService(t)
	n := &recordingNotifier{}
	idx := &memIndex{docs: map[string]*entity.User{}}
	s.Notifier, s.Index = n, idx
	ctx := context.Background()

	u := register(t, s, "a@x.com", "p")
	if _, err := s.Login(ctx, "a@x.com", "p"); err != nil {
		t.Fatalf("login must succeed even if the notifier fails: %v", err)
	}
	if len(n.registered) != 1 || len(n.loggedIn) != 1 {
		t.Fatalf("expected one welcome and one login email, got %v / %v", n.registered, n.loggedIn)
	}

	hits, err := s.SearchUsers(ctx, "a@x", 0)
	if err != nil || len(hits) != 1 {
		t.Fatalf("expected one hit, got %v (%v)", hits, err)
	}
	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if len(idx.docs) != 0 {
		t.Fatal("deleted user must leave the index")
	}
}

func TestSearchUsers_NoIndex(t *testing.T) {
	s, _ := newTestService(t)
	hits, err := s.SearchUsers(context.Background(), "x", 10)
	if err != nil || len(hits) != 0 {
		t.Fatalf("expected empty result, got %v (%v)", hits, err)
	}
}

func TestUpdateUser(t *testing.T) {
	s, _ := newTestService(t)
	u := register(t, s, "a@x.com", "p")
	ctx := context.Background()

	bad := entity.Role("root")
	if _, err := s.UpdateUser(ctx, u.ID, UpdateInput{Role: &bad}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	name, pwd, admin := "Ann", "new-pass", entity.RoleAdmin
	got, err := s.UpdateUser(ctx, u.ID, UpdateInput{Name: &name, Password: &pwd, Role: &admin})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if got.Name != "Ann" || got.Role != entity.RoleAdmin {
		t.Fatalf("unexpected user: %+v", got)
	}
	if ok, _ := s.CheckCredentials(ctx, "a@x.com", "new-pass"); ok == nil {
		t.Fatal("new password must authenticate")
	}

	if _, err := s.UpdateUser(ctx, "missing", UpdateInput{Name: &name}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateUser_EmptyPatchReturnsCurrent(t *testing.T) {
	s, _ := newTestService(t)
	u := register(t, s, "a@x.com", "p")

	got, err := s.UpdateUser(context.Background(), u.ID, UpdateInput{})
	if err != nil || got.ID != u.ID {
		t.Fatalf("expected current user, got %v (%v)", got, err)
	}
}

func TestDeleteUser_Twice(t *testing.T) {
	s, _ := newTestService(t)
	u := register(t, s, "a@x.com", "p")
	ctx := context.Background()

	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := s.DeleteUser(ctx, u.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUploadAvatar(t *testing.T) {
	s, _ := newTestService(t)
	u := register(t, s, "a@x.com", "p")
	ctx := context.Background()

	if _, err := s.UploadAvatar(ctx, u.ID, strings.NewReader("img"), "me.png", "image/png"); !errors.Is(err, ErrAvatarsDisabled) {
		t.Fatalf("expected ErrAvatarsDisabled, got %v", err)
	}

	store := &fakeAvatars{}
	s.Avatars = store
	url, err := s.UploadAvatar(ctx, u.ID, strings.NewReader("img"), "Me.PNG", "image/png")
	if err != nil {
		t.Fatalf("UploadAvatar: %v", err)
	}
	if !strings.HasPrefix(store.path, "avatars/"+u.ID+"/") || !strings.HasSuffix(store.path, ".png") {
		t.Fatalf("unexpected object path %q", store.path)
	}
	got, _ := s.GetProfile(ctx, u.ID)
	if got.AvatarURL != url {
		t.Fatalf("expected avatar url %q, got %q", url, got.AvatarURL)
	}
}

func TestEnsureAdmin(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := s.EnsureAdmin(ctx, "", "p"); err == nil {
		t.Fatal("expected error without email")
	}

	u, created, err := s.EnsureAdmin(ctx, "Root@X.com", "first")
	if err != nil || !created || u.Role != entity.RoleAdmin {
		t.Fatalf("create: got %+v created=%v err=%v", u, created, err)
	}

	again, created, err := s.EnsureAdmin(ctx, "root@x.com", "second")
	if err != nil || created || again.ID != u.ID {
		t.Fatalf("promote: got %+v created=%v err=%v", again, created, err)
	}
	if ok, _ := s.CheckCredentials(ctx, "root@x.com", "second"); ok == nil {
		t.Fatal("password must be reset")
	}

	plain := register(t, s, "a@x.com", "p")
	promoted, _, err := s.EnsureAdmin(ctx, "a@x.com", "p2")
	if err != nil || promoted.ID != plain.ID || promoted.Role != entity.RoleAdmin {
		t.Fatalf("existing user must be promoted: %+v (%v)", promoted, err)
	}
}
