package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"inhouse52/internal/logging"
	"inhouse52/internal/models"
	"inhouse52/internal/security"
	"inhouse52/internal/store"
)

type fixture struct {
	svc    *Service
	store  *store.Memory
	tokens *security.TokenService
	dir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := security.NewTokenService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	st := store.NewMemory()
	dir := filepath.Join(t.TempDir(), "uploads")
	return &fixture{
		svc:    New(st, tokens, dir, WithLogger(logging.Discard())),
		store:  st,
		tokens: tokens,
		dir:    dir,
	}
}

func (f *fixture) register(t *testing.T, username, email, password string) models.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), username, email, password)
	if err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}
	return u
}

func (f *fixture) admin(t *testing.T) models.User {
	t.Helper()
	tok, err := f.svc.Login(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	u, err := f.svc.Resolve(context.Background(), tok)
	if err != nil {
		t.Fatalf("resolve admin: %v", err)
	}
	return u
}

func (f *fixture) upload(t *testing.T, owner models.User, filename, body string) models.ContentItem {
	t.Helper()
	item, err := f.svc.Upload(context.Background(), UploadParams{
		Title:            "t",
		Type:             "doc",
		OriginalFilename: filename,
		Body:             strings.NewReader(body),
	}, owner)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return item
}

func TestRegisterAssignsIDsAndRole(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "a@x.com", "pw1")
	bob := f.register(t, "bob", "b@x.com", "pw2")
	if alice.ID != 2 || bob.ID != 3 {
		t.Fatalf("ids=%d,%d, want 2,3", alice.ID, bob.ID)
	}
	if alice.Role != models.RoleCollaborator {
		t.Fatalf("role=%s", alice.Role)
	}
	if alice.Password == "pw1" || alice.Password == security.LegacyDigest("pw1") {
		t.Fatalf("password stored without salt: %s", alice.Password)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "a@x.com", "pw1")
	_, err := f.svc.Register(context.Background(), "alice", "other@x.com", "pw2")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err=%v, want ErrConflict", err)
	}
	if !strings.Contains(err.Error(), "username") {
		t.Fatalf("message=%q should mention username", err.Error())
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "a@x.com", "pw1")
	_, err := f.svc.Register(context.Background(), "carol", "a@x.com", "pw2")
	if !errors.Is(err, ErrConflict) || !strings.Contains(err.Error(), "email") {
		t.Fatalf("err=%v, want email conflict", err)
	}
}

func TestRegisterUsernameIsCaseSensitive(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "a@x.com", "pw1")
	if _, err := f.svc.Register(context.Background(), "Alice", "b@x.com", "pw1"); err != nil {
		t.Fatalf("Register(Alice): %v", err)
	}
}

func TestRegisterRejectsEmptyFields(t *testing.T) {
	f := newFixture(t)
	for _, in := range [][3]string{{"", "a@x.com", "pw"}, {"a", "", "pw"}, {"a", "a@x.com", ""}} {
		if _, err := f.svc.Register(context.Background(), in[0], in[1], in[2]); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Register(%q,%q,%q) err=%v", in[0], in[1], in[2], err)
		}
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "a@x.com", "pw1")

	tok, err := f.svc.Login(context.Background(), "alice", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	id, err := f.tokens.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != alice.ID {
		t.Fatalf("id=%d, want %d", id, alice.ID)
	}

	if _, err := f.svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("wrong password err=%v, want ErrUnauthorized", err)
	}
	if _, err := f.svc.Login(context.Background(), "nobody", "pw1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unknown user err=%v, want ErrUnauthorized", err)
	}
}

func TestLoginUpgradesLegacyDigest(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Login(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	state, _ := f.store.Load(context.Background())
	admin, _ := state.UserByID(1)
	if admin.Password == models.DefaultAdminDigest {
		t.Fatalf("legacy digest not upgraded")
	}
	if ok, legacy := security.CheckPassword(admin.Password, "admin123"); !ok || legacy {
		t.Fatalf("upgraded digest check=%v,%v", ok, legacy)
	}
	// login still works with the upgraded digest
	if _, err := f.svc.Login(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("Login after upgrade: %v", err)
	}
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "a@x.com", "pw1")
	tok, _ := f.svc.Login(context.Background(), "alice", "pw1")

	u, err := f.svc.Resolve(context.Background(), tok)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if u.ID != alice.ID || u.Username != "alice" {
		t.Fatalf("user=%+v", u)
	}

	if _, err := f.svc.Resolve(context.Background(), "garbage"); !errors.Is(err, security.ErrInvalidCredential) {
		t.Fatalf("err=%v, want ErrInvalidCredential", err)
	}

	stale, _ := f.tokens.Issue(99)
	if _, err := f.svc.Resolve(context.Background(), stale); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestResolveExpiredToken(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	tokens, _ := security.NewTokenService("k", time.Hour, security.WithClock(clock))
	svc := New(store.NewMemory(), tokens, t.TempDir(), WithLogger(logging.Discard()))

	tok, err := svc.Login(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	now = now.Add(2 * time.Hour)
	if _, err := svc.Resolve(context.Background(), tok); !errors.Is(err, security.ErrExpiredCredential) {
		t.Fatalf("err=%v, want ErrExpiredCredential", err)
	}
}

func TestUploadAndListOwn(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "a@x.com", "pw1")
	bob := f.register(t, "bob", "b@x.com", "pw2")

	item := f.upload(t, alice, "f.txt", "hello")
	if !strings.HasPrefix(item.Path, models.UploadsPrefix) || !strings.HasSuffix(item.Path, ".txt") {
		t.Fatalf("path=%s", item.Path)
	}
	if item.OriginalFilename != "f.txt" || item.OwnerID != alice.ID {
		t.Fatalf("item=%+v", item)
	}
	data, err := os.ReadFile(f.svc.FilePath(item.Path))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("stored=%q", data)
	}

	own, err := f.svc.ListOwn(context.Background(), alice)
	if err != nil {
		t.Fatalf("ListOwn: %v", err)
	}
	count := 0
	for _, c := range own {
		if c.ID == item.ID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("item appears %d times in ListOwn", count)
	}

	others, err := f.svc.ListOwn(context.Background(), bob)
	if err != nil {
		t.Fatalf("ListOwn(bob): %v", err)
	}
	if others == nil || len(others) != 0 {
		t.Fatalf("bob sees %+v", others)
	}
}

func TestUploadNamesAreUnique(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "a@x.com", "pw1")
	a := f.upload(t, alice, "same.pdf", "1")
	b := f.upload(t, alice, "same.pdf", "2")
	if a.Path == b.Path {
		t.Fatalf("paths collide: %s", a.Path)
	}
	if a.ID == b.ID {
		t.Fatalf("ids collide: %d", a.ID)
	}
}

func TestUploadKeepsNameInsideUploadDir(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "a@x.com", "pw1")
	item := f.upload(t, alice, "../../etc/passwd.sh", "x")
	if filepath.Dir(f.svc.FilePath(item.Path)) != f.dir {
		t.Fatalf("stored outside upload dir: %s", item.Path)
	}
	if !strings.HasSuffix(item.Path, ".sh") {
		t.Fatalf("extension lost: %s", item.Path)
	}
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "a@x.com", "pw1")
	cases := []UploadParams{
		{Type: "doc", OriginalFilename: "f.txt", Body: strings.NewReader("x")},
		{Title: "t", OriginalFilename: "f.txt", Body: strings.NewReader("x")},
		{Title: "t", Type: "doc", Body: strings.NewReader("x")},
		{Title: "t", Type: "doc", OriginalFilename: "f.txt"},
	}
	for i, p := range cases {
		if _, err := f.svc.Upload(context.Background(), p, alice); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("case %d: err=%v, want ErrInvalidInput", i, err)
		}
	}
}

func TestListAllRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "a@x.com", "pw1")
	bob := f.register(t, "bob", "b@x.com", "pw2")
	f.upload(t, alice, "a.txt", "a")
	f.upload(t, bob, "b.txt", "b")

	if _, err := f.svc.ListAll(context.Background(), alice); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err=%v, want ErrForbidden", err)
	}

	all, err := f.svc.ListAll(context.Background(), f.admin(t))
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all=%d items, want 2", len(all))
	}
}

func TestDeleteByNonOwnerForbidden(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "a@x.com", "pw1")
	bob := f.register(t, "bob", "b@x.com", "pw2")
	item := f.upload(t, alice, "a.txt", "a")

	if err := f.svc.Delete(context.Background(), item.ID, bob); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err=%v, want ErrForbidden", err)
	}
	if _, err := os.Stat(f.svc.FilePath(item.Path)); err != nil {
		t.Fatalf("file removed by forbidden delete: %v", err)
	}
}

func TestDeleteByOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "a@x.com", "pw1")
	item := f.upload(t, alice, "a.txt", "a")

	if err := f.svc.Delete(context.Background(), item.ID, alice); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	own, _ := f.svc.ListOwn(context.Background(), alice)
	if len(own) != 0 {
		t.Fatalf("item still listed: %+v", own)
	}
	if _, err := os.Stat(f.svc.FilePath(item.Path)); !os.IsNotExist(err) {
		t.Fatalf("backing file still exists: %v", err)
	}
	if err := f.svc.Delete(context.Background(), item.ID, alice); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err=%v, want ErrNotFound", err)
	}
}

func TestDeleteByAdminToleratesMissingFile(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "a@x.com", "pw1")
	item := f.upload(t, alice, "a.txt", "a")
	if err := os.Remove(f.svc.FilePath(item.Path)); err != nil {
		t.Fatalf("remove: %v", err)
	}

	admin := f.admin(t)
	if err := f.svc.Delete(context.Background(), item.ID, admin); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	all, _ := f.svc.ListAll(context.Background(), admin)
	for _, c := range all {
		if c.ID == item.ID {
			t.Fatalf("item %d still listed", item.ID)
		}
	}
}

func TestDeleteMissingContent(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.Delete(context.Background(), 404, f.admin(t)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "a@x.com", "pw1")
	if _, err := f.svc.ListUsers(context.Background(), alice); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err=%v, want ErrForbidden", err)
	}
	users, err := f.svc.ListUsers(context.Background(), f.admin(t))
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("users=%+v", users)
	}
}

func TestConcurrentRegistrationsKeepEveryWrite(t *testing.T) {
	f := newFixture(t)
	const n = 10
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			name := "user" + string(rune('a'+i))
			_, err := f.svc.Register(context.Background(), name, name+"@x.com", "pw")
			errs <- err
		}(i)
	}
	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	state, _ := f.store.Load(context.Background())
	if len(state.Users) != n+1 {
		t.Fatalf("users=%d, want %d", len(state.Users), n+1)
	}
}

func TestRegisterAndLoginWithLongPassword(t *testing.T) {
	f := newFixture(t)
	long := strings.Repeat("p", 100)
	f.register(t, "long", "l@x.com", long)

	if _, err := f.svc.Login(context.Background(), "long", long); err != nil {
		t.Fatalf("Login: %v", err)
	}
	// same first 72 bytes, different tail
	other := strings.Repeat("p", 72) + strings.Repeat("q", 28)
	if _, err := f.svc.Login(context.Background(), "long", other); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err=%v, want ErrUnauthorized", err)
	}
}

type failingSaveStore struct {
	*store.Memory
}

func (failingSaveStore) Save(context.Context, *models.AppState) error {
	return errors.New("disk full")
}

func TestDeleteKeepsFileWhenSaveFails(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", "a@x.com", "pw1")
	item := f.upload(t, alice, "a.txt", "a")

	broken := New(failingSaveStore{f.store}, f.tokens, f.dir, WithLogger(logging.Discard()))
	if err := broken.Delete(context.Background(), item.ID, alice); err == nil {
		t.Fatalf("expected save error")
	}
	if _, err := os.Stat(f.svc.FilePath(item.Path)); err != nil {
		t.Fatalf("backing file removed although the record was kept: %v", err)
	}
	own, _ := f.svc.ListOwn(context.Background(), alice)
	if len(own) != 1 {
		t.Fatalf("own=%+v", own)
	}
}
