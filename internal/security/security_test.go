package security

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	h, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if ok, legacy := CheckPassword(h, "secret"); !ok || legacy {
		t.Fatalf("CheckPassword(secret)=%v,%v", ok, legacy)
	}
	if ok, _ := CheckPassword(h, "wrong"); ok {
		t.Fatalf("expected wrong password to fail")
	}

	h2, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h == h2 {
		t.Fatalf("expected salted digests to differ")
	}
}

func TestHashPasswordAnyLength(t *testing.T) {
	long := strings.Repeat("p", 100)
	h, err := HashPassword(long)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if ok, _ := CheckPassword(h, long); !ok {
		t.Fatalf("CheckPassword(long) failed")
	}
	if ok, _ := CheckPassword(h, strings.Repeat("p", 72)+strings.Repeat("q", 28)); ok {
		t.Fatalf("password differing after byte 72 matched")
	}
	if ok, _ := CheckPassword(h, strings.Repeat("p", 72)); ok {
		t.Fatalf("72-byte prefix matched")
	}
}

func TestCheckPasswordLegacyDigest(t *testing.T) {
	digest := LegacyDigest("admin123")
	if digest != "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9" {
		t.Fatalf("LegacyDigest=%s", digest)
	}
	ok, legacy := CheckPassword(digest, "admin123")
	if !ok || !legacy {
		t.Fatalf("CheckPassword(legacy)=%v,%v", ok, legacy)
	}
	ok, legacy = CheckPassword(strings.ToUpper(digest), "admin123")
	if !ok || !legacy {
		t.Fatalf("uppercase legacy digest should verify")
	}
	if ok, _ := CheckPassword(digest, "admin124"); ok {
		t.Fatalf("expected legacy mismatch to fail")
	}
	if ok, _ := CheckPassword("", "x"); ok {
		t.Fatalf("empty digest must never verify")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService("k", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	if svc.TTL() != DefaultTokenTTL {
		t.Fatalf("TTL=%v", svc.TTL())
	}
	tok, err := svc.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != 42 {
		t.Fatalf("id=%d, want 42", id)
	}
}

func TestTokenExpired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := issued
	svc, err := NewTokenService("k", time.Hour, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	tok, err := svc.Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	now = issued.Add(59 * time.Minute)
	if _, err := svc.Verify(tok); err != nil {
		t.Fatalf("Verify before expiry: %v", err)
	}

	now = issued.Add(time.Hour)
	if _, err := svc.Verify(tok); !errors.Is(err, ErrExpiredCredential) {
		t.Fatalf("Verify at expiry err=%v, want ErrExpiredCredential", err)
	}
}

func TestTokenInvalid(t *testing.T) {
	svc, _ := NewTokenService("k1", time.Hour)
	other, _ := NewTokenService("k2", time.Hour)

	tok, err := other.Issue(1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	for name, in := range map[string]string{
		"foreign signature": tok,
		"garbage":           "not-a-token",
		"empty":             "",
		"truncated":         tok[:len(tok)-4],
	} {
		if _, err := svc.Verify(in); !errors.Is(err, ErrInvalidCredential) {
			t.Errorf("%s: err=%v, want ErrInvalidCredential", name, err)
		}
	}
	if _, err := svc.Issue(0); err == nil {
		t.Fatalf("expected error issuing for user 0")
	}
	if _, err := NewTokenService("", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestSessionStoreCarriesToken(t *testing.T) {
	store := NewSessionStore("cookie-secret", time.Hour, false)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	if err := store.Save(w, r, "tok-123"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies=%d, want 1", len(cookies))
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("expected HttpOnly cookie")
	}

	r2 := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	r2.AddCookie(cookies[0])
	if got := store.Token(r2); got != "tok-123" {
		t.Fatalf("Token=%q, want tok-123", got)
	}

	if got := store.Token(httptest.NewRequest(http.MethodGet, "/users/me", nil)); got != "" {
		t.Fatalf("Token without cookie=%q", got)
	}

	w3 := httptest.NewRecorder()
	if err := store.Clear(w3, r2); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	cleared := w3.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("expected expiring cookie, got %+v", cleared)
	}
}
