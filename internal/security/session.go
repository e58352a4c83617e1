package security

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "inhouse52_session"
	tokenKey    = "token"
)

// SessionStore keeps the bearer token in a signed cookie so browser clients
// can authenticate without an Authorization header.
type SessionStore struct {
	store *sessions.CookieStore
}

func NewSessionStore(secret string, ttl time.Duration, secure bool) *SessionStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: store}
}

func (s *SessionStore) Save(w http.ResponseWriter, r *http.Request, token string) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values[tokenKey] = token
	return session.Save(r, w)
}

// Token returns the bearer token carried by the session cookie, if any.
func (s *SessionStore) Token(r *http.Request) string {
	session, err := s.store.Get(r, sessionName)
	if err != nil || session.IsNew {
		return ""
	}
	token, _ := session.Values[tokenKey].(string)
	return token
}

func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, tokenKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
