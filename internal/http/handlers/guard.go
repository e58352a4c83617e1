package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"inhouse52/internal/models"
	"inhouse52/internal/security"
)

type ctxKey int

const ctxUser ctxKey = iota

// Resolver maps a bearer token to its user.
type Resolver interface {
	Resolve(ctx context.Context, token string) (models.User, error)
}

// Guard resolves the request credential to a user before the wrapped
// handler runs. The Authorization header wins over the session cookie.
type Guard struct {
	resolver Resolver
	sessions *security.SessionStore
	logger   *slog.Logger
}

func NewGuard(resolver Resolver, sessions *security.SessionStore, logger *slog.Logger) *Guard {
	return &Guard{resolver: resolver, sessions: sessions, logger: logger}
}

func (g *Guard) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" && g.sessions != nil {
			token = g.sessions.Token(r)
		}
		if token == "" {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		user, err := g.resolver.Resolve(r.Context(), token)
		if err != nil {
			writeServiceError(w, g.logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func withUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, ctxUser, u)
}

// UserFromContext returns the user stored by RequireUser.
func UserFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(ctxUser).(models.User)
	return u, ok
}

// currentUser is used by handlers mounted behind RequireUser.
func currentUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
	}
	return u, ok
}
