package handlers

import (
	"log/slog"
	"mime"
	"net/http"

	"github.com/goccy/go-json"

	"inhouse52/internal/security"
	"inhouse52/internal/service"
)

type AuthHandler struct {
	svc      *service.Service
	sessions *security.SessionStore
	logger   *slog.Logger
}

func NewAuthHandler(svc *service.Service, sessions *security.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:      svc,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeMessage(w, "user registered successfully")
}

// Login accepts the OAuth2 password form (username, password, grant_type)
// and, for older clients, a JSON body with username and password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var username, password string

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		username, password = req.Username, req.Password
	case "multipart/form-data":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		username, password = r.PostFormValue("username"), r.PostFormValue("password")
	default:
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		username, password = r.PostFormValue("username"), r.PostFormValue("password")
	}

	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := h.svc.Login(r.Context(), username, password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if h.sessions != nil {
		if err := h.sessions.Save(w, r, token); err != nil {
			h.logger.Warn("save session cookie", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.sessions != nil {
		if err := h.sessions.Clear(w, r); err != nil {
			h.logger.Warn("clear session cookie", "error", err)
		}
	}
	writeMessage(w, "logged out")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}
