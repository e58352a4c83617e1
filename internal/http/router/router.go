package router

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"inhouse52/internal/http/handlers"
	"inhouse52/internal/http/middleware"
	"inhouse52/internal/models"
	"inhouse52/internal/security"
	"inhouse52/internal/service"
)

type Deps struct {
	Service        *service.Service
	Sessions       *security.SessionStore
	Logger         *slog.Logger
	UploadDir      string
	MaxUploadBytes int64
	CORSOrigins    []string
}

// Setup builds the API handler. CORS, logging and panic recovery wrap the
// router itself so they also apply to unmatched routes and preflights.
func Setup(d Deps) (http.Handler, error) {
	if d.Service == nil {
		return nil, errors.New("router: service is required")
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	policy, err := middleware.NewCORSPolicy(d.CORSOrigins)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	authHandler := handlers.NewAuthHandler(d.Service, d.Sessions, logger)
	contentHandler := handlers.NewContentHandler(d.Service, d.MaxUploadBytes, logger)
	adminHandler := handlers.NewAdminHandler(d.Service, logger)
	guard := handlers.NewGuard(d.Service, d.Sessions, logger)

	r.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.PathPrefix(models.UploadsPrefix).Handler(handlers.Uploads(d.UploadDir)).Methods(http.MethodGet, http.MethodHead)

	authed := r.NewRoute().Subrouter()
	authed.Use(guard.RequireUser)
	authed.HandleFunc("/users/me", authHandler.Me).Methods(http.MethodGet)
	authed.HandleFunc("/content/upload", contentHandler.Upload).Methods(http.MethodPost)
	authed.HandleFunc("/content/me", contentHandler.ListMine).Methods(http.MethodGet)
	authed.HandleFunc("/content/all", contentHandler.ListAll).Methods(http.MethodGet)
	authed.HandleFunc("/content/{id:[0-9]+}", contentHandler.Delete).Methods(http.MethodDelete)
	authed.HandleFunc("/admin/users", adminHandler.GetAllUsers).Methods(http.MethodGet)

	var h http.Handler = r
	h = middleware.CORS(policy, logger, h)
	h = middleware.RequestLog(logger, h)
	h = middleware.Recover(logger, h)
	return h, nil
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"detail":"not found"}` + "\n"))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_, _ = w.Write([]byte(`{"detail":"method not allowed"}` + "\n"))
}
