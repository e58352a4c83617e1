package handlers

import (
	"log/slog"
	"net/http"

	"inhouse52/internal/service"
)

type AdminHandler struct {
	svc    *service.Service
	logger *slog.Logger
}

func NewAdminHandler(svc *service.Service, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logger}
}

// GetAllUsers lists every account without password digests.
func (h *AdminHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	users, err := h.svc.ListUsers(r.Context(), user)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
