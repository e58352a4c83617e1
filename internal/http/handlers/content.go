package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"inhouse52/internal/service"
)

const multipartMemory = 32 << 20

type ContentHandler struct {
	svc            *service.Service
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewContentHandler(svc *service.Service, maxUploadBytes int64, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		svc:            svc,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h *ContentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	item, err := h.svc.Upload(r.Context(), service.UploadParams{
		Title:            r.FormValue("title"),
		Description:      r.FormValue("description"),
		Type:             r.FormValue("type"),
		OriginalFilename: header.Filename,
		Body:             file,
	}, user)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "file uploaded successfully",
		"id":      item.ID,
	})
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	// multipart does not always wrap the reader error
	return strings.Contains(err.Error(), "request body too large")
}

func (h *ContentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	items, err := h.svc.ListOwn(r.Context(), user)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ContentHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	items, err := h.svc.ListAll(r.Context(), user)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid content id")
		return
	}
	if err := h.svc.Delete(r.Context(), id, user); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeMessage(w, "content deleted successfully")
}
