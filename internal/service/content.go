package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"inhouse52/internal/models"
)

const maxNameAttempts = 3

type UploadParams struct {
	Title            string
	Description      string
	Type             string
	OriginalFilename string
	Body             io.Reader
}

// Upload stores the file under a random name that keeps the original
// extension and records it as content owned by owner.
func (s *Service) Upload(ctx context.Context, p UploadParams, owner models.User) (models.ContentItem, error) {
	if p.Title == "" || p.Type == "" {
		return models.ContentItem{}, newError(ErrInvalidInput, "title and type are required")
	}
	if p.Body == nil || p.OriginalFilename == "" {
		return models.ContentItem{}, newError(ErrInvalidInput, "file is required")
	}

	name, err := s.writeUpload(p.Body, p.OriginalFilename)
	if err != nil {
		return models.ContentItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		s.discardUpload(name)
		return models.ContentItem{}, err
	}
	item := state.AddContent(models.ContentItem{
		Title:            p.Title,
		Description:      p.Description,
		Type:             p.Type,
		Path:             models.UploadsPrefix + name,
		OriginalFilename: p.OriginalFilename,
		OwnerID:          owner.ID,
		CreatedAt:        models.NewTimestamp(s.now()),
	})
	if err := s.store.Save(ctx, state); err != nil {
		s.discardUpload(name)
		return models.ContentItem{}, err
	}

	s.logger.Info("content uploaded", "content_id", item.ID, "owner_id", owner.ID, "path", item.Path)
	return item, nil
}

// writeUpload copies body into a newly created file in the upload dir and
// returns its base name.
func (s *Service) writeUpload(body io.Reader, original string) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	ext := filepath.Ext(filepath.Base(original))

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := uuid.NewString() + ext
		full := filepath.Join(s.uploadDir, name)
		f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create upload file: %w", err)
		}
		if _, err := io.Copy(f, body); err != nil {
			_ = f.Close()
			_ = os.Remove(full)
			return "", fmt.Errorf("write upload file: %w", err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(full)
			return "", fmt.Errorf("close upload file: %w", err)
		}
		return name, nil
	}
	return "", errors.New("could not allocate a unique upload name")
}

func (s *Service) discardUpload(name string) {
	if err := os.Remove(filepath.Join(s.uploadDir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("remove orphaned upload", "name", name, "error", err)
	}
}

// FilePath maps a content path such as /uploads/x.txt to its location on disk.
func (s *Service) FilePath(contentPath string) string {
	name := filepath.Base(strings.TrimPrefix(contentPath, models.UploadsPrefix))
	return filepath.Join(s.uploadDir, name)
}

func (s *Service) ListOwn(ctx context.Context, owner models.User) ([]models.ContentItem, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return state.ContentByOwner(owner.ID), nil
}

func (s *Service) ListAll(ctx context.Context, requester models.User) ([]models.ContentItem, error) {
	if !requester.Role.CanViewAllContent() {
		return nil, newError(ErrForbidden, "access denied")
	}
	state, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return state.Content, nil
}

// Delete removes the content record and its backing file. A backing file
// that is already gone is not an error.
func (s *Service) Delete(ctx context.Context, contentID int, requester models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	item, ok := state.ContentByID(contentID)
	if !ok {
		return newError(ErrNotFound, "content not found")
	}
	if !requester.CanDelete(item) {
		return newError(ErrForbidden, "you do not have permission to delete this content")
	}

	state.RemoveContent(contentID)
	if err := s.store.Save(ctx, state); err != nil {
		return err
	}
	// the record is gone; a file left behind is only logged
	if err := os.Remove(s.FilePath(item.Path)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("remove upload file", "content_id", contentID, "path", item.Path, "error", err)
	}

	s.logger.Info("content deleted", "content_id", contentID, "requester_id", requester.ID)
	return nil
}
