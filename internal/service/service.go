// Package service implements accounts, authentication and content
// management on top of a whole-document store.
//
// Every operation loads the full state, and mutating operations save it
// back. Mutations are serialized by a process-local mutex; separate
// processes sharing one store still race with last-save-wins semantics.
package service

import (
	"log/slog"
	"sync"
	"time"

	"inhouse52/internal/store"
)

// Tokens issues and verifies bearer credentials.
type Tokens interface {
	Issue(userID int) (string, error)
	Verify(token string) (int, error)
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type Service struct {
	store     store.Store
	tokens    Tokens
	uploadDir string
	logger    *slog.Logger
	now       func() time.Time

	// mu guards load-modify-save cycles.
	mu sync.Mutex
}

func New(st store.Store, tokens Tokens, uploadDir string, opts ...Option) *Service {
	s := &Service{
		store:     st,
		tokens:    tokens,
		uploadDir: uploadDir,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) UploadDir() string {
	return s.uploadDir
}
