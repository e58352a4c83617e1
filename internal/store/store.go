// Package store persists the whole application document. Every backend
// loads and saves the full AppState; there are no partial updates.
package store

import (
	"context"
	"errors"

	"inhouse52/internal/models"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("store closed")

// Store loads and saves the entire application state. Load returns the
// seeded default document, without writing it, when nothing is persisted.
type Store interface {
	Load(ctx context.Context) (*models.AppState, error)
	Save(ctx context.Context, state *models.AppState) error
	Close() error
}
