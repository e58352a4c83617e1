package store

import (
	"context"
	"sync"
	"time"

	"inhouse52/internal/models"
)

// Memory is an in-process Store. Load and Save copy the document so
// callers never share slices with the stored state.
type Memory struct {
	mu     sync.Mutex
	state  *models.AppState
	saves  int
	closed bool
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) (*models.AppState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.state == nil {
		return models.DefaultState(time.Now()), nil
	}
	return m.state.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, state *models.AppState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.state = state.Clone()
	m.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
