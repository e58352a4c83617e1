package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"inhouse52/internal/models"
)

// JSONFile keeps the document in a single JSON file. Writes go to a temp
// file in the same directory and are renamed over the old document.
type JSONFile struct {
	path string
	now  func() time.Time
}

var _ Store = (*JSONFile)(nil)

func NewJSONFile(path string) (*JSONFile, error) {
	if path == "" {
		return nil, errors.New("data file path is required")
	}
	return &JSONFile{path: path, now: time.Now}, nil
}

func (s *JSONFile) Path() string {
	return s.path
}

func (s *JSONFile) Load(ctx context.Context) (*models.AppState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.DefaultState(s.now()), nil
	} else if err != nil {
		return nil, fmt.Errorf("open store file: %w", err)
	}
	defer file.Close()

	var state models.AppState
	if err := json.NewDecoder(file).Decode(&state); err != nil {
		if errors.Is(err, io.EOF) {
			return models.DefaultState(s.now()), nil
		}
		return nil, fmt.Errorf("decode store file: %w", err)
	}
	state.Normalize()
	return &state, nil
}

func (s *JSONFile) Save(ctx context.Context, state *models.AppState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "store-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpPath := tmpFile.Name()
	success := false
	defer func() {
		if !success {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	encoder := json.NewEncoder(tmpFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(state); err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("flush store file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp store file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	success = true
	return nil
}

func (s *JSONFile) Close() error {
	return nil
}
