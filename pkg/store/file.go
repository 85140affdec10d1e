package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/matzehuels/cardgrid/pkg/errors"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/observability"
)

// FileStore is a file-based layout store for CLI hosts.
// Layouts are stored as JSON files in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based layout store.
// If baseDir is empty, defaults to ~/.config/cardgrid/layouts/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "cardgrid", "layouts")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) layoutPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

// Get retrieves a layout by name.
func (s *FileStore) Get(ctx context.Context, name string) ([]grid.Item, error) {
	if err := errors.ValidateLayoutName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.layoutPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			observability.Store().OnMiss(ctx, "file", name)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read layout file: %w", err)
	}

	var layout []grid.Item
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	observability.Store().OnHit(ctx, "file", name)
	return layout, nil
}

// Set stores a layout under a name.
func (s *FileStore) Set(ctx context.Context, name string, layout []grid.Item) error {
	if err := errors.ValidateLayoutName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	if err := os.WriteFile(s.layoutPath(name), data, 0o644); err != nil {
		return fmt.Errorf("write layout file: %w", err)
	}
	observability.Store().OnSet(ctx, "file", name, len(layout))
	return nil
}

// Delete removes a layout file. Deleting a missing layout is not an error.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateLayoutName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.layoutPath(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete layout file: %w", err)
	}
	return nil
}

// List returns the stored layout names in sorted order.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("list layout dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
