package store

import (
	"context"
	"sort"
	"sync"

	"github.com/matzehuels/cardgrid/pkg/errors"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/observability"
)

// MemoryStore is an in-process layout store for development and testing.
type MemoryStore struct {
	mu      sync.RWMutex
	layouts map[string][]grid.Item
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{layouts: make(map[string][]grid.Item)}
}

// Get retrieves a layout by name.
func (s *MemoryStore) Get(ctx context.Context, name string) ([]grid.Item, error) {
	if err := errors.ValidateLayoutName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	layout, ok := s.layouts[name]
	s.mu.RUnlock()

	if !ok {
		observability.Store().OnMiss(ctx, "memory", name)
		return nil, ErrNotFound
	}
	observability.Store().OnHit(ctx, "memory", name)
	return grid.CloneLayout(layout), nil
}

// Set stores a layout under a name.
func (s *MemoryStore) Set(ctx context.Context, name string, layout []grid.Item) error {
	if err := errors.ValidateLayoutName(name); err != nil {
		return err
	}
	s.mu.Lock()
	s.layouts[name] = grid.CloneLayout(layout)
	s.mu.Unlock()

	observability.Store().OnSet(ctx, "memory", name, len(layout))
	return nil
}

// Delete removes a layout. Deleting a missing layout is not an error.
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateLayoutName(name); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.layouts, name)
	s.mu.Unlock()
	return nil
}

// List returns the stored layout names in sorted order.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	names := make([]string, 0, len(s.layouts))
	for name := range s.layouts {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
