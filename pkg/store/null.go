package store

import (
	"context"

	"github.com/matzehuels/cardgrid/pkg/grid"
)

// NullStore is a no-op store that never persists anything.
// Useful for testing or when persistence should be disabled.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() *NullStore { return &NullStore{} }

// Get always reports a missing layout.
func (s *NullStore) Get(ctx context.Context, name string) ([]grid.Item, error) {
	return nil, ErrNotFound
}

// Set does nothing.
func (s *NullStore) Set(ctx context.Context, name string, layout []grid.Item) error {
	return nil
}

// Delete does nothing.
func (s *NullStore) Delete(ctx context.Context, name string) error { return nil }

// List returns no names.
func (s *NullStore) List(ctx context.Context) ([]string, error) { return nil, nil }

// Close does nothing.
func (s *NullStore) Close() error { return nil }

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
