// Package store provides persistence backends for named grid layouts.
//
// The engine itself never persists anything - storage is a host concern.
// This package gives hosts ready-made backends behind one interface:
//
//   - MemoryStore: in-process storage for development and tests
//   - FileStore: JSON files in a config directory, for CLI hosts
//   - RedisStore: Redis-backed storage for multi-instance deployments
//   - MongoStore: MongoDB-backed storage for the dashboard platform
//   - NullStore: a no-op used when persistence is disabled
//
// A stored layout is the serialized form from the external interface: a JSON
// array of items. Layout names are validated conservatively (no path
// traversal, no control characters) so the same name is safe as a file
// basename, a redis key, and a mongo document ID.
package store

import (
	"context"
	"errors"

	"github.com/matzehuels/cardgrid/pkg/grid"
)

// Sentinel errors for layout storage operations.
var (
	// ErrNotFound is returned when a named layout does not exist.
	ErrNotFound = errors.New("layout not found")

	// ErrCorrupt is returned when stored data cannot be decoded.
	ErrCorrupt = errors.New("stored layout corrupt")
)

// Store is the interface for layout persistence backends.
type Store interface {
	// Get retrieves a layout by name. Returns ErrNotFound if it does not
	// exist.
	Get(ctx context.Context, name string) ([]grid.Item, error)

	// Set stores a layout under a name, replacing any previous value.
	Set(ctx context.Context, name string, layout []grid.Item) error

	// Delete removes a layout. Deleting a missing layout is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored layouts.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}
