package grid

import "errors"

var (
	// ErrInvalidItemID is returned by [Store.SetLayout] when an item has an
	// empty ID. AddItem generates IDs, but a full layout swap must arrive
	// fully identified.
	ErrInvalidItemID = errors.New("item ID must not be empty")

	// ErrDuplicateID is returned when an item with the same ID already exists
	// in the layout. Item IDs must be unique.
	ErrDuplicateID = errors.New("duplicate item ID")

	// ErrItemNotFound is returned by mutation calls that reference an unknown
	// item ID.
	ErrItemNotFound = errors.New("item not found")

	// ErrBadGeometry is returned when an item's size is invalid (w or h below
	// one, negative coordinates) or violates its own min/max constraints.
	ErrBadGeometry = errors.New("invalid item geometry")

	// ErrOutOfBounds is returned when a non-static item would extend past the
	// configured column count while collision prevention is enabled.
	ErrOutOfBounds = errors.New("item out of grid bounds")

	// ErrCollision is returned when a mutation would make two non-static
	// items overlap while collision prevention is enabled.
	ErrCollision = errors.New("items overlap")

	// ErrInvalidConfig is returned by [Config.Validate] for an unusable grid
	// configuration (column count below one, empty or non-monotonic
	// breakpoint table).
	ErrInvalidConfig = errors.New("invalid grid config")
)
