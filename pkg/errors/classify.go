package errors

import (
	"errors"
	"strings"
	"unicode"

	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/grid/history"
	"github.com/matzehuels/cardgrid/pkg/grid/responsive"
)

// Classify maps an engine sentinel error to a coded *Error for surfaces
// (HTTP, CLI) that report machine-readable codes. Errors that already carry
// a code pass through; anything unrecognized becomes INTERNAL_ERROR.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded
	}

	switch {
	case errors.Is(err, grid.ErrDuplicateID):
		return Wrap(ErrCodeDuplicateID, err, "duplicate item ID")
	case errors.Is(err, grid.ErrInvalidItemID):
		return Wrap(ErrCodeInvalidLayout, err, "item without ID")
	case errors.Is(err, grid.ErrItemNotFound):
		return Wrap(ErrCodeItemNotFound, err, "item not found")
	case errors.Is(err, grid.ErrBadGeometry):
		return Wrap(ErrCodeInvalidGeometry, err, "invalid item geometry")
	case errors.Is(err, grid.ErrOutOfBounds):
		return Wrap(ErrCodeOutOfBounds, err, "item out of grid bounds")
	case errors.Is(err, grid.ErrCollision):
		return Wrap(ErrCodeCollision, err, "items overlap")
	case errors.Is(err, grid.ErrInvalidConfig):
		return Wrap(ErrCodeInvalidConfig, err, "invalid grid config")
	case errors.Is(err, history.ErrBoundary):
		return Wrap(ErrCodeHistoryBoundary, err, "history boundary reached")
	case errors.Is(err, responsive.ErrUnknownBreakpoint):
		return Wrap(ErrCodeBreakpointNotFound, err, "unknown breakpoint")
	case errors.Is(err, responsive.ErrNoBreakpoints):
		return Wrap(ErrCodeInvalidConfig, err, "no breakpoints configured")
	default:
		return Wrap(ErrCodeInternal, err, "internal error")
	}
}

// ValidateLayoutName validates a stored-layout name for safety across all
// persistence backends (file paths, redis keys, mongo document IDs).
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, \)
//   - Maximum length of 128 characters
func ValidateLayoutName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "layout name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidName, "layout name too long (max 128 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "layout name contains control characters")
		}
	}
	for _, pattern := range []string{"..", "//", "\\", "\x00", "/"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "layout name contains invalid sequence %q", pattern)
		}
	}
	return nil
}
