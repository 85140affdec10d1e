// Package grid implements the core layout state for a card grid.
//
// The grid is a column-based canvas on which rectangular items are placed by
// integer cell coordinates. The package owns the canonical item list and is
// deliberately free of any rendering concern: hosts project the layout to
// pixels (or terminal cells) and feed mutations back exclusively through the
// Store API.
//
// # Architecture
//
// The package provides three layers:
//
//   - Item and Config: the data model, shared with the serialization and
//     persistence packages.
//   - Store: the validated, atomic mutation surface. Every mutating call is
//     fully validated before any state is committed; a failed call leaves the
//     previous layout untouched.
//   - Compact: the deterministic gap-elimination algorithm used after removals
//     and on explicit request.
//
// # Invariants
//
// A live layout always satisfies:
//
//   - Item IDs are unique.
//   - x >= 0, y >= 0, w >= 1, h >= 1 for every item.
//   - x+w <= colNum unless the item is static or collision prevention is
//     disabled.
//   - No two non-static items overlap when collision prevention is enabled.
//
// # Usage
//
//	store, err := grid.NewStore(grid.DefaultConfig(), nil)
//	if err != nil {
//	    return err
//	}
//	item, err := store.AddItem(grid.Item{W: 4, H: 2})
//	if errors.Is(err, grid.ErrCollision) {
//	    // placement rejected, layout unchanged
//	}
package grid
