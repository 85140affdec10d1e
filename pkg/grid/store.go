package grid

import (
	"fmt"

	"github.com/google/uuid"
)

// Store owns the canonical grid item list and is the only component allowed
// to mutate it. Every mutating call is atomic: the proposed result is fully
// validated before any state is committed, and a failed call leaves the
// previous layout untouched.
//
// Store is not safe for concurrent use without external synchronization; the
// engine serializes access to it.
type Store struct {
	cfg   Config
	items []Item
	index map[string]int // item ID -> position in items
	dirty bool
}

// NewStore creates a store with the given configuration and optional initial
// layout. The initial layout is validated as one unit, exactly like a
// SetLayout call.
func NewStore(cfg Config, initial []Item) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Store{cfg: cfg.clone(), index: make(map[string]int)}
	if len(initial) > 0 {
		if err := s.SetLayout(initial); err != nil {
			return nil, err
		}
		s.dirty = false
	}
	return s, nil
}

// Config returns a copy of the active grid configuration.
func (s *Store) Config() Config { return s.cfg.clone() }

// SetConfig replaces the grid configuration. Only the configuration itself is
// validated; callers changing the column count are expected to follow up with
// a SetLayout carrying geometry for the new width, as the responsive
// transition does.
func (s *Store) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg.clone()
	return nil
}

// Layout returns a deep copy of the current layout.
func (s *Store) Layout() []Item { return CloneLayout(s.items) }

// Len returns the number of items in the layout.
func (s *Store) Len() int { return len(s.items) }

// Item returns a copy of the item with the given ID.
func (s *Store) Item(id string) (Item, error) {
	pos, ok := s.index[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return s.items[pos].Clone(), nil
}

// Dirty reports whether the layout changed since the last ClearDirty call.
// The engine uses this to decide when a history snapshot is due.
func (s *Store) Dirty() bool { return s.dirty }

// ClearDirty resets the dirty flag after a snapshot has been captured.
func (s *Store) ClearDirty() { s.dirty = false }

// AddItem validates and inserts a new item. An empty ID is replaced with a
// generated one. The committed item (with its final ID) is returned.
func (s *Store) AddItem(it Item) (Item, error) {
	candidate := it.Clone()
	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}
	if _, exists := s.index[candidate.ID]; exists {
		return Item{}, fmt.Errorf("%w: %s", ErrDuplicateID, candidate.ID)
	}
	if err := s.validateItem(candidate); err != nil {
		return Item{}, err
	}
	if err := s.checkCollision(candidate, ""); err != nil {
		return Item{}, err
	}
	s.index[candidate.ID] = len(s.items)
	s.items = append(s.items, candidate)
	s.dirty = true
	return candidate.Clone(), nil
}

// RemoveItem deletes the item with the given ID. When CompactOnRemove is
// enabled the remaining items are compacted to fill the gap.
func (s *Store) RemoveItem(id string) error {
	pos, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	s.items = append(s.items[:pos], s.items[pos+1:]...)
	s.reindex()
	if s.cfg.CompactOnRemove {
		s.items = Compact(s.items, s.cfg.ColNum)
		s.reindex()
	}
	s.dirty = true
	return nil
}

// UpdateItem applies a partial update to an existing item. The patched item
// is validated before commit; on failure the stored item is unchanged.
func (s *Store) UpdateItem(id string, p Patch) (Item, error) {
	pos, ok := s.index[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	candidate := p.apply(s.items[pos])
	candidate.ID = id // the ID is not patchable
	if err := s.validateItem(candidate); err != nil {
		return Item{}, err
	}
	if err := s.checkCollision(candidate, id); err != nil {
		return Item{}, err
	}
	s.items[pos] = candidate
	s.dirty = true
	return candidate.Clone(), nil
}

// MoveItem repositions an item to (x, y).
func (s *Store) MoveItem(id string, x, y int) (Item, error) {
	return s.UpdateItem(id, Patch{X: IntPtr(x), Y: IntPtr(y)})
}

// ResizeItem changes an item's size to (w, h).
func (s *Store) ResizeItem(id string, w, h int) (Item, error) {
	return s.UpdateItem(id, Patch{W: IntPtr(w), H: IntPtr(h)})
}

// SetLayout replaces the whole layout. The incoming array is validated as one
// unit: the first violation rejects the call and the previous layout stays in
// place.
func (s *Store) SetLayout(items []Item) error {
	incoming := CloneLayout(items)
	seen := make(map[string]struct{}, len(incoming))
	for i := range incoming {
		if incoming[i].ID == "" {
			return fmt.Errorf("%w: item at position %d", ErrInvalidItemID, i)
		}
		if _, dup := seen[incoming[i].ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, incoming[i].ID)
		}
		seen[incoming[i].ID] = struct{}{}
		if err := s.validateItem(incoming[i]); err != nil {
			return err
		}
	}
	if s.cfg.PreventCollision {
		for i := range incoming {
			if incoming[i].Static {
				continue
			}
			for j := i + 1; j < len(incoming); j++ {
				if incoming[j].Static {
					continue
				}
				if incoming[i].Overlaps(incoming[j]) {
					return fmt.Errorf("%w: %s and %s", ErrCollision, incoming[i].ID, incoming[j].ID)
				}
			}
		}
	}
	if incoming == nil {
		incoming = []Item{}
	}
	s.items = incoming
	s.reindex()
	s.dirty = true
	return nil
}

// Compact runs the gap-elimination algorithm on the live layout.
func (s *Store) Compact() {
	compacted := Compact(s.items, s.cfg.ColNum)
	if layoutEqual(s.items, compacted) {
		return
	}
	s.items = compacted
	s.reindex()
	s.dirty = true
}

// Bounds describes the occupied extent of the layout in cells.
type Bounds struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// Bounds returns the configured column count and the number of rows the
// layout currently occupies.
func (s *Store) Bounds() Bounds {
	rows := 0
	for _, it := range s.items {
		if bottom := it.Y + it.H; bottom > rows {
			rows = bottom
		}
	}
	return Bounds{Cols: s.cfg.ColNum, Rows: rows}
}

// Stats summarizes the layout for monitoring and diagnostics.
type Stats struct {
	ItemCount     int     `json:"itemCount"`
	StaticCount   int     `json:"staticCount"`
	OccupiedCells int     `json:"occupiedCells"`
	Rows          int     `json:"rows"`
	Density       float64 `json:"density"` // occupied cells / total cells in the bounding rows
}

// Stats computes layout statistics.
func (s *Store) Stats() Stats {
	st := Stats{ItemCount: len(s.items)}
	for _, it := range s.items {
		if it.Static {
			st.StaticCount++
		}
		st.OccupiedCells += it.W * it.H
		if bottom := it.Y + it.H; bottom > st.Rows {
			st.Rows = bottom
		}
	}
	if total := st.Rows * s.cfg.ColNum; total > 0 {
		st.Density = float64(st.OccupiedCells) / float64(total)
	}
	return st
}

// validateItem checks item geometry against the config. Static items and
// grids without collision prevention are exempt from the column bound, not
// from basic geometry.
func (s *Store) validateItem(it Item) error {
	if it.W < 1 || it.H < 1 {
		return fmt.Errorf("%w: %s has size %dx%d", ErrBadGeometry, it.ID, it.W, it.H)
	}
	if it.X < 0 || it.Y < 0 {
		return fmt.Errorf("%w: %s has position (%d,%d)", ErrBadGeometry, it.ID, it.X, it.Y)
	}
	if it.MinW > 0 && it.W < it.MinW {
		return fmt.Errorf("%w: %s width %d below minW %d", ErrBadGeometry, it.ID, it.W, it.MinW)
	}
	if it.MinH > 0 && it.H < it.MinH {
		return fmt.Errorf("%w: %s height %d below minH %d", ErrBadGeometry, it.ID, it.H, it.MinH)
	}
	if it.MaxW > 0 && it.W > it.MaxW {
		return fmt.Errorf("%w: %s width %d above maxW %d", ErrBadGeometry, it.ID, it.W, it.MaxW)
	}
	if it.MaxH > 0 && it.H > it.MaxH {
		return fmt.Errorf("%w: %s height %d above maxH %d", ErrBadGeometry, it.ID, it.H, it.MaxH)
	}
	if !it.Static && s.cfg.PreventCollision && it.X+it.W > s.cfg.ColNum {
		return fmt.Errorf("%w: %s spans columns %d-%d of %d", ErrOutOfBounds, it.ID, it.X, it.X+it.W, s.cfg.ColNum)
	}
	return nil
}

// checkCollision rejects the candidate if it would overlap another non-static
// item. skipID excludes the item being updated from the comparison.
func (s *Store) checkCollision(candidate Item, skipID string) error {
	if !s.cfg.PreventCollision || candidate.Static {
		return nil
	}
	for _, it := range s.items {
		if it.ID == skipID || it.Static {
			continue
		}
		if candidate.Overlaps(it) {
			return fmt.Errorf("%w: %s and %s", ErrCollision, candidate.ID, it.ID)
		}
	}
	return nil
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.items))
	for i := range s.items {
		s.index[s.items[i].ID] = i
	}
}

// layoutEqual compares geometry only (id, x, y, w, h), which is what
// compaction may change.
func layoutEqual(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].X != b[i].X || a[i].Y != b[i].Y || a[i].W != b[i].W || a[i].H != b[i].H {
			return false
		}
	}
	return true
}
