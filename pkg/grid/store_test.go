package grid

import (
	"errors"
	"testing"
)

// noBreakpoints is a plain 12-column config without a breakpoint table.
func noBreakpoints() Config {
	cfg := DefaultConfig()
	cfg.Breakpoints = nil
	cfg.Cols = nil
	return cfg
}

func mustStore(t *testing.T, cfg Config, initial []Item) *Store {
	t.Helper()
	s, err := NewStore(cfg, initial)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func TestNewStore_RejectsInvalidConfig(t *testing.T) {
	cfg := noBreakpoints()
	cfg.ColNum = 0
	if _, err := NewStore(cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewStore() error = %v, want ErrInvalidConfig", err)
	}
}

func TestNewStore_RejectsInvalidInitialLayout(t *testing.T) {
	initial := []Item{
		{ID: "a", X: 0, Y: 0, W: 2, H: 2},
		{ID: "a", X: 4, Y: 0, W: 2, H: 2},
	}
	if _, err := NewStore(noBreakpoints(), initial); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("NewStore() error = %v, want ErrDuplicateID", err)
	}
}

func TestNewStore_InitialLayoutNotDirty(t *testing.T) {
	s := mustStore(t, noBreakpoints(), []Item{{ID: "a", W: 2, H: 2}})
	if s.Dirty() {
		t.Error("new store with initial layout is dirty, want clean")
	}
}

func TestAddItem_GeneratesID(t *testing.T) {
	s := mustStore(t, noBreakpoints(), nil)

	added, err := s.AddItem(Item{W: 2, H: 2})
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if added.ID == "" {
		t.Error("AddItem() left ID empty, want generated")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestAddItem_DuplicateID(t *testing.T) {
	s := mustStore(t, noBreakpoints(), []Item{{ID: "a", W: 2, H: 2}})

	_, err := s.AddItem(Item{ID: "a", X: 4, Y: 0, W: 2, H: 2})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("AddItem() error = %v, want ErrDuplicateID", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() after failed add = %d, want 1", s.Len())
	}
}

func TestAddItem_Collision(t *testing.T) {
	s := mustStore(t, noBreakpoints(), []Item{{ID: "a", X: 0, Y: 0, W: 4, H: 2}})

	_, err := s.AddItem(Item{ID: "b", X: 2, Y: 1, W: 4, H: 2})
	if !errors.Is(err, ErrCollision) {
		t.Errorf("AddItem() error = %v, want ErrCollision", err)
	}
}

func TestAddItem_StaticIgnoresCollision(t *testing.T) {
	s := mustStore(t, noBreakpoints(), []Item{{ID: "a", X: 0, Y: 0, W: 4, H: 2}})

	if _, err := s.AddItem(Item{ID: "pin", X: 2, Y: 1, W: 4, H: 2, Static: true}); err != nil {
		t.Errorf("AddItem(static) error = %v, want nil", err)
	}
}

func TestAddItem_OutOfBounds(t *testing.T) {
	s := mustStore(t, noBreakpoints(), nil)

	_, err := s.AddItem(Item{ID: "wide", X: 10, Y: 0, W: 4, H: 1})
	if !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("AddItem() error = %v, want ErrOutOfBounds", err)
	}
}

func TestAddItem_BadGeometry(t *testing.T) {
	tests := []struct {
		name string
		item Item
	}{
		{"zero width", Item{ID: "a", W: 0, H: 2}},
		{"zero height", Item{ID: "a", W: 2, H: 0}},
		{"negative x", Item{ID: "a", X: -1, W: 2, H: 2}},
		{"below minW", Item{ID: "a", W: 2, H: 2, MinW: 3}},
		{"above maxH", Item{ID: "a", W: 2, H: 5, MaxH: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustStore(t, noBreakpoints(), nil)
			if _, err := s.AddItem(tt.item); !errors.Is(err, ErrBadGeometry) {
				t.Errorf("AddItem(%+v) error = %v, want ErrBadGeometry", tt.item, err)
			}
		})
	}
}

func TestRemoveItem_CompactsWhenConfigured(t *testing.T) {
	cfg := noBreakpoints()
	cfg.CompactOnRemove = true
	s := mustStore(t, cfg, []Item{
		{ID: "a", X: 0, Y: 0, W: 12, H: 2},
		{ID: "b", X: 0, Y: 2, W: 12, H: 2},
		{ID: "c", X: 0, Y: 4, W: 12, H: 2},
	})

	if err := s.RemoveItem("b"); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}

	c, err := s.Item("c")
	if err != nil {
		t.Fatalf("Item(c) error = %v", err)
	}
	if c.Y != 2 {
		t.Errorf("item c y = %d after remove+compact, want 2", c.Y)
	}
}

func TestRemoveItem_NoCompactWhenDisabled(t *testing.T) {
	cfg := noBreakpoints()
	cfg.CompactOnRemove = false
	s := mustStore(t, cfg, []Item{
		{ID: "a", X: 0, Y: 0, W: 12, H: 2},
		{ID: "b", X: 0, Y: 2, W: 12, H: 2},
		{ID: "c", X: 0, Y: 4, W: 12, H: 2},
	})

	if err := s.RemoveItem("b"); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}

	c, _ := s.Item("c")
	if c.Y != 4 {
		t.Errorf("item c y = %d, want 4 (gap preserved)", c.Y)
	}
}

func TestRemoveItem_NotFound(t *testing.T) {
	s := mustStore(t, noBreakpoints(), nil)
	if err := s.RemoveItem("ghost"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("RemoveItem() error = %v, want ErrItemNotFound", err)
	}
}

func TestUpdateItem_AtomicOnFailure(t *testing.T) {
	s := mustStore(t, noBreakpoints(), []Item{
		{ID: "a", X: 0, Y: 0, W: 4, H: 2},
		{ID: "b", X: 4, Y: 0, W: 4, H: 2},
	})

	_, err := s.UpdateItem("b", Patch{X: IntPtr(2)})
	if !errors.Is(err, ErrCollision) {
		t.Fatalf("UpdateItem() error = %v, want ErrCollision", err)
	}

	b, _ := s.Item("b")
	if b.X != 4 {
		t.Errorf("item b x = %d after failed update, want 4", b.X)
	}
}

func TestUpdateItem_IDNotPatchable(t *testing.T) {
	s := mustStore(t, noBreakpoints(), []Item{{ID: "a", W: 2, H: 2}})

	updated, err := s.UpdateItem("a", Patch{Type: StringPtr("chart")})
	if err != nil {
		t.Fatalf("UpdateItem() error = %v", err)
	}
	if updated.ID != "a" {
		t.Errorf("updated ID = %q, want %q", updated.ID, "a")
	}
	if updated.Type != "chart" {
		t.Errorf("updated Type = %q, want %q", updated.Type, "chart")
	}
}

func TestSetLayout_RejectsEmptyID(t *testing.T) {
	s := mustStore(t, noBreakpoints(), nil)
	err := s.SetLayout([]Item{{W: 2, H: 2}})
	if !errors.Is(err, ErrInvalidItemID) {
		t.Errorf("SetLayout() error = %v, want ErrInvalidItemID", err)
	}
}

func TestSetLayout_AtomicOnFailure(t *testing.T) {
	s := mustStore(t, noBreakpoints(), []Item{{ID: "keep", W: 2, H: 2}})

	err := s.SetLayout([]Item{
		{ID: "a", X: 0, Y: 0, W: 4, H: 2},
		{ID: "b", X: 2, Y: 0, W: 4, H: 2}, // overlaps a
	})
	if !errors.Is(err, ErrCollision) {
		t.Fatalf("SetLayout() error = %v, want ErrCollision", err)
	}

	if s.Len() != 1 {
		t.Errorf("Len() = %d after failed SetLayout, want 1", s.Len())
	}
	if _, err := s.Item("keep"); err != nil {
		t.Errorf("previous layout lost after failed SetLayout: %v", err)
	}
}

func TestSetLayout_StaticOverlapAllowed(t *testing.T) {
	s := mustStore(t, noBreakpoints(), nil)
	err := s.SetLayout([]Item{
		{ID: "a", X: 0, Y: 0, W: 4, H: 2},
		{ID: "pin", X: 2, Y: 0, W: 4, H: 2, Static: true},
	})
	if err != nil {
		t.Errorf("SetLayout() with static overlap error = %v, want nil", err)
	}
}

func TestCompact_NoOpKeepsClean(t *testing.T) {
	s := mustStore(t, noBreakpoints(), []Item{{ID: "a", X: 0, Y: 0, W: 2, H: 2}})
	s.ClearDirty()

	s.Compact()
	if s.Dirty() {
		t.Error("Compact() on already-compact layout marked store dirty")
	}
}

func TestStats(t *testing.T) {
	s := mustStore(t, noBreakpoints(), []Item{
		{ID: "a", X: 0, Y: 0, W: 6, H: 2},
		{ID: "pin", X: 6, Y: 0, W: 6, H: 2, Static: true},
	})

	st := s.Stats()
	if st.ItemCount != 2 {
		t.Errorf("ItemCount = %d, want 2", st.ItemCount)
	}
	if st.StaticCount != 1 {
		t.Errorf("StaticCount = %d, want 1", st.StaticCount)
	}
	if st.OccupiedCells != 24 {
		t.Errorf("OccupiedCells = %d, want 24", st.OccupiedCells)
	}
	if st.Rows != 2 {
		t.Errorf("Rows = %d, want 2", st.Rows)
	}
	if st.Density != 1.0 {
		t.Errorf("Density = %v, want 1.0", st.Density)
	}
}

func TestBounds(t *testing.T) {
	s := mustStore(t, noBreakpoints(), []Item{{ID: "a", X: 0, Y: 3, W: 2, H: 2}})
	b := s.Bounds()
	if b.Cols != 12 || b.Rows != 5 {
		t.Errorf("Bounds() = %+v, want {Cols:12 Rows:5}", b)
	}
}

func TestLayout_ReturnsCopy(t *testing.T) {
	s := mustStore(t, noBreakpoints(), []Item{{ID: "a", W: 2, H: 2}})

	layout := s.Layout()
	layout[0].X = 99

	a, _ := s.Item("a")
	if a.X != 0 {
		t.Error("mutating Layout() result leaked into the store")
	}
}
