package grid

import (
	"reflect"
	"testing"
)

func TestCompact_ClosesGaps(t *testing.T) {
	items := []Item{
		{ID: "a", X: 0, Y: 0, W: 2, H: 1},
		{ID: "b", X: 0, Y: 5, W: 2, H: 1},
	}

	got := Compact(items, 2)

	byID := indexByID(got)
	if byID["a"].Y != 0 {
		t.Errorf("a.y = %d, want 0", byID["a"].Y)
	}
	if byID["b"].Y != 1 {
		t.Errorf("b.y = %d, want 1 (gap closed)", byID["b"].Y)
	}
}

func TestCompact_RowPacking(t *testing.T) {
	// Three 4-wide items on a 12-column grid all fit in one row.
	items := []Item{
		{ID: "a", X: 0, Y: 2, W: 4, H: 1},
		{ID: "b", X: 4, Y: 4, W: 4, H: 1},
		{ID: "c", X: 8, Y: 6, W: 4, H: 1},
	}

	got := Compact(items, 12)

	for _, it := range got {
		if it.Y != 0 {
			t.Errorf("%s.y = %d, want 0 (single packed row)", it.ID, it.Y)
		}
	}
	byID := indexByID(got)
	if byID["a"].X != 0 || byID["b"].X != 4 || byID["c"].X != 8 {
		t.Errorf("x positions = a:%d b:%d c:%d, want 0, 4, 8",
			byID["a"].X, byID["b"].X, byID["c"].X)
	}
}

func TestCompact_WrapsBelowTallestItem(t *testing.T) {
	items := []Item{
		{ID: "tall", X: 0, Y: 0, W: 8, H: 3},
		{ID: "short", X: 8, Y: 0, W: 4, H: 1},
		{ID: "next", X: 0, Y: 9, W: 6, H: 1},
	}

	got := Compact(items, 12)

	byID := indexByID(got)
	if byID["next"].Y != 3 {
		t.Errorf("next.y = %d, want 3 (below tallest item of the first row)", byID["next"].Y)
	}
	if byID["next"].X != 0 {
		t.Errorf("next.x = %d, want 0", byID["next"].X)
	}
}

func TestCompact_OnlyPositionsChange(t *testing.T) {
	items := []Item{
		{ID: "a", X: 3, Y: 7, W: 5, H: 2, Type: "chart", Payload: []byte(`{"k":1}`)},
	}

	got := Compact(items, 12)

	if got[0].W != 5 || got[0].H != 2 {
		t.Errorf("size changed to %dx%d, want 5x2", got[0].W, got[0].H)
	}
	if got[0].Type != "chart" || string(got[0].Payload) != `{"k":1}` {
		t.Error("Compact() modified non-geometry fields")
	}
}

func TestCompact_Idempotent(t *testing.T) {
	items := []Item{
		{ID: "a", X: 4, Y: 3, W: 6, H: 2},
		{ID: "b", X: 0, Y: 9, W: 8, H: 1},
		{ID: "c", X: 8, Y: 1, W: 4, H: 3},
	}

	once := Compact(items, 12)
	twice := Compact(once, 12)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Compact() not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestCompact_OversizedItemGetsOwnRow(t *testing.T) {
	items := []Item{
		{ID: "a", X: 0, Y: 0, W: 2, H: 1},
		{ID: "huge", X: 0, Y: 1, W: 20, H: 1}, // wider than the grid
		{ID: "b", X: 0, Y: 2, W: 2, H: 1},
	}

	got := Compact(items, 12)

	byID := indexByID(got)
	if byID["huge"].X != 0 {
		t.Errorf("huge.x = %d, want 0", byID["huge"].X)
	}
	if byID["huge"].Y == byID["a"].Y {
		t.Error("oversized item shares a row with a")
	}
	if byID["b"].Y <= byID["huge"].Y {
		t.Errorf("b.y = %d, want below huge (y=%d)", byID["b"].Y, byID["huge"].Y)
	}
}

func TestCompact_DoesNotModifyInput(t *testing.T) {
	items := []Item{{ID: "a", X: 0, Y: 5, W: 2, H: 1}}
	Compact(items, 12)
	if items[0].Y != 5 {
		t.Error("Compact() modified its input slice")
	}
}

func TestCompact_DeterministicTieBreak(t *testing.T) {
	// Same (y, x): the ID decides the order.
	items := []Item{
		{ID: "b", X: 0, Y: 0, W: 1, H: 1},
		{ID: "a", X: 0, Y: 0, W: 1, H: 1},
	}

	got := Compact(items, 2)

	byID := indexByID(got)
	if byID["a"].X != 0 || byID["b"].X != 1 {
		t.Errorf("tie-break order: a.x=%d b.x=%d, want a before b", byID["a"].X, byID["b"].X)
	}
}

func indexByID(items []Item) map[string]Item {
	out := make(map[string]Item, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out
}
