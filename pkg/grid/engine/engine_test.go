package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/grid/history"
	"github.com/matzehuels/cardgrid/pkg/grid/responsive"
)

func plainConfig() grid.Config {
	cfg := grid.DefaultConfig()
	cfg.Breakpoints = nil
	cfg.Cols = nil
	cfg.CompactOnRemove = false
	return cfg
}

func newEngine(t *testing.T, cfg grid.Config, initial []grid.Item, opts ...Option) *Engine {
	t.Helper()
	e, err := New(cfg, initial, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestNew_BaselineSnapshot(t *testing.T) {
	e := newEngine(t, plainConfig(), []grid.Item{{ID: "a", W: 2, H: 2}})
	if e.History().Len() != 1 {
		t.Errorf("history length = %d after construction, want 1 (baseline)", e.History().Len())
	}
}

func TestMutationsSnapshotOnce(t *testing.T) {
	e := newEngine(t, plainConfig(), nil)

	if _, err := e.AddItem(grid.Item{ID: "a", W: 2, H: 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.MoveItem("a", 4, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ResizeItem("a", 3, 3); err != nil {
		t.Fatal(err)
	}

	// Baseline plus one entry per mutation.
	if e.History().Len() != 4 {
		t.Errorf("history length = %d, want 4", e.History().Len())
	}
}

func TestUndo_RestoresEachStep(t *testing.T) {
	e := newEngine(t, plainConfig(), nil)

	e.AddItem(grid.Item{ID: "a", X: 0, Y: 0, W: 2, H: 2})
	e.MoveItem("a", 4, 0)
	e.MoveItem("a", 8, 0)

	// Walk back through every recorded position.
	wantX := []int{4, 0}
	for _, want := range wantX {
		layout, err := e.Undo()
		if err != nil {
			t.Fatalf("Undo() error = %v", err)
		}
		if layout[0].X != want {
			t.Errorf("Undo() x = %d, want %d", layout[0].X, want)
		}
	}

	// One more undo reaches the empty baseline.
	layout, err := e.Undo()
	if err != nil {
		t.Fatalf("Undo() to baseline error = %v", err)
	}
	if len(layout) != 0 {
		t.Errorf("baseline layout has %d items, want 0", len(layout))
	}

	if _, err := e.Undo(); !errors.Is(err, history.ErrBoundary) {
		t.Errorf("Undo() past baseline error = %v, want ErrBoundary", err)
	}
}

func TestRedo_AfterUndo(t *testing.T) {
	e := newEngine(t, plainConfig(), nil)
	e.AddItem(grid.Item{ID: "a", X: 0, Y: 0, W: 2, H: 2})
	e.MoveItem("a", 6, 0)

	if _, err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	layout, err := e.Redo()
	if err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
	if layout[0].X != 6 {
		t.Errorf("Redo() x = %d, want 6", layout[0].X)
	}

	got, _ := e.Item("a")
	if got.X != 6 {
		t.Errorf("live item x = %d after redo, want 6", got.X)
	}
}

func TestUndoRedo_DoesNotGrowHistory(t *testing.T) {
	e := newEngine(t, plainConfig(), nil)
	e.AddItem(grid.Item{ID: "a", W: 2, H: 2})

	before := e.History().Len()
	e.Undo()
	e.Redo()
	if e.History().Len() != before {
		t.Errorf("history length = %d after undo/redo, want %d", e.History().Len(), before)
	}
}

func TestFailedMutation_NoSnapshotNoChange(t *testing.T) {
	e := newEngine(t, plainConfig(), []grid.Item{{ID: "a", X: 0, Y: 0, W: 4, H: 2}})

	before := e.History().Len()
	_, err := e.AddItem(grid.Item{ID: "b", X: 2, Y: 0, W: 4, H: 2})
	if !errors.Is(err, grid.ErrCollision) {
		t.Fatalf("AddItem() error = %v, want ErrCollision", err)
	}
	if e.History().Len() != before {
		t.Error("failed mutation recorded a history snapshot")
	}
	if len(e.Layout()) != 1 {
		t.Error("failed mutation changed the layout")
	}
}

func TestBatchUpdate_SingleSnapshot(t *testing.T) {
	e := newEngine(t, plainConfig(), nil)
	before := e.History().Len()

	err := e.BatchUpdate([]Op{
		{Kind: OpAdd, Item: grid.Item{ID: "a", X: 0, Y: 0, W: 2, H: 2}},
		{Kind: OpAdd, Item: grid.Item{ID: "b", X: 2, Y: 0, W: 2, H: 2}},
		{Kind: OpMove, ID: "a", X: 4, Y: 0},
	})
	if err != nil {
		t.Fatalf("BatchUpdate() error = %v", err)
	}

	if got := e.History().Len(); got != before+1 {
		t.Errorf("history grew by %d, want exactly 1 snapshot for the batch", got-before)
	}
	if len(e.Layout()) != 2 {
		t.Errorf("layout has %d items, want 2", len(e.Layout()))
	}
}

func TestBatchUpdate_RollsBackWholeBatch(t *testing.T) {
	e := newEngine(t, plainConfig(), []grid.Item{{ID: "a", X: 0, Y: 0, W: 2, H: 2}})
	before := e.Layout()
	histBefore := e.History().Len()

	err := e.BatchUpdate([]Op{
		{Kind: OpAdd, Item: grid.Item{ID: "b", X: 4, Y: 0, W: 2, H: 2}},
		{Kind: OpMove, ID: "missing", X: 0, Y: 0}, // fails
	})
	if !errors.Is(err, grid.ErrItemNotFound) {
		t.Fatalf("BatchUpdate() error = %v, want ErrItemNotFound", err)
	}

	if !reflect.DeepEqual(e.Layout(), before) {
		t.Error("layout changed after failed batch, want full rollback")
	}
	if e.History().Len() != histBefore {
		t.Error("failed batch recorded a snapshot")
	}
}

func TestSwitchBreakpoint_OneSnapshot(t *testing.T) {
	e := newEngine(t, grid.DefaultConfig(), []grid.Item{
		{ID: "a", X: 0, Y: 0, W: 6, H: 2},
		{ID: "b", X: 6, Y: 0, W: 6, H: 2},
	}, WithDebounce(-1))

	before := e.History().Len()
	change, err := e.SwitchBreakpoint("sm")
	if err != nil {
		t.Fatalf("SwitchBreakpoint() error = %v", err)
	}

	if change.To != "sm" || change.Cols != 6 {
		t.Errorf("change = %+v, want to sm with 6 cols", change)
	}
	if e.Config().ColNum != 6 {
		t.Errorf("ColNum = %d after switch, want 6", e.Config().ColNum)
	}
	if got := e.History().Len(); got != before+1 {
		t.Errorf("history grew by %d for one transition, want 1", got-before)
	}
	if e.CurrentBreakpoint() != "sm" {
		t.Errorf("CurrentBreakpoint() = %q, want sm", e.CurrentBreakpoint())
	}
}

func TestSwitchBreakpoint_RoundTripRestoresLayout(t *testing.T) {
	original := []grid.Item{
		{ID: "a", X: 2, Y: 0, W: 4, H: 2},
		{ID: "b", X: 6, Y: 0, W: 6, H: 2},
	}
	e := newEngine(t, grid.DefaultConfig(), original, WithDebounce(-1))

	if _, err := e.SwitchBreakpoint("xs"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.SwitchBreakpoint("lg"); err != nil {
		t.Fatal(err)
	}

	got := e.Layout()
	byID := map[string]grid.Item{}
	for _, it := range got {
		byID[it.ID] = it
	}
	for _, want := range original {
		g := byID[want.ID]
		if g.X != want.X || g.Y != want.Y || g.W != want.W || g.H != want.H {
			t.Errorf("item %s = (%d,%d) %dx%d after round trip, want (%d,%d) %dx%d",
				want.ID, g.X, g.Y, g.W, g.H, want.X, want.Y, want.W, want.H)
		}
	}
}

func TestUndo_AcrossBreakpointSwitch(t *testing.T) {
	// Two full-height halves of a 12-column grid. After narrowing to sm
	// (6 cols) these spans no longer fit the live config, so restoring them
	// requires the snapshot's own column count.
	original := []grid.Item{
		{ID: "a", X: 0, Y: 0, W: 6, H: 2},
		{ID: "b", X: 6, Y: 0, W: 6, H: 2},
	}
	e := newEngine(t, grid.DefaultConfig(), original, WithDebounce(-1))

	if _, err := e.SwitchBreakpoint("sm"); err != nil {
		t.Fatal(err)
	}
	cursor := e.History().Cursor()

	layout, err := e.Undo()
	if err != nil {
		t.Fatalf("Undo() across breakpoint switch error = %v", err)
	}
	if e.Config().ColNum != 12 {
		t.Errorf("ColNum = %d after undo, want 12", e.Config().ColNum)
	}
	if e.CurrentBreakpoint() != "lg" {
		t.Errorf("CurrentBreakpoint() = %q after undo, want lg", e.CurrentBreakpoint())
	}
	if got := e.History().Cursor(); got != cursor-1 {
		t.Errorf("history cursor = %d after undo, want %d", got, cursor-1)
	}

	byID := map[string]grid.Item{}
	for _, it := range layout {
		byID[it.ID] = it
	}
	for _, want := range original {
		g := byID[want.ID]
		if g.X != want.X || g.Y != want.Y || g.W != want.W || g.H != want.H {
			t.Errorf("item %s = (%d,%d) %dx%d after undo, want (%d,%d) %dx%d",
				want.ID, g.X, g.Y, g.W, g.H, want.X, want.Y, want.W, want.H)
		}
	}

	// Redo re-applies the narrow state.
	if _, err := e.Redo(); err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
	if e.Config().ColNum != 6 {
		t.Errorf("ColNum = %d after redo, want 6", e.Config().ColNum)
	}
	if e.CurrentBreakpoint() != "sm" {
		t.Errorf("CurrentBreakpoint() = %q after redo, want sm", e.CurrentBreakpoint())
	}
	if got := e.History().Cursor(); got != cursor {
		t.Errorf("history cursor = %d after redo, want %d", got, cursor)
	}
}

func TestSwitchBreakpoint_WithoutResponsive(t *testing.T) {
	e := newEngine(t, plainConfig(), nil)
	if _, err := e.SwitchBreakpoint("lg"); !errors.Is(err, responsive.ErrNoBreakpoints) {
		t.Errorf("SwitchBreakpoint() error = %v, want ErrNoBreakpoints", err)
	}
}

func TestOnLayoutChange_NotifyAndUnsubscribe(t *testing.T) {
	e := newEngine(t, plainConfig(), nil)

	var events [][]grid.Item
	unsubscribe := e.OnLayoutChange(func(layout []grid.Item) {
		events = append(events, layout)
	})

	e.AddItem(grid.Item{ID: "a", W: 2, H: 2})
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	// Subscribers own their clone.
	events[0][0].X = 99
	if it, _ := e.Item("a"); it.X != 0 {
		t.Error("mutating the event payload leaked into the engine")
	}

	unsubscribe()
	unsubscribe() // calling twice is safe
	e.AddItem(grid.Item{ID: "b", X: 4, Y: 0, W: 2, H: 2})
	if len(events) != 1 {
		t.Errorf("got %d events after unsubscribe, want 1", len(events))
	}
}

func TestOnBreakpointChange_Notified(t *testing.T) {
	e := newEngine(t, grid.DefaultConfig(), nil, WithDebounce(-1))

	var changes []responsive.Change
	defer e.OnBreakpointChange(func(c responsive.Change) {
		changes = append(changes, c)
	})()

	if _, err := e.SwitchBreakpoint("md"); err != nil {
		t.Fatal(err)
	}
	if len(changes) != 1 || changes[0].To != "md" {
		t.Errorf("changes = %+v, want one transition to md", changes)
	}
}

func TestObserveWidth_DrivesTransition(t *testing.T) {
	e := newEngine(t, grid.DefaultConfig(), []grid.Item{
		{ID: "a", X: 0, Y: 0, W: 6, H: 2},
	}, WithDebounce(-1))

	done := make(chan responsive.Change, 1)
	defer e.OnBreakpointChange(func(c responsive.Change) { done <- c })()

	e.ObserveWidth(500) // xs territory

	select {
	case c := <-done:
		if c.To != "xs" {
			t.Errorf("transition to %q, want xs", c.To)
		}
	default:
		t.Fatal("no transition for synchronous width observation")
	}
	if e.CurrentBreakpoint() != "xs" {
		t.Errorf("CurrentBreakpoint() = %q, want xs", e.CurrentBreakpoint())
	}
}

func TestCompact_RecordsSnapshotOnlyWhenChanged(t *testing.T) {
	e := newEngine(t, plainConfig(), []grid.Item{{ID: "a", X: 0, Y: 5, W: 2, H: 2}})

	before := e.History().Len()
	e.Compact()
	if got := e.History().Len(); got != before+1 {
		t.Errorf("history grew by %d after compacting a gapped layout, want 1", got-before)
	}

	// Already compact: no new snapshot.
	before = e.History().Len()
	e.Compact()
	if e.History().Len() != before {
		t.Error("no-op compact recorded a snapshot")
	}
}

func TestWithHistoryLength(t *testing.T) {
	e := newEngine(t, plainConfig(), nil, WithHistoryLength(2))

	e.AddItem(grid.Item{ID: "a", X: 0, Y: 0, W: 2, H: 2})
	e.AddItem(grid.Item{ID: "b", X: 4, Y: 0, W: 2, H: 2})
	e.AddItem(grid.Item{ID: "c", X: 8, Y: 0, W: 2, H: 2})

	if got := e.History().Len(); got != 2 {
		t.Errorf("history length = %d with capacity 2, want 2", got)
	}
}
