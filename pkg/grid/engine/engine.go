// Package engine composes the grid store, history, responsive manager, and
// performance monitor behind a single transactional mutation API.
//
// Hosts talk to the engine exclusively: every mutation is validated by the
// store, followed by a history snapshot and a memory re-estimate, and
// finished by an explicit change event. Rendering layers subscribe with
// OnLayoutChange/OnBreakpointChange and project the returned layout to
// pixels; nothing outside the engine mutates grid state.
//
// Engines are created per grid via New - there is no shared global state, so
// one process can drive any number of independent grids.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/grid/history"
	"github.com/matzehuels/cardgrid/pkg/grid/perf"
	"github.com/matzehuels/cardgrid/pkg/grid/responsive"
	"github.com/matzehuels/cardgrid/pkg/observability"
)

// Engine owns the live layout and sequences all collaborators. All mutation
// methods are synchronous and applied strictly in call order.
type Engine struct {
	mu    sync.Mutex
	store *grid.Store
	hist  *history.Manager
	resp  *responsive.Manager // nil when the config has no breakpoint table
	mon   *perf.Monitor

	subMu     sync.Mutex
	nextSub   int
	layoutSub map[int]func([]grid.Item)
	breakSub  map[int]func(responsive.Change)
}

// options collects construction settings.
type options struct {
	historyLength     int
	autosave          time.Duration
	debounce          time.Duration
	perfOpts          perf.Options
	disableResponsive bool
}

// Option customizes engine construction.
type Option func(*options)

// WithHistoryLength bounds the undo history. Values below one keep the
// default.
func WithHistoryLength(n int) Option {
	return func(o *options) { o.historyLength = n }
}

// WithAutoSave enables periodic history snapshots of dirty layouts.
func WithAutoSave(interval time.Duration) Option {
	return func(o *options) { o.autosave = interval }
}

// WithDebounce sets the resize coalescing delay. Negative disables
// debouncing, which is mainly useful in tests.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithPerfOptions overrides the performance monitor settings.
func WithPerfOptions(p perf.Options) Option {
	return func(o *options) { o.perfOpts = p }
}

// WithoutResponsive disables breakpoint handling even when the config
// carries a breakpoint table.
func WithoutResponsive() Option {
	return func(o *options) { o.disableResponsive = true }
}

// New creates an engine for the given configuration and optional initial
// layout. The initial layout is validated like a SetLayout call and becomes
// the first history entry, so a later Undo can always reach it.
func New(cfg grid.Config, initial []grid.Item, opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	store, err := grid.NewStore(cfg, initial)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:     store,
		hist:      history.New(o.historyLength),
		layoutSub: make(map[int]func([]grid.Item)),
		breakSub:  make(map[int]func(responsive.Change)),
	}

	if len(cfg.Breakpoints) > 0 && !o.disableResponsive {
		resp, err := responsive.New(cfg, responsive.Options{
			Debounce: o.debounce,
			LayoutFn: e.Layout,
			OnChange: e.applyBreakpointChange,
		})
		if err != nil {
			return nil, err
		}
		e.resp = resp
	}

	perfOpts := o.perfOpts
	if perfOpts.InitialDebounce == 0 && e.resp != nil {
		perfOpts.InitialDebounce = e.resp.Debounce()
	}
	if perfOpts.ApplyDebounce == nil && e.resp != nil {
		perfOpts.ApplyDebounce = e.resp.SetDebounce
	}
	e.mon = perf.New(perfOpts)

	// Baseline snapshot: the pre-mutation state undo walks back to.
	e.hist.Save(e.snapshotLocked())
	store.ClearDirty()

	if o.autosave > 0 {
		e.hist.StartAutoSave(o.autosave, e.dirty, e.autosaveSnapshot)
	}
	return e, nil
}

// Close stops all timers and samplers. The engine stays usable for
// synchronous calls afterwards.
func (e *Engine) Close() {
	e.hist.StopAutoSave()
	if e.resp != nil {
		e.resp.Stop()
	}
	e.mon.StopMonitoring()
}

// =============================================================================
// Read Model
// =============================================================================

// Layout returns a deep copy of the live layout.
func (e *Engine) Layout() []grid.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Layout()
}

// Item returns a copy of one item.
func (e *Engine) Item(id string) (grid.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Item(id)
}

// Config returns the active grid configuration.
func (e *Engine) Config() grid.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Config()
}

// Bounds returns the occupied extent of the layout.
func (e *Engine) Bounds() grid.Bounds {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Bounds()
}

// Stats returns layout statistics.
func (e *Engine) Stats() grid.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Stats()
}

// History returns the history manager for inspection (length, cursor).
func (e *Engine) History() *history.Manager { return e.hist }

// Monitor returns the performance monitor.
func (e *Engine) Monitor() *perf.Monitor { return e.mon }

// CurrentBreakpoint returns the active breakpoint name, or "" when the
// engine has no responsive manager.
func (e *Engine) CurrentBreakpoint() string {
	if e.resp == nil {
		return ""
	}
	return e.resp.Current()
}

// =============================================================================
// Mutations
// =============================================================================

// AddItem inserts a new item, generating an ID when absent, and returns the
// committed item.
func (e *Engine) AddItem(it grid.Item) (grid.Item, error) {
	e.mu.Lock()
	start := time.Now()
	added, err := e.store.AddItem(it)
	layout := e.finishLocked(err)
	e.mu.Unlock()

	observability.Engine().OnMutation(context.Background(), "add", added.ID, time.Since(start), err)
	if err != nil {
		return grid.Item{}, err
	}
	e.emitLayout(layout)
	return added, nil
}

// RemoveItem deletes an item, compacting afterwards when the config asks
// for it.
func (e *Engine) RemoveItem(id string) error {
	e.mu.Lock()
	start := time.Now()
	err := e.store.RemoveItem(id)
	layout := e.finishLocked(err)
	e.mu.Unlock()

	observability.Engine().OnMutation(context.Background(), "remove", id, time.Since(start), err)
	if err != nil {
		return err
	}
	e.emitLayout(layout)
	return nil
}

// UpdateItem applies a partial update to an item.
func (e *Engine) UpdateItem(id string, p grid.Patch) (grid.Item, error) {
	e.mu.Lock()
	start := time.Now()
	updated, err := e.store.UpdateItem(id, p)
	layout := e.finishLocked(err)
	e.mu.Unlock()

	observability.Engine().OnMutation(context.Background(), "update", id, time.Since(start), err)
	if err != nil {
		return grid.Item{}, err
	}
	e.emitLayout(layout)
	return updated, nil
}

// MoveItem repositions an item.
func (e *Engine) MoveItem(id string, x, y int) (grid.Item, error) {
	return e.UpdateItem(id, grid.Patch{X: grid.IntPtr(x), Y: grid.IntPtr(y)})
}

// ResizeItem changes an item's size.
func (e *Engine) ResizeItem(id string, w, h int) (grid.Item, error) {
	return e.UpdateItem(id, grid.Patch{W: grid.IntPtr(w), H: grid.IntPtr(h)})
}

// SetLayout replaces the whole layout after validating it as one unit.
func (e *Engine) SetLayout(items []grid.Item) error {
	e.mu.Lock()
	start := time.Now()
	err := e.store.SetLayout(items)
	layout := e.finishLocked(err)
	e.mu.Unlock()

	observability.Engine().OnMutation(context.Background(), "set-layout", "", time.Since(start), err)
	if err != nil {
		return err
	}
	e.emitLayout(layout)
	return nil
}

// Compact runs gap elimination on the live layout.
func (e *Engine) Compact() {
	e.mu.Lock()
	start := time.Now()
	e.mon.MeasureLayout(e.store.Compact)
	layout := e.finishLocked(nil)
	e.mu.Unlock()

	observability.Engine().OnMutation(context.Background(), "compact", "", time.Since(start), nil)
	e.emitLayout(layout)
}

// Undo restores the previous history snapshot - geometry, column count, and
// breakpoint together - and returns the restored layout.
func (e *Engine) Undo() ([]grid.Item, error) {
	e.mu.Lock()
	snap, err := e.hist.Undo()
	var layout []grid.Item
	if err == nil {
		if applyErr := e.applySnapshotLocked(snap); applyErr != nil {
			// The live state never changed; put the cursor back with it.
			_, _ = e.hist.Redo()
			err = applyErr
		} else {
			layout = e.store.Layout()
			e.mon.EstimateMemory(layout)
		}
	}
	e.mu.Unlock()

	observability.Engine().OnHistory(context.Background(), "undo", err)
	if err != nil {
		return nil, err
	}
	e.emitLayout(layout)
	return snap.Layout, nil
}

// Redo restores the next history snapshot and returns the restored layout.
func (e *Engine) Redo() ([]grid.Item, error) {
	e.mu.Lock()
	snap, err := e.hist.Redo()
	var layout []grid.Item
	if err == nil {
		if applyErr := e.applySnapshotLocked(snap); applyErr != nil {
			_, _ = e.hist.Undo()
			err = applyErr
		} else {
			layout = e.store.Layout()
			e.mon.EstimateMemory(layout)
		}
	}
	e.mu.Unlock()

	observability.Engine().OnHistory(context.Background(), "redo", err)
	if err != nil {
		return nil, err
	}
	e.emitLayout(layout)
	return snap.Layout, nil
}

// applySnapshotLocked installs a history snapshot: column count first, then
// the geometry, then the breakpoint label. A failure leaves config and layout
// exactly as they were. The restored state matches the history cursor, so no
// new entry is recorded.
func (e *Engine) applySnapshotLocked(snap history.Snapshot) error {
	prev := e.store.Config()
	if snap.Cols > 0 && snap.Cols != prev.ColNum {
		cfg := prev
		cfg.ColNum = snap.Cols
		if err := e.store.SetConfig(cfg); err != nil {
			return err
		}
	}
	if err := e.store.SetLayout(snap.Layout); err != nil {
		// prev was the active config moments ago; restoring it cannot fail.
		_ = e.store.SetConfig(prev)
		return err
	}
	if e.resp != nil && snap.Breakpoint != "" {
		e.resp.Restore(snap.Breakpoint)
	}
	e.store.ClearDirty()
	return nil
}

// finishLocked completes a successful mutation under the engine lock:
// snapshot capture (deduplicated by the history manager), memory
// re-estimate, and the layout clone handed to subscribers. Callers must hold
// e.mu. Returns nil when the mutation failed.
func (e *Engine) finishLocked(err error) []grid.Item {
	if err != nil {
		return nil
	}
	layout := e.store.Layout()
	if e.store.Dirty() {
		if e.hist.Save(e.snapshotWithLocked(layout)) {
			observability.Engine().OnSnapshot(context.Background(), e.hist.Len())
		}
		e.store.ClearDirty()
	}
	e.mon.EstimateMemory(layout)
	return layout
}

// =============================================================================
// Batch Operations
// =============================================================================

// OpKind identifies a batch operation.
type OpKind int

const (
	OpAdd OpKind = iota
	OpRemove
	OpUpdate
	OpMove
	OpResize
)

// Op is one entry of a BatchUpdate. Fields beyond Kind are read per kind:
// Item for OpAdd; ID for the rest; Patch for OpUpdate; X/Y for OpMove;
// W/H for OpResize.
type Op struct {
	Kind  OpKind
	Item  grid.Item
	ID    string
	Patch grid.Patch
	X, Y  int
	W, H  int
}

// BatchUpdate applies a sequence of operations as one transaction: history
// and FPS sampling are paused, the operations run in order, and a single
// snapshot is captured at the end. If any operation fails the whole batch is
// rolled back and the layout is exactly what it was before the call.
func (e *Engine) BatchUpdate(ops []Op) error {
	e.mu.Lock()
	start := time.Now()

	wasMonitoring := e.mon.Monitoring()
	if wasMonitoring {
		e.mon.StopMonitoring()
	}
	e.hist.Pause()

	before := e.store.Layout()
	var err error
	for i := range ops {
		if err = e.applyOpLocked(ops[i]); err != nil {
			err = fmt.Errorf("batch op %d: %w", i, err)
			break
		}
	}
	if err != nil {
		// The pre-batch layout was valid; restoring it cannot fail.
		_ = e.store.SetLayout(before)
		e.store.ClearDirty()
	}

	e.hist.Resume()
	layout := e.finishLocked(err)
	if wasMonitoring {
		e.mon.StartMonitoring()
	}
	e.mu.Unlock()

	observability.Engine().OnMutation(context.Background(), "batch", "", time.Since(start), err)
	if err != nil {
		return err
	}
	e.emitLayout(layout)
	return nil
}

func (e *Engine) applyOpLocked(op Op) error {
	switch op.Kind {
	case OpAdd:
		_, err := e.store.AddItem(op.Item)
		return err
	case OpRemove:
		return e.store.RemoveItem(op.ID)
	case OpUpdate:
		_, err := e.store.UpdateItem(op.ID, op.Patch)
		return err
	case OpMove:
		_, err := e.store.MoveItem(op.ID, op.X, op.Y)
		return err
	case OpResize:
		_, err := e.store.ResizeItem(op.ID, op.W, op.H)
		return err
	default:
		return fmt.Errorf("%w: unknown op kind %d", grid.ErrBadGeometry, op.Kind)
	}
}

// =============================================================================
// Responsive Transitions
// =============================================================================

// SwitchBreakpoint transitions to the named breakpoint. The resulting layout
// (cached or derived) is applied through the store, and exactly one history
// snapshot covers the whole transition.
func (e *Engine) SwitchBreakpoint(name string) (responsive.Change, error) {
	if e.resp == nil {
		return responsive.Change{}, responsive.ErrNoBreakpoints
	}

	e.mu.Lock()
	change, err := e.resp.Switch(name, e.store.Layout())
	if err != nil {
		e.mu.Unlock()
		return responsive.Change{}, err
	}
	layout, applyErr := e.applyChangeLocked(change)
	e.mu.Unlock()

	if applyErr != nil {
		return responsive.Change{}, applyErr
	}
	e.emitBreakpoint(change)
	e.emitLayout(layout)
	observability.Engine().OnBreakpointChange(context.Background(), change.From, change.To, change.Cols, change.Derived)
	return change, nil
}

// ObserveWidth feeds a container width observation into the responsive
// manager. Evaluations are debounced; the resulting transition, if any,
// arrives through the breakpoint-change subscription.
func (e *Engine) ObserveWidth(widthPx int) {
	if e.resp != nil {
		e.resp.ObserveWidth(widthPx)
	}
}

// applyBreakpointChange is the responsive manager's transition handler for
// width-driven (debounced) transitions.
func (e *Engine) applyBreakpointChange(change responsive.Change) {
	e.mu.Lock()
	layout, err := e.applyChangeLocked(change)
	e.mu.Unlock()
	if err != nil {
		return
	}
	e.emitBreakpoint(change)
	e.emitLayout(layout)
	observability.Engine().OnBreakpointChange(context.Background(), change.From, change.To, change.Cols, change.Derived)
}

// applyChangeLocked installs a breakpoint transition: column count first,
// then the transitioned layout, then one snapshot for the whole move.
func (e *Engine) applyChangeLocked(change responsive.Change) ([]grid.Item, error) {
	cfg := e.store.Config()
	cfg.ColNum = change.Cols
	if err := e.store.SetConfig(cfg); err != nil {
		return nil, err
	}
	if err := e.store.SetLayout(change.Layout); err != nil {
		return nil, err
	}
	return e.finishLocked(nil), nil
}

// =============================================================================
// Subscriptions
// =============================================================================

// OnLayoutChange registers a callback invoked with a clone of the layout
// after every successful mutation. The returned function unsubscribes;
// calling it twice is safe.
func (e *Engine) OnLayoutChange(cb func([]grid.Item)) func() {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.layoutSub[id] = cb
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.layoutSub, id)
		e.subMu.Unlock()
	}
}

// OnBreakpointChange registers a callback for completed breakpoint
// transitions. The returned function unsubscribes.
func (e *Engine) OnBreakpointChange(cb func(responsive.Change)) func() {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.breakSub[id] = cb
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.breakSub, id)
		e.subMu.Unlock()
	}
}

// emitLayout notifies layout subscribers. Callbacks run outside the engine
// lock; each subscriber receives its own clone.
func (e *Engine) emitLayout(layout []grid.Item) {
	if layout == nil {
		return
	}
	e.subMu.Lock()
	subs := make([]func([]grid.Item), 0, len(e.layoutSub))
	for _, cb := range e.layoutSub {
		subs = append(subs, cb)
	}
	e.subMu.Unlock()

	for _, cb := range subs {
		cb(grid.CloneLayout(layout))
	}
}

func (e *Engine) emitBreakpoint(change responsive.Change) {
	e.subMu.Lock()
	subs := make([]func(responsive.Change), 0, len(e.breakSub))
	for _, cb := range e.breakSub {
		subs = append(subs, cb)
	}
	e.subMu.Unlock()

	for _, cb := range subs {
		cb(change)
	}
}

// =============================================================================
// Snapshot and Autosave plumbing
// =============================================================================

// snapshotWithLocked pairs an already-cloned layout with the active grid
// shape. Callers must hold e.mu.
func (e *Engine) snapshotWithLocked(layout []grid.Item) history.Snapshot {
	snap := history.Snapshot{Layout: layout, Cols: e.store.Config().ColNum}
	if e.resp != nil {
		snap.Breakpoint = e.resp.Current()
	}
	return snap
}

func (e *Engine) snapshotLocked() history.Snapshot {
	return e.snapshotWithLocked(e.store.Layout())
}

func (e *Engine) dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Dirty()
}

func (e *Engine) autosaveSnapshot() history.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := e.snapshotLocked()
	e.store.ClearDirty()
	return snap
}
