// Package responsive transforms grid layouts between breakpoints.
//
// A breakpoint is a named configuration pairing a minimum container width
// with a column count. The manager tracks the active breakpoint from
// observed container widths (debounced, so rapid resizes collapse into one
// evaluation) and remaps layouts when the breakpoint changes.
//
// Layouts are cached per breakpoint: revisiting a breakpoint restores the
// exact layout that was live when it was left, preserving per-breakpoint
// user customization. Only the first visit derives a layout, by proportional
// column scaling followed by compaction.
package responsive

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/matzehuels/cardgrid/pkg/grid"
)

var (
	// ErrNoBreakpoints is returned by New when the config carries no
	// breakpoint table.
	ErrNoBreakpoints = errors.New("no breakpoints configured")

	// ErrUnknownBreakpoint is returned by Switch for a name absent from the
	// breakpoint table.
	ErrUnknownBreakpoint = errors.New("unknown breakpoint")
)

// DefaultDebounce is the default delay between a width observation and the
// breakpoint evaluation it triggers.
const DefaultDebounce = 150 * time.Millisecond

// Change describes a completed breakpoint transition. The layout is a clone
// owned by the receiver.
type Change struct {
	From    string
	To      string
	Cols    int
	WidthPx int
	Layout  []grid.Item
	Derived bool // false when the layout came verbatim from the per-breakpoint cache
}

// Manager is the breakpoint state machine. It never mutates the live layout:
// transitions operate on clones and hand the result to the transition
// handler, which applies it through the store.
//
// Manager is safe for concurrent use; the debounce timer fires on its own
// goroutine.
type Manager struct {
	mu       sync.Mutex
	ordered  []grid.Breakpoint // descending min width
	cols     map[string]int
	current  string
	widthPx  int
	layouts  map[string][]grid.Item
	debounce time.Duration
	timer    *time.Timer
	timerWG  sync.WaitGroup // tracks the scheduled debounce callback
	stopped  bool

	layoutFn func() []grid.Item
	onChange func(Change)
}

// Options configures a Manager.
type Options struct {
	// Debounce is the resize coalescing delay. Zero means DefaultDebounce;
	// negative disables debouncing (evaluations run synchronously).
	Debounce time.Duration

	// LayoutFn supplies the live layout at transition time. Required for
	// width-driven transitions.
	LayoutFn func() []grid.Item

	// OnChange receives completed transitions.
	OnChange func(Change)
}

// New creates a manager from the config's breakpoint tables.
func New(cfg grid.Config, opts Options) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Breakpoints) == 0 {
		return nil, ErrNoBreakpoints
	}

	debounce := opts.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	} else if debounce < 0 {
		debounce = 0
	}

	m := &Manager{
		ordered:  cfg.SortedBreakpoints(),
		cols:     make(map[string]int, len(cfg.Cols)),
		layouts:  make(map[string][]grid.Item),
		debounce: debounce,
		layoutFn: opts.LayoutFn,
		onChange: opts.OnChange,
	}
	for name, n := range cfg.Cols {
		m.cols[name] = n
	}

	// Start at the breakpoint matching the configured column count, so the
	// first transition has a home for the initial layout.
	for _, bp := range m.ordered {
		if m.cols[bp.Name] == cfg.ColNum {
			m.current = bp.Name
			break
		}
	}
	if m.current == "" {
		m.current = m.smallest()
	}
	return m, nil
}

// Current returns the active breakpoint name.
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Width returns the last observed container width in pixels.
func (m *Manager) Width() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.widthPx
}

// Cols returns the column count for a breakpoint name, or zero if unknown.
func (m *Manager) Cols(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cols[name]
}

// BreakpointFor returns the name of the first breakpoint (widest first)
// whose min width is at most the given container width. Widths below every
// threshold fall back to the smallest breakpoint.
func (m *Manager) BreakpointFor(widthPx int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.breakpointForLocked(widthPx)
}

func (m *Manager) breakpointForLocked(widthPx int) string {
	for _, bp := range m.ordered {
		if bp.MinWidth <= widthPx {
			return bp.Name
		}
	}
	return m.smallest()
}

func (m *Manager) smallest() string {
	return m.ordered[len(m.ordered)-1].Name
}

// CachedLayout returns the cached layout for a breakpoint, if one exists.
func (m *Manager) CachedLayout(name string) ([]grid.Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	layout, ok := m.layouts[name]
	if !ok {
		return nil, false
	}
	return grid.CloneLayout(layout), true
}

// SetDebounce changes the resize coalescing delay. The performance monitor
// raises this under load.
func (m *Manager) SetDebounce(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d >= 0 {
		m.debounce = d
	}
}

// Debounce returns the current coalescing delay.
func (m *Manager) Debounce() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.debounce
}

// ObserveWidth reports a new container width. The evaluation is debounced:
// rapid successive calls collapse into at most one breakpoint evaluation
// carrying the latest width. With debouncing disabled the evaluation runs
// before ObserveWidth returns.
func (m *Manager) ObserveWidth(widthPx int) {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.widthPx = widthPx
	if m.debounce <= 0 {
		m.mu.Unlock()
		m.evaluate(widthPx)
		return
	}
	m.cancelTimerLocked()
	m.timerWG.Add(1)
	m.timer = time.AfterFunc(m.debounce, func() {
		defer m.timerWG.Done()
		m.mu.Lock()
		px := m.widthPx
		stopped := m.stopped
		m.mu.Unlock()
		if !stopped {
			m.evaluate(px)
		}
	})
	m.mu.Unlock()
}

// cancelTimerLocked stops the scheduled callback, settling its WaitGroup slot
// when the stop arrived before the callback started. Callers must hold m.mu.
func (m *Manager) cancelTimerLocked() {
	if m.timer == nil {
		return
	}
	if m.timer.Stop() {
		m.timerWG.Done()
	}
	m.timer = nil
}

// Stop cancels any pending debounced evaluation and waits for a callback
// already in flight, so no transition fires after Stop returns. Stopping
// twice is safe.
func (m *Manager) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.cancelTimerLocked()
	m.mu.Unlock()
	m.timerWG.Wait()
}

// Restore rewinds the active breakpoint without a transition: no cache
// writes, no derivation, no change event. The engine uses it when undo or
// redo replays a snapshot recorded under a different breakpoint.
func (m *Manager) Restore(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cols[name]; ok {
		m.current = name
	}
}

// evaluate resolves the breakpoint for a width and transitions if it
// changed.
func (m *Manager) evaluate(widthPx int) {
	m.mu.Lock()
	name := m.breakpointForLocked(widthPx)
	current := m.current
	layoutFn := m.layoutFn
	m.mu.Unlock()

	if name == current || layoutFn == nil {
		return
	}
	change, err := m.Switch(name, layoutFn())
	if err != nil {
		return // name came from our own table; only a concurrent Stop races here
	}
	if m.onChange != nil {
		m.onChange(change)
	}
}

// Switch transitions to the named breakpoint given the live layout. The
// outgoing layout is persisted under the outgoing breakpoint, and the
// incoming layout is either the cached one (verbatim) or freshly derived by
// proportional scaling plus compaction. The caller applies change.Layout to
// the store.
func (m *Manager) Switch(name string, live []grid.Item) (Change, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	newCols, ok := m.cols[name]
	if !ok {
		return Change{}, fmt.Errorf("%w: %s", ErrUnknownBreakpoint, name)
	}

	from := m.current
	oldCols := m.cols[from]
	m.layouts[from] = grid.CloneLayout(live)

	change := Change{From: from, To: name, Cols: newCols, WidthPx: m.widthPx}
	if cached, hit := m.layouts[name]; hit {
		change.Layout = grid.CloneLayout(cached)
	} else {
		change.Derived = true
		if oldCols == newCols {
			// Same column count: the transition is a label change only.
			change.Layout = grid.CloneLayout(live)
		} else {
			change.Layout = grid.Compact(Transform(live, oldCols, newCols), newCols)
		}
		m.layouts[name] = grid.CloneLayout(change.Layout)
	}

	m.current = name
	return change, nil
}

// Transform remaps a layout from oldCols to newCols columns by proportional
// scaling. Positions and widths are rounded, widths keep a minimum of one
// column, and items are clamped back into bounds. Rounding can introduce
// overlap; callers run [grid.Compact] on the result to resolve it.
func Transform(items []grid.Item, oldCols, newCols int) []grid.Item {
	out := grid.CloneLayout(items)
	if oldCols < 1 || newCols < 1 || oldCols == newCols {
		return out
	}
	ratio := float64(newCols) / float64(oldCols)
	for i := range out {
		x := int(math.Round(float64(out[i].X) * ratio))
		w := int(math.Round(float64(out[i].W) * ratio))
		if w < 1 {
			w = 1
		}
		if w > newCols {
			w = newCols
		}
		if x+w > newCols {
			x = newCols - w
		}
		if x < 0 {
			x = 0
		}
		out[i].X = x
		out[i].W = w
	}
	return out
}
