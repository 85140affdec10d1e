// Package perf samples timing, memory, and frame-rate metrics for a grid
// host and proposes tuning changes when the numbers degrade.
//
// The monitor is passive: hosts wrap their render and layout work in the
// Measure helpers and report painted frames via Frame. Frame counts are
// aggregated over rolling one-second windows while monitoring is active.
// Score condenses the samples into a 0-100 health value, and AutoOptimize
// turns a poor score into bounded, idempotent tuning actions.
package perf

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/matzehuels/cardgrid/pkg/grid"
)

// Budgets and weights for the performance score.
const (
	renderBudgetMs = 16.0 // one 60fps frame
	layoutBudgetMs = 10.0
	targetFPS      = 60.0
	itemBudget     = 50

	renderPenaltyCap = 30.0
	layoutPenaltyCap = 25.0
	fpsPenaltyCap    = 30.0
	itemPenaltyCap   = 15.0
)

// perItemBytes is the heuristic in-memory footprint of one item beyond its
// serialized form.
const perItemBytes = 200

// DefaultOptimizeThreshold is the score below which AutoOptimize acts.
const DefaultOptimizeThreshold = 60

// Debounce tuning bounds.
const (
	DefaultDebounceStep = 50 * time.Millisecond
	DefaultDebounceCap  = 500 * time.Millisecond
)

// Metrics is a point-in-time snapshot of the sampled values.
type Metrics struct {
	RenderTimeMs     float64   `json:"renderTimeMs"`
	LayoutTimeMs     float64   `json:"layoutTimeMs"`
	ItemCount        int       `json:"itemCount"`
	MemoryEstimateKB float64   `json:"memoryEstimateKB"`
	FPS              float64   `json:"fps"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// Action identifies a tuning change applied by AutoOptimize.
type Action string

const (
	// ActionRaiseDebounce increased the resize debounce delay.
	ActionRaiseDebounce Action = "raise-debounce"

	// ActionEnableLazyLoad flipped the lazy-loading flag.
	ActionEnableLazyLoad Action = "enable-lazy-load"
)

// Monitor samples grid performance. The zero value is not usable - use New.
// Monitor is safe for concurrent use; the FPS window aggregator runs on its
// own goroutine while monitoring is active.
type Monitor struct {
	mu      sync.Mutex
	metrics Metrics

	monitoring bool
	frames     int
	stop       chan struct{}
	wg         sync.WaitGroup

	threshold     int
	debounce      time.Duration
	debounceStep  time.Duration
	debounceCap   time.Duration
	lazyLoading   bool
	applyDebounce func(time.Duration)
}

// Options configures a Monitor.
type Options struct {
	// OptimizeThreshold is the score below which AutoOptimize acts.
	// Zero means DefaultOptimizeThreshold.
	OptimizeThreshold int

	// InitialDebounce is the starting resize debounce delay known to the
	// monitor, usually the responsive manager's current delay.
	InitialDebounce time.Duration

	// DebounceStep and DebounceCap bound the debounce tuning. Zero values
	// use the package defaults.
	DebounceStep time.Duration
	DebounceCap  time.Duration

	// ApplyDebounce is called with the new delay whenever AutoOptimize
	// raises it, typically wired to the responsive manager.
	ApplyDebounce func(time.Duration)
}

// New creates a monitor.
func New(opts Options) *Monitor {
	m := &Monitor{
		threshold:     opts.OptimizeThreshold,
		debounce:      opts.InitialDebounce,
		debounceStep:  opts.DebounceStep,
		debounceCap:   opts.DebounceCap,
		applyDebounce: opts.ApplyDebounce,
	}
	if m.threshold <= 0 {
		m.threshold = DefaultOptimizeThreshold
	}
	if m.debounceStep <= 0 {
		m.debounceStep = DefaultDebounceStep
	}
	if m.debounceCap <= 0 {
		m.debounceCap = DefaultDebounceCap
	}
	return m
}

// MeasureRender wall-clock-wraps a render callback and records the duration.
func (m *Monitor) MeasureRender(fn func()) time.Duration {
	start := time.Now()
	fn()
	elapsed := time.Since(start)

	m.mu.Lock()
	m.metrics.RenderTimeMs = float64(elapsed.Microseconds()) / 1000
	m.metrics.LastUpdated = time.Now()
	m.mu.Unlock()
	return elapsed
}

// MeasureLayout wall-clock-wraps a layout computation and records the
// duration.
func (m *Monitor) MeasureLayout(fn func()) time.Duration {
	start := time.Now()
	fn()
	elapsed := time.Since(start)

	m.mu.Lock()
	m.metrics.LayoutTimeMs = float64(elapsed.Microseconds()) / 1000
	m.metrics.LastUpdated = time.Now()
	m.mu.Unlock()
	return elapsed
}

// EstimateMemory records a heuristic memory estimate for the layout:
// a fixed per-item overhead plus twice the serialized length, in KB.
func (m *Monitor) EstimateMemory(layout []grid.Item) float64 {
	serialized, _ := json.Marshal(layout)
	bytes := len(layout)*perItemBytes + len(serialized)*2
	kb := float64(bytes) / 1024

	m.mu.Lock()
	m.metrics.ItemCount = len(layout)
	m.metrics.MemoryEstimateKB = kb
	m.metrics.LastUpdated = time.Now()
	m.mu.Unlock()
	return kb
}

// Frame records one painted frame. Frames reported while monitoring is
// inactive are dropped.
func (m *Monitor) Frame() {
	m.mu.Lock()
	if m.monitoring {
		m.frames++
	}
	m.mu.Unlock()
}

// StartMonitoring begins FPS aggregation over rolling one-second windows.
// Starting an active monitor is a no-op.
func (m *Monitor) StartMonitoring() {
	m.mu.Lock()
	if m.monitoring {
		m.mu.Unlock()
		return
	}
	m.monitoring = true
	m.frames = 0
	stop := make(chan struct{})
	m.stop = stop
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.mu.Lock()
				m.metrics.FPS = float64(m.frames)
				m.metrics.LastUpdated = time.Now()
				m.frames = 0
				m.mu.Unlock()
			}
		}
	}()
}

// StopMonitoring cancels FPS aggregation and waits for the window goroutine
// to exit, so no metric writes happen after it returns. Stopping twice is
// safe.
func (m *Monitor) StopMonitoring() {
	m.mu.Lock()
	if !m.monitoring {
		m.mu.Unlock()
		return
	}
	m.monitoring = false
	stop := m.stop
	m.stop = nil
	m.mu.Unlock()

	close(stop)
	m.wg.Wait()
}

// Monitoring reports whether FPS aggregation is active.
func (m *Monitor) Monitoring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.monitoring
}

// Metrics returns a snapshot of the current metrics.
func (m *Monitor) Metrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}

// Score condenses the samples into a 0-100 health value. Each input incurs
// an individually capped penalty: render time over 16ms, layout time over
// 10ms, FPS under 60 (only once FPS has been measured), and item count over
// 50.
func (m *Monitor) Score() int {
	m.mu.Lock()
	mt := m.metrics
	m.mu.Unlock()

	penalty := 0.0
	if mt.RenderTimeMs > renderBudgetMs {
		penalty += capped((mt.RenderTimeMs-renderBudgetMs)*2, renderPenaltyCap)
	}
	if mt.LayoutTimeMs > layoutBudgetMs {
		penalty += capped((mt.LayoutTimeMs-layoutBudgetMs)*2.5, layoutPenaltyCap)
	}
	if mt.FPS > 0 && mt.FPS < targetFPS {
		penalty += capped(targetFPS-mt.FPS, fpsPenaltyCap)
	}
	if mt.ItemCount > itemBudget {
		penalty += capped(float64(mt.ItemCount-itemBudget)/2, itemPenaltyCap)
	}

	score := 100 - int(penalty)
	if score < 0 {
		score = 0
	}
	return score
}

func capped(v, cap float64) float64 {
	if v > cap {
		return cap
	}
	return v
}

// AutoOptimize applies tuning actions when the score falls below the
// threshold: it raises the resize debounce delay by one step (up to the cap)
// and enables lazy loading once. Both actions are idempotent - at the cap,
// or with the flag already set, repeated calls return no actions.
func (m *Monitor) AutoOptimize() []Action {
	if m.Score() >= m.threshold {
		return nil
	}

	m.mu.Lock()
	var actions []Action
	var apply func(time.Duration)
	var newDelay time.Duration
	if m.debounce < m.debounceCap {
		m.debounce += m.debounceStep
		if m.debounce > m.debounceCap {
			m.debounce = m.debounceCap
		}
		actions = append(actions, ActionRaiseDebounce)
		apply = m.applyDebounce
		newDelay = m.debounce
	}
	if !m.lazyLoading {
		m.lazyLoading = true
		actions = append(actions, ActionEnableLazyLoad)
	}
	m.mu.Unlock()

	if apply != nil {
		apply(newDelay)
	}
	return actions
}

// DebounceDelay returns the debounce delay the monitor last applied.
func (m *Monitor) DebounceDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.debounce
}

// LazyLoading reports whether lazy loading has been enabled by
// AutoOptimize.
func (m *Monitor) LazyLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lazyLoading
}
