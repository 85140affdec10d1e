// Package observability provides hooks for metrics, tracing, and logging.
//
// The package lets hosts instrument the grid engine and the layout stores
// without the core taking a dependency on any observability backend.
// Consumers register hooks at startup; the engine and stores call them as
// events happen.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Hook interfaces per event category
//   - No-op default implementations
//   - A registry populated by main at startup
//
// This keeps the core library free of observability frameworks while
// allowing any backend (OpenTelemetry, Prometheus, plain logging) behind the
// interfaces.
//
// # Usage
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the grid engine.
type EngineHooks interface {
	// OnMutation records a completed mutation call. op is the operation name
	// (add, remove, update, move, resize, set-layout, compact, batch), id the
	// affected item where applicable. err is nil on success.
	OnMutation(ctx context.Context, op, id string, duration time.Duration, err error)

	// OnSnapshot records a history snapshot capture.
	OnSnapshot(ctx context.Context, entries int)

	// OnHistory records an undo or redo. err is non-nil at a boundary.
	OnHistory(ctx context.Context, op string, err error)

	// OnBreakpointChange records a completed breakpoint transition.
	// derived is false when the layout came from the per-breakpoint cache.
	OnBreakpointChange(ctx context.Context, from, to string, cols int, derived bool)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from layout persistence backends.
type StoreHooks interface {
	// OnHit records a successful load of a stored layout.
	OnHit(ctx context.Context, backend, name string)

	// OnMiss records a lookup of a layout that does not exist.
	OnMiss(ctx context.Context, backend, name string)

	// OnSet records a layout write.
	OnSet(ctx context.Context, backend, name string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnMutation(context.Context, string, string, time.Duration, error) {}
func (NoopEngineHooks) OnSnapshot(context.Context, int)                                  {}
func (NoopEngineHooks) OnHistory(context.Context, string, error)                         {}
func (NoopEngineHooks) OnBreakpointChange(context.Context, string, string, int, bool)    {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnHit(context.Context, string, string)      {}
func (NoopStoreHooks) OnMiss(context.Context, string, string)     {}
func (NoopStoreHooks) OnSet(context.Context, string, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks EngineHooks = NoopEngineHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	hooksMu     sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before engine use.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before store use.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	storeHooks = NoopStoreHooks{}
}
