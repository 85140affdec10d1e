// Package history provides bounded undo/redo snapshots for grid layouts.
//
// The manager keeps an ordered array of layout snapshots plus a cursor
// marking the current state. Saving is deduplicated by a structural hash of
// the geometry, so repeated saves of an unchanged layout never grow the
// history. Any save while the cursor sits behind the newest entry discards
// the redo branch first.
//
// Snapshots are deep clones: the manager never aliases the live layout.
package history

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/matzehuels/cardgrid/pkg/grid"
)

// ErrBoundary is returned by Undo and Redo at the edges of the history.
// The call has no side effects.
var ErrBoundary = errors.New("history boundary")

// DefaultMaxLength is the default snapshot capacity.
const DefaultMaxLength = 50

// Snapshot is one recorded state: the layout plus the grid shape it was
// captured under. Undo across a breakpoint switch replays the column count
// and breakpoint alongside the geometry, so snapshots recorded at a wider
// grid stay restorable after the grid narrows.
type Snapshot struct {
	Layout     []grid.Item
	Cols       int
	Breakpoint string
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{Layout: grid.CloneLayout(s.Layout), Cols: s.Cols, Breakpoint: s.Breakpoint}
}

// entry pairs a snapshot with its structural hash.
type entry struct {
	snap Snapshot
	hash string
}

// Manager records layout snapshots for undo/redo. The zero value is not
// usable - use New.
//
// Manager is safe for concurrent use; the auto-save timer runs on its own
// goroutine.
type Manager struct {
	mu      sync.Mutex
	entries []entry
	cursor  int // index of the current entry; -1 while empty
	max     int
	paused  bool

	autosaveStop chan struct{}
	autosaveWG   sync.WaitGroup
}

// New creates a manager holding at most maxLength snapshots. A maxLength
// below one falls back to DefaultMaxLength.
func New(maxLength int) *Manager {
	if maxLength < 1 {
		maxLength = DefaultMaxLength
	}
	return &Manager{cursor: -1, max: maxLength}
}

// Hash computes the structural hash of a snapshot: the column count followed
// by a stable serialization of the (id, x, y, w, h) tuples in order. Payload
// and constraint fields do not participate, so cosmetic changes never produce
// new history entries.
func Hash(snap Snapshot) string {
	h := sha256.New()
	fmt.Fprintf(h, "cols:%d;", snap.Cols)
	for _, it := range snap.Layout {
		fmt.Fprintf(h, "%s:%d:%d:%d:%d;", it.ID, it.X, it.Y, it.W, it.H)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Save records a snapshot. It is a no-op while paused, and a no-op when the
// snapshot is structurally identical to the entry at the cursor. Saving
// discards any redo entries beyond the cursor and evicts the oldest entry
// once the capacity is exceeded.
//
// Save reports whether a new entry was recorded.
func (m *Manager) Save(snap Snapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.paused {
		return false
	}
	hash := Hash(snap)
	if m.cursor >= 0 && m.entries[m.cursor].hash == hash {
		return false
	}

	// Drop the redo branch.
	m.entries = m.entries[:m.cursor+1]
	m.entries = append(m.entries, entry{snap: snap.clone(), hash: hash})
	m.cursor++

	if len(m.entries) > m.max {
		m.entries = m.entries[1:]
		m.cursor--
	}
	return true
}

// Undo moves the cursor back one entry and returns a clone of that snapshot.
// At the lower boundary it returns ErrBoundary and changes nothing.
func (m *Manager) Undo() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor <= 0 {
		return Snapshot{}, fmt.Errorf("%w: nothing to undo", ErrBoundary)
	}
	m.cursor--
	return m.entries[m.cursor].snap.clone(), nil
}

// Redo moves the cursor forward one entry and returns a clone of that
// snapshot. At the upper boundary it returns ErrBoundary and changes nothing.
func (m *Manager) Redo() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor < 0 || m.cursor >= len(m.entries)-1 {
		return Snapshot{}, fmt.Errorf("%w: nothing to redo", ErrBoundary)
	}
	m.cursor++
	return m.entries[m.cursor].snap.clone(), nil
}

// CanUndo reports whether an Undo call would succeed.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor > 0
}

// CanRedo reports whether a Redo call would succeed.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor >= 0 && m.cursor < len(m.entries)-1
}

// Len returns the number of recorded entries.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Cursor returns the current cursor position, or -1 while the history is
// empty.
func (m *Manager) Cursor() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// Pause suspends Save. The engine pauses history around batch operations so
// N mutations produce one snapshot instead of N.
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

// Resume re-enables Save.
func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
}

// Clear drops all entries and resets the cursor.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	m.cursor = -1
}

// StartAutoSave periodically saves the snapshot returned by snapshotFn
// whenever dirtyFn reports unsaved changes. Calling it again restarts the
// timer with the new interval.
func (m *Manager) StartAutoSave(interval time.Duration, dirtyFn func() bool, snapshotFn func() Snapshot) {
	m.StopAutoSave()
	if interval <= 0 {
		return
	}

	stop := make(chan struct{})
	m.mu.Lock()
	m.autosaveStop = stop
	m.mu.Unlock()

	m.autosaveWG.Add(1)
	go func() {
		defer m.autosaveWG.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if dirtyFn() {
					m.Save(snapshotFn())
				}
			}
		}
	}()
}

// StopAutoSave cancels the auto-save timer and waits for the timer goroutine
// to finish, so no save happens after it returns. Stopping twice is safe.
func (m *Manager) StopAutoSave() {
	m.mu.Lock()
	stop := m.autosaveStop
	m.autosaveStop = nil
	m.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	m.autosaveWG.Wait()
}
