package grid

import (
	"fmt"
	"sort"
)

// Default grid dimensions.
const (
	// DefaultColNum is the default number of grid columns.
	DefaultColNum = 12

	// DefaultRowHeight is the default row height in pixels, used by hosts
	// when projecting cells to pixels.
	DefaultRowHeight = 30.0

	// DefaultMargin is the default horizontal and vertical margin between
	// cards, in pixels.
	DefaultMargin = 10
)

// Config holds the grid configuration. It is immutable during a mutation and
// may be replaced wholesale between mutations via [Store.SetConfig].
//
// Breakpoints maps a breakpoint name to its minimum container width in
// pixels; Cols maps the same names to column counts. The two tables must
// cover the same names.
type Config struct {
	ColNum           int            `json:"colNum" toml:"col_num"`
	RowHeight        float64        `json:"rowHeight" toml:"row_height"`
	Margin           [2]int         `json:"margin" toml:"margin"`
	CompactOnRemove  bool           `json:"compactOnRemove" toml:"compact_on_remove"`
	PreventCollision bool           `json:"preventCollision" toml:"prevent_collision"`
	Breakpoints      map[string]int `json:"breakpoints" toml:"breakpoints"`
	Cols             map[string]int `json:"cols" toml:"cols"`
}

// DefaultConfig returns the standard 12-column configuration with the usual
// five responsive breakpoints.
func DefaultConfig() Config {
	return Config{
		ColNum:           DefaultColNum,
		RowHeight:        DefaultRowHeight,
		Margin:           [2]int{DefaultMargin, DefaultMargin},
		CompactOnRemove:  true,
		PreventCollision: true,
		Breakpoints: map[string]int{
			"lg":  1200,
			"md":  996,
			"sm":  768,
			"xs":  480,
			"xxs": 0,
		},
		Cols: map[string]int{
			"lg":  12,
			"md":  10,
			"sm":  6,
			"xs":  4,
			"xxs": 2,
		},
	}
}

// Validate checks the configuration for structural problems. All returned
// errors wrap [ErrInvalidConfig].
func (c Config) Validate() error {
	if c.ColNum < 1 {
		return fmt.Errorf("%w: colNum must be at least 1, got %d", ErrInvalidConfig, c.ColNum)
	}
	if c.RowHeight < 0 {
		return fmt.Errorf("%w: rowHeight must not be negative, got %v", ErrInvalidConfig, c.RowHeight)
	}
	if len(c.Breakpoints) == 0 {
		return nil // breakpoints are optional; the grid then never transitions
	}

	seen := make(map[int]string, len(c.Breakpoints))
	for name, minWidth := range c.Breakpoints {
		if minWidth < 0 {
			return fmt.Errorf("%w: breakpoint %q has negative min width %d", ErrInvalidConfig, name, minWidth)
		}
		if prev, dup := seen[minWidth]; dup {
			return fmt.Errorf("%w: breakpoints %q and %q share min width %d", ErrInvalidConfig, prev, name, minWidth)
		}
		seen[minWidth] = name
		cols, ok := c.Cols[name]
		if !ok {
			return fmt.Errorf("%w: breakpoint %q has no column count", ErrInvalidConfig, name)
		}
		if cols < 1 {
			return fmt.Errorf("%w: breakpoint %q has column count %d", ErrInvalidConfig, name, cols)
		}
	}

	// Column counts must not grow as breakpoints shrink. A wider container
	// offering fewer columns than a narrower one indicates a mistyped table.
	ordered := c.SortedBreakpoints()
	for i := 1; i < len(ordered); i++ {
		wider, narrower := ordered[i-1], ordered[i]
		if c.Cols[wider.Name] < c.Cols[narrower.Name] {
			return fmt.Errorf("%w: breakpoint %q (%dpx) has fewer columns than %q (%dpx)",
				ErrInvalidConfig, wider.Name, wider.MinWidth, narrower.Name, narrower.MinWidth)
		}
	}
	return nil
}

// Breakpoint is a named responsive configuration: the minimum container width
// at which it activates.
type Breakpoint struct {
	Name     string
	MinWidth int
}

// SortedBreakpoints returns the breakpoint table ordered by descending
// minimum width. The first entry whose threshold is at most the observed
// container width is the active breakpoint.
func (c Config) SortedBreakpoints() []Breakpoint {
	out := make([]Breakpoint, 0, len(c.Breakpoints))
	for name, minWidth := range c.Breakpoints {
		out = append(out, Breakpoint{Name: name, MinWidth: minWidth})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MinWidth != out[j].MinWidth {
			return out[i].MinWidth > out[j].MinWidth
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// clone returns a deep copy of the config so stored configs never alias
// caller-owned maps.
func (c Config) clone() Config {
	out := c
	if c.Breakpoints != nil {
		out.Breakpoints = make(map[string]int, len(c.Breakpoints))
		for k, v := range c.Breakpoints {
			out.Breakpoints[k] = v
		}
	}
	if c.Cols != nil {
		out.Cols = make(map[string]int, len(c.Cols))
		for k, v := range c.Cols {
			out.Cols[k] = v
		}
	}
	return out
}
