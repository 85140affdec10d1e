package grid

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default config", func(c *Config) {}, false},
		{"zero columns", func(c *Config) { c.ColNum = 0 }, true},
		{"negative row height", func(c *Config) { c.RowHeight = -1 }, true},
		{"no breakpoints", func(c *Config) { c.Breakpoints = nil; c.Cols = nil }, false},
		{"breakpoint without cols", func(c *Config) { delete(c.Cols, "md") }, true},
		{"zero cols for breakpoint", func(c *Config) { c.Cols["md"] = 0 }, true},
		{"duplicate thresholds", func(c *Config) { c.Breakpoints["md"] = 1200 }, true},
		{"cols grow as width shrinks", func(c *Config) { c.Cols["xs"] = 11 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}

func TestSortedBreakpoints(t *testing.T) {
	cfg := DefaultConfig()
	ordered := cfg.SortedBreakpoints()

	want := []string{"lg", "md", "sm", "xs", "xxs"}
	if len(ordered) != len(want) {
		t.Fatalf("SortedBreakpoints() returned %d entries, want %d", len(ordered), len(want))
	}
	for i, name := range want {
		if ordered[i].Name != name {
			t.Errorf("ordered[%d] = %q, want %q", i, ordered[i].Name, name)
		}
	}
}

func TestItemOverlaps(t *testing.T) {
	base := Item{X: 2, Y: 2, W: 4, H: 2}
	tests := []struct {
		name  string
		other Item
		want  bool
	}{
		{"identical", Item{X: 2, Y: 2, W: 4, H: 2}, true},
		{"partial overlap", Item{X: 4, Y: 3, W: 4, H: 2}, true},
		{"touching right edge", Item{X: 6, Y: 2, W: 2, H: 2}, false},
		{"touching bottom edge", Item{X: 2, Y: 4, W: 4, H: 2}, false},
		{"disjoint", Item{X: 8, Y: 8, W: 2, H: 2}, false},
		{"contained", Item{X: 3, Y: 2, W: 1, H: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps(%+v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

func TestItemClone_PayloadIndependence(t *testing.T) {
	it := Item{ID: "a", W: 1, H: 1, Payload: []byte(`{"v":1}`)}
	clone := it.Clone()
	clone.Payload[2] = 'x'

	if string(it.Payload) != `{"v":1}` {
		t.Error("Clone() shares payload bytes with the original")
	}
}

func TestPatchApply(t *testing.T) {
	it := Item{ID: "a", X: 1, Y: 2, W: 3, H: 4, Type: "chart"}

	out := Patch{X: IntPtr(5), Type: StringPtr("gauge"), Static: BoolPtr(true)}.apply(it)

	if out.X != 5 || out.Y != 2 || out.W != 3 || out.H != 4 {
		t.Errorf("apply() geometry = (%d,%d) %dx%d, want (5,2) 3x4", out.X, out.Y, out.W, out.H)
	}
	if out.Type != "gauge" || !out.Static {
		t.Errorf("apply() type/static = %q/%v, want gauge/true", out.Type, out.Static)
	}
}
