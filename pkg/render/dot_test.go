package render

import (
	"strings"
	"testing"

	"github.com/matzehuels/cardgrid/pkg/grid"
)

func sampleItems() []grid.Item {
	return []grid.Item{
		{ID: "cpu", X: 0, Y: 0, W: 4, H: 2, Type: "chart"},
		{ID: "toolbar", X: 4, Y: 0, W: 8, H: 1, Static: true},
		{ID: "events", X: 0, Y: 2, W: 6, H: 3},
	}
}

func TestToDOT_Structure(t *testing.T) {
	dot := ToDOT(sampleItems(), grid.DefaultConfig(), Options{})

	for _, want := range []string{
		"graph G {",
		"layout=neato;",
		`"cpu" [`,
		`"toolbar" [`,
		`"events" [`,
		"pin=true",
		`pos="`,
		"fixedsize=true",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q\n%s", want, dot)
		}
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("DOT output not terminated")
	}
}

func TestToDOT_StaticCardsAreGrey(t *testing.T) {
	dot := ToDOT(sampleItems(), grid.DefaultConfig(), Options{})

	for _, line := range strings.Split(dot, "\n") {
		switch {
		case strings.Contains(line, `"toolbar"`):
			if !strings.Contains(line, "fillcolor=lightgrey") {
				t.Errorf("static card not grey: %s", line)
			}
		case strings.Contains(line, `"cpu"`):
			if strings.Contains(line, "lightgrey") {
				t.Errorf("movable card drawn grey: %s", line)
			}
		}
	}
}

func TestToDOT_DeterministicOrder(t *testing.T) {
	items := sampleItems()
	dot := ToDOT(items, grid.DefaultConfig(), Options{})

	// (y, x, id) ordering regardless of input order.
	reversed := []grid.Item{items[2], items[0], items[1]}
	if ToDOT(reversed, grid.DefaultConfig(), Options{}) != dot {
		t.Error("output depends on input order")
	}

	cpu := strings.Index(dot, `"cpu"`)
	toolbar := strings.Index(dot, `"toolbar"`)
	events := strings.Index(dot, `"events"`)
	if !(cpu < toolbar && toolbar < events) {
		t.Errorf("emit order cpu=%d toolbar=%d events=%d, want row-major", cpu, toolbar, events)
	}
}

func TestToDOT_PinsToCellCenters(t *testing.T) {
	items := []grid.Item{{ID: "a", X: 0, Y: 0, W: 2, H: 2}}
	dot := ToDOT(items, grid.DefaultConfig(), Options{CellInches: 1})

	// Center of a 2x2 card at the origin of a 2-row grid: (1, 1).
	if !strings.Contains(dot, `pos="1.00,1.00!"`) {
		t.Errorf("card not pinned at its center:\n%s", dot)
	}
	if !strings.Contains(dot, "width=2.00") || !strings.Contains(dot, "height=2.00") {
		t.Errorf("card size not scaled by cell inches:\n%s", dot)
	}
}

func TestToDOT_DetailedLabels(t *testing.T) {
	items := []grid.Item{{ID: "cpu", X: 1, Y: 2, W: 4, H: 3, Type: "chart"}}

	plain := ToDOT(items, grid.DefaultConfig(), Options{})
	if strings.Contains(plain, "(1,2)") {
		t.Error("geometry shown without Detailed")
	}

	detailed := ToDOT(items, grid.DefaultConfig(), Options{Detailed: true})
	if !strings.Contains(detailed, `(1,2) 4x3`) {
		t.Errorf("Detailed output missing geometry:\n%s", detailed)
	}
}

func TestToDOT_Empty(t *testing.T) {
	dot := ToDOT(nil, grid.DefaultConfig(), Options{})
	if !strings.Contains(dot, "graph G {") {
		t.Errorf("empty layout did not produce a valid graph:\n%s", dot)
	}
}

func TestFmtLabel(t *testing.T) {
	tests := []struct {
		name     string
		item     grid.Item
		detailed bool
		want     string
	}{
		{"id only", grid.Item{ID: "a"}, false, "a"},
		{"typed", grid.Item{ID: "a", Type: "gauge"}, false, "gauge\na"},
		{"detailed", grid.Item{ID: "a", X: 1, Y: 2, W: 3, H: 4}, true, "a\n(1,2) 3x4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fmtLabel(tt.item, tt.detailed); got != tt.want {
				t.Errorf("fmtLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}
