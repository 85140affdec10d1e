// Package render exports grid layouts as Graphviz diagrams.
//
// Cards are emitted as pinned boxes (neato with fixed positions), so the
// rendered image is a faithful projection of the cell geometry: one grid
// column maps to one inch horizontally, one row to rowHeight/colWidth
// inches vertically. The output is meant for documentation and debugging;
// live hosts project the layout themselves.
package render

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cardgrid/pkg/grid"
)

// Options configures layout rendering.
type Options struct {
	// Detailed includes cell geometry in card labels.
	// When false, only the item ID (or type) is shown.
	Detailed bool

	// CellInches is the edge length of one grid cell in the output.
	// Zero means 0.6.
	CellInches float64
}

// ToDOT converts a layout to Graphviz DOT for neato rendering. Every card
// becomes a pinned, fixed-size box; static cards are drawn with a grey fill.
// Items are emitted in (y, x, id) order so the output is deterministic.
func ToDOT(items []grid.Item, cfg grid.Config, opts Options) string {
	cell := opts.CellInches
	if cell <= 0 {
		cell = 0.6
	}

	ordered := grid.CloneLayout(items)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Y != ordered[j].Y {
			return ordered[i].Y < ordered[j].Y
		}
		if ordered[i].X != ordered[j].X {
			return ordered[i].X < ordered[j].X
		}
		return ordered[i].ID < ordered[j].ID
	})

	rows := 0
	for _, it := range ordered {
		if bottom := it.Y + it.H; bottom > rows {
			rows = bottom
		}
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	fmt.Fprintf(&buf, "  frame [label=\"\", shape=box, style=dashed, fillcolor=none, pin=true, pos=\"%.2f,%.2f!\", width=%.2f, height=%.2f];\n",
		float64(cfg.ColNum)*cell/2, float64(rows)*cell/2,
		float64(cfg.ColNum)*cell, float64(rows)*cell)
	buf.WriteString("\n")

	for _, it := range ordered {
		label := fmtLabel(it, opts.Detailed)
		// Graphviz y grows upward; grid rows grow downward.
		cx := (float64(it.X) + float64(it.W)/2) * cell
		cy := (float64(rows) - float64(it.Y) - float64(it.H)/2) * cell
		attrs := []string{
			fmt.Sprintf("label=%q", label),
			"pin=true",
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", cx, cy),
			fmt.Sprintf("width=%.2f", float64(it.W)*cell),
			fmt.Sprintf("height=%.2f", float64(it.H)*cell),
			"fixedsize=true",
		}
		if it.Static {
			attrs = append(attrs, "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", it.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(it grid.Item, detailed bool) string {
	label := it.ID
	if it.Type != "" {
		label = it.Type + "\n" + it.ID
	}
	if detailed {
		label += fmt.Sprintf("\n(%d,%d) %dx%d", it.X, it.Y, it.W, it.H)
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
