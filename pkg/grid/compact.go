package grid

import "sort"

// Compact runs deterministic gap elimination on a layout and returns the
// repositioned items. Only x and y change; widths, heights, IDs and payloads
// are preserved. The input slice is not modified.
//
// Items are processed in (y, x, id) order and packed row by row with a
// cursor: an item that still fits in the current row is placed at the cursor,
// otherwise the cursor wraps below the tallest item of the finished row.
// Running Compact on its own output is a no-op.
func Compact(items []Item, cols int) []Item {
	if cols < 1 || len(items) == 0 {
		return CloneLayout(items)
	}

	out := CloneLayout(items)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].ID < out[j].ID
	})

	cursorX, cursorY, rowMaxH := 0, 0, 0
	for i := range out {
		w := out[i].W
		if cursorX+w > cols && cursorX > 0 {
			cursorY += rowMaxH
			cursorX = 0
			rowMaxH = 0
		}
		// An item wider than the grid can never fit; it is placed at the
		// row start and occupies a row of its own.
		out[i].X = cursorX
		out[i].Y = cursorY
		cursorX += w
		if out[i].H > rowMaxH {
			rowMaxH = out[i].H
		}
	}
	return out
}
