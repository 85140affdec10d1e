package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/grid/engine"
	"github.com/matzehuels/cardgrid/pkg/grid/responsive"
)

// cellWidth is the number of terminal columns per grid cell.
const cellWidth = 6

// termPxScale approximates pixels per terminal column so that resizing the
// terminal walks through the standard breakpoint thresholds.
const termPxScale = 8

// cardPalette cycles through background colors for cards.
var cardPalette = []lipgloss.Color{
	lipgloss.Color("24"), lipgloss.Color("29"), lipgloss.Color("55"),
	lipgloss.Color("94"), lipgloss.Color("131"), lipgloss.Color("60"),
}

var (
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	styleStatus   = lipgloss.NewStyle().Foreground(colorYellow)
	styleHelp     = lipgloss.NewStyle().Foreground(colorDim)
	styleEmpty    = lipgloss.NewStyle().Foreground(colorDim)
)

// sampleTypes cycles through card types for newly added cards.
var sampleTypes = []string{"chart", "gauge", "table", "map", "text"}

// =============================================================================
// DemoModel - Interactive grid playground
// =============================================================================

// breakpointMsg delivers a completed breakpoint transition into the
// bubbletea loop.
type breakpointMsg responsive.Change

// DemoModel is the bubbletea model for the interactive grid playground. All
// edits go through the engine, so undo, compaction, and breakpoint behavior
// in the demo match the real API exactly.
type DemoModel struct {
	eng    *engine.Engine
	layout []grid.Item
	cursor int // index into sorted layout; -1 when empty
	added  int // counter for generated card types

	termWidth  int
	termHeight int
	status     string

	changes     chan responsive.Change
	unsubscribe func()
}

// NewDemoModel creates the playground model around an engine.
func NewDemoModel(eng *engine.Engine) *DemoModel {
	m := &DemoModel{
		eng:     eng,
		layout:  sortedLayout(eng.Layout()),
		cursor:  -1,
		changes: make(chan responsive.Change, 8),
	}
	if len(m.layout) > 0 {
		m.cursor = 0
	}
	m.unsubscribe = eng.OnBreakpointChange(func(ch responsive.Change) {
		select {
		case m.changes <- ch:
		default: // drop when the UI lags; the next refresh re-reads the engine
		}
	})
	return m
}

// listen waits for the next breakpoint transition.
func (m *DemoModel) listen() tea.Cmd {
	return func() tea.Msg {
		ch, ok := <-m.changes
		if !ok {
			return nil
		}
		return breakpointMsg(ch)
	}
}

func (m *DemoModel) Init() tea.Cmd {
	return m.listen()
}

func (m *DemoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.eng.ObserveWidth(msg.Width * termPxScale)
		return m, nil

	case breakpointMsg:
		m.refresh()
		m.status = fmt.Sprintf("breakpoint %s → %s (%d cols)", msg.From, msg.To, msg.Cols)
		return m, m.listen()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *DemoModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.unsubscribe()
		m.eng.Close()
		return m, tea.Quit

	case "tab":
		if len(m.layout) > 0 {
			m.cursor = (m.cursor + 1) % len(m.layout)
		}

	case "a":
		m.addCard()
	case "x":
		m.removeCard()
	case "left", "h":
		m.moveCard(-1, 0)
	case "right", "l":
		m.moveCard(1, 0)
	case "up", "k":
		m.moveCard(0, -1)
	case "down", "j":
		m.moveCard(0, 1)
	case "+", "=":
		m.resizeCard(1, 0)
	case "-", "_":
		m.resizeCard(-1, 0)
	case "]":
		m.resizeCard(0, 1)
	case "[":
		m.resizeCard(0, -1)

	case "c":
		m.eng.Compact()
		m.refresh()
		m.status = "compacted"
	case "u":
		if _, err := m.eng.Undo(); err != nil {
			m.status = "nothing to undo"
		} else {
			m.refresh()
			m.status = "undo"
		}
	case "r":
		if _, err := m.eng.Redo(); err != nil {
			m.status = "nothing to redo"
		} else {
			m.refresh()
			m.status = "redo"
		}
	}
	return m, nil
}

// =============================================================================
// Edits
// =============================================================================

func (m *DemoModel) addCard() {
	cardType := sampleTypes[m.added%len(sampleTypes)]
	m.added++

	item := grid.Item{
		X: 0, Y: m.eng.Bounds().Rows,
		W: 3, H: 2,
		Type: cardType,
	}
	added, err := m.eng.AddItem(item)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.refresh()
	m.selectID(added.ID)
	m.status = fmt.Sprintf("added %s", cardType)
}

func (m *DemoModel) removeCard() {
	it, ok := m.selected()
	if !ok {
		return
	}
	if err := m.eng.RemoveItem(it.ID); err != nil {
		m.status = err.Error()
		return
	}
	m.refresh()
	if m.cursor >= len(m.layout) {
		m.cursor = len(m.layout) - 1
	}
	m.status = fmt.Sprintf("removed %s", it.Type)
}

func (m *DemoModel) moveCard(dx, dy int) {
	it, ok := m.selected()
	if !ok {
		return
	}
	if _, err := m.eng.MoveItem(it.ID, it.X+dx, it.Y+dy); err != nil {
		m.status = err.Error()
		return
	}
	m.refresh()
	m.selectID(it.ID)
	m.status = ""
}

func (m *DemoModel) resizeCard(dw, dh int) {
	it, ok := m.selected()
	if !ok {
		return
	}
	if _, err := m.eng.ResizeItem(it.ID, it.W+dw, it.H+dh); err != nil {
		m.status = err.Error()
		return
	}
	m.refresh()
	m.selectID(it.ID)
	m.status = ""
}

// refresh re-reads the engine layout in stable display order.
func (m *DemoModel) refresh() {
	m.layout = sortedLayout(m.eng.Layout())
	if m.cursor >= len(m.layout) {
		m.cursor = len(m.layout) - 1
	}
	if m.cursor < 0 && len(m.layout) > 0 {
		m.cursor = 0
	}
}

func (m *DemoModel) selected() (grid.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.layout) {
		return grid.Item{}, false
	}
	return m.layout[m.cursor], true
}

func (m *DemoModel) selectID(id string) {
	for i, it := range m.layout {
		if it.ID == id {
			m.cursor = i
			return
		}
	}
}

// sortedLayout orders items for stable display and cursor traversal.
func sortedLayout(items []grid.Item) []grid.Item {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Y != items[j].Y {
			return items[i].Y < items[j].Y
		}
		if items[i].X != items[j].X {
			return items[i].X < items[j].X
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// =============================================================================
// View
// =============================================================================

func (m *DemoModel) View() string {
	var b strings.Builder

	cfg := m.eng.Config()
	stats := m.eng.Stats()

	b.WriteString(StyleTitle.Render("cardgrid"))
	bp := m.eng.CurrentBreakpoint()
	header := fmt.Sprintf("  %d cols", cfg.ColNum)
	if bp != "" {
		header += "  " + bp
	}
	header += fmt.Sprintf("  %d cards  score %d", stats.ItemCount, m.eng.Monitor().Score())
	b.WriteString(StyleDim.Render(header))
	b.WriteString("\n\n")

	b.WriteString(m.renderGrid(cfg.ColNum))
	b.WriteString("\n")

	if it, ok := m.selected(); ok {
		b.WriteString(styleSelected.Render(fmt.Sprintf("  %s %s", it.Type, it.ID)))
		b.WriteString(StyleDim.Render(fmt.Sprintf("  (%d,%d) %dx%d", it.X, it.Y, it.W, it.H)))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(styleStatus.Render("  " + m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styleHelp.Render("  a add  x remove  tab select  ←↓↑→ move  +/- width  ]/[ height  c compact  u undo  r redo  q quit"))
	b.WriteString("\n")
	return b.String()
}

// renderGrid draws the layout as a colored cell raster, one terminal line
// per grid row.
func (m *DemoModel) renderGrid(cols int) string {
	rows := 0
	for _, it := range m.layout {
		if bottom := it.Y + it.H; bottom > rows {
			rows = bottom
		}
	}
	if rows == 0 {
		return styleEmpty.Render("  (empty — press 'a' to add a card)") + "\n"
	}

	// occupancy[y][x] holds the layout index or -1.
	occupancy := make([][]int, rows)
	for y := range occupancy {
		occupancy[y] = make([]int, cols)
		for x := range occupancy[y] {
			occupancy[y][x] = -1
		}
	}
	for i, it := range m.layout {
		for y := it.Y; y < it.Y+it.H && y < rows; y++ {
			for x := it.X; x < it.X+it.W && x < cols; x++ {
				occupancy[y][x] = i
			}
		}
	}

	var b strings.Builder
	for y := 0; y < rows; y++ {
		b.WriteString("  ")
		for x := 0; x < cols; x++ {
			i := occupancy[y][x]
			if i < 0 {
				b.WriteString(styleEmpty.Render(strings.Repeat("·", cellWidth)))
				continue
			}
			it := m.layout[i]
			cell := m.cellLabel(it, x, y)
			style := lipgloss.NewStyle().Background(cardPalette[i%len(cardPalette)])
			if i == m.cursor {
				style = style.Bold(true).Foreground(colorWhite)
			}
			b.WriteString(style.Render(cell))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// cellLabel returns the text for one cell of a card: the type on the card's
// top-left cell, spaces elsewhere.
func (m *DemoModel) cellLabel(it grid.Item, x, y int) string {
	if x == it.X && y == it.Y {
		label := it.Type
		if label == "" {
			label = it.ID
		}
		if len(label) > cellWidth {
			label = label[:cellWidth]
		}
		return label + strings.Repeat(" ", cellWidth-len(label))
	}
	return strings.Repeat(" ", cellWidth)
}
