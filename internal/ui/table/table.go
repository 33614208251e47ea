// Package table wraps the bubbles table with typed rows: callers hand it
// values of any type plus a function turning a value into cells, and read
// back the typed value under the cursor.
package table

import (
	"fmt"
	"image/color"

	bubtable "charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// Column and Row are re-exported so callers need not import bubbles.
type Column = bubtable.Column
type Row = bubtable.Row

// Model displays values of type V.
type Model[V any] struct {
	table   bubtable.Model
	styles  bubtable.Styles
	rows    []V
	columns []Column
	toRow   func(V) Row

	width   int
	height  int
	noColor bool

	headerFG   color.Color
	headerBG   color.Color
	selectedFG color.Color
	selectedBG color.Color
}

// NewModel creates a focused, empty table.
func NewModel[V any](toRow func(V) Row) *Model[V] {
	t := bubtable.New(
		bubtable.WithFocused(true),
		bubtable.WithHeight(5),
	)

	s := bubtable.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	s.Selected = s.Selected.PaddingLeft(0).PaddingRight(0)
	s.Cell = lipgloss.NewStyle().Align(lipgloss.Left).PaddingLeft(0).PaddingRight(1)
	t.SetStyles(s)

	return &Model[V]{
		table:  t,
		styles: s,
		toRow:  toRow,
		width:  80,
		height: 10,
	}
}

// SetColumns replaces the columns. Rows are re-rendered so cell counts match.
func (m *Model[V]) SetColumns(columns []Column) {
	m.columns = columns
	cursor := m.Cursor()
	// bubbles panics when rows have more cells than columns; clear first.
	// Clearing moves the bubbles cursor to -1, so it is restored below.
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
	m.refresh(cursor)
}

// Columns returns the current columns.
func (m *Model[V]) Columns() []Column { return m.columns }

// SetRows replaces the rows, keeping the cursor in range.
func (m *Model[V]) SetRows(rows []V) {
	m.rows = rows
	m.refresh(m.Cursor())
}

// refresh re-renders the rows and puts the cursor at cursor, clamped to
// [0, len-1] whenever there is at least one row.
func (m *Model[V]) refresh(cursor int) {
	out := make([]Row, len(m.rows))
	for i, v := range m.rows {
		out[i] = m.toRow(v)
	}
	m.table.SetRows(out)
	if len(m.rows) == 0 {
		return
	}
	m.SetCursor(min(max(cursor, 0), len(m.rows)-1))
}

// Rows returns the displayed values.
func (m *Model[V]) Rows() []V { return m.rows }

// Cursor returns the cursor position.
func (m *Model[V]) Cursor() int { return m.table.Cursor() }

// SetCursor moves the cursor.
func (m *Model[V]) SetCursor(pos int) { m.table.SetCursor(pos) }

// SelectedRow returns the value under the cursor.
func (m *Model[V]) SelectedRow() (V, bool) {
	var zero V
	c := m.Cursor()
	if c < 0 || c >= len(m.rows) {
		return zero, false
	}
	return m.rows[c], true
}

// SetSize sets the viewport; height includes the header.
func (m *Model[V]) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetWidth(width)
	m.table.SetHeight(height)
}

// Width returns the configured width.
func (m *Model[V]) Width() int { return m.width }

// Focus gives the table keyboard focus.
func (m *Model[V]) Focus() { m.table.Focus() }

// Blur removes keyboard focus.
func (m *Model[V]) Blur() { m.table.Blur() }

// Focused reports focus.
func (m *Model[V]) Focused() bool { return m.table.Focused() }

// SetNoColor strips colors and marks the selection with reverse video.
func (m *Model[V]) SetNoColor(noColor bool) {
	m.noColor = noColor
	m.applyColorScheme()
}

// SetColors sets theme colors; nil values keep the bubbles defaults.
func (m *Model[V]) SetColors(headerFG, headerBG, selectedFG, selectedBG color.Color) {
	m.headerFG = headerFG
	m.headerBG = headerBG
	m.selectedFG = selectedFG
	m.selectedBG = selectedBG
	m.applyColorScheme()
}

func (m *Model[V]) applyColorScheme() {
	s := m.styles
	if m.noColor {
		s.Header = s.Header.UnsetForeground().UnsetBackground()
		s.Selected = s.Selected.UnsetForeground().UnsetBackground().Reverse(true)
		s.Cell = s.Cell.UnsetForeground().UnsetBackground()
	} else {
		if m.headerFG != nil {
			s.Header = s.Header.Foreground(m.headerFG)
		}
		if m.headerBG != nil {
			s.Header = s.Header.Background(m.headerBG)
		}
		if m.selectedFG != nil {
			s.Selected = s.Selected.Foreground(m.selectedFG)
		}
		if m.selectedBG != nil {
			s.Selected = s.Selected.Background(m.selectedBG)
		}
	}
	m.table.SetStyles(s)
	m.styles = s
}

// Update forwards navigation keys to the bubbles table.
func (m *Model[V]) Update(msg tea.Msg) (*Model[V], tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table.
func (m *Model[V]) View() string { return m.table.View() }

func (m *Model[V]) String() string {
	return fmt.Sprintf("Table[rows=%d, cols=%d, cursor=%d]", len(m.rows), len(m.columns), m.Cursor())
}
