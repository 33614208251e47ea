package table

import (
	"image/color"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type need struct {
	ID    string
	Title string
}

func makeModel() *Model[need] {
	m := NewModel(func(n need) Row { return Row{n.ID, n.Title} })
	m.SetColumns([]Column{{Title: "#", Width: 4}, {Title: "Training", Width: 20}})
	m.SetSize(40, 10)
	return m
}

func TestSelectedRow(t *testing.T) {
	m := makeModel()
	_, ok := m.SelectedRow()
	assert.False(t, ok)

	m.SetRows([]need{{"1", "Go"}, {"2", "SQL"}})
	sel, ok := m.SelectedRow()
	require.True(t, ok)
	assert.Equal(t, "1", sel.ID)

	m.SetCursor(1)
	sel, _ = m.SelectedRow()
	assert.Equal(t, "SQL", sel.Title)
}

func TestCursorClampedWhenRowsShrink(t *testing.T) {
	m := makeModel()
	m.SetRows([]need{{"1", "a"}, {"2", "b"}, {"3", "c"}})
	m.SetCursor(2)
	m.SetRows([]need{{"1", "a"}})
	assert.Equal(t, 0, m.Cursor())
	sel, ok := m.SelectedRow()
	require.True(t, ok)
	assert.Equal(t, "1", sel.ID)
}

func TestCursorSurvivesColumnChanges(t *testing.T) {
	m := makeModel()
	m.SetRows([]need{{"1", "a"}, {"2", "b"}})
	assert.Equal(t, 0, m.Cursor())

	m.SetCursor(1)
	m.SetColumns([]Column{{Title: "#", Width: 4}, {Title: "Title", Width: 12}})
	m.SetRows([]need{{"1", "a"}, {"2", "b"}})
	sel, ok := m.SelectedRow()
	require.True(t, ok)
	assert.Equal(t, "2", sel.ID)

	m.SetRows(nil)
	m.SetColumns([]Column{{Title: "#", Width: 4}})
	m.SetRows([]need{{"7", "c"}})
	sel, ok = m.SelectedRow()
	require.True(t, ok, "cursor must land on the first row after an empty table")
	assert.Equal(t, "7", sel.ID)
}

func TestKeyNavigation(t *testing.T) {
	m := makeModel()
	m.SetRows([]need{{"1", "a"}, {"2", "b"}})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, m.Cursor())
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 0, m.Cursor())
}

func TestSetColumnsWithFewerCells(t *testing.T) {
	m := makeModel()
	m.SetRows([]need{{"1", "a"}})
	m.toRow = func(n need) Row { return Row{n.ID} }
	assert.NotPanics(t, func() { m.SetColumns([]Column{{Title: "#", Width: 4}}) })
	assert.Contains(t, m.View(), "#")
}

func TestColorsAndString(t *testing.T) {
	m := makeModel()
	m.SetColors(color.White, color.Black, nil, nil)
	m.SetNoColor(true)
	assert.True(t, m.Focused())
	m.Blur()
	assert.False(t, m.Focused())
	assert.Contains(t, m.String(), "rows=0")
}
