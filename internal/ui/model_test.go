package ui

import (
	"context"
	"net/http/httptest"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/trainctl/internal/api"
	"github.com/oakwood-commons/trainctl/internal/config"
	"github.com/oakwood-commons/trainctl/internal/confirm"
	"github.com/oakwood-commons/trainctl/internal/demoapi"
	"github.com/oakwood-commons/trainctl/internal/page"
	"github.com/oakwood-commons/trainctl/internal/sorter"
	"github.com/oakwood-commons/trainctl/internal/status"
)

type fixture struct {
	m     *Model
	store *demoapi.Store
	srv   *httptest.Server
}

func newFixture(t *testing.T, table string) *fixture {
	t.Helper()
	store, err := demoapi.OpenSeeded(t.Context(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	srv := httptest.NewServer(demoapi.NewServer(store, logr.Discard()).Handler())
	t.Cleanup(srv.Close)

	cfg, err := config.Default()
	require.NoError(t, err)
	tbl, err := cfg.Table(table)
	require.NoError(t, err)
	client := api.NewClient(srv.URL)

	m, err := NewModel(t.Context(), func(opts page.Options) (*page.Page, error) {
		return page.Build(table, tbl, client, opts)
	}, Options{WebURL: cfg.API.WebURL, NoColor: true, Logger: logr.Discard()})
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	drain(m, m.Init())
	return &fixture{m: m, store: store, srv: srv}
}

// drain runs cmd and feeds completed work back into the model. Spinner
// ticks are dropped so tests never sleep.
func drain(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drain(m, c)
		}
	case doneMsg:
		_, next := m.Update(msg)
		drain(m, next)
	}
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEsc}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	}
	return tea.KeyPressMsg{Code: []rune(s)[0], Text: s}
}

func (f *fixture) press(keys ...string) {
	for _, k := range keys {
		_, cmd := f.m.Update(key(k))
		drain(f.m, cmd)
	}
}

func (f *fixture) selectedID(t *testing.T) string {
	t.Helper()
	row, ok := f.m.table.SelectedRow()
	require.True(t, ok)
	return row.RowID()
}

func TestInitLoadsFirstPage(t *testing.T) {
	f := newFixture(t, "needs")
	assert.False(t, f.m.busy)
	assert.Len(t, f.m.table.Rows(), 10)
	assert.Equal(t, "12", f.selectedID(t))

	view := f.m.View()
	assert.True(t, view.AltScreen)
	out := f.m.render()
	assert.Contains(t, out, "Training needs · page 1/2 · 12 records")
	assert.Contains(t, out, "sorted by Date")
	assert.Contains(t, out, "[d]")
}

func TestPagingKeys(t *testing.T) {
	f := newFixture(t, "needs")
	f.press("n")
	assert.Equal(t, 2, f.m.page.Engine.CurrentPage())
	assert.Len(t, f.m.table.Rows(), 2)
	f.press("n")
	assert.Equal(t, 2, f.m.page.Engine.CurrentPage())
	f.press("p")
	assert.Equal(t, 1, f.m.page.Engine.CurrentPage())
}

func TestSortFocusedColumn(t *testing.T) {
	f := newFixture(t, "needs")
	f.press(">", "s")
	key, order := f.m.page.Engine.SortState()
	assert.Equal(t, "title", key)
	assert.Equal(t, sorter.Asc, order)
	assert.Contains(t, f.m.table.Columns()[1].Title, "›Training")

	f.press("s")
	_, order = f.m.page.Engine.SortState()
	assert.Equal(t, sorter.Desc, order)
}

func TestSortUnsortableColumnShowsError(t *testing.T) {
	f := newFixture(t, "sessions")
	f.press(">", ">", ">", "s")
	assert.True(t, f.m.noticeErr)
	key, _ := f.m.page.Engine.SortState()
	assert.Equal(t, "date", key)
}

func TestDeleteConfirmAndCancel(t *testing.T) {
	f := newFixture(t, "needs")
	f.press("d")
	require.Equal(t, modeConfirm, f.m.mode)
	assert.Contains(t, f.m.render(), "#12")

	f.press("n")
	assert.Equal(t, modeTable, f.m.mode)
	assert.Equal(t, confirm.Idle, f.m.page.Delete.State())

	f.press("d", "y")
	assert.Equal(t, modeTable, f.m.mode)
	assert.Equal(t, 11, f.m.page.Engine.TotalRecords())
	assert.NotEqual(t, "12", f.selectedID(t))
	_, err := f.store.Get(t.Context(), "needs", "12")
	assert.ErrorIs(t, err, demoapi.ErrNotFound)
}

func TestDeleteFailureKeepsDialogOpen(t *testing.T) {
	// Campaign 1 is locked server side but not disabled by policy.
	f := newFixture(t, "campaigns")
	f.press("down", "down")
	require.Equal(t, "1", f.selectedID(t))

	f.press("d", "y")
	assert.Equal(t, modeConfirm, f.m.mode)
	assert.Equal(t, confirm.ConfirmPending, f.m.page.Delete.State())
	assert.Contains(t, f.m.render(), demoapi.ErrLocked.Error())
	assert.Equal(t, 3, f.m.page.Engine.TotalRecords())

	f.press("esc")
	assert.Equal(t, modeTable, f.m.mode)
}

func TestDisabledEditInforms(t *testing.T) {
	f := newFixture(t, "needs")
	f.m.table.SetCursor(9)
	require.Equal(t, "4", f.selectedID(t))

	f.press("e")
	require.Equal(t, modeInfo, f.m.mode)
	assert.Contains(t, f.m.render(), "Validated training needs can no longer be edited.")
	f.press("enter")
	assert.Equal(t, modeTable, f.m.mode)
}

func TestDisabledDeleteIsInert(t *testing.T) {
	f := newFixture(t, "invoices")
	f.press("down")
	require.Equal(t, "2", f.selectedID(t))
	f.press("d")
	assert.Equal(t, modeTable, f.m.mode)
	assert.True(t, f.m.noticeErr)
	assert.Equal(t, confirm.Idle, f.m.page.Delete.State())
}

func TestViewShowsTarget(t *testing.T) {
	f := newFixture(t, "needs")
	f.press("v")
	require.Equal(t, modeDetail, f.m.mode)
	assert.Equal(t, "http://localhost:3000/needs/view?id=12", f.m.detail)
	f.press("o")
	assert.False(t, f.m.noticeErr)
	f.press("esc")
	assert.Equal(t, modeTable, f.m.mode)
}

func TestCancelActionWritesRefused(t *testing.T) {
	f := newFixture(t, "needs")
	f.m.table.SetCursor(1)
	require.Equal(t, "11", f.selectedID(t))

	f.press("x")
	require.Equal(t, modeConfirm, f.m.mode)
	assert.Contains(t, f.m.render(), "marked as refused")
	f.press("enter")
	assert.Equal(t, modeTable, f.m.mode)

	rec, err := f.store.Get(t.Context(), "needs", "11")
	require.NoError(t, err)
	assert.Equal(t, "Refusé", rec["status"])
	row, _ := f.m.page.Engine.Find("11")
	assert.Equal(t, "Refusé", row.Field("status"))
}

func TestPlainStatusMenu(t *testing.T) {
	f := newFixture(t, "needs")
	f.press("t")
	require.Equal(t, modeStatusMenu, f.m.mode)
	it, _ := f.m.picker.selected()
	assert.Equal(t, "Brouillon", it.Key, "cursor starts on the current value")

	f.press("down", "enter")
	assert.Equal(t, modeTable, f.m.mode)
	row, _ := f.m.page.Engine.Find("12")
	assert.Equal(t, "Soumis", row.Field("status"))
}

func TestStatusSameValueCloses(t *testing.T) {
	f := newFixture(t, "needs")
	f.press("t", "enter")
	assert.Equal(t, modeTable, f.m.mode)
	assert.Equal(t, status.Closed, f.m.page.Status.Phase())
}

func TestConfirmedStatus(t *testing.T) {
	f := newFixture(t, "plans")
	f.press("down")
	require.Equal(t, "2", f.selectedID(t))

	f.press("t", "down", "enter")
	require.Equal(t, modeStatusConfirm, f.m.mode)
	assert.Contains(t, f.m.render(), `"Validé"`)

	f.press("y")
	assert.Equal(t, modeTable, f.m.mode)
	rec, err := f.store.Get(t.Context(), "plans", "2")
	require.NoError(t, err)
	assert.Equal(t, "Validé", rec["status"])
}

func TestPermissionPanel(t *testing.T) {
	f := newFixture(t, "users")
	f.press("t")
	require.Equal(t, modeInfo, f.m.mode, "admin row is locked")
	assert.Contains(t, f.m.render(), "Admin")
	f.press("esc")

	f.press("down", "down", "t")
	require.Equal(t, modePermissions, f.m.mode)
	assert.True(t, f.m.picker.items[0].Checked)
	assert.False(t, f.m.picker.items[1].Checked)

	f.press("down", "space")
	assert.Equal(t, modePermissions, f.m.mode)
	assert.True(t, f.m.picker.items[1].Checked)

	rec, err := f.store.Get(t.Context(), "users", "3")
	require.NoError(t, err)
	assert.Equal(t, []any{"needs.read", "needs.write"}, rec["permissions"])

	f.press("esc")
	assert.Equal(t, modeTable, f.m.mode)
}

func TestColumnsPanel(t *testing.T) {
	f := newFixture(t, "needs")
	f.press("c")
	require.Equal(t, modeColumns, f.m.mode)
	f.press("space")
	assert.NotContains(t, f.m.page.Engine.VisibleColumns(), "id")
	assert.Len(t, f.m.table.Columns(), len(f.m.page.Engine.VisibleColumns()))
	f.press("c")
	assert.Equal(t, modeTable, f.m.mode)
}

func TestCopyID(t *testing.T) {
	f := newFixture(t, "needs")
	f.press("y")
	assert.Equal(t, "Copied id 12", f.m.notice)
}

func TestRowActionsWorkAfterRefresh(t *testing.T) {
	f := newFixture(t, "needs")
	f.press("j", "n", "p", ">")
	rows := f.m.table.Rows()
	require.Len(t, rows, 10)
	f.press("y")
	assert.Equal(t, "Copied id "+rows[1].RowID(), f.m.notice)
	assert.Equal(t, 1, f.m.table.Cursor())
}

func TestRevalidateFailureKeepsRows(t *testing.T) {
	f := newFixture(t, "groups")
	f.srv.Close()
	f.press("r")
	assert.True(t, f.m.noticeErr)
	assert.Contains(t, f.m.notice, "Refresh failed")
	assert.Equal(t, 3, f.m.page.Engine.TotalRecords())
}

func TestQuit(t *testing.T) {
	f := newFixture(t, "groups")
	_, cmd := f.m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBuildErrorPropagates(t *testing.T) {
	_, err := NewModel(context.Background(), func(page.Options) (*page.Page, error) {
		return nil, assert.AnError
	}, Options{})
	assert.ErrorIs(t, err, assert.AnError)
}
