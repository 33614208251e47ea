package page

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/trainctl/internal/action"
	"github.com/oakwood-commons/trainctl/internal/api"
	"github.com/oakwood-commons/trainctl/internal/config"
	"github.com/oakwood-commons/trainctl/internal/confirm"
	"github.com/oakwood-commons/trainctl/internal/demoapi"
	"github.com/oakwood-commons/trainctl/internal/record"
	"github.com/oakwood-commons/trainctl/internal/sorter"
	"github.com/oakwood-commons/trainctl/internal/status"
)

type recordingNav struct {
	paths   []string
	queries []url.Values
}

func (r *recordingNav) NavigateTo(path string, q url.Values) error {
	r.paths = append(r.paths, path)
	r.queries = append(r.queries, q)
	return nil
}

type recordingInformer struct{ messages []string }

func (r *recordingInformer) Inform(_, msg string) { r.messages = append(r.messages, msg) }

func buildPage(t *testing.T, name string, opts Options) (*Page, *demoapi.Store) {
	t.Helper()
	store, err := demoapi.OpenSeeded(t.Context(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	srv := httptest.NewServer(demoapi.NewServer(store, logr.Discard()).Handler())
	t.Cleanup(srv.Close)

	cfg, err := config.Default()
	require.NoError(t, err)
	tbl, err := cfg.Table(name)
	require.NoError(t, err)

	opts.Logger = logr.Discard()
	p, err := Build(name, tbl, api.NewClient(srv.URL), opts)
	require.NoError(t, err)
	require.NoError(t, p.Load(t.Context()))
	return p, store
}

func TestLoadAppliesDefaultSort(t *testing.T) {
	p, _ := buildPage(t, "needs", Options{})
	assert.Equal(t, "Training needs", p.Title())
	assert.Equal(t, 12, p.Engine.TotalRecords())
	assert.Equal(t, 2, p.Engine.TotalPages())
	assert.False(t, p.RefreshedAt().IsZero())

	key, order := p.Engine.SortState()
	assert.Equal(t, "requested_at", key)
	assert.Equal(t, sorter.Desc, order)

	rows := p.Engine.PaginatedData()
	require.Len(t, rows, 10)
	assert.Equal(t, "12", rows[0].RowID(), "most recent first")

	p.Engine.SetCurrentPage(2)
	last := p.Engine.PaginatedData()
	require.Len(t, last, 2)
	assert.Equal(t, "10", last[1].RowID(), "null dates sort last")
}

func TestCycleSort(t *testing.T) {
	p, _ := buildPage(t, "needs", Options{})
	require.NoError(t, p.CycleSort("title"))
	key, order := p.Engine.SortState()
	assert.Equal(t, "title", key)
	assert.Equal(t, sorter.Asc, order)

	require.NoError(t, p.CycleSort("title"))
	_, order = p.Engine.SortState()
	assert.Equal(t, sorter.Desc, order)

	assert.Error(t, p.CycleSort("campaign"))
}

func TestEditDisabledByPolicyInforms(t *testing.T) {
	nav := &recordingNav{}
	inf := &recordingInformer{}
	p, _ := buildPage(t, "needs", Options{Navigator: nav, Informer: inf})

	validated, ok := p.Engine.Find("4")
	require.True(t, ok)
	out, err := p.Actions.Activate(t.Context(), action.Edit, validated)
	require.NoError(t, err)
	assert.Equal(t, action.OutcomeInformed, out)
	assert.Empty(t, nav.paths)
	assert.Equal(t, []string{"Validated training needs can no longer be edited."}, inf.messages)

	draft, _ := p.Engine.Find("1")
	out, err = p.Actions.Activate(t.Context(), action.View, draft)
	require.NoError(t, err)
	assert.Equal(t, action.OutcomeNavigated, out)
	assert.Equal(t, []string{"/needs/view"}, nav.paths)
	assert.Equal(t, "1", nav.queries[0].Get("id"))
}

func TestDeleteFlowRevalidates(t *testing.T) {
	p, store := buildPage(t, "needs", Options{})
	row, ok := p.Engine.Find("1")
	require.True(t, ok)

	out, err := p.Actions.Activate(t.Context(), action.Delete, row)
	require.NoError(t, err)
	assert.Equal(t, action.OutcomeConfirmRequested, out)
	assert.Equal(t, confirm.ConfirmPending, p.Delete.State())

	require.NoError(t, p.Delete.Confirm(t.Context()))
	p.Sync()
	assert.Equal(t, 11, p.Engine.TotalRecords())
	_, ok = p.Engine.Find("1")
	assert.False(t, ok)

	rows, err := store.List(t.Context(), "needs")
	require.NoError(t, err)
	assert.Len(t, rows, 11)
}

func TestDeleteFailureKeepsDialog(t *testing.T) {
	p, _ := buildPage(t, "invoices", Options{})
	// Invoice 2 is paid, so the policy disables delete; the server also refuses it as locked.
	paid, _ := p.Engine.Find("2")
	out, err := p.Actions.Activate(t.Context(), action.Delete, paid)
	require.NoError(t, err)
	assert.Equal(t, action.OutcomeInert, out)
	assert.Equal(t, confirm.Idle, p.Delete.State())

	require.NoError(t, p.Delete.Request(paid))
	err = p.Delete.Confirm(t.Context())
	require.Error(t, err)
	assert.Equal(t, confirm.ConfirmPending, p.Delete.State())
	assert.Equal(t, demoapi.ErrLocked.Error(), p.Delete.Err().Error())
	p.Delete.Cancel()
	assert.Equal(t, confirm.Idle, p.Delete.State())
}

func TestCancelWritesConfiguredValue(t *testing.T) {
	p, store := buildPage(t, "needs", Options{})
	require.NotNil(t, p.Cancel)

	submitted, _ := p.Engine.Find("2")
	out, err := p.Actions.Activate(t.Context(), action.Cancel, submitted)
	require.NoError(t, err)
	assert.Equal(t, action.OutcomeCancelOpened, out)
	assert.Contains(t, p.Cancel.Message(), "refused")

	require.NoError(t, p.Cancel.Confirm(t.Context()))
	rec, err := store.Get(t.Context(), "needs", "2")
	require.NoError(t, err)
	assert.Equal(t, "Refusé", rec["status"])

	p.Sync()
	row, _ := p.Engine.Find("2")
	assert.Equal(t, "Refusé", row.Field("status"))
}

func TestStatusEditorPessimistic(t *testing.T) {
	p, _ := buildPage(t, "needs", Options{})
	require.NotNil(t, p.Status)

	row, _ := p.Engine.Find("1")
	require.NoError(t, p.Status.Open(row))
	require.NoError(t, p.Status.Select(t.Context(), "Soumis"))

	// The engine still shows the old value until Sync applies the refetch.
	stale, _ := p.Engine.Find("1")
	assert.Equal(t, "Brouillon", p.Status.Value(stale))
	p.Sync()
	fresh, _ := p.Engine.Find("1")
	assert.Equal(t, "Soumis", p.Status.Value(fresh))
}

func TestUsersPermissionPanel(t *testing.T) {
	p, store := buildPage(t, "users", Options{})
	require.NotNil(t, p.Status)
	assert.Equal(t, status.Permission, p.Status.Variant())

	admin, _ := p.Engine.Find("1")
	assert.ErrorIs(t, p.Status.Open(admin), status.ErrSentinel)

	clara, _ := p.Engine.Find("3")
	require.NoError(t, p.Status.Open(clara))
	require.NoError(t, p.Status.Toggle(t.Context(), "needs.write"))

	rec, err := store.Get(t.Context(), "users", "3")
	require.NoError(t, err)
	assert.Equal(t, []any{"needs.read", "needs.write"}, rec["permissions"])

	current, ok := p.Status.Row()
	require.True(t, ok)
	assert.True(t, p.Status.Granted(current, "needs.write"))
}

func TestSelectionGate(t *testing.T) {
	selected := false
	nav := &recordingNav{}
	p, _ := buildPage(t, "groups", Options{Navigator: nav, Selected: &selected})
	row, _ := p.Engine.Find("1")
	for _, b := range p.Actions.Buttons(row) {
		assert.True(t, b.Disabled, b.Kind.String())
	}
	out, err := p.Actions.Activate(t.Context(), action.View, row)
	require.NoError(t, err)
	assert.Equal(t, action.OutcomeInert, out)
	assert.Empty(t, nav.paths)
	assert.Nil(t, p.Cancel)
}

func TestSyncKeepsLocalRemovalWhenRevalidationFails(t *testing.T) {
	p, _ := buildPage(t, "groups", Options{})
	p.markRemoved("1")
	p.Sync()
	_, ok := p.Engine.Find("1")
	assert.False(t, ok)
	assert.Equal(t, []string{"2", "3"}, record.IDs(p.Engine.Data()))
}
