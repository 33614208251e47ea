package status

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/trainctl/internal/record"
)

type put struct {
	baseURL string
	body    map[string]any
}

type fakeUpdater struct {
	puts []put
	err  error
}

func (f *fakeUpdater) Put(_ context.Context, baseURL string, body any) error {
	f.puts = append(f.puts, put{baseURL, body.(map[string]any)})
	return f.err
}

func statusEditor(variant Variant, up *fakeUpdater, revalidations *int) *Editor {
	return New(Config{
		Variant:  variant,
		BaseURL:  "/api/needs",
		Options:  []string{"Brouillon", "Soumis", "Validé"},
		Sentinel: "Admin",
		Updater:  up,
		Revalidate: func(context.Context) error {
			*revalidations++
			return nil
		},
	})
}

func TestSelectSameValueIsNoop(t *testing.T) {
	up := &fakeUpdater{}
	n := 0
	e := statusEditor(Plain, up, &n)
	row := record.Record{"id": 1.0, "status": "Soumis"}

	require.NoError(t, e.Open(row))
	assert.Equal(t, MenuOpen, e.Phase())
	require.NoError(t, e.Select(t.Context(), "Soumis"))

	assert.Equal(t, Closed, e.Phase())
	assert.Empty(t, up.puts)
	assert.Zero(t, n)
}

func TestPlainSelectPutsAndRevalidates(t *testing.T) {
	up := &fakeUpdater{}
	n := 0
	e := statusEditor(Plain, up, &n)
	row := record.Record{"id": 1.0, "status": "Brouillon"}

	require.NoError(t, e.Open(row))
	require.NoError(t, e.Select(t.Context(), "Soumis"))

	require.Len(t, up.puts, 1)
	assert.Equal(t, "/api/needs", up.puts[0].baseURL)
	assert.Equal(t, map[string]any{"id": "1", "status": "Soumis"}, up.puts[0].body)
	assert.Equal(t, 1, n)
	assert.Equal(t, Closed, e.Phase())
	// No optimistic update: the row still carries the old value until the refetch.
	assert.Equal(t, "Brouillon", e.Value(row))
}

func TestConfirmedVariantWaitsForConfirmation(t *testing.T) {
	up := &fakeUpdater{}
	n := 0
	e := statusEditor(Confirmed, up, &n)
	row := record.Record{"id": 5.0, "status": "Brouillon"}

	require.NoError(t, e.Open(row))
	require.NoError(t, e.Select(t.Context(), "Validé"))
	assert.Equal(t, ConfirmOpen, e.Phase())
	assert.Equal(t, "Validé", e.Proposed())
	assert.Empty(t, up.puts)

	require.NoError(t, e.ConfirmChange(t.Context()))
	require.Len(t, up.puts, 1)
	assert.Equal(t, "Validé", up.puts[0].body["status"])
	assert.Equal(t, 1, n)
	assert.Equal(t, Closed, e.Phase())
}

func TestConfirmedVariantCancel(t *testing.T) {
	up := &fakeUpdater{}
	n := 0
	e := statusEditor(Confirmed, up, &n)
	require.NoError(t, e.Open(record.Record{"id": 5.0, "status": "Brouillon"}))
	require.NoError(t, e.Select(t.Context(), "Validé"))
	e.Cancel()

	assert.Equal(t, Closed, e.Phase())
	assert.Empty(t, up.puts)
	assert.ErrorIs(t, e.ConfirmChange(t.Context()), ErrWrongPhase)
}

func TestSentinelBlocksOpen(t *testing.T) {
	up := &fakeUpdater{}
	n := 0
	e := New(Config{Variant: Confirmed, Field: "role", Sentinel: "Admin", Updater: up})
	admin := record.Record{"id": 1.0, "role": "Admin"}

	assert.True(t, e.Locked(admin))
	assert.ErrorIs(t, e.Open(admin), ErrSentinel)
	assert.Equal(t, Closed, e.Phase())
	assert.Contains(t, e.Notice(), "Admin")
	e.ClearNotice()
	assert.Empty(t, e.Notice())
	assert.Zero(t, n)
}

func TestUpdateFailureKeepsDisplayedValue(t *testing.T) {
	up := &fakeUpdater{err: errors.New("forbidden")}
	n := 0
	e := statusEditor(Plain, up, &n)
	row := record.Record{"id": 1.0, "status": "Brouillon"}

	require.NoError(t, e.Open(row))
	err := e.Select(t.Context(), "Validé")
	require.Error(t, err)

	assert.Equal(t, Closed, e.Phase())
	assert.Contains(t, e.Notice(), "forbidden")
	assert.Zero(t, n)
	assert.Equal(t, "Brouillon", e.Value(row))
}

func TestSelectRejectsUnknownOption(t *testing.T) {
	e := statusEditor(Plain, &fakeUpdater{}, new(int))
	require.NoError(t, e.Open(record.Record{"id": 1.0, "status": "Brouillon"}))
	assert.ErrorIs(t, e.Select(t.Context(), "Archivé"), ErrUnknownOption)
	assert.Equal(t, MenuOpen, e.Phase())
}

func TestSelectWithoutOpenMenu(t *testing.T) {
	e := statusEditor(Plain, &fakeUpdater{}, new(int))
	assert.ErrorIs(t, e.Select(t.Context(), "Soumis"), ErrWrongPhase)
}

func TestPermissionToggle(t *testing.T) {
	up := &fakeUpdater{}
	n := 0
	fresh := record.Record{"id": 9.0, "role": "Manager", "permissions": []any{"needs.read", "needs.write"}}
	e := New(Config{
		Variant:     Permission,
		BaseURL:     "/api/users",
		Field:       "role",
		Sentinel:    "Admin",
		Permissions: []string{"needs.read", "needs.write", "invoices.read"},
		Updater:     up,
		Revalidate:  func(context.Context) error { n++; return nil },
		Lookup:      func(string) (record.Row, bool) { return fresh, true },
	})
	row := record.Record{"id": 9.0, "role": "Manager", "permissions": []any{"needs.read"}}

	require.NoError(t, e.Open(row))
	assert.Equal(t, PanelOpen, e.Phase())
	assert.True(t, e.Granted(row, "needs.read"))
	assert.False(t, e.Granted(row, "needs.write"))

	require.NoError(t, e.Toggle(t.Context(), "needs.write"))
	require.Len(t, up.puts, 1)
	assert.Equal(t, []string{"needs.read", "needs.write"}, up.puts[0].body["permissions"])
	assert.Equal(t, 1, n)
	assert.Equal(t, PanelOpen, e.Phase())

	current, ok := e.Row()
	require.True(t, ok)
	assert.True(t, e.Granted(current, "needs.write"))

	require.NoError(t, e.Toggle(t.Context(), "needs.read"))
	assert.Equal(t, []string{"needs.write"}, up.puts[1].body["permissions"])

	assert.ErrorIs(t, e.Toggle(t.Context(), "root"), ErrUnknownOption)
	e.Cancel()
	assert.Equal(t, Closed, e.Phase())
}

func TestParseVariant(t *testing.T) {
	for in, want := range map[string]Variant{"": Plain, "plain": Plain, "confirmed": Confirmed, "permission": Permission} {
		got, err := ParseVariant(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseVariant("inline")
	assert.Error(t, err)
}
