package demoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/trainctl/internal/api"
	"github.com/oakwood-commons/trainctl/internal/record"
)

func newTestServer(t *testing.T) (*Store, *api.Client) {
	t.Helper()
	store, err := OpenSeeded(t.Context(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := httptest.NewServer(NewServer(store, logr.Discard()).Handler())
	t.Cleanup(srv.Close)
	return store, api.NewClient(srv.URL)
}

func TestSeedDataCoversCatalogue(t *testing.T) {
	data, err := SeedData()
	require.NoError(t, err)
	for _, table := range []string{"needs", "campaigns", "plans", "groups", "sessions", "invoices", "users"} {
		assert.NotEmpty(t, data[table], table)
	}
	assert.Len(t, data["needs"], 12)
}

func TestListPreservesSeedOrder(t *testing.T) {
	_, c := newTestServer(t)
	rows, err := c.List(t.Context(), "/api/needs", nil)
	require.NoError(t, err)
	require.Len(t, rows, 12)
	assert.Equal(t, "1", rows[0].RowID())
	assert.Equal(t, "12", rows[11].RowID())
	assert.Nil(t, rows[9].Field("requested_at"))

	rows, err = c.List(t.Context(), "/api/unknown", nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDeleteThroughClient(t *testing.T) {
	store, c := newTestServer(t)

	require.NoError(t, c.Delete(t.Context(), "/api/needs", "1"))
	rows, err := store.List(t.Context(), "needs")
	require.NoError(t, err)
	assert.NotContains(t, record.IDs(rows), "1")

	err = c.Delete(t.Context(), "/api/needs", "1")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))

	err = c.Delete(t.Context(), "/api/needs", "3")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, api.StatusCode(err))
	assert.Equal(t, ErrLocked.Error(), err.Error())
}

func TestPutMergesFields(t *testing.T) {
	store, c := newTestServer(t)

	require.NoError(t, c.Put(t.Context(), "/api/needs", map[string]any{"id": "2", "status": "Validé"}))
	rec, err := store.Get(t.Context(), "needs", "2")
	require.NoError(t, err)
	assert.Equal(t, "Validé", rec["status"])
	assert.Equal(t, "Management d'équipe", rec["title"])

	err = c.Put(t.Context(), "/api/needs", map[string]any{"status": "Validé"})
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(err))
	err = c.Put(t.Context(), "/api/needs", map[string]any{"id": "99", "status": "Validé"})
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
}

func TestRequestIDEchoed(t *testing.T) {
	store, err := OpenSeeded(t.Context(), ":memory:")
	require.NoError(t, err)
	defer store.Close()

	h := NewServer(store, logr.Discard()).Handler()
	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set(requestIDHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", rec.Header().Get(requestIDHeader))
	assert.Contains(t, rec.Body.String(), "needs")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestSeedRejectsRowsWithoutID(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	data, err := ParseSeed([]byte("needs:\n  - {title: x}\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, store.Seed(t.Context(), data), ErrNoID)
}
