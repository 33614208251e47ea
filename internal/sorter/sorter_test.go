package sorter

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/trainctl/internal/record"
)

func rows(key string, vals ...any) []record.Record {
	out := make([]record.Record, len(vals))
	for i, v := range vals {
		out[i] = record.Record{"id": i + 1, key: v}
	}
	return out
}

func values(rs []record.Record, key string) []any {
	out := make([]any, len(rs))
	for i, r := range rs {
		out[i] = r[key]
	}
	return out
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{"", Asc, false},
		{"asc", Asc, false},
		{"Ascending", Asc, false},
		{"desc", Desc, false},
		{"descending", Desc, false},
		{"up", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOrder(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, Desc, Asc.Toggle())
	assert.Equal(t, "▼", Desc.Arrow())
}

func TestDatesWithNullLast(t *testing.T) {
	s := Default()
	for _, order := range []Order{Asc, Desc} {
		rs := rows("date", "2024-01-01", "2023-12-31", nil)
		Sort(rs, "date", order, s.CompareRows)
		got := values(rs, "date")
		if order == Asc {
			assert.Equal(t, []any{"2023-12-31", "2024-01-01", nil}, got)
		} else {
			assert.Equal(t, []any{"2024-01-01", "2023-12-31", nil}, got)
		}
	}
}

func TestNumericStringsCompareNumerically(t *testing.T) {
	rs := rows("hours", "10", "9", 2.5, "100")
	Sort(rs, "hours", Asc, Default().CompareRows)
	assert.Equal(t, []any{2.5, "9", "10", "100"}, values(rs, "hours"))
}

func TestStringsCaseInsensitiveAndAccentAware(t *testing.T) {
	rs := rows("name", "élodie", "Bruno", "anne", "Emma")
	Sort(rs, "name", Asc, Default().CompareRows)
	assert.Equal(t, []any{"anne", "Bruno", "élodie", "Emma"}, values(rs, "name"))
}

func TestMixedKindsAreTransitive(t *testing.T) {
	rs := rows("v", "zeta", "2024-05-01", "3", "alpha", 1)
	Sort(rs, "v", Asc, Default().CompareRows)
	assert.Equal(t, []any{1, "3", "2024-05-01", "alpha", "zeta"}, values(rs, "v"))
}

func TestSortIsStableForEqualKeys(t *testing.T) {
	rs := []record.Record{
		{"id": 1, "status": "Validé"},
		{"id": 2, "status": "Brouillon"},
		{"id": 3, "status": "validé"},
		{"id": 4, "status": "Brouillon"},
	}
	Sort(rs, "status", Asc, Default().CompareRows)
	assert.Equal(t, []string{"2", "4", "1", "3"}, record.IDs(rs))

	Sort(rs, "status", Desc, Default().CompareRows)
	assert.Equal(t, []string{"1", "3", "2", "4"}, record.IDs(rs))
}

func TestSortIsIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	pool := []any{nil, "2024-01-01", "abc", "ABC", "12", 3, "2023-06-30T10:00:00Z", "zz"}
	rs := make([]record.Record, 60)
	for i := range rs {
		rs[i] = record.Record{"id": i, "v": pool[r.Intn(len(pool))]}
	}
	rs[0]["v"] = nil
	for _, order := range []Order{Asc, Desc} {
		Sort(rs, "v", order, Default().CompareRows)
		once := record.IDs(rs)
		Sort(rs, "v", order, Default().CompareRows)
		assert.Equal(t, once, record.IDs(rs))

		// nils end up last in both directions
		last := rs[len(rs)-1]
		assert.Nil(t, last["v"])
	}
}

func TestNewForLocale(t *testing.T) {
	s, err := NewForLocale("en-GB")
	require.NoError(t, err)
	assert.Equal(t, -1, s.Compare("a", "B", Asc))
	assert.Equal(t, "en-GB", s.Tag().String())

	s, err = NewForLocale("")
	require.NoError(t, err)
	assert.Equal(t, "fr", s.Tag().String())

	_, err = NewForLocale("not a locale!")
	assert.Error(t, err)
}

func TestCompareReturnsUnitValues(t *testing.T) {
	s := Default()
	assert.Equal(t, 0, s.Compare(nil, nil, Desc))
	assert.Equal(t, 1, s.Compare(nil, "x", Desc))
	assert.Equal(t, -1, s.Compare("x", nil, Desc))
	assert.Equal(t, 1, s.Compare(10, 2, Asc))
	assert.Equal(t, -1, s.Compare(10, 2, Desc))
	assert.Equal(t, 0, s.Compare("abc", "ABC", Asc))
}
