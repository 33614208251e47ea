// Package record defines the row abstraction shared by the table engine,
// the action dispatcher and the API client.
package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IDField is the field every row exposes as its stable identifier.
const IDField = "id"

// Row is one record of a rendered dataset. Rows are opaque to the engine
// beyond their identifier and keyed field access.
type Row interface {
	RowID() string
	Field(key string) any
}

// Record is the generic Row decoded from the API: a JSON object.
type Record map[string]any

// RowID returns the id field rendered as a string ("" when missing).
func (r Record) RowID() string {
	return FormatID(r[IDField])
}

// Field returns the value stored under key. Dotted keys walk nested objects,
// so "trainer.name" reads r["trainer"]["name"].
func (r Record) Field(key string) any {
	if v, ok := r[key]; ok {
		return v
	}
	if !strings.Contains(key, ".") {
		return nil
	}
	var cur any = map[string]any(r)
	for _, part := range strings.Split(key, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	}
	return nil, false
}

// FormatID renders an identifier value the way it appears in URLs: integral
// floats lose their decimal part so a JSON 42 becomes "42".
func FormatID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(id), 'f', -1, 32)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	}
	return fmt.Sprint(v)
}

// IDs returns the identifiers of rows in order.
func IDs[R Row](rows []R) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.RowID()
	}
	return out
}
