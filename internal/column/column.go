// Package column describes table columns as a single ordered list of
// descriptors: identity (Key), display label (Header), sortability, default
// visibility and an explicit cell renderer.
package column

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oakwood-commons/trainctl/internal/record"
)

var (
	// ErrUnknownColumn is returned when a key or header matches no descriptor.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrAmbiguousHeader is returned when a header lookup matches more than one descriptor.
	ErrAmbiguousHeader = errors.New("ambiguous column header")
)

// Renderer turns a cell value into display text. row is the owning record.
type Renderer func(value any, row record.Row) string

// Descriptor is one column of a table.
type Descriptor struct {
	Key      string // data key, also the column identity
	Header   string // display label; need not be unique
	Sortable bool
	Hidden   bool // hidden until toggled on
	Width    int  // preferred width in cells, 0 = auto
	Render   Renderer
}

// Cell renders the descriptor's value for row, falling back to Identity.
func (d Descriptor) Cell(row record.Row) string {
	v := row.Field(d.Key)
	if d.Render != nil {
		return d.Render(v, row)
	}
	return Identity(v, row)
}

// Label returns the header, or the key when no header is set.
func (d Descriptor) Label() string {
	if d.Header != "" {
		return d.Header
	}
	return d.Key
}

// Set is an ordered, validated list of descriptors.
type Set struct {
	cols  []Descriptor
	byKey map[string]int
}

// NewSet validates descriptors: keys must be non-empty and unique.
func NewSet(cols ...Descriptor) (Set, error) {
	s := Set{cols: make([]Descriptor, 0, len(cols)), byKey: make(map[string]int, len(cols))}
	for i, c := range cols {
		if strings.TrimSpace(c.Key) == "" {
			return Set{}, fmt.Errorf("column %d: empty key", i)
		}
		if _, dup := s.byKey[c.Key]; dup {
			return Set{}, fmt.Errorf("column %q: duplicate key", c.Key)
		}
		s.byKey[c.Key] = len(s.cols)
		s.cols = append(s.cols, c)
	}
	return s, nil
}

// MustSet is NewSet for static column lists; it panics on invalid input.
func MustSet(cols ...Descriptor) Set {
	s, err := NewSet(cols...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of columns.
func (s Set) Len() int { return len(s.cols) }

// All returns the descriptors in order.
func (s Set) All() []Descriptor {
	out := make([]Descriptor, len(s.cols))
	copy(out, s.cols)
	return out
}

// Keys returns the column keys in order.
func (s Set) Keys() []string {
	out := make([]string, len(s.cols))
	for i, c := range s.cols {
		out[i] = c.Key
	}
	return out
}

// Get returns the descriptor with the given key.
func (s Set) Get(key string) (Descriptor, bool) {
	i, ok := s.byKey[key]
	if !ok {
		return Descriptor{}, false
	}
	return s.cols[i], true
}

// Lookup resolves a key, or failing that a header label (case-insensitive).
// Header lookups must be unambiguous.
func (s Set) Lookup(keyOrHeader string) (Descriptor, error) {
	if d, ok := s.Get(keyOrHeader); ok {
		return d, nil
	}
	var found []Descriptor
	for _, c := range s.cols {
		if strings.EqualFold(c.Label(), keyOrHeader) {
			found = append(found, c)
		}
	}
	switch len(found) {
	case 0:
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownColumn, keyOrHeader)
	case 1:
		return found[0], nil
	}
	return Descriptor{}, fmt.Errorf("%w: %q", ErrAmbiguousHeader, keyOrHeader)
}

// SortableKeys returns the keys of sortable columns in order.
func (s Set) SortableKeys() []string {
	var out []string
	for _, c := range s.cols {
		if c.Sortable {
			out = append(out, c.Key)
		}
	}
	return out
}

// DefaultVisibleKeys returns the keys of columns not hidden by default.
func (s Set) DefaultVisibleKeys() []string {
	var out []string
	for _, c := range s.cols {
		if !c.Hidden {
			out = append(out, c.Key)
		}
	}
	return out
}

// Identity is the default renderer.
func Identity(value any, _ record.Row) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case time.Time:
		return v.Format("2006-01-02")
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = Identity(e, nil)
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(value)
}
