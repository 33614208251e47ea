// Package sorter orders rows by a single column with typed comparisons:
// numbers numerically, ISO dates chronologically, everything else by
// case-insensitive collation. Missing values always sort last.
package sorter

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/oakwood-commons/trainctl/internal/record"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder accepts asc/ascending and desc/descending; "" means Asc.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	}
	return "", fmt.Errorf("invalid sort order %q (use asc|desc)", s)
}

// Toggle flips the direction.
func (o Order) Toggle() Order {
	if o == Desc {
		return Asc
	}
	return Desc
}

// Arrow returns the header indicator for the direction.
func (o Order) Arrow() string {
	if o == Desc {
		return "▼"
	}
	return "▲"
}

// Comparator compares two rows by key in the given order.
type Comparator func(a, b record.Row, key string, order Order) int

type kind int

const (
	kindNil kind = iota
	kindNumber
	kindDate
	kindString
)

type value struct {
	kind kind
	num  float64
	date time.Time
	str  string
}

// Sorter holds a collator; it is safe for concurrent use.
type Sorter struct {
	mu       sync.Mutex
	tag      language.Tag
	collator *collate.Collator
}

// New returns a Sorter collating strings for tag.
func New(tag language.Tag) *Sorter {
	return &Sorter{tag: tag, collator: collate.New(tag, collate.IgnoreCase)}
}

// Tag returns the collation language.
func (s *Sorter) Tag() language.Tag { return s.tag }

// NewForLocale parses a BCP 47 tag such as "fr" or "en-GB".
func NewForLocale(locale string) (*Sorter, error) {
	if strings.TrimSpace(locale) == "" {
		return New(language.French), nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return New(tag), nil
}

var defaultSorter = New(language.French)

// Default returns the shared French-collating sorter.
func Default() *Sorter { return defaultSorter }

// Compare orders two raw values. Nil values go last whatever the order.
func (s *Sorter) Compare(a, b any, order Order) int {
	va, vb := classify(a), classify(b)
	switch {
	case va.kind == kindNil && vb.kind == kindNil:
		return 0
	case va.kind == kindNil:
		return 1
	case vb.kind == kindNil:
		return -1
	}
	c := s.compareValues(va, vb)
	if order == Desc {
		c = -c
	}
	return c
}

// CompareRows is a Comparator reading key from both rows.
func (s *Sorter) CompareRows(a, b record.Row, key string, order Order) int {
	return s.Compare(a.Field(key), b.Field(key), order)
}

// Sort stably sorts rows in place.
func Sort[R record.Row](rows []R, key string, order Order, cmpFn Comparator) {
	slices.SortStableFunc(rows, func(a, b R) int {
		return cmpFn(a, b, key, order)
	})
}

func (s *Sorter) compareValues(a, b value) int {
	if a.kind != b.kind {
		// numbers < dates < strings keeps mixed columns transitive
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case kindNumber:
		return cmp.Compare(a.num, b.num)
	case kindDate:
		return a.date.Compare(b.date)
	}
	return s.compareStrings(a.str, b.str)
}

func (s *Sorter) compareStrings(a, b string) int {
	s.mu.Lock()
	c := s.collator.CompareString(a, b)
	s.mu.Unlock()
	return sign(c)
}

func sign(c int) int {
	switch {
	case c < 0:
		return -1
	case c > 0:
		return 1
	}
	return 0
}

func classify(v any) value {
	switch x := v.(type) {
	case nil:
		return value{kind: kindNil}
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return value{kind: kindNumber, num: f, str: x.String()}
		}
		return value{kind: kindString, str: x.String()}
	case time.Time:
		return value{kind: kindDate, date: x, str: x.Format(time.RFC3339)}
	case string:
		return classifyString(x)
	case bool:
		return value{kind: kindString, str: strconv.FormatBool(x)}
	}
	if f, ok := toFloat(v); ok {
		return value{kind: kindNumber, num: f, str: fmt.Sprint(v)}
	}
	return value{kind: kindString, str: fmt.Sprint(v)}
}

func classifyString(s string) value {
	t := strings.TrimSpace(s)
	if t != "" {
		if f, err := strconv.ParseFloat(t, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return value{kind: kindNumber, num: f, str: s}
		}
		if d, ok := record.ParseDate(t); ok {
			return value{kind: kindDate, date: d, str: s}
		}
	}
	return value{kind: kindString, str: s}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
