// Package tablestate owns the pagination, sort and column-visibility state of
// one table instance and derives the page slice handed to renderers.
//
// The engine sorts the whole dataset, not only the visible page, and never
// resets the current page after a sort: the page number a user was looking at
// stays put even if that leaves them on a different set of rows.
package tablestate

import (
	"errors"
	"fmt"
	"slices"

	"github.com/oakwood-commons/trainctl/internal/column"
	"github.com/oakwood-commons/trainctl/internal/pagination"
	"github.com/oakwood-commons/trainctl/internal/record"
	"github.com/oakwood-commons/trainctl/internal/sorter"
)

var (
	// ErrNotSortable is returned when sorting by a column outside the sortable set.
	ErrNotSortable = errors.New("column is not sortable")
	// ErrInvalidPageSize is returned by New for page sizes below 1.
	ErrInvalidPageSize = errors.New("page size must be positive")
)

// Option configures an Engine.
type Option func(*options)

type options struct {
	defaultVisible []string
	hasVisible     bool
	comparator     sorter.Comparator
}

// WithDefaultVisible overrides the descriptors' default visibility with an
// explicit subset of column keys (or unambiguous headers).
func WithDefaultVisible(keys ...string) Option {
	return func(o *options) {
		o.defaultVisible = keys
		o.hasVisible = true
	}
}

// WithComparator sets the comparator used when re-applying the sort after SetData.
func WithComparator(c sorter.Comparator) Option {
	return func(o *options) { o.comparator = c }
}

// Engine is the table state for one dataset. It is not safe for concurrent
// use; UI code mutates it from its single update loop.
type Engine[R record.Row] struct {
	cols        column.Set
	data        []R
	pageSize    int
	currentPage int
	sortKey     string
	sortOrder   sorter.Order
	comparator  sorter.Comparator
	visible     map[string]bool
}

// New builds an engine over a copy of data.
func New[R record.Row](data []R, cols column.Set, pageSize int, opts ...Option) (*Engine[R], error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}
	o := options{comparator: sorter.Default().CompareRows}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine[R]{
		cols:        cols,
		data:        slices.Clone(data),
		pageSize:    pageSize,
		currentPage: 1,
		sortOrder:   sorter.Asc,
		comparator:  o.comparator,
		visible:     make(map[string]bool, cols.Len()),
	}

	initial := cols.DefaultVisibleKeys()
	if o.hasVisible {
		initial = initial[:0:0]
		for _, k := range o.defaultVisible {
			d, err := cols.Lookup(k)
			if err != nil {
				return nil, fmt.Errorf("default visible columns: %w", err)
			}
			initial = append(initial, d.Key)
		}
	}
	for _, k := range initial {
		e.visible[k] = true
	}
	return e, nil
}

// Columns returns the column set.
func (e *Engine[R]) Columns() column.Set { return e.cols }

// VisibleColumns returns the visible columns in descriptor order. Columns are
// identified by key, not header: headers are display labels and two columns
// may share one. Use VisibleDescriptors for the headers.
func (e *Engine[R]) VisibleColumns() []string {
	out := []string{}
	for _, k := range e.cols.Keys() {
		if e.visible[k] {
			out = append(out, k)
		}
	}
	return out
}

// VisibleDescriptors returns the visible column descriptors in order.
func (e *Engine[R]) VisibleDescriptors() []column.Descriptor {
	out := []column.Descriptor{}
	for _, d := range e.cols.All() {
		if e.visible[d.Key] {
			out = append(out, d)
		}
	}
	return out
}

// IsVisible reports whether the column is currently shown.
func (e *Engine[R]) IsVisible(key string) bool { return e.visible[key] }

// ToggleColumnVisibility flips a column's membership in the visible set.
// Hiding every column is allowed.
func (e *Engine[R]) ToggleColumnVisibility(keyOrHeader string) error {
	d, err := e.cols.Lookup(keyOrHeader)
	if err != nil {
		return err
	}
	if e.visible[d.Key] {
		delete(e.visible, d.Key)
	} else {
		e.visible[d.Key] = true
	}
	return nil
}

// SortableColumns returns the keys of sortable columns.
func (e *Engine[R]) SortableColumns() []string { return e.cols.SortableKeys() }

// HandleSortData sorts the full dataset by the column and remembers the sort
// so SetData can re-apply it. The current page is left untouched.
func (e *Engine[R]) HandleSortData(keyOrHeader string, order sorter.Order, cmp sorter.Comparator) error {
	d, err := e.cols.Lookup(keyOrHeader)
	if err != nil {
		return err
	}
	if !d.Sortable {
		return fmt.Errorf("%w: %q", ErrNotSortable, d.Key)
	}
	if cmp == nil {
		cmp = e.comparator
	}
	sorter.Sort(e.data, d.Key, order, cmp)
	e.sortKey = d.Key
	e.sortOrder = order
	e.comparator = cmp
	return nil
}

// SortState returns the active sort column key ("" when unsorted) and order.
func (e *Engine[R]) SortState() (string, sorter.Order) { return e.sortKey, e.sortOrder }

// CurrentPage returns the 1-indexed page.
func (e *Engine[R]) CurrentPage() int { return e.currentPage }

// SetCurrentPage moves to page n, clamped to the existing pages.
func (e *Engine[R]) SetCurrentPage(n int) {
	e.currentPage = pagination.Clamp(n, len(e.data), e.pageSize)
}

// NextPage advances one page if possible and reports whether it moved.
func (e *Engine[R]) NextPage() bool {
	before := e.currentPage
	e.SetCurrentPage(before + 1)
	return e.currentPage != before
}

// PrevPage goes back one page if possible and reports whether it moved.
func (e *Engine[R]) PrevPage() bool {
	before := e.currentPage
	e.SetCurrentPage(before - 1)
	return e.currentPage != before
}

// PageSize returns the fixed page size.
func (e *Engine[R]) PageSize() int { return e.pageSize }

// PaginatedData returns the rows of the current page, empty past the end.
func (e *Engine[R]) PaginatedData() []R {
	return slices.Clone(pagination.Apply(pagination.Config{Page: e.currentPage, PageSize: e.pageSize}, e.data))
}

// TotalRecords returns the dataset size.
func (e *Engine[R]) TotalRecords() int { return len(e.data) }

// TotalPages returns ceil(TotalRecords/PageSize).
func (e *Engine[R]) TotalPages() int { return pagination.TotalPages(len(e.data), e.pageSize) }

// Data returns a copy of the working dataset in its current order.
func (e *Engine[R]) Data() []R { return slices.Clone(e.data) }

// SetData replaces the dataset after a revalidation. The active sort is
// re-applied; page and visibility are kept as they are.
func (e *Engine[R]) SetData(data []R) {
	e.data = slices.Clone(data)
	if e.sortKey != "" {
		sorter.Sort(e.data, e.sortKey, e.sortOrder, e.comparator)
	}
}

// Find returns the row with the given id.
func (e *Engine[R]) Find(id string) (R, bool) {
	for _, r := range e.data {
		if r.RowID() == id {
			return r, true
		}
	}
	var zero R
	return zero, false
}

// Remove drops the row with the given id from the working copy, used for
// local removal before the authoritative refetch lands.
func (e *Engine[R]) Remove(id string) bool {
	i := slices.IndexFunc(e.data, func(r R) bool { return r.RowID() == id })
	if i < 0 {
		return false
	}
	e.data = slices.Delete(e.data, i, i+1)
	return true
}
