// Package pagination computes 1-indexed page windows over row slices.
package pagination

import (
	"fmt"
)

// DefaultPageSize is used when a table does not configure one.
const DefaultPageSize = 10

// Config holds the page-window parameters.
type Config struct {
	Page     int // 1-indexed
	PageSize int // rows per page, > 0
}

// Validate rejects non-positive page numbers and sizes.
func (c Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("--page-size must be positive, got %d", c.PageSize)
	}
	if c.Page < 1 {
		return fmt.Errorf("--page must be at least 1, got %d", c.Page)
	}
	return nil
}

// TotalPages returns ceil(total/pageSize); 0 for an empty dataset.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Clamp bounds page to [1, max(TotalPages,1)].
func Clamp(page, total, pageSize int) int {
	last := TotalPages(total, pageSize)
	if last < 1 {
		last = 1
	}
	switch {
	case page < 1:
		return 1
	case page > last:
		return last
	}
	return page
}

// Bounds returns the [start, end) window of the page within total rows.
// Pages past the end yield an empty window (start == end == total).
func (c Config) Bounds(total int) (start, end int) {
	if total <= 0 || c.PageSize <= 0 || c.Page < 1 {
		return 0, 0
	}
	start = (c.Page - 1) * c.PageSize
	if start > total {
		start = total
	}
	end = start + c.PageSize
	if end > total {
		end = total
	}
	return start, end
}

// Apply returns the page window of items. The result aliases items.
func Apply[T any](c Config, items []T) []T {
	start, end := c.Bounds(len(items))
	if start == end {
		return []T{}
	}
	return items[start:end]
}
