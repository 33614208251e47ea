package formatter

import (
	"github.com/oakwood-commons/trainctl/internal/column"
	"github.com/oakwood-commons/trainctl/internal/record"
	"github.com/oakwood-commons/trainctl/internal/sorter"
)

// Grid is a page ready for output: visible descriptors and their rows.
type Grid struct {
	Columns []column.Descriptor
	Rows    []record.Row
	// SortKey and SortOrder decorate the sorted column's header.
	SortKey   string
	SortOrder sorter.Order
	// Page metadata for structured outputs.
	Page         int
	TotalPages   int
	TotalRecords int
	PageSize     int
}

// Headers returns column labels, with the sort arrow on the sorted column.
func (g Grid) Headers() []string {
	out := make([]string, len(g.Columns))
	for i, c := range g.Columns {
		out[i] = c.Label()
		if g.SortKey != "" && c.Key == g.SortKey {
			out[i] += " " + g.SortOrder.Arrow()
		}
	}
	return out
}

// Cells renders every row through its column renderers.
func (g Grid) Cells() [][]string {
	out := make([][]string, len(g.Rows))
	for r, row := range g.Rows {
		cells := make([]string, len(g.Columns))
		for i, c := range g.Columns {
			cells[i] = c.Cell(row)
		}
		out[r] = cells
	}
	return out
}

// Hints derives column hints: descriptor widths cap columns and the id
// column is right-aligned and never shrunk first.
func (g Grid) Hints() []ColumnHint {
	out := make([]ColumnHint, len(g.Columns))
	for i, c := range g.Columns {
		out[i].MaxWidth = c.Width
		if c.Key == record.IDField {
			out[i].Align = "right"
			out[i].Priority = 10
		}
	}
	return out
}

// Raw returns each row's visible fields keyed by column key, unrendered.
func (g Grid) Raw() []map[string]any {
	out := make([]map[string]any, len(g.Rows))
	for r, row := range g.Rows {
		m := make(map[string]any, len(g.Columns))
		for _, c := range g.Columns {
			m[c.Key] = row.Field(c.Key)
		}
		out[r] = m
	}
	return out
}

// Render produces the text table.
func (g Grid) Render(opts ColumnarOptions) string {
	if opts.Hints == nil {
		opts.Hints = g.Hints()
	}
	return RenderColumnar(g.Headers(), g.Cells(), opts)
}
