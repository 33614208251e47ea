package formatter

import (
	"slices"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	sepWidth    = 2
	minColWidth = 3
	maxColWidth = 40
)

// ColumnHint carries per-column display preferences.
type ColumnHint struct {
	// MaxWidth caps the column, 0 = no cap.
	MaxWidth int
	// Priority: higher values resist shrinking.
	Priority int
	// Align is "right" or "left" (default).
	Align string
}

// ColumnarOptions configures RenderColumnar.
type ColumnarOptions struct {
	NoColor bool
	// TotalWidth is the available width; 0 means unlimited.
	TotalWidth int
	// RowNumbers prefixes each row with its 1-based position starting at RowOffset+1.
	RowNumbers bool
	RowOffset  int
	// Hints are matched to headers by index.
	Hints []ColumnHint
}

// RenderColumnar renders headers and rows as an aligned table with a rule
// under the header. Cells wider than their column are truncated with an ellipsis.
func RenderColumnar(headers []string, rows [][]string, opts ColumnarOptions) string {
	if len(headers) == 0 {
		return ""
	}
	numWidth := 0
	if opts.RowNumbers {
		numWidth = max(len(strconv.Itoa(opts.RowOffset+len(rows))), 1)
	}
	available := opts.TotalWidth
	if available > 0 && opts.RowNumbers {
		available -= numWidth + sepWidth
	}
	widths := columnWidths(headers, rows, available, opts.Hints)

	var b strings.Builder
	cells := make([]string, 0, len(headers)+1)
	if opts.RowNumbers {
		cells = append(cells, style(headerStyle.Render, pad("#", numWidth, false), opts.NoColor))
	}
	for i, h := range headers {
		cells = append(cells, style(headerStyle.Render, pad(h, widths[i], false), opts.NoColor))
	}
	b.WriteString(strings.Join(cells, strings.Repeat(" ", sepWidth)) + "\n")

	ruleWidth := sepWidth * (len(widths) - 1)
	for _, w := range widths {
		ruleWidth += w
	}
	if opts.RowNumbers {
		ruleWidth += numWidth + sepWidth
	}
	b.WriteString(style(separatorStyle.Render, strings.Repeat("─", ruleWidth), opts.NoColor) + "\n")

	for r, row := range rows {
		cells = cells[:0]
		if opts.RowNumbers {
			n := pad(strconv.Itoa(opts.RowOffset+r+1), numWidth, true)
			cells = append(cells, style(rowNumStyle.Render, n, opts.NoColor))
		}
		for i := range headers {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			right := i < len(opts.Hints) && opts.Hints[i].Align == "right"
			cells = append(cells, style(valueStyle.Render, pad(val, widths[i], right), opts.NoColor))
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, strings.Repeat(" ", sepWidth)), " ") + "\n")
	}
	return b.String()
}

func style(render func(...string) string, s string, noColor bool) string {
	if noColor {
		return s
	}
	return render(s)
}

// columnWidths sizes columns to their content, applies MaxWidth caps, and
// shrinks lowest-priority columns first when the total exceeds available.
func columnWidths(headers []string, rows [][]string, available int, hints []ColumnHint) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}
	for i := range widths {
		if i < len(hints) && hints[i].MaxWidth > 0 {
			widths[i] = min(widths[i], max(hints[i].MaxWidth, minColWidth))
		}
	}
	if available <= 0 {
		return widths
	}
	usable := available - sepWidth*(len(widths)-1)
	if sum(widths) <= usable {
		return widths
	}
	for i := range widths {
		widths[i] = min(widths[i], maxColWidth)
	}

	order := make([]int, len(widths))
	for i := range order {
		order[i] = i
	}
	priority := func(i int) int {
		if i < len(hints) {
			return hints[i].Priority
		}
		return 0
	}
	// Lowest priority first; among equals, widest first.
	slices.SortStableFunc(order, func(a, b int) int {
		if pa, pb := priority(a), priority(b); pa != pb {
			return pa - pb
		}
		return widths[b] - widths[a]
	})
	excess := sum(widths) - usable
	for _, i := range order {
		if excess <= 0 {
			break
		}
		shrink := min(widths[i]-minColWidth, excess)
		if shrink > 0 {
			widths[i] -= shrink
			excess -= shrink
		}
	}
	return widths
}

func sum(ws []int) int {
	total := 0
	for _, w := range ws {
		total += w
	}
	return total
}

// pad truncates s to width display cells and pads it with spaces.
func pad(s string, width int, right bool) string {
	s = runewidth.Truncate(s, width, "…")
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}
