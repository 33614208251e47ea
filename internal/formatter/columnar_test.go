package formatter

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderColumnar(t *testing.T) {
	t.Run("basic render", func(t *testing.T) {
		out := RenderColumnar([]string{"name", "age"}, [][]string{{"Alice", "30"}, {"Bob", "25"}}, ColumnarOptions{NoColor: true, RowNumbers: true})
		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		require.Len(t, lines, 4)
		assert.Contains(t, lines[0], "#")
		assert.Contains(t, lines[0], "name")
		assert.True(t, strings.HasPrefix(lines[1], "─"))
		assert.True(t, strings.HasPrefix(lines[2], "1  Alice"))
		assert.True(t, strings.HasPrefix(lines[3], "2  Bob"))
	})

	t.Run("row offset continues numbering across pages", func(t *testing.T) {
		out := RenderColumnar([]string{"v"}, [][]string{{"a"}, {"b"}}, ColumnarOptions{NoColor: true, RowNumbers: true, RowOffset: 9})
		assert.Contains(t, out, "10  a")
		assert.Contains(t, out, "11  b")
	})

	t.Run("no headers", func(t *testing.T) {
		assert.Empty(t, RenderColumnar(nil, [][]string{{"x"}}, ColumnarOptions{}))
	})

	t.Run("empty rows still render header", func(t *testing.T) {
		out := RenderColumnar([]string{"name"}, nil, ColumnarOptions{NoColor: true})
		assert.Equal(t, 2, strings.Count(out, "\n"))
	})

	t.Run("right alignment", func(t *testing.T) {
		out := RenderColumnar([]string{"id", "n"}, [][]string{{"7", "x"}, {"123", "y"}}, ColumnarOptions{
			NoColor: true,
			Hints:   []ColumnHint{{Align: "right"}},
		})
		assert.Contains(t, out, "  7  x")
	})

	t.Run("fits total width", func(t *testing.T) {
		long := strings.Repeat("é", 60)
		out := RenderColumnar([]string{"title", "dept"}, [][]string{{long, "IT"}}, ColumnarOptions{NoColor: true, TotalWidth: 30})
		for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
			assert.LessOrEqual(t, runewidth.StringWidth(line), 30, line)
		}
		assert.Contains(t, out, "…")
	})
}

func TestColumnWidthsPriority(t *testing.T) {
	headers := []string{"id", "title", "notes"}
	rows := [][]string{{"1", strings.Repeat("t", 20), strings.Repeat("n", 20)}}
	widths := columnWidths(headers, rows, 30, []ColumnHint{{Priority: 10}, {Priority: 5}, {Priority: 0}})
	assert.Equal(t, 30-2*sepWidth, sum(widths))
	assert.Equal(t, 20, widths[1], "higher priority column keeps its width")
	assert.Equal(t, 2, widths[0])
}

func TestColumnWidthsMaxWidth(t *testing.T) {
	widths := columnWidths([]string{"a"}, [][]string{{strings.Repeat("x", 50)}}, 0, []ColumnHint{{MaxWidth: 10}})
	assert.Equal(t, []int{10}, widths)
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab  ", pad("ab", 4, false))
	assert.Equal(t, "  ab", pad("ab", 4, true))
	assert.Equal(t, 4, runewidth.StringWidth(pad("abcdefgh", 4, false)))
	assert.Equal(t, "日本", pad("日本", 4, false))
}
