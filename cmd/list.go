package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/trainctl/internal/config"
	"github.com/oakwood-commons/trainctl/internal/formatter"
	"github.com/oakwood-commons/trainctl/internal/page"
	"github.com/oakwood-commons/trainctl/internal/pagination"
	"github.com/oakwood-commons/trainctl/internal/record"
	"github.com/oakwood-commons/trainctl/internal/sorter"
)

type listOptions struct {
	page       int
	pageSize   int
	sort       string
	order      string
	columns    []string
	output     string
	width      int
	rowNumbers bool
}

func newListCmd() *cobra.Command {
	o := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "Print one page of a table",
		Long: `Fetch a table and print one page of it.

Sorting applies to the whole table before paging. Columns are selected by
key; hidden columns can be listed explicitly.`,
		Example: `  trainctl list needs
  trainctl list needs --page 2 --sort Date --order desc
  trainctl list users --columns id,name,role -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args[0], o)
		},
	}
	f := cmd.Flags()
	f.IntVar(&o.page, "page", 1, "page number, starting at 1")
	f.IntVar(&o.pageSize, "page-size", 0, "rows per page (default from config)")
	f.StringVar(&o.sort, "sort", "", "column key or header to sort by")
	f.StringVar(&o.order, "order", "asc", "sort order: asc|desc")
	f.StringSliceVar(&o.columns, "columns", nil, "comma-separated column keys to show")
	f.StringVarP(&o.output, "output", "o", "table", "output format: table|json|yaml|toml|csv")
	f.IntVar(&o.width, "width", 0, "output width in columns (default: terminal width)")
	f.BoolVar(&o.rowNumbers, "row-numbers", false, "prefix rows with their position")
	return cmd
}

func runList(cmd *cobra.Command, name string, o *listOptions) error {
	format, err := formatter.ParseFormat(o.output)
	if err != nil {
		return err
	}
	order, err := sorter.ParseOrder(o.order)
	if err != nil {
		return err
	}
	if o.pageSize != 0 {
		if err := (pagination.Config{Page: o.page, PageSize: o.pageSize}).Validate(); err != nil {
			return err
		}
	} else if o.page < 1 {
		return fmt.Errorf("--page must be at least 1, got %d", o.page)
	}

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	p, err := e.loadedPage(cmd.Context(), name, page.Options{}, func(t *config.Table) {
		if o.pageSize > 0 {
			t.PageSize = o.pageSize
		}
	})
	if err != nil {
		return err
	}

	if o.sort != "" {
		if err := p.Sort(o.sort, order); err != nil {
			return err
		}
	}
	if len(o.columns) > 0 {
		if err := showOnly(p, o.columns); err != nil {
			return err
		}
	}

	total := p.Engine.TotalPages()
	if o.page > max(total, 1) {
		return fmt.Errorf("page %d out of range: %s has %d page(s)", o.page, name, total)
	}
	p.Engine.SetCurrentPage(o.page)

	g := grid(p)
	run := runSettings(cmd)
	out := cmd.OutOrStdout()
	opts := formatter.ColumnarOptions{
		NoColor:    run.NoColor || !isTerminal(out),
		TotalWidth: outputWidth(out, o.width),
		RowNumbers: o.rowNumbers,
		RowOffset:  (p.Engine.CurrentPage() - 1) * p.Engine.PageSize(),
	}
	if err := formatter.Write(out, format, g, opts); err != nil {
		return err
	}
	if format == formatter.FormatTable && !run.IsQuiet {
		_, err = fmt.Fprintf(out, "\npage %d/%d · %d records\n", g.Page, max(g.TotalPages, 1), g.TotalRecords)
	}
	return err
}

// showOnly makes exactly keys visible, in the engine's column order.
func showOnly(p *page.Page, keys []string) error {
	want := make([]string, 0, len(keys))
	for _, k := range keys {
		d, err := p.Engine.Columns().Lookup(strings.TrimSpace(k))
		if err != nil {
			return err
		}
		want = append(want, d.Key)
	}
	for _, d := range p.Engine.Columns().All() {
		if p.Engine.IsVisible(d.Key) != slices.Contains(want, d.Key) {
			if err := p.Engine.ToggleColumnVisibility(d.Key); err != nil {
				return err
			}
		}
	}
	return nil
}

func grid(p *page.Page) formatter.Grid {
	key, order := p.Engine.SortState()
	data := p.Engine.PaginatedData()
	rows := make([]record.Row, len(data))
	for i, r := range data {
		rows[i] = r
	}
	return formatter.Grid{
		Columns:      p.Engine.VisibleDescriptors(),
		Rows:         rows,
		SortKey:      key,
		SortOrder:    order,
		Page:         p.Engine.CurrentPage(),
		TotalPages:   p.Engine.TotalPages(),
		TotalRecords: p.Engine.TotalRecords(),
		PageSize:     p.Engine.PageSize(),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// outputWidth prefers the flag, then the terminal width; 0 means unlimited.
func outputWidth(w io.Writer, flag int) int {
	if flag > 0 {
		return flag
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			return width
		}
	}
	return 0
}
