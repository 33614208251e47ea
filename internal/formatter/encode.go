package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/trainctl/internal/column"
)

// Format is an output format for `list`.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
	FormatCSV   Format = "csv"
)

// Formats lists accepted output formats.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatTOML, FormatCSV}

// ParseFormat accepts a format name; "" and "text" mean table, "yml" means yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table", "text":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported output format %q (use table|json|yaml|toml|csv)", s)
}

// document is the structured shape of a page.
type document struct {
	Page         int              `json:"page" yaml:"page" toml:"page"`
	PageSize     int              `json:"page_size" yaml:"page_size" toml:"page_size"`
	TotalPages   int              `json:"total_pages" yaml:"total_pages" toml:"total_pages"`
	TotalRecords int              `json:"total_records" yaml:"total_records" toml:"total_records"`
	Rows         []map[string]any `json:"rows" yaml:"rows" toml:"rows"`
}

// Write renders g to w in format f. Table output uses opts.
func Write(w io.Writer, f Format, g Grid, opts ColumnarOptions) error {
	switch f {
	case FormatTable:
		_, err := io.WriteString(w, g.Render(opts))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g.document())
	case FormatYAML:
		return writeYAML(w, g)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(tomlSafe(g.document()))
	case FormatCSV:
		return writeCSV(w, g)
	}
	return fmt.Errorf("unsupported output format %q", f)
}

func (g Grid) document() document {
	return document{
		Page:         g.Page,
		PageSize:     g.PageSize,
		TotalPages:   g.TotalPages,
		TotalRecords: g.TotalRecords,
		Rows:         g.Raw(),
	}
}

// writeYAML keeps rows' keys in column order rather than the map's sorted order.
func writeYAML(w io.Writer, g Grid) error {
	rows := &yaml.Node{Kind: yaml.SequenceNode}
	for _, raw := range g.Raw() {
		row := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range g.Columns {
			var val yaml.Node
			if err := val.Encode(raw[c.Key]); err != nil {
				return fmt.Errorf("encode %s: %w", c.Key, err)
			}
			row.Content = append(row.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: c.Key}, &val)
		}
		rows.Content = append(rows.Content, row)
	}
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, kv := range []struct {
		key string
		val int
	}{{"page", g.Page}, {"page_size", g.PageSize}, {"total_pages", g.TotalPages}, {"total_records", g.TotalRecords}} {
		var val yaml.Node
		if err := val.Encode(kv.val); err != nil {
			return err
		}
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: kv.key}, &val)
	}
	doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: "rows"}, rows)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// tomlSafe drops nil values, which TOML cannot represent.
func tomlSafe(d document) document {
	for _, row := range d.Rows {
		for k, v := range row {
			if v == nil {
				delete(row, k)
			}
		}
	}
	return d
}

// writeCSV emits raw values with column keys as the header row.
func writeCSV(w io.Writer, g Grid) error {
	cw := csv.NewWriter(w)
	keys := make([]string, len(g.Columns))
	for i, c := range g.Columns {
		keys[i] = c.Key
	}
	if err := cw.Write(keys); err != nil {
		return err
	}
	for _, row := range g.Rows {
		rec := make([]string, len(g.Columns))
		for i, c := range g.Columns {
			rec[i] = column.Identity(row.Field(c.Key), row)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
