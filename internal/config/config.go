// Package config holds the trainctl configuration model, the embedded
// default catalogue, and validation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/trainctl/internal/action"
	"github.com/oakwood-commons/trainctl/internal/column"
	"github.com/oakwood-commons/trainctl/internal/pagination"
	"github.com/oakwood-commons/trainctl/internal/policy"
	"github.com/oakwood-commons/trainctl/internal/sorter"
	"github.com/oakwood-commons/trainctl/internal/status"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// ErrUnknownTable is returned by Table for names absent from the catalogue.
var ErrUnknownTable = errors.New("unknown table")

// DefaultYAML returns the embedded default configuration document.
func DefaultYAML() []byte {
	return slices.Clone(defaultConfigYAML)
}

// Default parses the embedded default configuration.
func Default() (Config, error) {
	return Parse(defaultConfigYAML)
}

// Parse decodes a YAML document.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// TableNames returns the catalogue in alphabetical order.
func (c Config) TableNames() []string {
	names := make([]string, 0, len(c.Tables))
	for name := range c.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table returns the named table configuration.
func (c Config) Table(name string) (Table, error) {
	t, ok := c.Tables[strings.ToLower(name)]
	if !ok {
		return Table{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownTable, name, strings.Join(c.TableNames(), ", "))
	}
	return t, nil
}

// Validate checks the whole configuration, compiling policy rules so bad
// expressions fail at startup rather than on first render.
func (c Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.TimeoutSeconds < 0 {
		return errors.New("api.timeout_seconds must not be negative")
	}
	if c.Locale != "" {
		if _, err := sorter.NewForLocale(c.Locale); err != nil {
			return err
		}
	}
	if len(c.Tables) == 0 {
		return errors.New("no tables configured")
	}
	for _, name := range c.TableNames() {
		if err := c.Tables[name].Validate(); err != nil {
			return fmt.Errorf("table %s: %w", name, err)
		}
	}
	return nil
}

// Validate checks one table.
func (t Table) Validate() error {
	if strings.TrimSpace(t.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if t.PageSize < 0 {
		return errors.New("page_size must not be negative")
	}
	cols, err := t.ColumnSet()
	if err != nil {
		return err
	}
	if t.DefaultSort != nil {
		d, err := cols.Lookup(t.DefaultSort.Column)
		if err != nil {
			return fmt.Errorf("default_sort: %w", err)
		}
		if !d.Sortable {
			return fmt.Errorf("default_sort: column %q is not sortable", d.Key)
		}
		if _, err := sorter.ParseOrder(t.DefaultSort.Order); err != nil {
			return fmt.Errorf("default_sort: %w", err)
		}
	}
	if _, err := t.ActionKinds(); err != nil {
		return err
	}
	if _, err := policy.NewRules(t.Policy); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	if t.Status != nil {
		if t.Status.Field == "" {
			return errors.New("status.field is required")
		}
		if _, err := status.ParseVariant(t.Status.Variant); err != nil {
			return err
		}
	}
	if t.Cancel != nil && t.Cancel.Field == "" {
		return errors.New("cancel.field is required")
	}
	return nil
}

// DefaultTimeout applies when TimeoutSeconds is zero.
const DefaultTimeout = 30 * time.Second

// Timeout returns the request timeout.
func (a API) Timeout() time.Duration {
	if a.TimeoutSeconds > 0 {
		return time.Duration(a.TimeoutSeconds) * time.Second
	}
	return DefaultTimeout
}

// EffectivePageSize returns PageSize or the default.
func (t Table) EffectivePageSize() int {
	if t.PageSize > 0 {
		return t.PageSize
	}
	return pagination.DefaultPageSize
}

// EffectiveUpdateEndpoint returns UpdateEndpoint or Endpoint.
func (t Table) EffectiveUpdateEndpoint() string {
	if t.UpdateEndpoint != "" {
		return t.UpdateEndpoint
	}
	return t.Endpoint
}

// ActionKinds parses Actions.
func (t Table) ActionKinds() ([]action.Kind, error) {
	return action.ParseKinds(t.Actions)
}

// ColumnSet converts Columns into a validated descriptor set rendered in
// column.DefaultLanguage.
func (t Table) ColumnSet() (column.Set, error) {
	return t.ColumnSetFor(column.DefaultLanguage)
}

// ColumnSetFor is ColumnSet with dates and amounts rendered for tag.
func (t Table) ColumnSetFor(tag language.Tag) (column.Set, error) {
	formats := column.NewFormats(tag)
	descs := make([]column.Descriptor, 0, len(t.Columns))
	for _, c := range t.Columns {
		r, err := formats.Renderer(c.Format)
		if err != nil {
			return column.Set{}, fmt.Errorf("column %s: %w", c.Key, err)
		}
		descs = append(descs, column.Descriptor{
			Key:      c.Key,
			Header:   c.Header,
			Sortable: c.Sortable,
			Hidden:   c.Hidden,
			Width:    c.Width,
			Render:   r,
		})
	}
	return column.NewSet(descs...)
}
