// Package page assembles one configured table: its data source, table
// engine, action dispatcher, delete and cancel confirmation flows and
// status editor. Both the static `list` output and the TUI drive a Page.
package page

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/trainctl/internal/action"
	"github.com/oakwood-commons/trainctl/internal/api"
	"github.com/oakwood-commons/trainctl/internal/config"
	"github.com/oakwood-commons/trainctl/internal/confirm"
	"github.com/oakwood-commons/trainctl/internal/policy"
	"github.com/oakwood-commons/trainctl/internal/record"
	"github.com/oakwood-commons/trainctl/internal/sorter"
	"github.com/oakwood-commons/trainctl/internal/status"
	"github.com/oakwood-commons/trainctl/internal/tablestate"
	"github.com/oakwood-commons/trainctl/pkg/logger"
)

// Backend is the API surface a page needs; *api.Client satisfies it.
type Backend interface {
	api.Lister
	confirm.Deleter
	status.Updater
}

// Options carries the collaborators that differ between the CLI and the TUI.
type Options struct {
	Navigator action.Navigator
	Informer  action.Informer
	Sorter    *sorter.Sorter
	Logger    logr.Logger
	// Selected is the bulk-selection gate passed to the dispatcher.
	Selected *bool
}

// Page is one table screen.
type Page struct {
	Name   string
	Config config.Table

	Source  *api.Source
	Engine  *tablestate.Engine[record.Record]
	Actions *action.Dispatcher
	Delete  *confirm.Flow
	// Cancel is nil when the table has no cancel configuration.
	Cancel *confirm.Flow
	// Status is nil when the table has no status cell.
	Status *status.Editor

	cmp sorter.Comparator

	mu          sync.Mutex
	removed     []string
	refreshedAt time.Time
}

// Build wires a page for the named table.
func Build(name string, tbl config.Table, backend Backend, opts Options) (*Page, error) {
	srt := opts.Sorter
	if srt == nil {
		srt = sorter.Default()
	}
	cols, err := tbl.ColumnSetFor(srt.Tag())
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	kinds, err := tbl.ActionKinds()
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	lgr := opts.Logger
	if lgr.GetSink() == nil {
		lgr = *logger.GetGlobalLogger()
	}
	rules, err := policy.NewRules(tbl.Policy, policy.WithLogger(lgr.WithValues(logger.TableKey, name)))
	if err != nil {
		return nil, fmt.Errorf("table %s: policy: %w", name, err)
	}

	p := &Page{Name: name, Config: tbl, cmp: srt.CompareRows}

	p.Engine, err = tablestate.New[record.Record](nil, cols, tbl.EffectivePageSize(), tablestate.WithComparator(p.cmp))
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	if tbl.DefaultSort != nil {
		order, err := sorter.ParseOrder(tbl.DefaultSort.Order)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		if err := p.Engine.HandleSortData(tbl.DefaultSort.Column, order, p.cmp); err != nil {
			return nil, fmt.Errorf("table %s: default sort: %w", name, err)
		}
	}

	p.Source = api.NewSource(backend, tbl.Endpoint, nil)
	p.Source.OnChange(func([]record.Record) {
		p.mu.Lock()
		p.removed = nil
		p.refreshedAt = time.Now()
		p.mu.Unlock()
	})

	p.Delete = confirm.New(confirm.Config{
		BaseURL:         tbl.Endpoint,
		Deleter:         backend,
		OnDeleteSuccess: p.markRemoved,
		Revalidate:      p.Source.Revalidate,
	})

	if tbl.Cancel != nil {
		p.Cancel = confirm.New(confirm.Config{
			BaseURL:    tbl.EffectiveUpdateEndpoint(),
			Deleter:    cancelByUpdate{updater: backend, field: tbl.Cancel.Field, value: tbl.Cancel.Value},
			Revalidate: p.Source.Revalidate,
			Title:      "Cancel entry",
			Message:    tbl.Cancel.Message,
		})
	}

	if sc := tbl.Status; sc != nil {
		variant, err := status.ParseVariant(sc.Variant)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		p.Status = status.New(status.Config{
			Variant:          variant,
			BaseURL:          tbl.EffectiveUpdateEndpoint(),
			Field:            sc.Field,
			Options:          sc.Options,
			Sentinel:         sc.Sentinel,
			PermissionsField: sc.PermissionsField,
			Permissions:      sc.Permissions,
			Updater:          backend,
			Revalidate:       p.Source.Revalidate,
			Lookup:           p.Source.Find,
		})
	}

	cfg := action.Config{
		Actions:   kinds,
		ViewURL:   tbl.ViewURL,
		EditURL:   tbl.EditURL,
		Policy:    rules,
		Selected:  opts.Selected,
		Navigator: opts.Navigator,
		Informer:  opts.Informer,
		Deleter:   p.Delete,
	}
	if p.Cancel != nil {
		cfg.OpenCancelModal = p.Cancel.Request
	}
	p.Actions = action.NewDispatcher(cfg)
	return p, nil
}

// Title returns the configured title or the table name.
func (p *Page) Title() string {
	if p.Config.Title != "" {
		return p.Config.Title
	}
	return p.Name
}

// Load fetches the rows and syncs the engine.
func (p *Page) Load(ctx context.Context) error {
	if err := p.Source.Load(ctx); err != nil {
		return err
	}
	p.Sync()
	return nil
}

// Sync copies the source's rows into the engine, dropping rows deleted
// since the last successful fetch. Call it from the goroutine that owns the engine.
func (p *Page) Sync() {
	rows := p.Source.Rows()
	p.mu.Lock()
	removed := slices.Clone(p.removed)
	p.mu.Unlock()

	p.Engine.SetData(rows)
	for _, id := range removed {
		p.Engine.Remove(id)
	}
}

// RefreshedAt returns the time of the last successful fetch.
func (p *Page) RefreshedAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshedAt
}

// Sort sorts by a column key or header.
func (p *Page) Sort(keyOrHeader string, order sorter.Order) error {
	return p.Engine.HandleSortData(keyOrHeader, order, p.cmp)
}

// CycleSort sorts ascending by key, or flips the order when key is already the sort column.
func (p *Page) CycleSort(key string) error {
	current, order := p.Engine.SortState()
	next := sorter.Asc
	if current == key {
		next = order.Toggle()
	}
	return p.Sort(key, next)
}

func (p *Page) markRemoved(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, id)
}

// cancelByUpdate runs the cancel confirmation through the delete flow by
// writing the cancelled value instead of deleting.
type cancelByUpdate struct {
	updater status.Updater
	field   string
	value   string
}

func (c cancelByUpdate) Delete(ctx context.Context, baseURL, id string) error {
	return c.updater.Put(ctx, baseURL, map[string]any{record.IDField: id, c.field: c.value})
}
