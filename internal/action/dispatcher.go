// Package action maps row actions (view, edit, delete, cancel) to icons,
// handlers and disabled states, and routes activations to navigation, custom
// handlers, the delete confirmation flow or the cancel modal.
package action

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/oakwood-commons/trainctl/internal/record"
	"github.com/oakwood-commons/trainctl/pkg/logger"
)

var (
	// ErrNotOffered is returned when activating an action the table does not expose.
	ErrNotOffered = errors.New("action not offered by this table")
)

// DefaultEditReason is shown when a policy blocks edit without explaining why.
const DefaultEditReason = "This entry can no longer be edited."

// Policy decides whether an action is disabled for a row. It is consulted on
// every render and every activation; implementations must not cache.
type Policy interface {
	Disabled(kind Kind, row record.Row) bool
}

// Reasoner is optionally implemented by policies that can explain a denial.
type Reasoner interface {
	Reason(kind Kind, row record.Row) string
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(kind Kind, row record.Row) bool

func (f PolicyFunc) Disabled(kind Kind, row record.Row) bool { return f(kind, row) }

// Navigator moves to another screen.
type Navigator interface {
	NavigateTo(path string, query url.Values) error
}

// Informer opens an informational modal.
type Informer interface {
	Inform(title, message string)
}

// DeleteRequester starts the delete confirmation flow for a row.
type DeleteRequester interface {
	Request(row record.Row) error
}

// Handler is a caller-supplied action handler.
type Handler func(row record.Row) error

// QueryBuilder builds navigation query parameters for a row.
type QueryBuilder func(row record.Row) url.Values

// Config wires a dispatcher to its page.
type Config struct {
	Actions []Kind
	Icons   map[Kind]string

	ViewURL   string
	EditURL   string
	ViewQuery QueryBuilder
	EditQuery QueryBuilder

	CustomView      Handler
	CustomEdit      Handler
	OpenCancelModal Handler

	Policy       Policy
	EditDisabled func(row record.Row) bool
	// Selected is the bulk-selection gate: nil means no gate, false disables every action.
	Selected *bool

	Navigator Navigator
	Informer  Informer
	Deleter   DeleteRequester
}

// Button is the rendered state of one action for one row.
type Button struct {
	Kind     Kind
	Icon     string
	Label    string
	Disabled bool
}

// Outcome reports what an activation did.
type Outcome int

const (
	OutcomeNone             Outcome = iota // nothing configured for the action
	OutcomeInert                           // disabled; no handler ran
	OutcomeInformed                        // disabled edit; informational modal opened
	OutcomeHandled                         // custom handler ran
	OutcomeNavigated                       // navigator called
	OutcomeConfirmRequested                // delete confirmation opened
	OutcomeCancelOpened                    // cancel modal opened
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeInert:
		return "inert"
	case OutcomeInformed:
		return "informed"
	case OutcomeHandled:
		return "handled"
	case OutcomeNavigated:
		return "navigated"
	case OutcomeConfirmRequested:
		return "confirm_requested"
	case OutcomeCancelOpened:
		return "cancel_opened"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

type entry struct {
	icon    string
	label   string
	onClick func(ctx context.Context, row record.Row) (Outcome, error)
}

// Dispatcher resolves and fires row actions. The lookup table is built once
// from the injected collaborators; nothing is shared between dispatchers.
type Dispatcher struct {
	cfg   Config
	order []Kind
	table map[Kind]entry
}

// NewDispatcher builds the per-table action lookup.
func NewDispatcher(cfg Config) *Dispatcher {
	d := &Dispatcher{cfg: cfg, table: make(map[Kind]entry, len(cfg.Actions))}
	for _, k := range cfg.Actions {
		if _, dup := d.table[k]; dup {
			continue
		}
		icon := defaultIcon(k)
		if custom, ok := cfg.Icons[k]; ok && custom != "" {
			icon = custom
		}
		d.table[k] = entry{icon: icon, label: defaultLabel(k), onClick: d.handlerFor(k)}
		d.order = append(d.order, k)
	}
	return d
}

// Actions returns the offered kinds in order.
func (d *Dispatcher) Actions() []Kind {
	out := make([]Kind, len(d.order))
	copy(out, d.order)
	return out
}

// Offers reports whether the table exposes kind.
func (d *Dispatcher) Offers(kind Kind) bool {
	_, ok := d.table[kind]
	return ok
}

// Buttons evaluates every offered action for row. Disabled state is derived
// fresh on each call.
func (d *Dispatcher) Buttons(row record.Row) []Button {
	out := make([]Button, 0, len(d.order))
	for _, k := range d.order {
		e := d.table[k]
		out = append(out, Button{Kind: k, Icon: e.icon, Label: e.label, Disabled: d.Disabled(k, row)})
	}
	return out
}

// Disabled reports whether kind is disabled for row.
func (d *Dispatcher) Disabled(kind Kind, row record.Row) bool {
	return d.gateClosed() || d.policyDisabled(kind, row)
}

func (d *Dispatcher) gateClosed() bool {
	return d.cfg.Selected != nil && !*d.cfg.Selected
}

// policyDisabled covers the caller policy and, for edit, the legacy predicate.
func (d *Dispatcher) policyDisabled(kind Kind, row record.Row) bool {
	if d.cfg.Policy != nil && d.cfg.Policy.Disabled(kind, row) {
		return true
	}
	return kind == Edit && d.cfg.EditDisabled != nil && d.cfg.EditDisabled(row)
}

// Activate fires kind for row. A disabled edit opens the informational modal;
// any other disabled action is inert.
func (d *Dispatcher) Activate(ctx context.Context, kind Kind, row record.Row) (Outcome, error) {
	e, ok := d.table[kind]
	if !ok {
		return OutcomeNone, fmt.Errorf("%w: %s", ErrNotOffered, kind)
	}
	lgr := logger.FromContext(ctx).WithValues(logger.RowIDKey, row.RowID(), "action", kind.String())

	if d.gateClosed() {
		lgr.V(1).Info("action inert: selection gate closed")
		return OutcomeInert, nil
	}
	if d.policyDisabled(kind, row) {
		if kind == Edit {
			d.inform(row)
			lgr.V(1).Info("edit blocked by policy; informing")
			return OutcomeInformed, nil
		}
		lgr.V(1).Info("action inert: disabled by policy")
		return OutcomeInert, nil
	}
	out, err := e.onClick(ctx, row)
	if err != nil {
		lgr.Error(err, "action failed")
	}
	return out, err
}

func (d *Dispatcher) inform(row record.Row) {
	if d.cfg.Informer == nil {
		return
	}
	reason := ""
	if r, ok := d.cfg.Policy.(Reasoner); ok {
		reason = r.Reason(Edit, row)
	}
	if reason == "" {
		reason = DefaultEditReason
	}
	d.cfg.Informer.Inform("Edit unavailable", reason)
}

func (d *Dispatcher) handlerFor(kind Kind) func(context.Context, record.Row) (Outcome, error) {
	switch kind {
	case View:
		return d.navigateOrCustom(d.cfg.CustomView, d.cfg.ViewURL, d.cfg.ViewQuery)
	case Edit:
		return d.navigateOrCustom(d.cfg.CustomEdit, d.cfg.EditURL, d.cfg.EditQuery)
	case Delete:
		return func(_ context.Context, row record.Row) (Outcome, error) {
			if d.cfg.Deleter == nil {
				return OutcomeNone, nil
			}
			if err := d.cfg.Deleter.Request(row); err != nil {
				return OutcomeNone, err
			}
			return OutcomeConfirmRequested, nil
		}
	case Cancel:
		return func(_ context.Context, row record.Row) (Outcome, error) {
			if d.cfg.OpenCancelModal == nil {
				return OutcomeNone, nil
			}
			if err := d.cfg.OpenCancelModal(row); err != nil {
				return OutcomeNone, err
			}
			return OutcomeCancelOpened, nil
		}
	}
	return func(context.Context, record.Row) (Outcome, error) { return OutcomeNone, nil }
}

func (d *Dispatcher) navigateOrCustom(custom Handler, path string, qb QueryBuilder) func(context.Context, record.Row) (Outcome, error) {
	return func(_ context.Context, row record.Row) (Outcome, error) {
		if custom != nil {
			if err := custom(row); err != nil {
				return OutcomeNone, err
			}
			return OutcomeHandled, nil
		}
		if path == "" || d.cfg.Navigator == nil {
			return OutcomeNone, nil
		}
		query := DefaultQuery(row)
		if qb != nil {
			query = qb(row)
		}
		if err := d.cfg.Navigator.NavigateTo(path, query); err != nil {
			return OutcomeNone, fmt.Errorf("navigate to %s: %w", path, err)
		}
		return OutcomeNavigated, nil
	}
}

// DefaultQuery is {id: row.id}.
func DefaultQuery(row record.Row) url.Values {
	return url.Values{record.IDField: []string{row.RowID()}}
}
