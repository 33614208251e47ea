// Package status implements the interactive status and permission cells:
// a pill showing the row's current value that opens a menu (or a permission
// panel) and sends the change to the API. Updates are pessimistic: the pill
// always shows the row's value and only revalidation changes it.
package status

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/oakwood-commons/trainctl/internal/record"
	"github.com/oakwood-commons/trainctl/pkg/logger"
)

var (
	// ErrSentinel is returned by Open for rows whose value is locked.
	ErrSentinel = errors.New("value cannot be changed here")
	// ErrWrongPhase is returned when an operation does not match the editor's phase.
	ErrWrongPhase = errors.New("operation not available in current phase")
	// ErrUnknownOption is returned for values outside the configured options.
	ErrUnknownOption = errors.New("unknown option")
)

// Variant selects how a change is applied.
type Variant int

const (
	// Plain sends the new value as soon as it is selected.
	Plain Variant = iota
	// Confirmed asks for confirmation first (role or group changes).
	Confirmed
	// Permission opens a side panel of permission toggles.
	Permission
)

func (v Variant) String() string {
	switch v {
	case Plain:
		return "plain"
	case Confirmed:
		return "confirmed"
	case Permission:
		return "permission"
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// ParseVariant maps a config name to a Variant. Empty means Plain.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "", "plain":
		return Plain, nil
	case "confirmed":
		return Confirmed, nil
	case "permission":
		return Permission, nil
	}
	return Plain, fmt.Errorf("unknown status variant %q (use plain|confirmed|permission)", s)
}

// Phase is the editor's UI phase.
type Phase int

const (
	Closed Phase = iota
	MenuOpen
	ConfirmOpen
	PanelOpen
	Updating
)

func (p Phase) String() string {
	switch p {
	case Closed:
		return "closed"
	case MenuOpen:
		return "menu_open"
	case ConfirmOpen:
		return "confirm_open"
	case PanelOpen:
		return "panel_open"
	case Updating:
		return "updating"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Updater issues PUT <baseURL> with a JSON body.
type Updater interface {
	Put(ctx context.Context, baseURL string, body any) error
}

// BodyBuilder builds the PUT payload for a change.
type BodyBuilder func(row record.Row, field string, value any) map[string]any

// DefaultBody is {"id": row.id, field: value}.
func DefaultBody(row record.Row, field string, value any) map[string]any {
	return map[string]any{record.IDField: row.RowID(), field: value}
}

// Config wires an editor to its column.
type Config struct {
	Variant Variant
	BaseURL string
	// Field holds the pill value (e.g. "status" or "role").
	Field   string
	Options []string
	// Sentinel is a value that can never be edited from the table (e.g. "Admin").
	Sentinel string
	// PermissionsField holds the granted permission list for the Permission variant.
	PermissionsField string
	Permissions      []string

	Body       BodyBuilder
	Updater    Updater
	Revalidate func(ctx context.Context) error
	// Lookup returns the refreshed row after revalidation so an open
	// permission panel shows server state.
	Lookup func(id string) (record.Row, bool)
}

// Editor drives one pill at a time. Safe for concurrent use.
type Editor struct {
	cfg Config

	mu       sync.Mutex
	phase    Phase
	row      record.Row
	proposed string
	notice   string
}

// New returns a closed editor.
func New(cfg Config) *Editor {
	if cfg.Field == "" {
		cfg.Field = "status"
	}
	if cfg.PermissionsField == "" {
		cfg.PermissionsField = "permissions"
	}
	if cfg.Body == nil {
		cfg.Body = DefaultBody
	}
	return &Editor{cfg: cfg}
}

// Variant returns the configured variant.
func (e *Editor) Variant() Variant { return e.cfg.Variant }

// Field returns the row field holding the pill value.
func (e *Editor) Field() string { return e.cfg.Field }

// Options returns the selectable values.
func (e *Editor) Options() []string { return slices.Clone(e.cfg.Options) }

// Permissions returns the toggleable permission names.
func (e *Editor) Permissions() []string { return slices.Clone(e.cfg.Permissions) }

// Value is the displayed pill value for row.
func (e *Editor) Value(row record.Row) string {
	return valueString(row.Field(e.cfg.Field))
}

// Locked reports whether row holds the sentinel value.
func (e *Editor) Locked(row record.Row) bool {
	return e.cfg.Sentinel != "" && e.Value(row) == e.cfg.Sentinel
}

// Granted reports whether row's permission list contains perm.
func (e *Editor) Granted(row record.Row, perm string) bool {
	return slices.Contains(permissionList(row.Field(e.cfg.PermissionsField)), perm)
}

// Open opens the menu (or panel) for row. A locked row sets a blocking
// notice and returns ErrSentinel.
func (e *Editor) Open(row record.Row) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == Updating {
		return ErrWrongPhase
	}
	if e.Locked(row) {
		e.phase = Closed
		e.row = nil
		e.notice = fmt.Sprintf("%q cannot be changed from the table.", e.cfg.Sentinel)
		return ErrSentinel
	}
	e.row = row
	e.proposed = ""
	e.notice = ""
	if e.cfg.Variant == Permission {
		e.phase = PanelOpen
	} else {
		e.phase = MenuOpen
	}
	return nil
}

// Select picks value from the open menu. The current value closes the menu
// without a request; Plain sends the change and Confirmed moves to the
// confirmation step.
func (e *Editor) Select(ctx context.Context, value string) error {
	e.mu.Lock()
	if e.phase != MenuOpen {
		e.mu.Unlock()
		return ErrWrongPhase
	}
	if len(e.cfg.Options) > 0 && !slices.Contains(e.cfg.Options, value) {
		e.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownOption, value)
	}
	if value == e.Value(e.row) {
		e.phase = Closed
		e.row = nil
		e.mu.Unlock()
		return nil
	}
	if e.cfg.Variant == Confirmed {
		e.proposed = value
		e.phase = ConfirmOpen
		e.mu.Unlock()
		return nil
	}
	row := e.row
	e.phase = Updating
	e.mu.Unlock()

	return e.apply(ctx, row, e.cfg.Field, value, Closed)
}

// Proposed returns the value awaiting confirmation.
func (e *Editor) Proposed() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.proposed
}

// ConfirmChange sends the value chosen in Select.
func (e *Editor) ConfirmChange(ctx context.Context) error {
	e.mu.Lock()
	if e.phase != ConfirmOpen {
		e.mu.Unlock()
		return ErrWrongPhase
	}
	row, value := e.row, e.proposed
	e.phase = Updating
	e.mu.Unlock()

	return e.apply(ctx, row, e.cfg.Field, value, Closed)
}

// Toggle flips perm on the row shown in the permission panel. The panel stays open.
func (e *Editor) Toggle(ctx context.Context, perm string) error {
	e.mu.Lock()
	if e.phase != PanelOpen {
		e.mu.Unlock()
		return ErrWrongPhase
	}
	if len(e.cfg.Permissions) > 0 && !slices.Contains(e.cfg.Permissions, perm) {
		e.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownOption, perm)
	}
	row := e.row
	e.phase = Updating
	e.mu.Unlock()

	current := permissionList(row.Field(e.cfg.PermissionsField))
	next := slices.DeleteFunc(slices.Clone(current), func(p string) bool { return p == perm })
	if len(next) == len(current) {
		next = append(next, perm)
	}
	return e.apply(ctx, row, e.cfg.PermissionsField, next, PanelOpen)
}

// Cancel closes the menu, confirmation or panel.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == Updating {
		return
	}
	e.phase = Closed
	e.row = nil
	e.proposed = ""
}

// Phase returns the current phase.
func (e *Editor) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Row returns the row being edited.
func (e *Editor) Row() (record.Row, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.row, e.row != nil
}

// Notice returns the last blocking or failure message.
func (e *Editor) Notice() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.notice
}

// ClearNotice dismisses the notice.
func (e *Editor) ClearNotice() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notice = ""
}

func (e *Editor) apply(ctx context.Context, row record.Row, field string, value any, after Phase) error {
	lgr := logger.FromContext(ctx).WithValues(logger.RowIDKey, row.RowID(), "field", field)

	var err error
	if e.cfg.Updater == nil {
		err = errors.New("no updater configured")
	} else {
		err = e.cfg.Updater.Put(ctx, e.cfg.BaseURL, e.cfg.Body(row, field, value))
	}
	if err != nil {
		lgr.Error(err, "status update failed")
		e.mu.Lock()
		e.notice = "Update failed: " + err.Error()
		e.finish(after)
		e.mu.Unlock()
		return err
	}
	lgr.V(1).Info("status updated", "value", value)

	if e.cfg.Revalidate != nil {
		if rerr := e.cfg.Revalidate(ctx); rerr != nil {
			lgr.Error(rerr, "revalidation after status update failed")
		}
	}
	if after == PanelOpen && e.cfg.Lookup != nil {
		if fresh, ok := e.cfg.Lookup(row.RowID()); ok {
			row = fresh
		}
	}

	e.mu.Lock()
	e.row = row
	e.finish(after)
	e.mu.Unlock()
	return nil
}

func (e *Editor) finish(after Phase) {
	e.phase = after
	e.proposed = ""
	if after == Closed {
		e.row = nil
	}
}

func valueString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	return fmt.Sprint(v)
}

func permissionList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
