// Package confirm implements the delete confirmation flow: a row is staged,
// the user confirms or cancels, and a confirmed delete is sent to the API
// followed by revalidation of the table's data source.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oakwood-commons/trainctl/internal/record"
	"github.com/oakwood-commons/trainctl/pkg/logger"
)

var (
	// ErrBusy is returned by Request while another row awaits confirmation.
	ErrBusy = errors.New("a delete is already awaiting confirmation")
	// ErrNotPending is returned by Confirm when nothing is staged.
	ErrNotPending = errors.New("no delete awaiting confirmation")
)

// State is the flow's phase.
type State int

const (
	Idle State = iota
	ConfirmPending
	Deleting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ConfirmPending:
		return "confirm_pending"
	case Deleting:
		return "deleting"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Deleter issues DELETE <baseURL>/<id>.
type Deleter interface {
	Delete(ctx context.Context, baseURL, id string) error
}

// Config wires the flow to its table.
type Config struct {
	BaseURL string
	Deleter Deleter
	// OnDeleteSuccess runs after a successful delete, before revalidation.
	OnDeleteSuccess func(id string)
	// Revalidate refetches the table's data; awaited before the dialog closes.
	Revalidate func(ctx context.Context) error
	// Title and Message override the dialog copy.
	Title   string
	Message string
}

const (
	defaultTitle   = "Delete entry"
	defaultMessage = "Are you sure you want to delete this entry? This cannot be undone."
)

// Flow is safe for concurrent use; the TUI confirms from a command goroutine.
type Flow struct {
	cfg Config

	mu    sync.Mutex
	state State
	row   record.Row
	err   error
}

// New returns an idle flow.
func New(cfg Config) *Flow {
	if cfg.Title == "" {
		cfg.Title = defaultTitle
	}
	if cfg.Message == "" {
		cfg.Message = defaultMessage
	}
	return &Flow{cfg: cfg}
}

// Request stages row for deletion and opens the dialog.
func (f *Flow) Request(row record.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Idle {
		return ErrBusy
	}
	f.state = ConfirmPending
	f.row = row
	f.err = nil
	return nil
}

// Confirm deletes the staged row. On failure the dialog stays open with the
// server message in Err and the returned error; on success OnDeleteSuccess
// and Revalidate run in that order and the flow returns to Idle.
func (f *Flow) Confirm(ctx context.Context) error {
	f.mu.Lock()
	if f.state != ConfirmPending {
		f.mu.Unlock()
		return ErrNotPending
	}
	f.state = Deleting
	row := f.row
	f.err = nil
	f.mu.Unlock()

	id := row.RowID()
	lgr := logger.FromContext(ctx).WithValues(logger.RowIDKey, id)

	var err error
	if f.cfg.Deleter == nil {
		err = errors.New("no deleter configured")
	} else {
		err = f.cfg.Deleter.Delete(ctx, f.cfg.BaseURL, id)
	}
	if err != nil {
		lgr.Error(err, "delete failed")
		f.mu.Lock()
		f.state = ConfirmPending
		f.err = err
		f.mu.Unlock()
		return err
	}
	lgr.V(1).Info("row deleted")

	if f.cfg.OnDeleteSuccess != nil {
		f.cfg.OnDeleteSuccess(id)
	}
	if f.cfg.Revalidate != nil {
		if rerr := f.cfg.Revalidate(ctx); rerr != nil {
			// The delete happened; a stale table is not a reason to keep the dialog open.
			lgr.Error(rerr, "revalidation after delete failed")
		}
	}

	f.mu.Lock()
	f.reset()
	f.mu.Unlock()
	return nil
}

// Cancel discards the staged row and any error. Ignored while deleting.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Deleting {
		return
	}
	f.reset()
}

func (f *Flow) reset() {
	f.state = Idle
	f.row = nil
	f.err = nil
}

// Pending returns the staged row.
func (f *Flow) Pending() (record.Row, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.row, f.row != nil
}

// State returns the current phase.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Open reports whether the dialog is visible.
func (f *Flow) Open() bool {
	return f.State() != Idle
}

// Err returns the last delete error, nil when none.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Title returns the dialog title.
func (f *Flow) Title() string { return f.cfg.Title }

// Message returns the dialog body.
func (f *Flow) Message() string { return f.cfg.Message }
