package ui

// KeyAction is what a key does on the table screen.
type KeyAction string

const (
	KeyActionNone       KeyAction = ""
	KeyActionMove       KeyAction = "move" // forwarded to the table widget
	KeyActionNextPage   KeyAction = "next_page"
	KeyActionPrevPage   KeyAction = "prev_page"
	KeyActionSort       KeyAction = "sort"
	KeyActionColPrev    KeyAction = "column_prev"
	KeyActionColNext    KeyAction = "column_next"
	KeyActionColumns    KeyAction = "columns"
	KeyActionView       KeyAction = "view"
	KeyActionEdit       KeyAction = "edit"
	KeyActionDelete     KeyAction = "delete"
	KeyActionCancel     KeyAction = "cancel"
	KeyActionStatus     KeyAction = "status"
	KeyActionCopyID     KeyAction = "copy_id"
	KeyActionRevalidate KeyAction = "revalidate"
	KeyActionQuit       KeyAction = "quit"
)

// DefaultKeyBindings maps key strings to table-screen actions.
var DefaultKeyBindings = map[string]KeyAction{
	"up":     KeyActionMove,
	"down":   KeyActionMove,
	"k":      KeyActionMove,
	"j":      KeyActionMove,
	"pgup":   KeyActionMove,
	"pgdown": KeyActionMove,
	"home":   KeyActionMove,
	"end":    KeyActionMove,
	"n":      KeyActionNextPage,
	"p":      KeyActionPrevPage,
	"s":      KeyActionSort,
	"<":      KeyActionColPrev,
	"left":   KeyActionColPrev,
	">":      KeyActionColNext,
	"right":  KeyActionColNext,
	"c":      KeyActionColumns,
	"v":      KeyActionView,
	"enter":  KeyActionView,
	"e":      KeyActionEdit,
	"d":      KeyActionDelete,
	"x":      KeyActionCancel,
	"t":      KeyActionStatus,
	"y":      KeyActionCopyID,
	"r":      KeyActionRevalidate,
	"q":      KeyActionQuit,
	"ctrl+c": KeyActionQuit,
}

// helpLine lists the bindings shown at the bottom of the screen.
var helpLine = []struct{ key, desc string }{
	{"↑↓", "move"},
	{"n/p", "page"},
	{"</>", "column"},
	{"s", "sort"},
	{"c", "columns"},
	{"t", "status"},
	{"y", "copy id"},
	{"r", "refresh"},
	{"q", "quit"},
}
