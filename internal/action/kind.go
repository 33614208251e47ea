package action

import (
	"fmt"
	"strings"
)

// Kind is the closed set of row actions.
type Kind int

const (
	View Kind = iota
	Edit
	Delete
	Cancel
)

// Kinds lists every action kind in display order.
var Kinds = []Kind{View, Edit, Delete, Cancel}

func (k Kind) String() string {
	switch k {
	case View:
		return "view"
	case Edit:
		return "edit"
	case Delete:
		return "delete"
	case Cancel:
		return "cancel"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a config/CLI name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "view":
		return View, nil
	case "edit":
		return Edit, nil
	case "delete":
		return Delete, nil
	case "cancel":
		return Cancel, nil
	}
	return 0, fmt.Errorf("unknown action %q (use view|edit|delete|cancel)", s)
}

// ParseKinds parses a list of names, rejecting duplicates.
func ParseKinds(names []string) ([]Kind, error) {
	out := make([]Kind, 0, len(names))
	seen := map[Kind]bool{}
	for _, n := range names {
		k, err := ParseKind(n)
		if err != nil {
			return nil, err
		}
		if seen[k] {
			return nil, fmt.Errorf("duplicate action %q", n)
		}
		seen[k] = true
		out = append(out, k)
	}
	return out, nil
}

// defaultIcon and defaultLabel back the per-dispatcher lookup table.
func defaultIcon(k Kind) string {
	switch k {
	case View:
		return "👁"
	case Edit:
		return "✎"
	case Delete:
		return "🗑"
	case Cancel:
		return "⊘"
	}
	return "?"
}

func defaultLabel(k Kind) string {
	switch k {
	case View:
		return "View"
	case Edit:
		return "Edit"
	case Delete:
		return "Delete"
	case Cancel:
		return "Cancel"
	}
	return k.String()
}
