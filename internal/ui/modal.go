package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"
)

const (
	modalMaxWidth = 60
	modalMinWidth = 24
)

// modal is a centered dialog box.
type modal struct {
	title  string
	body   string
	err    string
	footer string
}

func (d modal) render(st styles, width, height int) string {
	inner := min(modalMaxWidth, max(width-8, modalMinWidth))
	parts := []string{st.title.Render(d.title), ""}
	if d.body != "" {
		parts = append(parts, wordwrap.String(d.body, inner))
	}
	if d.err != "" {
		parts = append(parts, "", st.errText.Render(wordwrap.String(d.err, inner)))
	}
	if d.footer != "" {
		parts = append(parts, "", st.helpVal.Render(d.footer))
	}
	box := st.border.Render(strings.Join(parts, "\n"))
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
