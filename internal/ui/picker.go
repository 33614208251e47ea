package ui

import (
	"strings"
)

// pickerItem is one line of a picker. Checked draws a checkbox when the
// picker is a checklist; Current marks the row's present value in a menu.
type pickerItem struct {
	Key     string
	Label   string
	Checked bool
	Current bool
}

// picker is a vertical list with a cursor, used for the status menu, the
// permission panel and the column visibility panel.
type picker struct {
	items     []pickerItem
	cursor    int
	checklist bool
}

func newPicker(items []pickerItem, checklist bool) *picker {
	p := &picker{items: items, checklist: checklist}
	for i, it := range items {
		if it.Current {
			p.cursor = i
			break
		}
	}
	return p
}

func (p *picker) up() {
	if p.cursor > 0 {
		p.cursor--
	}
}

func (p *picker) down() {
	if p.cursor < len(p.items)-1 {
		p.cursor++
	}
}

func (p *picker) selected() (pickerItem, bool) {
	if p.cursor < 0 || p.cursor >= len(p.items) {
		return pickerItem{}, false
	}
	return p.items[p.cursor], true
}

// setChecked refreshes checkbox state without moving the cursor.
func (p *picker) setChecked(checked func(key string) bool) {
	for i := range p.items {
		p.items[i].Checked = checked(p.items[i].Key)
	}
}

func (p *picker) view(st styles) string {
	var b strings.Builder
	for i, it := range p.items {
		line := it.Label
		switch {
		case p.checklist && it.Checked:
			line = "[x] " + line
		case p.checklist:
			line = "[ ] " + line
		case it.Current:
			line = "• " + line
		default:
			line = "  " + line
		}
		if i == p.cursor {
			line = st.cursor.Render("> " + line)
		} else {
			line = "  " + line
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}
