package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme defines colors used across the browser.
type Theme struct {
	HeaderFG    color.Color // table header text
	HeaderBG    color.Color // table header background
	SelectedFG  color.Color // selected row text
	SelectedBG  color.Color // selected row background
	TitleFG     color.Color // title bar
	BorderColor color.Color // modal border
	DisabledFG  color.Color // disabled action buttons
	StatusColor color.Color // status line text
	StatusError color.Color // failures in the status line
	HelpKey     color.Color // key labels in the help line
	HelpValue   color.Color // help descriptions
}

// DefaultTheme returns the built-in palette.
func DefaultTheme() Theme {
	return Theme{
		HeaderFG:    lipgloss.Color("12"),
		HeaderBG:    lipgloss.Color("236"),
		SelectedFG:  lipgloss.Color("229"),
		SelectedBG:  lipgloss.Color("57"),
		TitleFG:     lipgloss.Color("14"),
		BorderColor: lipgloss.Color("63"),
		DisabledFG:  lipgloss.Color("240"),
		StatusColor: lipgloss.Color("252"),
		StatusError: lipgloss.Color("203"),
		HelpKey:     lipgloss.Color("12"),
		HelpValue:   lipgloss.Color("245"),
	}
}

// styles are derived from a Theme once per model.
type styles struct {
	title    lipgloss.Style
	border   lipgloss.Style
	disabled lipgloss.Style
	enabled  lipgloss.Style
	status   lipgloss.Style
	errText  lipgloss.Style
	helpKey  lipgloss.Style
	helpVal  lipgloss.Style
	cursor   lipgloss.Style
}

func newStyles(t Theme, noColor bool) styles {
	base := lipgloss.NewStyle()
	s := styles{
		title:    base.Bold(true),
		border:   base.Border(lipgloss.RoundedBorder()).Padding(1, 2),
		disabled: base.Faint(true),
		enabled:  base,
		status:   base,
		errText:  base.Bold(true),
		helpKey:  base.Bold(true),
		helpVal:  base,
		cursor:   base.Reverse(true),
	}
	if noColor {
		return s
	}
	s.title = s.title.Foreground(t.TitleFG)
	s.border = s.border.BorderForeground(t.BorderColor)
	s.disabled = s.disabled.Foreground(t.DisabledFG)
	s.status = s.status.Foreground(t.StatusColor)
	s.errText = s.errText.Foreground(t.StatusError)
	s.helpKey = s.helpKey.Foreground(t.HelpKey)
	s.helpVal = s.helpVal.Foreground(t.HelpValue)
	s.cursor = base.Foreground(t.SelectedFG).Background(t.SelectedBG)
	return s
}
