// Package formatter renders table pages for the non-interactive `list`
// command: an aligned, width-aware text table and json/yaml/toml/csv encodings.
package formatter

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

var (
	defaultHeaderFG  = lipgloss.Color("12")
	defaultHeaderBG  = lipgloss.Color("236")
	defaultRowNumFG  = lipgloss.Color("14")
	defaultValueFG   = lipgloss.Color("252")
	defaultSeparator = lipgloss.Color("240")

	headerStyle    lipgloss.Style
	rowNumStyle    lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
)

// TableColors controls the rendered colors. Nil fields use the defaults.
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	RowNumberFG    color.Color
	ValueFG        color.Color
	SeparatorColor color.Color
}

// SetTableTheme overrides the package table styles.
func SetTableTheme(tc TableColors) {
	pick := func(c, def color.Color) color.Color {
		if c == nil {
			return def
		}
		return c
	}
	headerStyle = lipgloss.NewStyle().Bold(true).
		Foreground(pick(tc.HeaderFG, defaultHeaderFG)).
		Background(pick(tc.HeaderBG, defaultHeaderBG))
	rowNumStyle = lipgloss.NewStyle().Foreground(pick(tc.RowNumberFG, defaultRowNumFG))
	valueStyle = lipgloss.NewStyle().Foreground(pick(tc.ValueFG, defaultValueFG))
	separatorStyle = lipgloss.NewStyle().Foreground(pick(tc.SeparatorColor, defaultSeparator))
}

//nolint:gochecknoinits // default theme for package consumers
func init() {
	SetTableTheme(TableColors{})
}
