package column

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/oakwood-commons/trainctl/internal/record"
)

// DefaultLanguage is used when no locale is configured.
var DefaultLanguage = language.French

// Formats renders dates and amounts for one language.
type Formats struct {
	printer    *message.Printer
	dateLayout string
}

// NewFormats returns the date and money renderers for tag.
func NewFormats(tag language.Tag) *Formats {
	layout := "02/01/2006"
	if region, _ := tag.Region(); region.String() == "US" {
		layout = "01/02/2006"
	}
	return &Formats{printer: message.NewPrinter(tag), dateLayout: layout}
}

var defaultFormats = NewFormats(DefaultLanguage)

// Date renders ISO dates in the language's day order; anything else is
// left untouched.
func (f *Formats) Date(value any, row record.Row) string {
	s := Identity(value, row)
	if t, ok := record.ParseDate(s); ok {
		return t.Format(f.dateLayout)
	}
	return s
}

// Money renders numbers with two decimals, grouped for the language, and
// a euro suffix.
func (f *Formats) Money(value any, row record.Row) string {
	s := Identity(value, row)
	if s == "" {
		return ""
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return s
	}
	amount := number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2))
	return f.printer.Sprintf("%v", amount) + " €"
}

// Renderer resolves a named renderer; "" yields Identity.
func (f *Formats) Renderer(name string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "identity":
		return Identity, nil
	case "date":
		return f.Date, nil
	case "money":
		return f.Money, nil
	case "pill", "status":
		return Pill, nil
	}
	return nil, fmt.Errorf("unknown column format %q", name)
}

// Date renders with DefaultLanguage.
func Date(value any, row record.Row) string { return defaultFormats.Date(value, row) }

// Money renders with DefaultLanguage.
func Money(value any, row record.Row) string { return defaultFormats.Money(value, row) }

// Pill renders a status value as a compact badge.
func Pill(value any, row record.Row) string {
	s := Identity(value, row)
	if s == "" {
		return ""
	}
	return "● " + s
}

// RendererByName resolves a named renderer in DefaultLanguage.
func RendererByName(name string) (Renderer, error) {
	return defaultFormats.Renderer(name)
}
