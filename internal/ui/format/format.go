// Package format renders KPI values for display with locale-aware digit
// grouping. Non-finite values render as NotAvailable instead of NaN or Inf.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const NotAvailable = "N/A"

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
	None Direction = "none"
)

type Formatter struct {
	printer *message.Printer
}

// New builds a formatter for a BCP 47 locale such as "es" or "en-US".
// Unparsable locales fall back to English.
func New(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

func (f *Formatter) Money(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return f.printer.Sprintf("$%.0f", v)
}

func (f *Formatter) Units(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return f.printer.Sprintf("%.0f", v)
}

func (f *Formatter) Percent(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return f.printer.Sprintf("%.0f%%", v)
}

func (f *Formatter) Delta(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return f.printer.Sprintf("%.2f%%", v)
}

func Trend(v float64) Direction {
	switch {
	case !finite(v):
		return None
	case v > 0:
		return Up
	case v < 0:
		return Down
	default:
		return Flat
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
