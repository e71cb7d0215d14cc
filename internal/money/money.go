// Package money formats catalog amounts for display.
package money

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format rounds amount to whole units and groups thousands, e.g. 1234567 -> "1,234,567"
func Format(amount float64) string {
	return printer.Sprintf("%d", int64(math.Round(amount)))
}
