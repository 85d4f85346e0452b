// Package money formats decimal amounts for display.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Format renders d as Brazilian reais, e.g. "R$ 1.234,50".
func Format(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}

	return sign + printer.Sprintf("R$ %.2f", d.Abs().Round(2).InexactFloat64())
}
