package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseBrazilianAmount parses "1.234,56", "-588,74" or "R$ 10,00".
func parseBrazilianAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	return decimal.NewFromString(clean)
}

// parseDotAmount parses "1234.56" with no thousands separator.
func parseDotAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}
