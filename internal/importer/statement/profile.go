package statement

import "github.com/shopspring/decimal"

// Profile describes the column layout of one card statement export.
// Adding a new format is just adding a new Profile to the profiles slice.
type Profile struct {
	Name       string
	Comma      rune
	DateCol    string
	DateLayout string
	DescCol    string
	AmountCol  string
	// ChargesNegative is set when purchases are exported as negative values.
	ChargesNegative bool
	parseAmount     func(string) (decimal.Decimal, error)
}

func (p Profile) requiredCols() []string {
	return []string{p.DateCol, p.DescCol, p.AmountCol}
}

// profiles is the ordered list of formats tried during auto-detection.
var profiles = []Profile{
	{
		Name:        "nubank",
		Comma:       ',',
		DateCol:     "date",
		DateLayout:  "2006-01-02",
		DescCol:     "title",
		AmountCol:   "amount",
		parseAmount: parseDotAmount,
	},
	{
		Name:        "fatura",
		Comma:       ';',
		DateCol:     "Data",
		DateLayout:  "02/01/2006",
		DescCol:     "Lançamento",
		AmountCol:   "Valor",
		parseAmount: parseBrazilianAmount,
	},
	{
		Name:            "extrato-cartao",
		Comma:           ';',
		DateCol:         "Data",
		DateLayout:      "02/01/2006",
		DescCol:         "Descrição",
		AmountCol:       "Valor (R$)",
		ChargesNegative: true,
		parseAmount:     parseBrazilianAmount,
	},
}
