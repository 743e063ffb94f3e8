package pages

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var groupedPrinter = message.NewPrinter(language.English)

// formatAmount renders a money amount with two decimals, honoring the
// user's digit-grouping preference.
func formatAmount(d decimal.Decimal, grouped bool) string {
	if !grouped {
		return d.StringFixed(2)
	}
	f, _ := d.Float64()
	return groupedPrinter.Sprint(number.Decimal(f,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}
