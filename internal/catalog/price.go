package catalog

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var vnd = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount the way vi-VN shows Vietnamese dong.
func FormatVND(amount float64) string {
	return vnd.Sprintf("%v ₫", number.Decimal(amount, number.MaxFractionDigits(0)))
}

// DiscountPercent is the rounded discount of sale against original, 0 when
// there is none.
func DiscountPercent(original, sale float64) int {
	if original <= 0 || sale >= original {
		return 0
	}

	o := decimal.NewFromFloat(original)
	d := o.Sub(decimal.NewFromFloat(sale)).Div(o).Mul(decimal.NewFromInt(100)).Round(0)

	return int(d.IntPart())
}
