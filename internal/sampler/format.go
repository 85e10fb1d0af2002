package sampler

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// formatMoney renders 37900 as "$37,900.00"
func formatMoney(v float64) string {
	if v < 0 {
		return moneyPrinter.Sprintf("-$%.2f", -v)
	}
	return moneyPrinter.Sprintf("$%.2f", v)
}

// formatConfidence renders 0.95 as "95%" and 0.975 as "97.5%"
func formatConfidence(level float64) string {
	pct := float64(int64(level*1000+0.5)) / 10
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}
