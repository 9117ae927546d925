package utils

import (
	"github.com/shopspring/decimal"
)

// FormatWithPrecision formats an amount rounded to precision decimal places,
// always printing exactly that many places.
// Example: 1234.5 with precision 2 returns "1234.50"
func FormatWithPrecision(amount decimal.Decimal, precision int32) string {
	return amount.StringFixed(precision)
}

// FormatRate formats a rate rounded to precision places without padding.
// Example: 1.0750000 with precision 6 returns "1.075"
func FormatRate(rate decimal.Decimal, precision int32) string {
	return rate.Round(precision).String()
}
