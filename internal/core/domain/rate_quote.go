package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DomesticCurrency is the currency every rate is quoted against.
const DomesticCurrency = "TRY"

// TrackedCurrencies is the fixed set of foreign currencies kept from the feed.
var TrackedCurrencies = []string{"USD", "EUR", "GBP"}

// RateQuote is one currency's official rates for one effective date.
// All four rates are domestic currency per Unit of CurrencyCode.
type RateQuote struct {
	CurrencyCode    string           `json:"currencyCode"`
	CurrencyName    string           `json:"currencyName"`
	Unit            int              `json:"unit"`
	ForexBuying     decimal.Decimal  `json:"forexBuying"`
	ForexSelling    decimal.Decimal  `json:"forexSelling"`
	BanknoteBuying  decimal.Decimal  `json:"banknoteBuying"`
	BanknoteSelling decimal.Decimal  `json:"banknoteSelling"`
	CrossRate       *decimal.Decimal `json:"crossRate,omitempty"`
	EffectiveDate   time.Time        `json:"effectiveDate"`
}

// IdentityQuote returns the domestic currency quote, which is 1 on every field.
func IdentityQuote(effectiveDate time.Time) RateQuote {
	one := decimal.NewFromInt(1)
	return RateQuote{
		CurrencyCode:    DomesticCurrency,
		CurrencyName:    "TURKISH LIRA",
		Unit:            1,
		ForexBuying:     one,
		ForexSelling:    one,
		BanknoteBuying:  one,
		BanknoteSelling: one,
		EffectiveDate:   NormalizeDate(effectiveDate),
	}
}

// PerUnitSelling is the forex selling rate for a single unit of the currency.
func (q RateQuote) PerUnitSelling() decimal.Decimal {
	if q.Unit <= 1 {
		return q.ForexSelling
	}
	return q.ForexSelling.Div(decimal.NewFromInt(int64(q.Unit)))
}

// NormalizeDate strips the time of day and returns midnight UTC of t's calendar date.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RateSet is the complete set of quotes for one effective date.
type RateSet struct {
	EffectiveDate time.Time
	Quotes        []RateQuote
}

// Quote finds the quote for a currency code within the set.
func (s RateSet) Quote(code string) (RateQuote, bool) {
	for _, q := range s.Quotes {
		if q.CurrencyCode == code {
			return q, true
		}
	}
	return RateQuote{}, false
}

// ParsedFeed is the normalized content of one feed document.
type ParsedFeed struct {
	EffectiveDate time.Time
	Quotes        []RateQuote
	// DateFromFeed is false when the document carried no usable date and
	// EffectiveDate was taken from the parse time instead.
	DateFromFeed bool
	// Warnings holds field-local failures that were replaced by zero.
	Warnings []error
}

// Conversion is an amount converted between two tracked currencies.
type Conversion struct {
	From          string
	To            string
	Amount        decimal.Decimal
	Result        decimal.Decimal
	Rate          decimal.Decimal
	EffectiveDate time.Time
}
