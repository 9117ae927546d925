package mapping

import (
	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	"github.com/emretit/paftamobile-sub007/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelRateQuote converts a domain RateQuote to a model RateQuote
func ToModelRateQuote(d domain.RateQuote) models.RateQuote {
	m := models.RateQuote{
		EffectiveDate:   domain.NormalizeDate(d.EffectiveDate),
		CurrencyCode:    d.CurrencyCode,
		CurrencyName:    d.CurrencyName,
		Unit:            d.Unit,
		ForexBuying:     d.ForexBuying,
		ForexSelling:    d.ForexSelling,
		BanknoteBuying:  d.BanknoteBuying,
		BanknoteSelling: d.BanknoteSelling,
	}
	if m.Unit <= 0 {
		m.Unit = 1
	}
	if d.CrossRate != nil {
		m.CrossRate = decimal.NewNullDecimal(*d.CrossRate)
	}
	return m
}

// ToDomainRateQuote converts a model RateQuote to a domain RateQuote
func ToDomainRateQuote(m models.RateQuote) domain.RateQuote {
	d := domain.RateQuote{
		EffectiveDate:   domain.NormalizeDate(m.EffectiveDate),
		CurrencyCode:    m.CurrencyCode,
		CurrencyName:    m.CurrencyName,
		Unit:            m.Unit,
		ForexBuying:     m.ForexBuying,
		ForexSelling:    m.ForexSelling,
		BanknoteBuying:  m.BanknoteBuying,
		BanknoteSelling: m.BanknoteSelling,
	}
	if m.CrossRate.Valid {
		cross := m.CrossRate.Decimal
		d.CrossRate = &cross
	}
	return d
}

// ToDomainRateQuotes converts a slice of model RateQuotes
func ToDomainRateQuotes(ms []models.RateQuote) []domain.RateQuote {
	quotes := make([]domain.RateQuote, len(ms))
	for i, m := range ms {
		quotes[i] = ToDomainRateQuote(m)
	}
	return quotes
}
