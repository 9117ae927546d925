package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateQuote is one stored row of the rate cache, keyed by (effective_date, currency_code).
// Decimals are persisted as text so no precision is lost in SQLite.
type RateQuote struct {
	EffectiveDate   time.Time           `db:"effective_date" gorm:"column:effective_date;primaryKey;autoIncrement:false"`
	CurrencyCode    string              `db:"currency_code" gorm:"column:currency_code;primaryKey;size:3"`
	CurrencyName    string              `db:"currency_name" gorm:"column:currency_name"`
	Unit            int                 `db:"unit" gorm:"column:unit;not null;default:1"`
	ForexBuying     decimal.Decimal     `db:"forex_buying" gorm:"column:forex_buying;type:text;not null"`
	ForexSelling    decimal.Decimal     `db:"forex_selling" gorm:"column:forex_selling;type:text;not null"`
	BanknoteBuying  decimal.Decimal     `db:"banknote_buying" gorm:"column:banknote_buying;type:text;not null"`
	BanknoteSelling decimal.Decimal     `db:"banknote_selling" gorm:"column:banknote_selling;type:text;not null"`
	CrossRate       decimal.NullDecimal `db:"cross_rate" gorm:"column:cross_rate;type:text"`
	UpdatedAt       time.Time           `db:"updated_at" gorm:"column:updated_at"`
}

// TableName pins the table name shared with the Postgres migrations.
func (RateQuote) TableName() string { return "rate_quotes" }
