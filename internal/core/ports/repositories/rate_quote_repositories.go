package repositories

import (
	"context"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/core/domain"
)

// RateQuoteReader defines read operations for cached rate quotes
type RateQuoteReader interface {
	// LatestDate returns the most recent effective date, or nil if the store is empty.
	LatestDate(ctx context.Context) (*time.Time, error)

	// QuotesForDate returns every quote of a date, domestic currency first,
	// then by currency code. The slice is empty when the date is unknown.
	QuotesForDate(ctx context.Context, date time.Time) ([]domain.RateQuote, error)

	// ListDates returns stored effective dates, newest first.
	ListDates(ctx context.Context, limit int) ([]time.Time, error)
}

// RateQuoteWriter defines write operations for cached rate quotes
type RateQuoteWriter interface {
	// ReplaceForDate atomically makes quotes the complete set for date.
	ReplaceForDate(ctx context.Context, date time.Time, quotes []domain.RateQuote) error
}

// RateQuoteRepositoryFacade combines all rate quote repository interfaces
type RateQuoteRepositoryFacade interface {
	RateQuoteReader
	RateQuoteWriter
}
