package services

import (
	"context"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	"github.com/emretit/paftamobile-sub007/internal/dto"
	"github.com/shopspring/decimal"
)

// IngestionSvc runs one fetch, parse, store and log cycle.
type IngestionSvc interface {
	Run(ctx context.Context, trigger domain.IngestionTrigger) (*domain.IngestionResult, error)
}

// ExchangeRateReaderSvc defines read operations for cached exchange rates
type ExchangeRateReaderSvc interface {
	// GetLatest returns the newest cached rate set, ingesting once if the store is empty.
	GetLatest(ctx context.Context) (*domain.RateSet, error)

	// GetForDate returns the cached set of one effective date.
	GetForDate(ctx context.Context, date time.Time) (*domain.RateSet, error)

	// Convert converts amount between two currencies using the latest forex selling rates.
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*domain.Conversion, error)

	// ListDates returns the cached effective dates, newest first.
	ListDates(ctx context.Context, limit int) ([]time.Time, error)
}

// ExchangeRateAdminSvc defines administrative exchange rate operations
type ExchangeRateAdminSvc interface {
	// Refresh runs a manual ingestion and returns the freshly stored set.
	Refresh(ctx context.Context) (*domain.RateSet, error)

	// ListIngestionLogs pages through the ingestion audit trail.
	ListIngestionLogs(ctx context.Context, params dto.ListIngestionLogsParams) (*dto.ListIngestionLogsResponse, error)
}

// ExchangeRateSvcFacade combines all exchange rate service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateAdminSvc
}

// ScheduleSvc installs and inspects the recurring ingestion trigger.
type ScheduleSvc interface {
	InstallSchedule(ctx context.Context) (*domain.Schedule, error)
	GetSchedule(ctx context.Context) (*domain.Schedule, error)
}
