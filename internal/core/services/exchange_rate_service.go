package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/apperrors"
	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	portsrepo "github.com/emretit/paftamobile-sub007/internal/core/ports/repositories"
	portssvc "github.com/emretit/paftamobile-sub007/internal/core/ports/services"
	"github.com/emretit/paftamobile-sub007/internal/dto"
	"github.com/emretit/paftamobile-sub007/internal/platform/metrics"
	"github.com/emretit/paftamobile-sub007/internal/utils/pagination"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const coldStartKey = "cold-start"

// ExchangeRateService serves cached rates. An empty store is filled by one
// synchronous ingestion shared by all concurrent callers.
type ExchangeRateService struct {
	BaseService
	rateRepo  portsrepo.RateQuoteReader
	logRepo   portsrepo.IngestionLogReader
	ingestion portssvc.IngestionSvc
	metrics   *metrics.IngestionMetrics
	coldStart singleflight.Group
}

// ExchangeRateOption configures optional ExchangeRateService dependencies.
type ExchangeRateOption func(*ExchangeRateService)

// WithExchangeRateMetrics sets the collectors used to count cold starts.
func WithExchangeRateMetrics(m *metrics.IngestionMetrics) ExchangeRateOption {
	return func(s *ExchangeRateService) {
		s.metrics = m
	}
}

// NewExchangeRateService creates a new ExchangeRateService.
func NewExchangeRateService(
	rateRepo portsrepo.RateQuoteReader,
	logRepo portsrepo.IngestionLogReader,
	ingestion portssvc.IngestionSvc,
	options ...ExchangeRateOption,
) *ExchangeRateService {
	s := &ExchangeRateService{
		rateRepo:  rateRepo,
		logRepo:   logRepo,
		ingestion: ingestion,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// GetLatest returns the set of the newest effective date in the store.
func (s *ExchangeRateService) GetLatest(ctx context.Context) (*domain.RateSet, error) {
	latest, err := s.rateRepo.LatestDate(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to read latest effective date")
		return nil, fmt.Errorf("failed to get latest exchange rates: %w", err)
	}
	if latest == nil {
		return s.coldStartIngest(ctx)
	}

	quotes, err := s.rateRepo.QuotesForDate(ctx, *latest)
	if err != nil {
		s.LogError(ctx, err, "Failed to read latest quotes", slog.Time("effective_date", *latest))
		return nil, fmt.Errorf("failed to get latest exchange rates: %w", err)
	}
	return &domain.RateSet{EffectiveDate: *latest, Quotes: quotes}, nil
}

// coldStartIngest runs one ingestion for every caller waiting on an empty
// store. The run is detached from the first caller's cancellation so the
// other waiters are not failed by it.
func (s *ExchangeRateService) coldStartIngest(ctx context.Context) (*domain.RateSet, error) {
	v, err, shared := s.coldStart.Do(coldStartKey, func() (any, error) {
		s.LogInfo(ctx, "Rate store is empty, running cold-start ingestion")
		s.metrics.RecordColdStart()
		return s.ingestion.Run(context.WithoutCancel(ctx), domain.TriggerColdStart)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnavailable, err)
	}

	result := v.(*domain.IngestionResult)
	if shared {
		s.LogDebug(ctx, "Joined in-flight cold-start ingestion")
	}
	set := result.RateSet
	return &set, nil
}

// GetForDate returns the stored set of one effective date or ErrNotFound.
func (s *ExchangeRateService) GetForDate(ctx context.Context, date time.Time) (*domain.RateSet, error) {
	date = domain.NormalizeDate(date)
	quotes, err := s.rateRepo.QuotesForDate(ctx, date)
	if err != nil {
		s.LogError(ctx, err, "Failed to read quotes for date", slog.Time("effective_date", date))
		return nil, fmt.Errorf("failed to get exchange rates for %s: %w", date.Format(dto.DateLayout), err)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("%w: no exchange rates for %s", apperrors.ErrNotFound, date.Format(dto.DateLayout))
	}
	return &domain.RateSet{EffectiveDate: date, Quotes: quotes}, nil
}

// ListDates returns up to limit cached effective dates, newest first.
func (s *ExchangeRateService) ListDates(ctx context.Context, limit int) ([]time.Time, error) {
	dates, err := s.rateRepo.ListDates(ctx, pagination.NormalizeLimit(limit))
	if err != nil {
		s.LogError(ctx, err, "Failed to list cached dates")
		return nil, fmt.Errorf("failed to list exchange rate dates: %w", err)
	}
	return dates, nil
}

// Convert converts amount from one currency to another through the domestic
// currency, using per-unit forex selling rates of the latest set.
func (s *ExchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*domain.Conversion, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", apperrors.ErrValidation)
	}
	for _, code := range []string{from, to} {
		if !isSupportedCurrency(code) {
			return nil, fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, code)
		}
	}

	set, err := s.GetLatest(ctx)
	if err != nil {
		return nil, err
	}

	fromRate, err := perUnitRate(set, from)
	if err != nil {
		return nil, err
	}
	toRate, err := perUnitRate(set, to)
	if err != nil {
		return nil, err
	}

	rate := fromRate.Div(toRate)
	return &domain.Conversion{
		From:          from,
		To:            to,
		Amount:        amount,
		Result:        amount.Mul(rate),
		Rate:          rate,
		EffectiveDate: set.EffectiveDate,
	}, nil
}

func isSupportedCurrency(code string) bool {
	return code == domain.DomesticCurrency || slices.Contains(domain.TrackedCurrencies, code)
}

func perUnitRate(set *domain.RateSet, code string) (decimal.Decimal, error) {
	q, ok := set.Quote(code)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s on %s", apperrors.ErrNotFound, code, set.EffectiveDate.Format(dto.DateLayout))
	}
	rate := q.PerUnitSelling()
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: rate for %s on %s is zero", apperrors.ErrUnavailable, code, set.EffectiveDate.Format(dto.DateLayout))
	}
	return rate, nil
}

// Refresh runs a manual ingestion and returns what it stored.
func (s *ExchangeRateService) Refresh(ctx context.Context) (*domain.RateSet, error) {
	result, err := s.ingestion.Run(ctx, domain.TriggerManual)
	if err != nil {
		return nil, fmt.Errorf("manual refresh failed: %w", err)
	}
	set := result.RateSet
	return &set, nil
}

// ListIngestionLogs returns one page of the audit trail, newest first.
func (s *ExchangeRateService) ListIngestionLogs(ctx context.Context, params dto.ListIngestionLogsParams) (*dto.ListIngestionLogsResponse, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	var before *domain.IngestionLogCursor
	if params.NextToken != "" {
		at, id, err := pagination.DecodeTimeIDToken(params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		before = &domain.IngestionLogCursor{OccurredAt: at, ID: id}
	}

	entries, err := s.logRepo.ListIngestionLogs(ctx, limit+1, before)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ingestion logs")
		return nil, fmt.Errorf("failed to list ingestion logs: %w", err)
	}

	resp := &dto.ListIngestionLogsResponse{Logs: make([]dto.IngestionLogResponse, 0, limit)}
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		token := pagination.EncodeTimeIDToken(last.OccurredAt, last.ID)
		resp.NextToken = &token
	}
	for _, e := range entries {
		resp.Logs = append(resp.Logs, dto.ToIngestionLogResponse(e))
	}
	return resp, nil
}
