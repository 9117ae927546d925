package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/apperrors"
	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	"github.com/emretit/paftamobile-sub007/internal/core/ports"
	portsrepo "github.com/emretit/paftamobile-sub007/internal/core/ports/repositories"
	"github.com/emretit/paftamobile-sub007/internal/platform/metrics"
	"github.com/google/uuid"
)

// Stages of a run, used as the failure label.
const (
	stageFetch = "fetch"
	stageParse = "parse"
	stageStore = "store"
)

// IngestionService runs the fetch, parse, store and log cycle. It never
// retries; retries belong to whoever triggers it.
type IngestionService struct {
	BaseService
	feed      ports.FeedClient
	parser    ports.DocumentParser
	rateRepo  portsrepo.RateQuoteWriter
	logRepo   portsrepo.IngestionLogWriter
	publisher ports.EventPublisher
	metrics   *metrics.IngestionMetrics
	now       func() time.Time
}

// IngestionOption configures optional IngestionService dependencies.
type IngestionOption func(*IngestionService)

// WithEventPublisher sets the publisher notified after a successful run.
func WithEventPublisher(p ports.EventPublisher) IngestionOption {
	return func(s *IngestionService) {
		s.publisher = p
	}
}

// WithIngestionMetrics sets the Prometheus collectors.
func WithIngestionMetrics(m *metrics.IngestionMetrics) IngestionOption {
	return func(s *IngestionService) {
		s.metrics = m
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) IngestionOption {
	return func(s *IngestionService) {
		s.now = now
	}
}

// NewIngestionService creates a new IngestionService.
func NewIngestionService(
	feed ports.FeedClient,
	parser ports.DocumentParser,
	rateRepo portsrepo.RateQuoteWriter,
	logRepo portsrepo.IngestionLogWriter,
	options ...IngestionOption,
) *IngestionService {
	s := &IngestionService{
		feed:     feed,
		parser:   parser,
		rateRepo: rateRepo,
		logRepo:  logRepo,
		now:      time.Now,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Run performs one ingestion. On success the stored set and a success log
// entry exist; on failure an error log entry exists and the store is untouched.
func (s *IngestionService) Run(ctx context.Context, trigger domain.IngestionTrigger) (*domain.IngestionResult, error) {
	start := s.now()
	triggerAttr := slog.String("trigger", string(trigger))
	s.LogDebug(ctx, "Starting exchange rate ingestion", triggerAttr)

	raw, err := s.feed.Fetch(ctx)
	if err != nil {
		return nil, s.fail(ctx, trigger, start, stageFetch, fmt.Errorf("failed to fetch exchange rate feed: %w", err))
	}

	parsed, err := s.parser.Parse(raw)
	if err != nil {
		return nil, s.fail(ctx, trigger, start, stageParse, fmt.Errorf("failed to parse exchange rate feed: %w", err))
	}

	dateAttr := slog.String("effective_date", parsed.EffectiveDate.Format("2006-01-02"))
	if !parsed.DateFromFeed {
		s.LogWarn(ctx, "Feed document has no usable date, using current date", triggerAttr, dateAttr)
	}
	for _, w := range parsed.Warnings {
		s.LogWarn(ctx, "Rate field could not be parsed, stored as zero", triggerAttr, slog.String("error", w.Error()))
	}

	if err := s.rateRepo.ReplaceForDate(ctx, parsed.EffectiveDate, parsed.Quotes); err != nil {
		return nil, s.fail(ctx, trigger, start, stageStore, fmt.Errorf("failed to store exchange rates: %w", err))
	}

	finished := s.now()
	duration := finished.Sub(start)
	effectiveDate := parsed.EffectiveDate
	s.appendLog(ctx, domain.IngestionLogEntry{
		ID:            uuid.NewString(),
		Status:        domain.IngestionStatusSuccess,
		OccurredAt:    finished.UTC(),
		Message:       fmt.Sprintf("stored %d quotes for %s", len(parsed.Quotes), effectiveDate.Format("2006-01-02")),
		Count:         len(parsed.Quotes),
		Trigger:       trigger,
		EffectiveDate: &effectiveDate,
		DurationMS:    duration.Milliseconds(),
	})
	s.metrics.RecordSuccess(string(trigger), duration, len(parsed.Quotes), len(parsed.Warnings), finished)

	result := &domain.IngestionResult{
		RateSet:  domain.RateSet{EffectiveDate: effectiveDate, Quotes: parsed.Quotes},
		Trigger:  trigger,
		Warnings: parsed.Warnings,
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRatesIngested(ctx, *result); err != nil {
			s.LogWarn(ctx, "Failed to publish rates ingested event", triggerAttr, dateAttr, slog.String("error", err.Error()))
		}
	}

	s.LogInfo(ctx, "Exchange rate ingestion succeeded",
		triggerAttr, dateAttr,
		slog.Int("count", len(parsed.Quotes)),
		slog.Int("warnings", len(parsed.Warnings)),
		slog.Duration("duration", duration))
	return result, nil
}

// fail records a failed run and returns err unchanged.
func (s *IngestionService) fail(ctx context.Context, trigger domain.IngestionTrigger, start time.Time, stage string, err error) error {
	finished := s.now()
	duration := finished.Sub(start)

	s.appendLog(ctx, domain.IngestionLogEntry{
		ID:         uuid.NewString(),
		Status:     domain.IngestionStatusError,
		OccurredAt: finished.UTC(),
		Message:    err.Error(),
		Trigger:    trigger,
		DurationMS: duration.Milliseconds(),
	})
	s.metrics.RecordFailure(string(trigger), stage, duration)
	s.LogError(ctx, err, "Exchange rate ingestion failed",
		slog.String("trigger", string(trigger)),
		slog.String("stage", stage))
	return err
}

// appendLog writes an audit entry. A failed write never fails the run.
func (s *IngestionService) appendLog(ctx context.Context, entry domain.IngestionLogEntry) {
	if err := s.logRepo.AppendIngestionLog(ctx, entry); err != nil {
		logErr := &apperrors.LogWriteError{Err: err}
		s.LogWarn(ctx, "Failed to write ingestion log entry",
			slog.String("status", string(entry.Status)),
			slog.String("error", logErr.Error()))
	}
}
