package services_test

import (
	"context"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockFeedClient is a mock type for the FeedClient interface
type MockFeedClient struct {
	mock.Mock
}

func (m *MockFeedClient) Fetch(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockDocumentParser is a mock type for the DocumentParser interface
type MockDocumentParser struct {
	mock.Mock
}

func (m *MockDocumentParser) Parse(raw []byte) (*domain.ParsedFeed, error) {
	args := m.Called(raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParsedFeed), args.Error(1)
}

// MockRateQuoteRepository is a mock type for the RateQuoteRepositoryFacade interface
type MockRateQuoteRepository struct {
	mock.Mock
}

func (m *MockRateQuoteRepository) ReplaceForDate(ctx context.Context, date time.Time, quotes []domain.RateQuote) error {
	args := m.Called(ctx, date, quotes)
	return args.Error(0)
}

func (m *MockRateQuoteRepository) LatestDate(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockRateQuoteRepository) QuotesForDate(ctx context.Context, date time.Time) ([]domain.RateQuote, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateQuote), args.Error(1)
}

func (m *MockRateQuoteRepository) ListDates(ctx context.Context, limit int) ([]time.Time, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

// MockIngestionLogRepository is a mock type for the IngestionLogRepositoryFacade interface
type MockIngestionLogRepository struct {
	mock.Mock
}

func (m *MockIngestionLogRepository) AppendIngestionLog(ctx context.Context, entry domain.IngestionLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockIngestionLogRepository) ListIngestionLogs(ctx context.Context, limit int, before *domain.IngestionLogCursor) ([]domain.IngestionLogEntry, error) {
	args := m.Called(ctx, limit, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IngestionLogEntry), args.Error(1)
}

// MockScheduleRepository is a mock type for the ScheduleRepositoryFacade interface
type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) UpsertSchedule(ctx context.Context, schedule domain.Schedule) (*domain.Schedule, error) {
	args := m.Called(ctx, schedule)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) FindScheduleByName(ctx context.Context, name string) (*domain.Schedule, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) ClaimDueSchedules(ctx context.Context, now time.Time) ([]domain.Schedule, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

// MockIngestionSvc is a mock type for the IngestionSvc interface
type MockIngestionSvc struct {
	mock.Mock
}

func (m *MockIngestionSvc) Run(ctx context.Context, trigger domain.IngestionTrigger) (*domain.IngestionResult, error) {
	args := m.Called(ctx, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngestionResult), args.Error(1)
}

// MockEventPublisher is a mock type for the EventPublisher interface
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishRatesIngested(ctx context.Context, result domain.IngestionResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}
