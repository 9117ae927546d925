package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/apperrors"
	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewGormDB(filepath.Join(t.TempDir(), "rates.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func quote(code, selling string, date time.Time) domain.RateQuote {
	d := decimal.RequireFromString(selling)
	return domain.RateQuote{
		CurrencyCode:    code,
		CurrencyName:    code + " name",
		Unit:            1,
		ForexBuying:     d,
		ForexSelling:    d,
		BanknoteBuying:  d,
		BanknoteSelling: d,
		EffectiveDate:   date,
	}
}

func TestRateQuoteRepository_ReplaceForDate(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRateQuoteRepository(setupTestDB(t))
	date := day(2024, 6, 1)

	first := []domain.RateQuote{
		domain.IdentityQuote(date),
		quote("USD", "32.40", date),
		quote("EUR", "34.90", date),
		quote("GBP", "41.10", date),
	}
	require.NoError(t, repo.ReplaceForDate(ctx, date, first))

	got, err := repo.QuotesForDate(ctx, date)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "TRY", got[0].CurrencyCode, "domestic currency comes first")
	assert.Equal(t, []string{"TRY", "EUR", "GBP", "USD"}, codesOf(got))

	// A second run without GBP must not leave the stale row behind.
	second := []domain.RateQuote{
		domain.IdentityQuote(date),
		quote("USD", "32.55", date),
		quote("EUR", "35.00", date),
	}
	require.NoError(t, repo.ReplaceForDate(ctx, date, second))

	got, err = repo.QuotesForDate(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, []string{"TRY", "EUR", "USD"}, codesOf(got))
	usd := findQuote(t, got, "USD")
	assert.True(t, decimal.RequireFromString("32.55").Equal(usd.ForexSelling))
}

func TestRateQuoteRepository_ReplaceKeepsOtherDates(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRateQuoteRepository(setupTestDB(t))
	older, newer := day(2024, 5, 31), day(2024, 6, 1)

	require.NoError(t, repo.ReplaceForDate(ctx, older, []domain.RateQuote{domain.IdentityQuote(older), quote("USD", "32.00", older)}))
	require.NoError(t, repo.ReplaceForDate(ctx, newer, []domain.RateQuote{domain.IdentityQuote(newer)}))

	got, err := repo.QuotesForDate(ctx, older)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	dates, err := repo.ListDates(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{newer, older}, dates)
}

func TestRateQuoteRepository_ReplaceNormalizesDate(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRateQuoteRepository(setupTestDB(t))
	noon := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

	require.NoError(t, repo.ReplaceForDate(ctx, noon, []domain.RateQuote{domain.IdentityQuote(noon), quote("USD", "32.40", noon)}))

	got, err := repo.QuotesForDate(ctx, day(2024, 6, 1))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, day(2024, 6, 1), got[1].EffectiveDate)
}

func TestRateQuoteRepository_LatestDate(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRateQuoteRepository(setupTestDB(t))

	latest, err := repo.LatestDate(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest, "empty store has no latest date")

	for _, d := range []time.Time{day(2024, 5, 30), day(2024, 6, 1), day(2024, 5, 31)} {
		require.NoError(t, repo.ReplaceForDate(ctx, d, []domain.RateQuote{domain.IdentityQuote(d)}))
	}

	latest, err = repo.LatestDate(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, day(2024, 6, 1), *latest)
}

func TestRateQuoteRepository_CrossRateAndPrecision(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRateQuoteRepository(setupTestDB(t))
	date := day(2024, 6, 1)

	q := quote("EUR", "34.9012", date)
	cross := decimal.RequireFromString("1.0781")
	q.CrossRate = &cross
	require.NoError(t, repo.ReplaceForDate(ctx, date, []domain.RateQuote{domain.IdentityQuote(date), q}))

	got, err := repo.QuotesForDate(ctx, date)
	require.NoError(t, err)
	eur := findQuote(t, got, "EUR")
	assert.Equal(t, "34.9012", eur.ForexSelling.String())
	require.NotNil(t, eur.CrossRate)
	assert.Equal(t, "1.0781", eur.CrossRate.String())
	assert.Nil(t, findQuote(t, got, "TRY").CrossRate)
}

func TestRateQuoteRepository_ConcurrentReplace(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRateQuoteRepository(setupTestDB(t))
	date := day(2024, 6, 1)

	sets := [][]domain.RateQuote{
		{domain.IdentityQuote(date), quote("USD", "32.40", date), quote("EUR", "34.90", date)},
		{domain.IdentityQuote(date), quote("USD", "32.41", date), quote("GBP", "41.00", date)},
	}

	var wg sync.WaitGroup
	for _, set := range sets {
		wg.Add(1)
		go func(quotes []domain.RateQuote) {
			defer wg.Done()
			assert.NoError(t, repo.ReplaceForDate(ctx, date, quotes))
		}(set)
	}
	wg.Wait()

	got, err := repo.QuotesForDate(ctx, date)
	require.NoError(t, err)
	codes := codesOf(got)
	assert.Contains(t, [][]string{{"TRY", "EUR", "USD"}, {"TRY", "GBP", "USD"}}, codes,
		"the stored set must be exactly one of the written sets")
}

func TestIngestionLogRepository_AppendAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewGormIngestionLogRepository(setupTestDB(t))
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	date := day(2024, 6, 1)

	for i := 0; i < 5; i++ {
		entry := domain.IngestionLogEntry{
			ID:         uuid.NewString(),
			Status:     domain.IngestionStatusSuccess,
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
			Message:    "stored",
			Count:      4,
			Trigger:    domain.TriggerSchedule,
			DurationMS: int64(i),
		}
		if i == 4 {
			entry.Status = domain.IngestionStatusError
			entry.Count = 0
			entry.Message = "feed returned 503"
		} else {
			entry.EffectiveDate = &date
		}
		require.NoError(t, repo.AppendIngestionLog(ctx, entry))
	}

	page, err := repo.ListIngestionLogs(ctx, 2, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, domain.IngestionStatusError, page[0].Status)
	assert.Nil(t, page[0].EffectiveDate)
	assert.Equal(t, base.Add(3*time.Minute), page[1].OccurredAt)

	before := domain.IngestionLogCursor{OccurredAt: page[1].OccurredAt, ID: page[1].ID}
	rest, err := repo.ListIngestionLogs(ctx, 10, &before)
	require.NoError(t, err)
	require.Len(t, rest, 3)
	assert.Equal(t, base.Add(2*time.Minute), rest[0].OccurredAt)
	require.NotNil(t, rest[0].EffectiveDate)
	assert.Equal(t, date, *rest[0].EffectiveDate)
}

func TestIngestionLogRepository_PagingKeepsEntriesSharingATimestamp(t *testing.T) {
	ctx := context.Background()
	repo := NewGormIngestionLogRepository(setupTestDB(t))
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	ids := []string{
		"00000000-0000-0000-0000-000000000001",
		"00000000-0000-0000-0000-000000000002",
		"00000000-0000-0000-0000-000000000003",
		"00000000-0000-0000-0000-000000000004",
	}
	for _, id := range ids {
		require.NoError(t, repo.AppendIngestionLog(ctx, domain.IngestionLogEntry{
			ID: id, Status: domain.IngestionStatusSuccess, Trigger: domain.TriggerManual, OccurredAt: at, Count: 4,
		}))
	}

	var seen []string
	var before *domain.IngestionLogCursor
	for {
		page, err := repo.ListIngestionLogs(ctx, 3, before)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, e := range page {
			seen = append(seen, e.ID)
		}
		last := page[len(page)-1]
		before = &domain.IngestionLogCursor{OccurredAt: last.OccurredAt, ID: last.ID}
	}

	assert.Equal(t, []string{ids[3], ids[2], ids[1], ids[0]}, seen)
}

func TestScheduleRepository_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewGormScheduleRepository(setupTestDB(t))
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	s := domain.Schedule{
		Name:      domain.IngestionJobName,
		Interval:  time.Hour,
		Enabled:   true,
		NextRunAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	first, err := repo.UpsertSchedule(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, first.Interval)

	s.Interval = 30 * time.Minute
	s.NextRunAt = now.Add(24 * time.Hour)
	s.UpdatedAt = now.Add(time.Minute)
	second, err := repo.UpsertSchedule(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, second.Interval)
	assert.Equal(t, now, second.NextRunAt, "re-install keeps the pending run")

	var count int64
	require.NoError(t, repo.db.Table("scheduled_jobs").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	found, err := repo.FindScheduleByName(ctx, domain.IngestionJobName)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, found.Interval)
}

func TestScheduleRepository_FindMissing(t *testing.T) {
	repo := NewGormScheduleRepository(setupTestDB(t))
	_, err := repo.FindScheduleByName(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestScheduleRepository_ClaimDueSchedules(t *testing.T) {
	ctx := context.Background()
	repo := NewGormScheduleRepository(setupTestDB(t))
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	_, err := repo.UpsertSchedule(ctx, domain.Schedule{Name: "due", Interval: time.Hour, Enabled: true, NextRunAt: now.Add(-time.Minute), CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	_, err = repo.UpsertSchedule(ctx, domain.Schedule{Name: "later", Interval: time.Hour, Enabled: true, NextRunAt: now.Add(time.Hour), CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	_, err = repo.UpsertSchedule(ctx, domain.Schedule{Name: "disabled", Interval: time.Hour, Enabled: false, NextRunAt: now.Add(-time.Hour), CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	claimed, err := repo.ClaimDueSchedules(ctx, now)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, "due", claimed[0].Name)
	assert.Equal(t, now.Add(59*time.Minute), claimed[0].NextRunAt)
	require.NotNil(t, claimed[0].LastRunAt)
	assert.Equal(t, now, *claimed[0].LastRunAt)

	again, err := repo.ClaimDueSchedules(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, again, "a claimed schedule is not due again until its next run")

	stored, err := repo.FindScheduleByName(ctx, "due")
	require.NoError(t, err)
	assert.Equal(t, now.Add(59*time.Minute), stored.NextRunAt)
}

func TestNewRepositoryProvider(t *testing.T) {
	provider := NewRepositoryProvider(setupTestDB(t))
	assert.NotNil(t, provider.RateQuoteRepo)
	assert.NotNil(t, provider.IngestionLogRepo)
	assert.NotNil(t, provider.ScheduleRepo)
	provider.Close()
}

func codesOf(quotes []domain.RateQuote) []string {
	codes := make([]string, len(quotes))
	for i, q := range quotes {
		codes[i] = q.CurrencyCode
	}
	return codes
}

func findQuote(t *testing.T, quotes []domain.RateQuote, code string) domain.RateQuote {
	t.Helper()
	for _, q := range quotes {
		if q.CurrencyCode == code {
			return q
		}
	}
	t.Fatalf("quote %s not found", code)
	return domain.RateQuote{}
}
