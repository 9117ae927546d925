package pgsql

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/apperrors"
	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	"github.com/emretit/paftamobile-sub007/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// setupTestPool starts a throwaway Postgres, applies the migrations and
// returns a pool against it.
func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres integration test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("rates_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{"test-name": t.Name()}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	applied, err := database.MigrateUp(connStr)
	require.NoError(t, err)
	require.True(t, applied)

	pool, err := database.NewPgxPool(ctx, connStr, true)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func testQuote(code, selling string, date time.Time) domain.RateQuote {
	d := decimal.RequireFromString(selling)
	return domain.RateQuote{
		CurrencyCode: code, CurrencyName: code, Unit: 1,
		ForexBuying: d, ForexSelling: d, BanknoteBuying: d, BanknoteSelling: d,
		EffectiveDate: date,
	}
}

func TestPostgresRepositories(t *testing.T) {
	pool := setupTestPool(t)
	provider := NewRepositoryProvider(pool)
	ctx := context.Background()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("replace drops stale codes", func(t *testing.T) {
		repo := provider.RateQuoteRepo
		require.NoError(t, repo.ReplaceForDate(ctx, date, []domain.RateQuote{
			domain.IdentityQuote(date), testQuote("USD", "32.40", date), testQuote("EUR", "34.90", date), testQuote("GBP", "41.10", date),
		}))
		require.NoError(t, repo.ReplaceForDate(ctx, date, []domain.RateQuote{
			domain.IdentityQuote(date), testQuote("USD", "32.55", date), testQuote("EUR", "35.00", date),
		}))

		got, err := repo.QuotesForDate(ctx, date)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "TRY", got[0].CurrencyCode)
		assert.Equal(t, "EUR", got[1].CurrencyCode)
		assert.True(t, decimal.RequireFromString("32.55").Equal(got[2].ForexSelling))

		latest, err := repo.LatestDate(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, date, *latest)
	})

	t.Run("concurrent replace leaves one complete set", func(t *testing.T) {
		repo := provider.RateQuoteRepo
		next := date.AddDate(0, 0, 1)
		var wg sync.WaitGroup
		for _, extra := range []string{"EUR", "GBP"} {
			wg.Add(1)
			go func(code string) {
				defer wg.Done()
				assert.NoError(t, repo.ReplaceForDate(ctx, next, []domain.RateQuote{
					domain.IdentityQuote(next), testQuote("USD", "32.40", next), testQuote(code, "35.00", next),
				}))
			}(extra)
		}
		wg.Wait()

		got, err := repo.QuotesForDate(ctx, next)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("ingestion log pagination", func(t *testing.T) {
		repo := provider.IngestionLogRepo
		base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			require.NoError(t, repo.AppendIngestionLog(ctx, domain.IngestionLogEntry{
				ID: uuid.NewString(), Status: domain.IngestionStatusSuccess, Trigger: domain.TriggerManual,
				OccurredAt: base.Add(time.Duration(i) * time.Second), Count: 4, EffectiveDate: &date,
			}))
		}
		first, err := repo.ListIngestionLogs(ctx, 2, nil)
		require.NoError(t, err)
		require.Len(t, first, 2)
		assert.True(t, first[0].OccurredAt.After(first[1].OccurredAt))

		rest, err := repo.ListIngestionLogs(ctx, 2, &domain.IngestionLogCursor{OccurredAt: first[1].OccurredAt, ID: first[1].ID})
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, base, rest[0].OccurredAt)
	})

	t.Run("ingestion log pagination with shared timestamp", func(t *testing.T) {
		repo := provider.IngestionLogRepo
		at := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			require.NoError(t, repo.AppendIngestionLog(ctx, domain.IngestionLogEntry{
				ID: uuid.NewString(), Status: domain.IngestionStatusSuccess, Trigger: domain.TriggerSchedule,
				OccurredAt: at, Count: 4,
			}))
		}

		first, err := repo.ListIngestionLogs(ctx, 2, nil)
		require.NoError(t, err)
		require.Len(t, first, 2)
		rest, err := repo.ListIngestionLogs(ctx, 2, &domain.IngestionLogCursor{OccurredAt: first[1].OccurredAt, ID: first[1].ID})
		require.NoError(t, err)
		require.NotEmpty(t, rest)
		assert.True(t, at.Equal(rest[0].OccurredAt))
		assert.NotContains(t, []string{first[0].ID, first[1].ID}, rest[0].ID)
	})

	t.Run("schedule upsert and claim", func(t *testing.T) {
		repo := provider.ScheduleRepo
		now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
		s := domain.Schedule{Name: domain.IngestionJobName, Interval: time.Hour, Enabled: true, NextRunAt: now, CreatedAt: now, UpdatedAt: now}
		_, err := repo.UpsertSchedule(ctx, s)
		require.NoError(t, err)
		s.Interval = 2 * time.Hour
		s.NextRunAt = now.Add(48 * time.Hour)
		saved, err := repo.UpsertSchedule(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, saved.Interval)
		assert.True(t, saved.NextRunAt.Equal(now))

		claimed, err := repo.ClaimDueSchedules(ctx, now)
		require.NoError(t, err)
		require.Len(t, claimed, 1)
		assert.True(t, claimed[0].NextRunAt.Equal(now.Add(2*time.Hour)))

		again, err := repo.ClaimDueSchedules(ctx, now)
		require.NoError(t, err)
		assert.Empty(t, again)

		_, err = repo.FindScheduleByName(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
