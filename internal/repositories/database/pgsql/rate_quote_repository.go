package pgsql

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/apperrors"
	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	portsrepo "github.com/emretit/paftamobile-sub007/internal/core/ports/repositories"
	"github.com/emretit/paftamobile-sub007/internal/models"
	"github.com/emretit/paftamobile-sub007/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxRateQuoteRepository implements the rate store on PostgreSQL using pgxpool.
type PgxRateQuoteRepository struct {
	BaseRepository
}

var _ portsrepo.RateQuoteRepositoryFacade = (*PgxRateQuoteRepository)(nil)

// NewPgxRateQuoteRepository creates a new PgxRateQuoteRepository.
func NewPgxRateQuoteRepository(db *pgxpool.Pool) *PgxRateQuoteRepository {
	return &PgxRateQuoteRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

const upsertRateQuoteSQL = `
	INSERT INTO rate_quotes (
		effective_date, currency_code, currency_name, unit,
		forex_buying, forex_selling, banknote_buying, banknote_selling, cross_rate, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (effective_date, currency_code) DO UPDATE SET
		currency_name = EXCLUDED.currency_name,
		unit = EXCLUDED.unit,
		forex_buying = EXCLUDED.forex_buying,
		forex_selling = EXCLUDED.forex_selling,
		banknote_buying = EXCLUDED.banknote_buying,
		banknote_selling = EXCLUDED.banknote_selling,
		cross_rate = EXCLUDED.cross_rate,
		updated_at = EXCLUDED.updated_at`

// ReplaceForDate upserts every quote and deletes the date's rows whose code is
// not in the new set, all in one transaction. Concurrent readers see either
// the previous or the new complete set.
func (r *PgxRateQuoteRepository) ReplaceForDate(ctx context.Context, date time.Time, quotes []domain.RateQuote) error {
	date = domain.NormalizeDate(date)
	now := time.Now().UTC()

	rows := make([]models.RateQuote, len(quotes))
	codes := make([]string, len(quotes))
	for i, q := range quotes {
		q.EffectiveDate = date
		rows[i] = mapping.ToModelRateQuote(q)
		rows[i].UpdatedAt = now
		codes[i] = q.CurrencyCode
	}
	// Same lock order in every writer, so two concurrent replaces of one date cannot deadlock.
	sort.Slice(rows, func(i, j int) bool { return rows[i].CurrencyCode < rows[j].CurrencyCode })

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		for _, m := range rows {
			_, err := tx.Exec(ctx, upsertRateQuoteSQL,
				m.EffectiveDate, m.CurrencyCode, m.CurrencyName, m.Unit,
				m.ForexBuying, m.ForexSelling, m.BanknoteBuying, m.BanknoteSelling, m.CrossRate, m.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("upsert %s: %w", m.CurrencyCode, err)
			}
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM rate_quotes WHERE effective_date = $1 AND NOT (currency_code = ANY($2))`,
			date, codes,
		); err != nil {
			return fmt.Errorf("delete stale quotes: %w", err)
		}
		return nil
	})
	if err != nil {
		return apperrors.NewStoreError("replace rates for "+date.Format("2006-01-02"), err)
	}
	return nil
}

// LatestDate returns the maximum effective date, or nil when the table is empty.
func (r *PgxRateQuoteRepository) LatestDate(ctx context.Context) (*time.Time, error) {
	var latest *time.Time
	err := r.Pool.QueryRow(ctx, `SELECT MAX(effective_date) FROM rate_quotes`).Scan(&latest)
	if err != nil {
		return nil, apperrors.NewStoreError("latest date", err)
	}
	if latest == nil {
		return nil, nil
	}
	d := domain.NormalizeDate(*latest)
	return &d, nil
}

// QuotesForDate returns the date's quotes with the domestic currency first.
func (r *PgxRateQuoteRepository) QuotesForDate(ctx context.Context, date time.Time) ([]domain.RateQuote, error) {
	query := `
		SELECT
			effective_date, currency_code, currency_name, unit,
			forex_buying, forex_selling, banknote_buying, banknote_selling, cross_rate, updated_at
		FROM rate_quotes
		WHERE effective_date = $1
		ORDER BY CASE WHEN currency_code = $2 THEN 0 ELSE 1 END, currency_code;
	`

	rows, err := r.Pool.Query(ctx, query, domain.NormalizeDate(date), domain.DomesticCurrency)
	if err != nil {
		return nil, apperrors.NewStoreError("quotes for date", err)
	}
	defer rows.Close()

	quotes := []domain.RateQuote{}
	for rows.Next() {
		var m models.RateQuote
		err := rows.Scan(
			&m.EffectiveDate, &m.CurrencyCode, &m.CurrencyName, &m.Unit,
			&m.ForexBuying, &m.ForexSelling, &m.BanknoteBuying, &m.BanknoteSelling, &m.CrossRate, &m.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewStoreError("scan rate quote", err)
		}
		quotes = append(quotes, mapping.ToDomainRateQuote(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("iterate rate quotes", err)
	}

	return quotes, nil
}

// ListDates returns distinct effective dates, newest first.
func (r *PgxRateQuoteRepository) ListDates(ctx context.Context, limit int) ([]time.Time, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT DISTINCT effective_date FROM rate_quotes ORDER BY effective_date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.NewStoreError("list dates", err)
	}
	defer rows.Close()

	dates := []time.Time{}
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, apperrors.NewStoreError("scan date", err)
		}
		dates = append(dates, domain.NormalizeDate(d))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("iterate dates", err)
	}
	return dates, nil
}
