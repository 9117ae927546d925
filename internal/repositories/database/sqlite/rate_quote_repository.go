package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/apperrors"
	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	portsrepo "github.com/emretit/paftamobile-sub007/internal/core/ports/repositories"
	"github.com/emretit/paftamobile-sub007/internal/models"
	"github.com/emretit/paftamobile-sub007/internal/utils/mapping"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRateQuoteRepository implements the rate store on an embedded SQLite file.
type GormRateQuoteRepository struct {
	db *gorm.DB
}

var _ portsrepo.RateQuoteRepositoryFacade = (*GormRateQuoteRepository)(nil)

// NewGormRateQuoteRepository creates a new GormRateQuoteRepository.
func NewGormRateQuoteRepository(db *gorm.DB) *GormRateQuoteRepository {
	return &GormRateQuoteRepository{db: db}
}

// ReplaceForDate upserts the quotes and drops the date's other rows in one transaction.
func (r *GormRateQuoteRepository) ReplaceForDate(ctx context.Context, date time.Time, quotes []domain.RateQuote) error {
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

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(rows) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "effective_date"}, {Name: "currency_code"}},
				UpdateAll: true,
			}).Create(&rows).Error
			if err != nil {
				return err
			}
		}

		stale := tx.Where("effective_date = ?", date)
		if len(codes) > 0 {
			stale = stale.Where("currency_code NOT IN ?", codes)
		}
		return stale.Delete(&models.RateQuote{}).Error
	})
	if err != nil {
		return apperrors.NewStoreError("replace rates for "+date.Format("2006-01-02"), err)
	}
	return nil
}

// LatestDate returns the newest stored effective date, or nil when empty.
func (r *GormRateQuoteRepository) LatestDate(ctx context.Context) (*time.Time, error) {
	var m models.RateQuote
	err := r.db.WithContext(ctx).Order("effective_date DESC").Limit(1).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreError("latest date", err)
	}
	d := domain.NormalizeDate(m.EffectiveDate)
	return &d, nil
}

// QuotesForDate returns the date's quotes with the domestic currency first.
func (r *GormRateQuoteRepository) QuotesForDate(ctx context.Context, date time.Time) ([]domain.RateQuote, error) {
	var rows []models.RateQuote
	err := r.db.WithContext(ctx).
		Where("effective_date = ?", domain.NormalizeDate(date)).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN currency_code = ? THEN 0 ELSE 1 END, currency_code",
			Vars:               []any{domain.DomesticCurrency},
			WithoutParentheses: true,
		}}).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.NewStoreError("quotes for date", err)
	}
	return mapping.ToDomainRateQuotes(rows), nil
}

// ListDates returns distinct effective dates, newest first.
func (r *GormRateQuoteRepository) ListDates(ctx context.Context, limit int) ([]time.Time, error) {
	var rows []models.RateQuote
	err := r.db.WithContext(ctx).
		Model(&models.RateQuote{}).
		Distinct("effective_date").
		Order("effective_date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.NewStoreError("list dates", err)
	}
	dates := make([]time.Time, len(rows))
	for i, m := range rows {
		dates[i] = domain.NormalizeDate(m.EffectiveDate)
	}
	return dates, nil
}
