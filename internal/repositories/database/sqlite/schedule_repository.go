package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/apperrors"
	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	portsrepo "github.com/emretit/paftamobile-sub007/internal/core/ports/repositories"
	"github.com/emretit/paftamobile-sub007/internal/models"
	"github.com/emretit/paftamobile-sub007/internal/utils/mapping"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormScheduleRepository stores recurring triggers in SQLite.
type GormScheduleRepository struct {
	db *gorm.DB
}

var _ portsrepo.ScheduleRepositoryFacade = (*GormScheduleRepository)(nil)

// NewGormScheduleRepository creates a new GormScheduleRepository.
func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

// UpsertSchedule inserts the schedule or refreshes interval and enabled of
// the existing row, keeping its next_run_at.
func (r *GormScheduleRepository) UpsertSchedule(ctx context.Context, schedule domain.Schedule) (*domain.Schedule, error) {
	m := mapping.ToModelScheduledJob(schedule)
	var saved models.ScheduledJob

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"interval_seconds", "enabled", "updated_at"}),
		}).Create(&m).Error
		if err != nil {
			return err
		}
		return tx.Where("name = ?", m.Name).Take(&saved).Error
	})
	if err != nil {
		return nil, apperrors.NewStoreError("upsert schedule", err)
	}
	d := mapping.ToDomainSchedule(saved)
	return &d, nil
}

func (r *GormScheduleRepository) FindScheduleByName(ctx context.Context, name string) (*domain.Schedule, error) {
	var m models.ScheduledJob
	err := r.db.WithContext(ctx).Where("name = ?", name).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: schedule %q", apperrors.ErrNotFound, name)
	}
	if err != nil {
		return nil, apperrors.NewStoreError("find schedule", err)
	}
	d := mapping.ToDomainSchedule(m)
	return &d, nil
}

// ClaimDueSchedules advances every due, enabled schedule and returns the
// claimed rows. The single-connection pool makes the read and the update
// one serialized unit.
func (r *GormScheduleRepository) ClaimDueSchedules(ctx context.Context, now time.Time) ([]domain.Schedule, error) {
	now = now.UTC()
	var claimed []domain.Schedule

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var due []models.ScheduledJob
		if err := tx.Where("enabled = ? AND next_run_at <= ?", true, now).Order("next_run_at").Find(&due).Error; err != nil {
			return err
		}

		for _, m := range due {
			s := mapping.ToDomainSchedule(m)
			next := s.Advance(now)
			err := tx.Model(&models.ScheduledJob{}).Where("name = ?", s.Name).Updates(map[string]any{
				"next_run_at": next,
				"last_run_at": now,
				"updated_at":  now,
			}).Error
			if err != nil {
				return err
			}
			last := now
			s.LastRunAt = &last
			s.NextRunAt = next
			s.UpdatedAt = now
			claimed = append(claimed, s)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewStoreError("claim due schedules", err)
	}
	return claimed, nil
}
