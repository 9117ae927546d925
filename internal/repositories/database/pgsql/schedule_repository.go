package pgsql

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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxScheduleRepository stores recurring triggers in scheduled_jobs.
type PgxScheduleRepository struct {
	BaseRepository
}

var _ portsrepo.ScheduleRepositoryFacade = (*PgxScheduleRepository)(nil)

// NewPgxScheduleRepository creates a new PgxScheduleRepository.
func NewPgxScheduleRepository(db *pgxpool.Pool) *PgxScheduleRepository {
	return &PgxScheduleRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

const scheduleColumns = `name, interval_seconds, enabled, next_run_at, last_run_at, created_at, updated_at`

func scanSchedule(row pgx.Row) (models.ScheduledJob, error) {
	var m models.ScheduledJob
	err := row.Scan(&m.Name, &m.IntervalSeconds, &m.Enabled, &m.NextRunAt, &m.LastRunAt, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// UpsertSchedule inserts the schedule or updates interval and enabled of the
// existing row with the same name. next_run_at of an existing row is kept.
func (r *PgxScheduleRepository) UpsertSchedule(ctx context.Context, schedule domain.Schedule) (*domain.Schedule, error) {
	m := mapping.ToModelScheduledJob(schedule)
	row := r.Pool.QueryRow(ctx, `
		INSERT INTO scheduled_jobs (`+scheduleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			interval_seconds = EXCLUDED.interval_seconds,
			enabled = EXCLUDED.enabled,
			updated_at = EXCLUDED.updated_at
		RETURNING `+scheduleColumns,
		m.Name, m.IntervalSeconds, m.Enabled, m.NextRunAt, m.LastRunAt, m.CreatedAt, m.UpdatedAt,
	)
	saved, err := scanSchedule(row)
	if err != nil {
		return nil, apperrors.NewStoreError("upsert schedule", err)
	}
	d := mapping.ToDomainSchedule(saved)
	return &d, nil
}

// FindScheduleByName returns the named schedule or apperrors.ErrNotFound.
func (r *PgxScheduleRepository) FindScheduleByName(ctx context.Context, name string) (*domain.Schedule, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM scheduled_jobs WHERE name = $1`, name)
	m, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: schedule %q", apperrors.ErrNotFound, name)
		}
		return nil, apperrors.NewStoreError("find schedule", err)
	}
	d := mapping.ToDomainSchedule(m)
	return &d, nil
}

// ClaimDueSchedules locks due rows with SKIP LOCKED so that concurrent
// dispatchers never fire the same trigger, then advances next_run_at.
func (r *PgxScheduleRepository) ClaimDueSchedules(ctx context.Context, now time.Time) ([]domain.Schedule, error) {
	now = now.UTC()
	var claimed []domain.Schedule

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT `+scheduleColumns+`
			FROM scheduled_jobs
			WHERE enabled AND next_run_at <= $1
			ORDER BY next_run_at
			FOR UPDATE SKIP LOCKED`, now)
		if err != nil {
			return err
		}
		var due []domain.Schedule
		for rows.Next() {
			m, err := scanSchedule(rows)
			if err != nil {
				rows.Close()
				return err
			}
			due = append(due, mapping.ToDomainSchedule(m))
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, s := range due {
			next := s.Advance(now)
			if _, err := tx.Exec(ctx,
				`UPDATE scheduled_jobs SET next_run_at = $2, last_run_at = $3, updated_at = $3 WHERE name = $1`,
				s.Name, next, now,
			); err != nil {
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
