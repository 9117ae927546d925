package repositories

import (
	"context"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/core/domain"
)

// ScheduleReader defines read operations for recurring triggers
type ScheduleReader interface {
	FindScheduleByName(ctx context.Context, name string) (*domain.Schedule, error)
}

// ScheduleWriter defines write operations for recurring triggers
type ScheduleWriter interface {
	// UpsertSchedule inserts the schedule or, when one with the same name
	// exists, updates its interval and enabled flag in place.
	UpsertSchedule(ctx context.Context, schedule domain.Schedule) (*domain.Schedule, error)
}

// ScheduleClaimer hands due triggers to exactly one dispatcher.
type ScheduleClaimer interface {
	// ClaimDueSchedules returns enabled schedules due at now and, in the same
	// transaction, advances their next run time.
	ClaimDueSchedules(ctx context.Context, now time.Time) ([]domain.Schedule, error)
}

// ScheduleRepositoryFacade combines all schedule repository interfaces
type ScheduleRepositoryFacade interface {
	ScheduleReader
	ScheduleWriter
	ScheduleClaimer
}
