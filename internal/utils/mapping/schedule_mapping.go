package mapping

import (
	"time"

	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	"github.com/emretit/paftamobile-sub007/internal/models"
)

// ToModelScheduledJob converts a domain Schedule to a model ScheduledJob
func ToModelScheduledJob(d domain.Schedule) models.ScheduledJob {
	return models.ScheduledJob{
		Name:            d.Name,
		IntervalSeconds: int64(d.Interval / time.Second),
		Enabled:         d.Enabled,
		NextRunAt:       d.NextRunAt.UTC(),
		LastRunAt:       d.LastRunAt,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

// ToDomainSchedule converts a model ScheduledJob to a domain Schedule
func ToDomainSchedule(m models.ScheduledJob) domain.Schedule {
	s := domain.Schedule{
		Name:      m.Name,
		Interval:  time.Duration(m.IntervalSeconds) * time.Second,
		Enabled:   m.Enabled,
		NextRunAt: m.NextRunAt.UTC(),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
	if m.LastRunAt != nil {
		last := m.LastRunAt.UTC()
		s.LastRunAt = &last
	}
	return s
}
