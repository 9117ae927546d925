package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	portsrepo "github.com/emretit/paftamobile-sub007/internal/core/ports/repositories"
	portssvc "github.com/emretit/paftamobile-sub007/internal/core/ports/services"
)

// ScheduleService installs the recurring trigger of the ingestion run.
type ScheduleService struct {
	BaseService
	repo     scheduleStore
	interval time.Duration
	now      func() time.Time
}

type scheduleStore interface {
	portsrepo.ScheduleReader
	portsrepo.ScheduleWriter
}

// NewScheduleService creates a new ScheduleService firing every interval.
func NewScheduleService(repo scheduleStore, interval time.Duration) *ScheduleService {
	return &ScheduleService{repo: repo, interval: interval, now: time.Now}
}

// InstallSchedule upserts the ingestion trigger by name, so any number of
// calls leave exactly one. A fresh install is due immediately; re-installs
// keep the pending run and only update interval and enabled.
func (s *ScheduleService) InstallSchedule(ctx context.Context) (*domain.Schedule, error) {
	now := s.now().UTC()
	schedule, err := s.repo.UpsertSchedule(ctx, domain.Schedule{
		Name:      domain.IngestionJobName,
		Interval:  s.interval,
		Enabled:   true,
		NextRunAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to install ingestion schedule")
		return nil, fmt.Errorf("failed to install ingestion schedule: %w", err)
	}

	s.LogInfo(ctx, "Ingestion schedule installed",
		slog.String("name", schedule.Name),
		slog.Duration("interval", schedule.Interval),
		slog.Time("next_run_at", schedule.NextRunAt))
	return schedule, nil
}

// GetSchedule returns the installed ingestion trigger, or apperrors.ErrNotFound
// when InstallSchedule has never run.
func (s *ScheduleService) GetSchedule(ctx context.Context) (*domain.Schedule, error) {
	schedule, err := s.repo.FindScheduleByName(ctx, domain.IngestionJobName)
	if err != nil {
		return nil, fmt.Errorf("failed to get ingestion schedule: %w", err)
	}
	return schedule, nil
}

// IngestionJob adapts the ingestion run to the scheduler's job handler shape.
func IngestionJob(ingestion portssvc.IngestionSvc) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := ingestion.Run(ctx, domain.TriggerSchedule)
		return err
	}
}
