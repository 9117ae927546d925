package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/apperrors"
	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	"github.com/emretit/paftamobile-sub007/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInstallSchedule(t *testing.T) {
	ctx := context.Background()
	repo := new(MockScheduleRepository)
	service := services.NewScheduleService(repo, 24*time.Hour)

	saved := &domain.Schedule{Name: domain.IngestionJobName, Interval: 24 * time.Hour, Enabled: true, NextRunAt: time.Now().UTC()}
	repo.On("UpsertSchedule", ctx, mock.MatchedBy(func(s domain.Schedule) bool {
		return s.Name == domain.IngestionJobName && s.Interval == 24*time.Hour && s.Enabled
	})).Return(saved, nil).Once()

	got, err := service.InstallSchedule(ctx)

	require.NoError(t, err)
	assert.Same(t, saved, got)
	repo.AssertExpectations(t)
}

func TestInstallSchedule_StoreFailurePropagates(t *testing.T) {
	ctx := context.Background()
	repo := new(MockScheduleRepository)
	service := services.NewScheduleService(repo, time.Hour)
	storeErr := apperrors.NewStoreError("upsert schedule", assert.AnError)
	repo.On("UpsertSchedule", ctx, mock.Anything).Return(nil, storeErr).Once()

	_, err := service.InstallSchedule(ctx)

	var target *apperrors.StoreError
	assert.ErrorAs(t, err, &target)
}

func TestIngestionJob(t *testing.T) {
	ctx := context.Background()
	ingestion := new(MockIngestionSvc)
	ingestion.On("Run", ctx, domain.TriggerSchedule).Return(&domain.IngestionResult{}, nil).Once()
	ingestion.On("Run", ctx, domain.TriggerSchedule).Return(nil, assert.AnError).Once()

	job := services.IngestionJob(ingestion)
	assert.NoError(t, job(ctx))
	assert.ErrorIs(t, job(ctx), assert.AnError)
	ingestion.AssertExpectations(t)
}

func TestGetSchedule(t *testing.T) {
	ctx := context.Background()
	repo := new(MockScheduleRepository)
	service := services.NewScheduleService(repo, time.Hour)
	installed := &domain.Schedule{Name: domain.IngestionJobName, Interval: time.Hour, Enabled: true}
	repo.On("FindScheduleByName", ctx, domain.IngestionJobName).Return(installed, nil).Once()
	repo.On("FindScheduleByName", ctx, domain.IngestionJobName).Return(nil, apperrors.ErrNotFound).Once()

	got, err := service.GetSchedule(ctx)
	require.NoError(t, err)
	assert.Same(t, installed, got)

	_, err = service.GetSchedule(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
