package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/emretit/paftamobile-sub007/internal/apperrors"
	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockScheduleClaimer struct {
	mock.Mock
}

func (m *MockScheduleClaimer) ClaimDueSchedules(ctx context.Context, now time.Time) ([]domain.Schedule, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

func newTestDispatcher(claimer *MockScheduleClaimer, maxRetries int) *Dispatcher {
	d := NewDispatcher(claimer, time.Hour, maxRetries, slog.New(slog.NewTextHandler(io.Discard, nil)))
	d.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return d
}

func dueIngestion() []domain.Schedule {
	return []domain.Schedule{{Name: domain.IngestionJobName, Interval: 24 * time.Hour, Enabled: true}}
}

func TestDispatcher_PollRunsRegisteredJob(t *testing.T) {
	claimer := new(MockScheduleClaimer)
	claimer.On("ClaimDueSchedules", mock.Anything, mock.Anything).Return(dueIngestion(), nil).Once()
	d := newTestDispatcher(claimer, 3)

	calls := 0
	d.Register(domain.IngestionJobName, func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.Equal(t, 1, d.Poll(context.Background()))
	assert.Equal(t, 1, calls)
	claimer.AssertExpectations(t)
}

func TestDispatcher_RetriesRetriableErrors(t *testing.T) {
	claimer := new(MockScheduleClaimer)
	claimer.On("ClaimDueSchedules", mock.Anything, mock.Anything).Return(dueIngestion(), nil).Once()
	d := newTestDispatcher(claimer, 3)

	calls := 0
	d.Register(domain.IngestionJobName, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return apperrors.NewFetchError(503, nil, errors.New("unavailable"))
		}
		return nil
	})

	assert.Equal(t, 1, d.Poll(context.Background()))
	assert.Equal(t, 3, calls)
}

func TestDispatcher_RetryIsBounded(t *testing.T) {
	claimer := new(MockScheduleClaimer)
	claimer.On("ClaimDueSchedules", mock.Anything, mock.Anything).Return(dueIngestion(), nil).Once()
	d := newTestDispatcher(claimer, 2)

	calls := 0
	d.Register(domain.IngestionJobName, func(ctx context.Context) error {
		calls++
		return &apperrors.ParseError{Reason: "bad document"}
	})

	assert.Equal(t, 0, d.Poll(context.Background()))
	assert.Equal(t, 3, calls, "one attempt plus two retries")
}

func TestDispatcher_DoesNotRetryPermanentErrors(t *testing.T) {
	claimer := new(MockScheduleClaimer)
	claimer.On("ClaimDueSchedules", mock.Anything, mock.Anything).Return(dueIngestion(), nil).Once()
	d := newTestDispatcher(claimer, 5)

	calls := 0
	d.Register(domain.IngestionJobName, func(ctx context.Context) error {
		calls++
		return apperrors.ErrValidation
	})

	assert.Equal(t, 0, d.Poll(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestDispatcher_SkipsUnknownJobsAndClaimErrors(t *testing.T) {
	claimer := new(MockScheduleClaimer)
	claimer.On("ClaimDueSchedules", mock.Anything, mock.Anything).Return([]domain.Schedule{{Name: "unknown"}}, nil).Once()
	claimer.On("ClaimDueSchedules", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()
	d := newTestDispatcher(claimer, 1)

	assert.Equal(t, 0, d.Poll(context.Background()))
	assert.Equal(t, 0, d.Poll(context.Background()))
	claimer.AssertExpectations(t)
}

func TestDispatcher_StartStopsOnCancel(t *testing.T) {
	polled := make(chan struct{}, 1)
	claimer := new(MockScheduleClaimer)
	claimer.On("ClaimDueSchedules", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case polled <- struct{}{}:
			default:
			}
		}).
		Return([]domain.Schedule{}, nil)
	d := newTestDispatcher(claimer, 0)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.Start(ctx)
	}()

	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not poll on start")
	}
	cancel()
	wg.Wait()
}

func TestDispatcher_StartAsyncWaitsForInFlightJob(t *testing.T) {
	claimer := new(MockScheduleClaimer)
	claimer.On("ClaimDueSchedules", mock.Anything, mock.Anything).Return(dueIngestion(), nil).Once()
	claimer.On("ClaimDueSchedules", mock.Anything, mock.Anything).Return([]domain.Schedule{}, nil)
	d := newTestDispatcher(claimer, 0)

	started := make(chan struct{})
	release := make(chan struct{})
	d.Register(domain.IngestionJobName, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := d.StartAsync(ctx)

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("job did not start")
	}
	cancel()

	select {
	case <-done:
		t.Fatal("dispatcher stopped while a job was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after the job finished")
	}
}
