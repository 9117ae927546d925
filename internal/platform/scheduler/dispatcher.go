package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/emretit/paftamobile-sub007/internal/apperrors"
	portsrepo "github.com/emretit/paftamobile-sub007/internal/core/ports/repositories"
)

// JobHandler is the work bound to a scheduled job name.
type JobHandler func(ctx context.Context) error

// Dispatcher polls scheduled_jobs, claims due rows and fires the handler
// registered for each. It is the only place a failed run is retried.
type Dispatcher struct {
	claimer      portsrepo.ScheduleClaimer
	pollInterval time.Duration
	maxRetries   uint64
	logger       *slog.Logger
	newBackOff   func() backoff.BackOff
	now          func() time.Time

	mu       sync.RWMutex
	handlers map[string]JobHandler
}

// NewDispatcher creates a dispatcher polling every pollInterval. A failed
// retriable run is attempted up to maxRetries more times.
func NewDispatcher(claimer portsrepo.ScheduleClaimer, pollInterval time.Duration, maxRetries int, logger *slog.Logger) *Dispatcher {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Dispatcher{
		claimer:      claimer,
		pollInterval: pollInterval,
		maxRetries:   uint64(maxRetries),
		logger:       logger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 2 * time.Second
			b.MaxInterval = time.Minute
			b.MaxElapsedTime = 10 * time.Minute
			return b
		},
		now:      time.Now,
		handlers: make(map[string]JobHandler),
	}
}

// Register binds handler to the job name.
func (d *Dispatcher) Register(name string, handler JobHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = handler
}

// Start polls until ctx is cancelled. The first poll happens immediately.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	d.logger.Info("Starting schedule dispatcher", slog.Duration("poll_interval", d.pollInterval))
	d.Poll(ctx)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Stopping schedule dispatcher")
			return
		case <-ticker.C:
			d.Poll(ctx)
		}
	}
}

// StartAsync runs Start in its own goroutine. The returned channel is closed
// once Start has returned, after any in-flight job has finished.
func (d *Dispatcher) StartAsync(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Start(ctx)
	}()
	return done
}

// Poll claims every due schedule and runs its handler. It returns the
// number of jobs that finished without error.
func (d *Dispatcher) Poll(ctx context.Context) int {
	due, err := d.claimer.ClaimDueSchedules(ctx, d.now())
	if err != nil {
		d.logger.Error("Failed to claim due schedules", slog.String("error", err.Error()))
		return 0
	}

	succeeded := 0
	for _, s := range due {
		d.mu.RLock()
		handler, ok := d.handlers[s.Name]
		d.mu.RUnlock()
		if !ok {
			d.logger.Warn("No handler registered for scheduled job", slog.String("job", s.Name))
			continue
		}

		logger := d.logger.With(slog.String("job", s.Name))
		if err := d.runWithRetry(ctx, logger, handler); err != nil {
			logger.Error("Scheduled job failed", slog.String("error", err.Error()), slog.Time("next_run_at", s.NextRunAt))
			continue
		}
		logger.Info("Scheduled job finished", slog.Time("next_run_at", s.NextRunAt))
		succeeded++
	}
	return succeeded
}

func (d *Dispatcher) runWithRetry(ctx context.Context, logger *slog.Logger, handler JobHandler) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := handler(ctx)
		if err != nil && !apperrors.IsRetriable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("Scheduled job attempt failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()))
	}

	b := backoff.WithContext(backoff.WithMaxRetries(d.newBackOff(), d.maxRetries), ctx)
	err := backoff.RetryNotify(operation, b, notify)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	return err
}
