package domain

import "time"

// IngestionJobName names the recurring trigger bound to the ingestion run.
const IngestionJobName = "exchange-rate-ingestion"

// Schedule is a recurring trigger row owned by the scheduler substrate.
type Schedule struct {
	Name      string
	Interval  time.Duration
	Enabled   bool
	NextRunAt time.Time
	LastRunAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Advance returns the next run time after a firing at now.
func (s Schedule) Advance(now time.Time) time.Time {
	next := s.NextRunAt.Add(s.Interval)
	if !next.After(now) {
		next = now.Add(s.Interval)
	}
	return next
}
