package domain

import "time"

// IngestionStatus is the outcome of one ingestion run.
type IngestionStatus string

const (
	IngestionStatusSuccess IngestionStatus = "success"
	IngestionStatusError   IngestionStatus = "error"
)

// IngestionTrigger records what started an ingestion run.
type IngestionTrigger string

const (
	TriggerManual    IngestionTrigger = "manual"
	TriggerSchedule  IngestionTrigger = "schedule"
	TriggerColdStart IngestionTrigger = "cold_start"
)

// IngestionLogEntry is an append-only audit record of one ingestion attempt.
type IngestionLogEntry struct {
	ID            string           `json:"id"`
	Status        IngestionStatus  `json:"status"`
	OccurredAt    time.Time        `json:"occurredAt"`
	Message       string           `json:"message"`
	Count         int              `json:"count"`
	Trigger       IngestionTrigger `json:"trigger"`
	EffectiveDate *time.Time       `json:"effectiveDate,omitempty"`
	DurationMS    int64            `json:"durationMs"`
}

// IngestionLogCursor marks the last entry of a page. Entries are ordered by
// OccurredAt then ID, both descending.
type IngestionLogCursor struct {
	OccurredAt time.Time
	ID         string
}

// IngestionResult is what a successful run stored.
type IngestionResult struct {
	RateSet
	Trigger  IngestionTrigger
	Warnings []error
}
