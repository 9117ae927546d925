package models

import "time"

// IngestionLog is one row of the append-only ingestion audit trail.
type IngestionLog struct {
	ID            string     `db:"id" gorm:"column:id;primaryKey;size:36"`
	Status        string     `db:"status" gorm:"column:status;size:16;not null"`
	Trigger       string     `db:"trigger_source" gorm:"column:trigger_source;size:16;not null"`
	OccurredAt    time.Time  `db:"occurred_at" gorm:"column:occurred_at;index;not null"`
	Message       string     `db:"message" gorm:"column:message"`
	Count         int        `db:"count" gorm:"column:count;not null;default:0"`
	EffectiveDate *time.Time `db:"effective_date" gorm:"column:effective_date"`
	DurationMS    int64      `db:"duration_ms" gorm:"column:duration_ms;not null;default:0"`
}

func (IngestionLog) TableName() string { return "ingestion_logs" }
