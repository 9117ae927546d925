package models

import "time"

// ScheduledJob is a recurring trigger row; name is unique.
type ScheduledJob struct {
	Name            string     `db:"name" gorm:"column:name;primaryKey"`
	IntervalSeconds int64      `db:"interval_seconds" gorm:"column:interval_seconds;not null"`
	Enabled         bool       `db:"enabled" gorm:"column:enabled;not null"`
	NextRunAt       time.Time  `db:"next_run_at" gorm:"column:next_run_at;index;not null"`
	LastRunAt       *time.Time `db:"last_run_at" gorm:"column:last_run_at"`
	CreatedAt       time.Time  `db:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time  `db:"updated_at" gorm:"column:updated_at"`
}

func (ScheduledJob) TableName() string { return "scheduled_jobs" }
