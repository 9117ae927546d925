package mapping

import (
	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	"github.com/emretit/paftamobile-sub007/internal/models"
)

// ToModelIngestionLog converts a domain IngestionLogEntry to a model IngestionLog
func ToModelIngestionLog(d domain.IngestionLogEntry) models.IngestionLog {
	m := models.IngestionLog{
		ID:         d.ID,
		Status:     string(d.Status),
		Trigger:    string(d.Trigger),
		OccurredAt: d.OccurredAt.UTC(),
		Message:    d.Message,
		Count:      d.Count,
		DurationMS: d.DurationMS,
	}
	if d.EffectiveDate != nil {
		date := domain.NormalizeDate(*d.EffectiveDate)
		m.EffectiveDate = &date
	}
	return m
}

// ToDomainIngestionLog converts a model IngestionLog to a domain IngestionLogEntry
func ToDomainIngestionLog(m models.IngestionLog) domain.IngestionLogEntry {
	d := domain.IngestionLogEntry{
		ID:         m.ID,
		Status:     domain.IngestionStatus(m.Status),
		Trigger:    domain.IngestionTrigger(m.Trigger),
		OccurredAt: m.OccurredAt.UTC(),
		Message:    m.Message,
		Count:      m.Count,
		DurationMS: m.DurationMS,
	}
	if m.EffectiveDate != nil {
		date := domain.NormalizeDate(*m.EffectiveDate)
		d.EffectiveDate = &date
	}
	return d
}

// ToDomainIngestionLogs converts a slice of model IngestionLogs
func ToDomainIngestionLogs(ms []models.IngestionLog) []domain.IngestionLogEntry {
	entries := make([]domain.IngestionLogEntry, len(ms))
	for i, m := range ms {
		entries[i] = ToDomainIngestionLog(m)
	}
	return entries
}
