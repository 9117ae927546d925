package repositories

import (
	"context"

	"github.com/emretit/paftamobile-sub007/internal/core/domain"
)

// IngestionLogReader defines read operations for the ingestion audit trail
type IngestionLogReader interface {
	// ListIngestionLogs returns entries newest first, ties broken by id. When
	// before is set only entries ordered after that cursor are returned.
	ListIngestionLogs(ctx context.Context, limit int, before *domain.IngestionLogCursor) ([]domain.IngestionLogEntry, error)
}

// IngestionLogWriter appends to the ingestion audit trail
type IngestionLogWriter interface {
	AppendIngestionLog(ctx context.Context, entry domain.IngestionLogEntry) error
}

// IngestionLogRepositoryFacade combines all ingestion log repository interfaces
type IngestionLogRepositoryFacade interface {
	IngestionLogReader
	IngestionLogWriter
}
