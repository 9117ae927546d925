package pgsql

import (
	"context"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/apperrors"
	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	portsrepo "github.com/emretit/paftamobile-sub007/internal/core/ports/repositories"
	"github.com/emretit/paftamobile-sub007/internal/models"
	"github.com/emretit/paftamobile-sub007/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxIngestionLogRepository stores the ingestion audit trail.
type PgxIngestionLogRepository struct {
	BaseRepository
}

var _ portsrepo.IngestionLogRepositoryFacade = (*PgxIngestionLogRepository)(nil)

// NewPgxIngestionLogRepository creates a new PgxIngestionLogRepository.
func NewPgxIngestionLogRepository(db *pgxpool.Pool) *PgxIngestionLogRepository {
	return &PgxIngestionLogRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// AppendIngestionLog inserts one audit entry.
func (r *PgxIngestionLogRepository) AppendIngestionLog(ctx context.Context, entry domain.IngestionLogEntry) error {
	m := mapping.ToModelIngestionLog(entry)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO ingestion_logs (
			id, status, trigger_source, occurred_at, message, count, effective_date, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.Status, m.Trigger, m.OccurredAt, m.Message, m.Count, m.EffectiveDate, m.DurationMS,
	)
	if err != nil {
		return apperrors.NewStoreError("append ingestion log", err)
	}
	return nil
}

// ListIngestionLogs returns entries newest first, optionally only those after a cursor.
func (r *PgxIngestionLogRepository) ListIngestionLogs(ctx context.Context, limit int, before *domain.IngestionLogCursor) ([]domain.IngestionLogEntry, error) {
	query := `
		SELECT id::text, status, trigger_source, occurred_at, message, count, effective_date, duration_ms
		FROM ingestion_logs
		WHERE ($1::timestamptz IS NULL OR (occurred_at, id) < ($1::timestamptz, $2::uuid))
		ORDER BY occurred_at DESC, id DESC
		LIMIT $3;
	`

	var beforeAt *time.Time
	var beforeID *string
	if before != nil {
		at := before.OccurredAt.UTC()
		beforeAt, beforeID = &at, &before.ID
	}

	rows, err := r.Pool.Query(ctx, query, beforeAt, beforeID, limit)
	if err != nil {
		return nil, apperrors.NewStoreError("list ingestion logs", err)
	}
	defer rows.Close()

	var logs []models.IngestionLog
	for rows.Next() {
		var m models.IngestionLog
		if err := rows.Scan(&m.ID, &m.Status, &m.Trigger, &m.OccurredAt, &m.Message, &m.Count, &m.EffectiveDate, &m.DurationMS); err != nil {
			return nil, apperrors.NewStoreError("scan ingestion log", err)
		}
		logs = append(logs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("iterate ingestion logs", err)
	}

	return mapping.ToDomainIngestionLogs(logs), nil
}
