package sqlite

import (
	"context"

	"github.com/emretit/paftamobile-sub007/internal/apperrors"
	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	portsrepo "github.com/emretit/paftamobile-sub007/internal/core/ports/repositories"
	"github.com/emretit/paftamobile-sub007/internal/models"
	"github.com/emretit/paftamobile-sub007/internal/utils/mapping"
	"gorm.io/gorm"
)

// GormIngestionLogRepository stores the ingestion audit trail in SQLite.
type GormIngestionLogRepository struct {
	db *gorm.DB
}

var _ portsrepo.IngestionLogRepositoryFacade = (*GormIngestionLogRepository)(nil)

// NewGormIngestionLogRepository creates a new GormIngestionLogRepository.
func NewGormIngestionLogRepository(db *gorm.DB) *GormIngestionLogRepository {
	return &GormIngestionLogRepository{db: db}
}

func (r *GormIngestionLogRepository) AppendIngestionLog(ctx context.Context, entry domain.IngestionLogEntry) error {
	m := mapping.ToModelIngestionLog(entry)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return apperrors.NewStoreError("append ingestion log", err)
	}
	return nil
}

func (r *GormIngestionLogRepository) ListIngestionLogs(ctx context.Context, limit int, before *domain.IngestionLogCursor) ([]domain.IngestionLogEntry, error) {
	query := r.db.WithContext(ctx).Order("occurred_at DESC, id DESC").Limit(limit)
	if before != nil {
		at := before.OccurredAt.UTC()
		query = query.Where("occurred_at < ? OR (occurred_at = ? AND id < ?)", at, at, before.ID)
	}

	var rows []models.IngestionLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, apperrors.NewStoreError("list ingestion logs", err)
	}
	return mapping.ToDomainIngestionLogs(rows), nil
}
