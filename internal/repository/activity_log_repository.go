package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/incial/workhub-api/internal/domain"
	"gorm.io/gorm"
)

// ActivityLogRepository records the per-project activity feed
type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, entry *domain.ProjectActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByProject returns activity newest first
func (r *ActivityLogRepository) ListByProject(ctx context.Context, projectID uuid.UUID, page, pageSize int) ([]domain.ProjectActivityLog, int64, error) {
	var entries []domain.ProjectActivityLog
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ProjectActivityLog{}).Where("project_id = ?", projectID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&entries).Error

	return entries, total, err
}

// ListRecent returns the most recent activity across all projects
func (r *ActivityLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.ProjectActivityLog, error) {
	var entries []domain.ProjectActivityLog
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
