package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/incial/workhub-api/internal/domain"
	"gorm.io/gorm"
)

// StageHistoryRepository records the audit trail of stage transitions
type StageHistoryRepository struct {
	db *gorm.DB
}

func NewStageHistoryRepository(db *gorm.DB) *StageHistoryRepository {
	return &StageHistoryRepository{db: db}
}

func (r *StageHistoryRepository) Create(ctx context.Context, history *domain.ProjectStageHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

// RecordTransition is a convenience method for recording a stage change
func (r *StageHistoryRepository) RecordTransition(ctx context.Context, projectID uuid.UUID, fromStage *domain.ProjectStage, toStage domain.ProjectStage, changedBy string, changedByRole domain.UserRoleType, remarks string, systemTriggered bool) error {
	history := &domain.ProjectStageHistory{
		ProjectID:         projectID,
		FromStage:         fromStage,
		ToStage:           toStage,
		ChangedBy:         changedBy,
		ChangedByRole:     changedByRole,
		Remarks:           remarks,
		IsSystemTriggered: systemTriggered,
	}
	return r.Create(ctx, history)
}

// ListByProject returns transitions newest first
func (r *StageHistoryRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectStageHistory, error) {
	var history []domain.ProjectStageHistory
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("changed_at DESC").
		Find(&history).Error
	return history, err
}
