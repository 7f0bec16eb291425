package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/incial/workhub-api/internal/domain"
	"gorm.io/gorm"
)

// AlertFilter narrows active alert listings
type AlertFilter struct {
	Severity  *domain.AlertSeverity
	AlertType *domain.AlertType
	ProjectID *uuid.UUID
}

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, alert *domain.ProjectAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectAlert, error) {
	var alert domain.ProjectAlert
	err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *AlertRepository) Update(ctx context.Context, alert *domain.ProjectAlert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

// FindActive returns the active alert of a given type for a project, if any
func (r *AlertRepository) FindActive(ctx context.Context, projectID uuid.UUID, alertType domain.AlertType) (*domain.ProjectAlert, error) {
	var alert domain.ProjectAlert
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND alert_type = ? AND is_active = ?", projectID, alertType, true).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// ListActive returns active alerts, most severe and newest first
func (r *AlertRepository) ListActive(ctx context.Context, filter AlertFilter) ([]domain.ProjectAlert, error) {
	var alerts []domain.ProjectAlert

	query := r.db.WithContext(ctx).Where("is_active = ?", true)

	if filter.Severity != nil {
		query = query.Where("severity = ?", *filter.Severity)
	}
	if filter.AlertType != nil {
		query = query.Where("alert_type = ?", *filter.AlertType)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}

	err := query.
		Order("CASE severity WHEN 'CRITICAL' THEN 0 WHEN 'WARNING' THEN 1 ELSE 2 END, created_at DESC").
		Find(&alerts).Error
	return alerts, err
}

// Dismiss deactivates an alert and stamps who dismissed it
func (r *AlertRepository) Dismiss(ctx context.Context, id uuid.UUID, dismissedBy string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&domain.ProjectAlert{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":    false,
			"dismissed_at": now,
			"dismissed_by": dismissedBy,
		}).Error
}

// DismissForProject deactivates all active alerts of the given types for a project
func (r *AlertRepository) DismissForProject(ctx context.Context, projectID uuid.UUID, dismissedBy string, types ...domain.AlertType) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&domain.ProjectAlert{}).
		Where("project_id = ? AND alert_type IN ? AND is_active = ?", projectID, types, true).
		Updates(map[string]interface{}{
			"is_active":    false,
			"dismissed_at": now,
			"dismissed_by": dismissedBy,
		}).Error
}

// CountActiveBySeverity returns the number of active alerts for one severity
func (r *AlertRepository) CountActiveBySeverity(ctx context.Context, severity domain.AlertSeverity) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ProjectAlert{}).
		Where("is_active = ? AND severity = ?", true, severity).
		Count(&count).Error
	return count, err
}

// CountActive returns the total number of active alerts
func (r *AlertRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ProjectAlert{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}
