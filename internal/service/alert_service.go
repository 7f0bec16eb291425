package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/incial/workhub-api/internal/auth"
	"github.com/incial/workhub-api/internal/config"
	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/repository"
)

// stageThreshold pairs a monitored stage with its alert rule
type stageThreshold struct {
	stage     domain.ProjectStage
	alertType domain.AlertType
	severity  domain.AlertSeverity
	days      int
}

// AlertService raises and dismisses operational alerts for projects that sit
// too long in a monitored stage.
type AlertService struct {
	projectRepo *repository.ProjectRepository
	alertRepo   *repository.AlertRepository
	thresholds  []stageThreshold
	logger      *zap.Logger
}

func NewAlertService(
	projectRepo *repository.ProjectRepository,
	alertRepo *repository.AlertRepository,
	cfg *config.AlertsConfig,
	logger *zap.Logger,
) *AlertService {
	return &AlertService{
		projectRepo: projectRepo,
		alertRepo:   alertRepo,
		thresholds: []stageThreshold{
			{domain.StageInReview, domain.AlertStageInactivity, domain.SeverityWarning, cfg.InReviewWarningDays},
			{domain.StageAccounts, domain.AlertPaymentDelay, domain.SeverityCritical, cfg.AccountsCriticalDays},
			{domain.StageInstallation, domain.AlertInstallationDelay, domain.SeverityCritical, cfg.InstallationCriticalDays},
		},
		logger: logger,
	}
}

// GenerateAlerts scans monitored stages and raises or refreshes alerts for
// projects past their threshold. Existing active alerts are updated in place
// so a project never carries duplicate alerts of the same type.
func (s *AlertService) GenerateAlerts(ctx context.Context) (int, error) {
	generated := 0
	now := time.Now()

	for _, t := range s.thresholds {
		projects, err := s.projectRepo.ListByStages(ctx, t.stage)
		if err != nil {
			return generated, fmt.Errorf("failed to list projects in %s: %w", t.stage, err)
		}

		for i := range projects {
			p := &projects[i]
			if p.StageChangeTimestamp == nil {
				continue
			}
			daysInStage := int(now.Sub(*p.StageChangeTimestamp).Hours() / 24)
			if daysInStage < t.days {
				continue
			}
			daysOverdue := daysInStage - t.days

			message := fmt.Sprintf("%s has been in %s for %d days", p.School, t.stage, daysInStage)

			existing, err := s.alertRepo.FindActive(ctx, p.ID, t.alertType)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return generated, err
			}
			if existing != nil {
				existing.DaysOverdue = daysOverdue
				existing.Message = message
				existing.UpdatedAt = now
				if err := s.alertRepo.Update(ctx, existing); err != nil {
					return generated, err
				}
				continue
			}

			alert := &domain.ProjectAlert{
				ProjectID:   p.ID,
				AlertType:   t.alertType,
				Severity:    t.severity,
				Message:     message,
				DaysOverdue: daysOverdue,
				IsActive:    true,
			}
			if err := s.alertRepo.Create(ctx, alert); err != nil {
				return generated, err
			}
			generated++

			s.logger.Info("alert raised",
				zap.String("project_id", p.ID.String()),
				zap.String("alert_type", string(t.alertType)),
				zap.String("severity", string(t.severity)),
				zap.Int("days_overdue", daysOverdue),
			)
		}
	}

	return generated, nil
}

// ListActiveAlerts returns active alerts with project context attached
func (s *AlertService) ListActiveAlerts(ctx context.Context, filter repository.AlertFilter) ([]domain.ProjectAlert, map[uuid.UUID]*domain.Project, error) {
	alerts, err := s.alertRepo.ListActive(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	projects := make(map[uuid.UUID]*domain.Project)
	for i := range alerts {
		id := alerts[i].ProjectID
		if _, ok := projects[id]; ok {
			continue
		}
		p, err := s.projectRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, nil, err
		}
		projects[id] = p
	}

	return alerts, projects, nil
}

// DismissAlert deactivates an alert. Dismissing an already dismissed alert is
// a no-op, not an error.
func (s *AlertService) DismissAlert(ctx context.Context, id uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}

	if _, err := s.alertRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return s.alertRepo.Dismiss(ctx, id, userCtx.DisplayName)
}

// GetSummary returns active alert counts for the dashboard badge
func (s *AlertService) GetSummary(ctx context.Context) (*domain.AlertSummaryDTO, error) {
	total, err := s.alertRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	critical, err := s.alertRepo.CountActiveBySeverity(ctx, domain.SeverityCritical)
	if err != nil {
		return nil, err
	}
	warning, err := s.alertRepo.CountActiveBySeverity(ctx, domain.SeverityWarning)
	if err != nil {
		return nil, err
	}
	info, err := s.alertRepo.CountActiveBySeverity(ctx, domain.SeverityInfo)
	if err != nil {
		return nil, err
	}

	return &domain.AlertSummaryDTO{
		TotalAlerts:    total,
		CriticalAlerts: critical,
		WarningAlerts:  warning,
		InfoAlerts:     info,
	}, nil
}
