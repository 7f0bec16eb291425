package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/incial/workhub-api/internal/config"
	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/repository"
	"github.com/incial/workhub-api/internal/service"
)

func newAlertService(db *gorm.DB) *service.AlertService {
	return service.NewAlertService(
		repository.NewProjectRepository(db),
		repository.NewAlertRepository(db),
		&config.AlertsConfig{
			Enabled:                  true,
			InReviewWarningDays:      7,
			AccountsCriticalDays:     10,
			InstallationCriticalDays: 5,
		},
		testLogger(),
	)
}

func TestAlertService_GenerateAlerts_Thresholds(t *testing.T) {
	db := setupTestDB(t)
	svc := newAlertService(db)

	// Past the 7-day review threshold
	stale := seedProject(t, db, domain.StageInReview, func(p *domain.Project) {
		p.StageChangeTimestamp = timePtr(time.Now().AddDate(0, 0, -9))
	})
	// Fresh, under threshold
	seedProject(t, db, domain.StageInReview, func(p *domain.Project) {
		p.StageChangeTimestamp = timePtr(time.Now().AddDate(0, 0, -2))
	})
	// Past the 10-day payment threshold
	unpaid := seedProject(t, db, domain.StageAccounts, func(p *domain.Project) {
		p.StageChangeTimestamp = timePtr(time.Now().AddDate(0, 0, -12))
	})

	generated, err := svc.GenerateAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, generated)

	var alerts []domain.ProjectAlert
	require.NoError(t, db.Where("project_id = ?", stale.ID).Find(&alerts).Error)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertStageInactivity, alerts[0].AlertType)
	assert.Equal(t, domain.SeverityWarning, alerts[0].Severity)
	assert.Equal(t, 2, alerts[0].DaysOverdue)
	assert.True(t, alerts[0].IsActive)

	require.NoError(t, db.Where("project_id = ?", unpaid.ID).Find(&alerts).Error)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertPaymentDelay, alerts[0].AlertType)
	assert.Equal(t, domain.SeverityCritical, alerts[0].Severity)
}

func TestAlertService_GenerateAlerts_NoDuplicates(t *testing.T) {
	db := setupTestDB(t)
	svc := newAlertService(db)

	project := seedProject(t, db, domain.StageInstallation, func(p *domain.Project) {
		p.StageChangeTimestamp = timePtr(time.Now().AddDate(0, 0, -8))
	})

	generated, err := svc.GenerateAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, generated)

	// A second scan refreshes the existing alert instead of stacking a new one
	generated, err = svc.GenerateAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, generated)

	var count int64
	require.NoError(t, db.Model(&domain.ProjectAlert{}).Where("project_id = ?", project.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAlertService_DismissAlert(t *testing.T) {
	db := setupTestDB(t)
	svc := newAlertService(db)
	ctx := ctxWithUser("Alice", domain.RoleExecutive)

	project := seedProject(t, db, domain.StageInReview, nil)
	alert := &domain.ProjectAlert{
		ProjectID: project.ID,
		AlertType: domain.AlertStageInactivity,
		Severity:  domain.SeverityWarning,
		IsActive:  true,
	}
	require.NoError(t, db.Create(alert).Error)

	require.NoError(t, svc.DismissAlert(ctx, alert.ID))

	var found domain.ProjectAlert
	require.NoError(t, db.First(&found, "id = ?", alert.ID).Error)
	assert.False(t, found.IsActive)
	assert.Equal(t, "Alice", found.DismissedBy)
	assert.NotNil(t, found.DismissedAt)

	// Dismissing again is a no-op and leaves the original dismissal intact
	require.NoError(t, svc.DismissAlert(ctxWithUser("Bob", domain.RoleAdmin), alert.ID))

	var again domain.ProjectAlert
	require.NoError(t, db.First(&again, "id = ?", alert.ID).Error)
	assert.False(t, again.IsActive)
	assert.Equal(t, "Alice", again.DismissedBy)
	require.NotNil(t, again.DismissedAt)
	assert.True(t, again.DismissedAt.Equal(*found.DismissedAt))
}

func TestAlertService_DismissAlert_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newAlertService(db)
	ctx := ctxWithUser("Alice", domain.RoleExecutive)

	err := svc.DismissAlert(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAlertService_TransitionAutoDismisses(t *testing.T) {
	db := setupTestDB(t)
	alertSvc := newAlertService(db)
	projectSvc := newProjectService(db)

	project := seedProject(t, db, domain.StageAccounts, func(p *domain.Project) {
		p.StageChangeTimestamp = timePtr(time.Now().AddDate(0, 0, -15))
		p.InvoiceAmount = floatPtr(100000)
	})

	_, err := alertSvc.GenerateAlerts(context.Background())
	require.NoError(t, err)

	// Settling the invoice moves the project out of ACCOUNTS and clears
	// the payment delay alert
	_, err = projectSvc.UpdateAccountsData(ctxWithUser("Carol", domain.RoleAccounts), project.ID, &domain.UpdateAccountsDataRequest{
		AmountReceived: floatPtr(100000),
	})
	require.NoError(t, err)

	var found domain.ProjectAlert
	require.NoError(t, db.First(&found, "project_id = ? AND alert_type = ?", project.ID, domain.AlertPaymentDelay).Error)
	assert.False(t, found.IsActive)
	assert.Equal(t, domain.SystemActor, found.DismissedBy)
}

func TestAlertService_GetSummary(t *testing.T) {
	db := setupTestDB(t)
	svc := newAlertService(db)

	project := seedProject(t, db, domain.StageInReview, nil)
	for _, severity := range []domain.AlertSeverity{domain.SeverityCritical, domain.SeverityCritical, domain.SeverityWarning} {
		require.NoError(t, db.Create(&domain.ProjectAlert{
			ProjectID: project.ID,
			AlertType: domain.AlertStageInactivity,
			Severity:  severity,
			IsActive:  true,
		}).Error)
	}
	// Dismissed alerts stay out of the summary
	require.NoError(t, db.Create(&domain.ProjectAlert{
		ProjectID: project.ID,
		AlertType: domain.AlertPaymentDelay,
		Severity:  domain.SeverityCritical,
		IsActive:  false,
	}).Error)

	summary, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TotalAlerts)
	assert.Equal(t, int64(2), summary.CriticalAlerts)
	assert.Equal(t, int64(1), summary.WarningAlerts)
	assert.Equal(t, int64(0), summary.InfoAlerts)
}
