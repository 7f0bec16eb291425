package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/repository"
	"github.com/incial/workhub-api/internal/service"
)

func TestAnalyticsService_GetDashboard(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewAnalyticsService(
		repository.NewProjectRepository(db),
		repository.NewPaymentTransactionRepository(db),
		testLogger(),
	)

	now := time.Now()

	seedProject(t, db, domain.StageLead, nil)
	seedProject(t, db, domain.StageSales, func(p *domain.Project) {
		p.ProjectValue = floatPtr(50000)
	})
	seedProject(t, db, domain.StageAccounts, func(p *domain.Project) {
		p.InvoiceAmount = floatPtr(240000)
		p.AmountReceived = floatPtr(60000)
		p.PendingAmount = floatPtr(180000)
		p.AccountsUpdatedTimestamp = &now
	})
	seedProject(t, db, domain.StageCompleted, func(p *domain.Project) {
		p.ProjectValue = floatPtr(100000)
		p.StageChangeTimestamp = &now
	})

	dto, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), dto.TotalProjects)
	assert.Equal(t, int64(3), dto.ActiveProjects)
	assert.Equal(t, int64(1), dto.CompletedProjects)
	assert.Equal(t, 25.0, dto.SuccessRate)

	// Revenue prefers the invoiced figure, falls back to project value
	assert.Equal(t, 390000.0, dto.Financial.TotalRevenue)
	assert.Equal(t, 100000.0, dto.Financial.CompletedRevenue)
	assert.Equal(t, 60000.0, dto.Financial.TotalReceived)
	assert.Equal(t, 180000.0, dto.Financial.PendingRevenue)

	// One distribution entry per populated stage, in funnel order
	require.Len(t, dto.StageDistribution, 4)
	assert.Equal(t, domain.StageLead, dto.StageDistribution[0].Stage)
	assert.Equal(t, domain.StageCompleted, dto.StageDistribution[3].Stage)
	assert.Equal(t, 25.0, dto.StageDistribution[0].Percentage)

	// Six months of trends, newest last, with this month's activity counted
	require.Len(t, dto.MonthlyTrends, 6)
	latest := dto.MonthlyTrends[5]
	assert.Equal(t, now.Format("2006-01"), latest.Month)
	assert.Equal(t, int64(4), latest.Created)
	assert.Equal(t, int64(1), latest.Completed)
	assert.Equal(t, 100000.0, latest.Revenue)

	assert.Equal(t, int64(4), dto.ThisMonth.NewProjects)
	assert.Equal(t, int64(1), dto.ThisMonth.CompletedProjects)
	assert.Equal(t, 60000.0, dto.ThisMonth.RevenueCollected)
}

func TestAnalyticsService_GetDashboard_Empty(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewAnalyticsService(
		repository.NewProjectRepository(db),
		repository.NewPaymentTransactionRepository(db),
		testLogger(),
	)

	dto, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), dto.TotalProjects)
	assert.Equal(t, 0.0, dto.SuccessRate)
	assert.Empty(t, dto.StageDistribution)
	assert.Len(t, dto.MonthlyTrends, 6)
}
