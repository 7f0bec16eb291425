package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/repository"
)

// AnalyticsService computes the dashboard aggregates. The whole portfolio is
// small enough to fold in memory, which keeps the revenue rules in one place.
type AnalyticsService struct {
	projectRepo *repository.ProjectRepository
	paymentRepo *repository.PaymentTransactionRepository
	logger      *zap.Logger
}

func NewAnalyticsService(
	projectRepo *repository.ProjectRepository,
	paymentRepo *repository.PaymentTransactionRepository,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		projectRepo: projectRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

// GetDashboard builds the full analytics payload
func (s *AnalyticsService) GetDashboard(ctx context.Context) (*domain.AnalyticsDTO, error) {
	projects, err := s.projectRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dto := &domain.AnalyticsDTO{
		TotalProjects: int64(len(projects)),
	}

	stageCounts := make(map[domain.ProjectStage]int64)
	var totalRevenue, completedRevenue, totalReceived, pendingRevenue float64

	for i := range projects {
		p := &projects[i]
		stageCounts[p.CurrentStage]++

		switch p.CurrentStage {
		case domain.StageCompleted:
			dto.CompletedProjects++
			if p.ProjectValue != nil {
				completedRevenue += *p.ProjectValue
			}
		default:
			dto.ActiveProjects++
		}

		// Revenue prefers the invoiced figure, falling back to the project value
		switch {
		case p.InvoiceAmount != nil:
			totalRevenue += *p.InvoiceAmount
		case p.ProjectValue != nil:
			totalRevenue += *p.ProjectValue
		}
		if p.AmountReceived != nil {
			totalReceived += *p.AmountReceived
		}
		if p.PendingAmount != nil {
			pendingRevenue += *p.PendingAmount
		}
	}

	if dto.TotalProjects > 0 {
		dto.SuccessRate = round2(float64(dto.CompletedProjects) / float64(dto.TotalProjects) * 100)
	}

	dto.Financial = domain.FinancialSummaryDTO{
		TotalRevenue:     round2(totalRevenue),
		CompletedRevenue: round2(completedRevenue),
		TotalReceived:    round2(totalReceived),
		PendingRevenue:   round2(pendingRevenue),
	}

	dto.StageDistribution = stageDistribution(stageCounts, dto.TotalProjects)
	dto.MonthlyTrends = monthlyTrends(projects, now)
	dto.ThisMonth = thisMonthStats(projects, now)

	return dto, nil
}

func stageDistribution(counts map[domain.ProjectStage]int64, total int64) []domain.StageDistributionDTO {
	out := make([]domain.StageDistributionDTO, 0, len(counts))
	for _, stage := range domain.AllStages() {
		count, ok := counts[stage]
		if !ok {
			continue
		}
		pct := 0.0
		if total > 0 {
			pct = round2(float64(count) / float64(total) * 100)
		}
		out = append(out, domain.StageDistributionDTO{
			Stage:      stage,
			Count:      count,
			Percentage: pct,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return domain.StageIndex(out[i].Stage) < domain.StageIndex(out[j].Stage)
	})
	return out
}

// monthlyTrends covers the last six months, oldest first
func monthlyTrends(projects []domain.Project, now time.Time) []domain.MonthlyTrendDTO {
	trends := make([]domain.MonthlyTrendDTO, 0, 6)

	for offset := 5; offset >= 0; offset-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -offset, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		trend := domain.MonthlyTrendDTO{Month: monthStart.Format("2006-01")}

		for i := range projects {
			p := &projects[i]
			if !p.CreatedAt.Before(monthStart) && p.CreatedAt.Before(monthEnd) {
				trend.Created++
			}
			if p.CurrentStage == domain.StageCompleted && p.StageChangeTimestamp != nil &&
				!p.StageChangeTimestamp.Before(monthStart) && p.StageChangeTimestamp.Before(monthEnd) {
				trend.Completed++
				if p.ProjectValue != nil {
					trend.Revenue += *p.ProjectValue
				}
			}
		}
		trend.Revenue = round2(trend.Revenue)
		trends = append(trends, trend)
	}

	return trends
}

func thisMonthStats(projects []domain.Project, now time.Time) domain.QuickStatsDTO {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var stats domain.QuickStatsDTO
	for i := range projects {
		p := &projects[i]
		if !p.CreatedAt.Before(monthStart) {
			stats.NewProjects++
		}
		if p.CurrentStage == domain.StageCompleted && p.StageChangeTimestamp != nil && !p.StageChangeTimestamp.Before(monthStart) {
			stats.CompletedProjects++
		}
		if p.AccountsUpdatedTimestamp != nil && !p.AccountsUpdatedTimestamp.Before(monthStart) && p.AmountReceived != nil {
			stats.RevenueCollected += *p.AmountReceived
		}
	}
	stats.RevenueCollected = round2(stats.RevenueCollected)
	return stats
}
