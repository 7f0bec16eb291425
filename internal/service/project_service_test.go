package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/repository"
	"github.com/incial/workhub-api/internal/service"
)

func newProjectService(db *gorm.DB) *service.ProjectService {
	return service.NewProjectService(
		repository.NewProjectRepository(db),
		repository.NewPaymentTransactionRepository(db),
		repository.NewStageHistoryRepository(db),
		repository.NewActivityLogRepository(db),
		repository.NewAlertRepository(db),
		testLogger(),
		db,
	)
}

// seedProject writes a project directly in the given stage
func seedProject(t *testing.T, db *gorm.DB, stage domain.ProjectStage, mutate func(*domain.Project)) *domain.Project {
	now := time.Now()
	p := &domain.Project{
		School:               "St. Mary's School",
		ContactPerson:        "John Thomas",
		ContactNumber:        uuid.New().String()[:18],
		District:             "Ernakulam",
		CreatedBy:            "Alice",
		CurrentStage:         stage,
		StageChangeTimestamp: &now,
		CurrentOwnerRole:     domain.RoleExecutive,
		PaymentStatus:        domain.PaymentStatusPending,
		InstallationStatus:   domain.InstallationStatusPending,
	}
	if owner, ok := domain.OwnerRoleFor(stage); ok {
		p.CurrentOwnerRole = owner
	}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestProjectService_CreateProject(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Alice", domain.RoleExecutive)

	project, err := svc.CreateProject(ctx, &domain.CreateProjectRequest{
		School:        "St. Mary's School",
		ContactPerson: "John Thomas",
		ContactNumber: "9847012345",
		District:      "Ernakulam",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StageLead, project.CurrentStage)
	assert.Equal(t, domain.RoleExecutive, project.CurrentOwnerRole)
	assert.Equal(t, "Alice", project.CreatedBy)
	assert.Equal(t, domain.PaymentStatusPending, project.PaymentStatus)
	assert.False(t, project.IsLocked)

	var history []domain.ProjectStageHistory
	require.NoError(t, db.Where("project_id = ?", project.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StageLead, history[0].ToStage)
	assert.Nil(t, history[0].FromStage)

	var activity []domain.ProjectActivityLog
	require.NoError(t, db.Where("project_id = ?", project.ID).Find(&activity).Error)
	require.Len(t, activity, 1)
	assert.Equal(t, domain.ActionCreated, activity[0].ActionType)
}

func TestProjectService_CreateProject_DuplicateContact(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Alice", domain.RoleExecutive)

	_, err := svc.CreateProject(ctx, &domain.CreateProjectRequest{
		School:        "St. Mary's School",
		ContactNumber: "9847012345",
	})
	require.NoError(t, err)

	_, err = svc.CreateProject(ctx, &domain.CreateProjectRequest{
		School:        "Another School",
		ContactNumber: "9847012345",
	})
	assert.ErrorIs(t, err, service.ErrDuplicateContact)
}

func TestProjectService_CreateProject_RequiresAuth(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)

	_, err := svc.CreateProject(context.Background(), &domain.CreateProjectRequest{School: "X"})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestProjectService_TransitionStage_ExecutiveFunnel(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Alice", domain.RoleExecutive)

	project := seedProject(t, db, domain.StageLead, nil)

	updated, err := svc.TransitionStage(ctx, project.ID, domain.StageOnProgress, "contacted the school")
	require.NoError(t, err)
	assert.Equal(t, domain.StageOnProgress, updated.CurrentStage)
	require.NotNil(t, updated.PreviousStage)
	assert.Equal(t, domain.StageLead, *updated.PreviousStage)
	assert.Equal(t, domain.RoleExecutive, updated.CurrentOwnerRole)
}

func TestProjectService_TransitionStage_OnboardingHandsOffToSales(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Alice", domain.RoleExecutive)

	project := seedProject(t, db, domain.StageInReview, nil)

	updated, err := svc.TransitionStage(ctx, project.ID, domain.StageOnboarded, "client signed")
	require.NoError(t, err)

	// The manual ONBOARDED transition is immediately followed by the
	// system handoff to SALES
	assert.Equal(t, domain.StageSales, updated.CurrentStage)
	assert.Equal(t, domain.RoleSalesCoordinator, updated.CurrentOwnerRole)
	assert.True(t, updated.IsLocked)

	var history []domain.ProjectStageHistory
	require.NoError(t, db.Where("project_id = ?", project.ID).Order("changed_at ASC").Find(&history).Error)
	require.Len(t, history, 2)
	assert.Equal(t, domain.StageOnboarded, history[0].ToStage)
	assert.False(t, history[0].IsSystemTriggered)
	assert.Equal(t, domain.StageSales, history[1].ToStage)
	assert.True(t, history[1].IsSystemTriggered)
	assert.Equal(t, domain.SystemActor, history[1].ChangedBy)
}

func TestProjectService_TransitionStage_RoleDenied(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)

	project := seedProject(t, db, domain.StageLead, nil)

	_, err := svc.TransitionStage(ctxWithUser("Carol", domain.RoleAccounts), project.ID, domain.StageOnProgress, "")
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	// Nothing moved
	var found domain.Project
	require.NoError(t, db.First(&found, "id = ?", project.ID).Error)
	assert.Equal(t, domain.StageLead, found.CurrentStage)
}

func TestProjectService_TransitionStage_SkippingStagesDenied(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Alice", domain.RoleExecutive)

	project := seedProject(t, db, domain.StageLead, nil)

	_, err := svc.TransitionStage(ctx, project.ID, domain.StageInReview, "")
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestProjectService_TransitionStage_LockedProject(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)

	project := seedProject(t, db, domain.StageSales, func(p *domain.Project) {
		p.IsLocked = true
		p.ProjectValue = floatPtr(250000)
		p.InvoiceAmount = floatPtr(240000)
	})

	// An executive cannot push a locked sales project anywhere
	_, err := svc.TransitionStage(ctxWithUser("Alice", domain.RoleExecutive), project.ID, domain.StageAccounts, "")
	assert.ErrorIs(t, err, service.ErrProjectLocked)

	// The owning sales coordinator still advances it
	updated, err := svc.TransitionStage(ctxWithUser("Bob", domain.RoleSalesCoordinator), project.ID, domain.StageAccounts, "quotation approved")
	require.NoError(t, err)
	assert.Equal(t, domain.StageAccounts, updated.CurrentStage)
	assert.False(t, updated.IsLocked)
}

func TestProjectService_TransitionStage_AccountsRequiresSalesFigures(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Bob", domain.RoleSalesCoordinator)

	project := seedProject(t, db, domain.StageSales, nil)

	// No project value or invoice amount recorded yet
	_, err := svc.TransitionStage(ctx, project.ID, domain.StageAccounts, "")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	var unchanged domain.Project
	require.NoError(t, db.First(&unchanged, "id = ?", project.ID).Error)
	assert.Equal(t, domain.StageSales, unchanged.CurrentStage)

	// With the sales figures in place the handoff initializes the pending amount
	require.NoError(t, db.Model(&domain.Project{}).Where("id = ?", project.ID).
		Updates(map[string]interface{}{"project_value": 250000.0, "invoice_amount": 240000.0}).Error)

	updated, err := svc.TransitionStage(ctx, project.ID, domain.StageAccounts, "quotation approved")
	require.NoError(t, err)
	assert.Equal(t, domain.StageAccounts, updated.CurrentStage)
	require.NotNil(t, updated.PendingAmount)
	assert.Equal(t, 240000.0, *updated.PendingAmount)
}

func TestProjectService_UpdateSalesData(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Bob", domain.RoleSalesCoordinator)

	project := seedProject(t, db, domain.StageSales, nil)

	updated, err := svc.UpdateSalesData(ctx, project.ID, &domain.UpdateSalesDataRequest{
		ProjectValue:         floatPtr(250000),
		InvoiceAmount:        floatPtr(240000),
		ExpectedDeliveryDate: strPtr("2026-10-15"),
		SalesRemarks:         strPtr("smartboards for 12 classrooms"),
	})
	require.NoError(t, err)

	require.NotNil(t, updated.InvoiceAmount)
	assert.Equal(t, 240000.0, *updated.InvoiceAmount)
	require.NotNil(t, updated.PendingAmount)
	assert.Equal(t, 240000.0, *updated.PendingAmount)
	assert.NotNil(t, updated.SalesUpdatedTimestamp)
}

func TestProjectService_UpdateSalesData_WrongStage(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Bob", domain.RoleSalesCoordinator)

	project := seedProject(t, db, domain.StageLead, nil)

	_, err := svc.UpdateSalesData(ctx, project.ID, &domain.UpdateSalesDataRequest{
		ProjectValue: floatPtr(100000),
	})
	assert.ErrorIs(t, err, service.ErrWrongStage)
}

func TestProjectService_UpdateSalesData_BadDate(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Bob", domain.RoleSalesCoordinator)

	project := seedProject(t, db, domain.StageSales, nil)

	_, err := svc.UpdateSalesData(ctx, project.ID, &domain.UpdateSalesDataRequest{
		ExpectedDeliveryDate: strPtr("15-10-2026"),
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestProjectService_UpdateAccountsData_PartialPayment(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Carol", domain.RoleAccounts)

	project := seedProject(t, db, domain.StageAccounts, func(p *domain.Project) {
		p.InvoiceAmount = floatPtr(100000)
	})

	updated, err := svc.UpdateAccountsData(ctx, project.ID, &domain.UpdateAccountsDataRequest{
		AmountReceived: floatPtr(60000),
		PaymentDate:    strPtr("2026-08-01"),
	})
	require.NoError(t, err)

	require.NotNil(t, updated.AmountReceived)
	assert.Equal(t, 60000.0, *updated.AmountReceived)
	require.NotNil(t, updated.PendingAmount)
	assert.Equal(t, 40000.0, *updated.PendingAmount)
	assert.Equal(t, domain.PaymentStatusPartial, updated.PaymentStatus)
	assert.Equal(t, domain.StageAccounts, updated.CurrentStage)

	var ledger []domain.PaymentTransaction
	require.NoError(t, db.Where("project_id = ?", project.ID).Find(&ledger).Error)
	require.Len(t, ledger, 1)
	assert.Equal(t, 60000.0, ledger[0].AmountPaid)
	assert.Equal(t, "Carol", ledger[0].RecordedBy)
}

func TestProjectService_UpdateAccountsData_OverpaymentRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Carol", domain.RoleAccounts)

	project := seedProject(t, db, domain.StageAccounts, func(p *domain.Project) {
		p.InvoiceAmount = floatPtr(100000)
	})

	_, err := svc.UpdateAccountsData(ctx, project.ID, &domain.UpdateAccountsDataRequest{
		AmountReceived: floatPtr(90000),
	})
	require.NoError(t, err)

	// 90k of 100k received, a further 15k exceeds the pending 10k
	_, err = svc.UpdateAccountsData(ctx, project.ID, &domain.UpdateAccountsDataRequest{
		AmountReceived: floatPtr(15000),
	})
	assert.ErrorIs(t, err, service.ErrOverpayment)

	// The rejected payment never reached the ledger
	var ledger []domain.PaymentTransaction
	require.NoError(t, db.Where("project_id = ?", project.ID).Find(&ledger).Error)
	assert.Len(t, ledger, 1)
}

func TestProjectService_UpdateAccountsData_InvoiceNotSet(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Carol", domain.RoleAccounts)

	project := seedProject(t, db, domain.StageAccounts, nil)

	_, err := svc.UpdateAccountsData(ctx, project.ID, &domain.UpdateAccountsDataRequest{
		AmountReceived: floatPtr(5000),
	})
	assert.ErrorIs(t, err, service.ErrInvoiceNotSet)
}

func TestProjectService_UpdateAccountsData_SettlementMovesToInstallation(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Carol", domain.RoleAccounts)

	project := seedProject(t, db, domain.StageAccounts, func(p *domain.Project) {
		p.InvoiceAmount = floatPtr(100000)
	})

	_, err := svc.UpdateAccountsData(ctx, project.ID, &domain.UpdateAccountsDataRequest{
		AmountReceived: floatPtr(40000),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateAccountsData(ctx, project.ID, &domain.UpdateAccountsDataRequest{
		AmountReceived: floatPtr(60000),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusCompleted, updated.PaymentStatus)
	assert.Equal(t, domain.StageInstallation, updated.CurrentStage)
	assert.Equal(t, domain.RoleInstallation, updated.CurrentOwnerRole)
	require.NotNil(t, updated.PendingAmount)
	assert.Equal(t, 0.0, *updated.PendingAmount)

	var history []domain.ProjectStageHistory
	require.NoError(t, db.Where("project_id = ? AND to_stage = ?", project.ID, domain.StageInstallation).Find(&history).Error)
	require.Len(t, history, 1)
	assert.True(t, history[0].IsSystemTriggered)
	assert.Equal(t, domain.SystemActor, history[0].ChangedBy)
}

func TestProjectService_UpdateInstallationData_WorkDoneCompletes(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Dan", domain.RoleInstallation)

	project := seedProject(t, db, domain.StageInstallation, nil)

	status := domain.InstallationStatusWorkDone
	updated, err := svc.UpdateInstallationData(ctx, project.ID, &domain.UpdateInstallationDataRequest{
		InstallationStatus:  &status,
		InstallationRemarks: strPtr("all units mounted and tested"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.InstallationStatusWorkDone, updated.InstallationStatus)
	assert.Equal(t, domain.StageCompleted, updated.CurrentStage)
	assert.True(t, updated.IsLocked)
	assert.NotNil(t, updated.CompletionDate)
}

func TestProjectService_UpdateInstallationData_PendingStays(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Dan", domain.RoleInstallation)

	project := seedProject(t, db, domain.StageInstallation, nil)

	status := domain.InstallationStatusNotDone
	updated, err := svc.UpdateInstallationData(ctx, project.ID, &domain.UpdateInstallationDataRequest{
		InstallationStatus:  &status,
		InstallationRemarks: strPtr("awaiting site clearance"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StageInstallation, updated.CurrentStage)
	assert.Nil(t, updated.CompletionDate)
}

func TestProjectService_UpdateInstallationData_NotDoneRequiresRemarks(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Dan", domain.RoleInstallation)

	project := seedProject(t, db, domain.StageInstallation, nil)

	status := domain.InstallationStatusNotDone
	for _, remarks := range []*string{nil, strPtr("   ")} {
		_, err := svc.UpdateInstallationData(ctx, project.ID, &domain.UpdateInstallationDataRequest{
			InstallationStatus:  &status,
			InstallationRemarks: remarks,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	}

	var unchanged domain.Project
	require.NoError(t, db.First(&unchanged, "id = ?", project.ID).Error)
	assert.Equal(t, domain.InstallationStatusPending, unchanged.InstallationStatus)
	assert.Empty(t, unchanged.InstallationRemarks)
}

func TestProjectService_UpdateProject_EditPolicy(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)

	project := seedProject(t, db, domain.StageSales, func(p *domain.Project) {
		p.CreatedBy = "Alice"
	})

	// A different executive cannot edit an onboarded project
	_, err := svc.UpdateProject(ctxWithUser("Bob", domain.RoleExecutive), project.ID, &domain.UpdateProjectRequest{
		School: strPtr("Renamed School"),
	})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	// The creator can
	updated, err := svc.UpdateProject(ctxWithUser("Alice", domain.RoleExecutive), project.ID, &domain.UpdateProjectRequest{
		School: strPtr("Renamed School"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed School", updated.School)

	// And the change lands in the activity feed
	var activity []domain.ProjectActivityLog
	require.NoError(t, db.Where("project_id = ? AND action_type = ?", project.ID, domain.ActionFieldUpdated).Find(&activity).Error)
	require.Len(t, activity, 1)
	assert.Equal(t, "school", activity[0].FieldName)
	assert.Equal(t, "Renamed School", activity[0].NewValue)
}

func TestProjectService_DeleteProject_Policy(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)

	lead := seedProject(t, db, domain.StageLead, func(p *domain.Project) {
		p.CreatedBy = "Alice"
	})
	onboarded := seedProject(t, db, domain.StageSales, func(p *domain.Project) {
		p.CreatedBy = "Alice"
	})

	// Only the creator deletes a lead
	err := svc.DeleteProject(ctxWithUser("Bob", domain.RoleExecutive), lead.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	err = svc.DeleteProject(ctxWithUser("Alice", domain.RoleExecutive), lead.ID)
	require.NoError(t, err)

	// Onboarded projects cannot be deleted, even by the creator
	err = svc.DeleteProject(ctxWithUser("Alice", domain.RoleExecutive), onboarded.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestProjectService_ListMyWork(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)

	seedProject(t, db, domain.StageLead, nil)
	seedProject(t, db, domain.StageSales, nil)
	seedProject(t, db, domain.StageAccounts, nil)
	seedProject(t, db, domain.StageInstallation, nil)

	work, err := svc.ListMyWork(ctxWithUser("Bob", domain.RoleSalesCoordinator))
	require.NoError(t, err)
	require.Len(t, work, 1)
	assert.Equal(t, domain.StageSales, work[0].CurrentStage)

	work, err = svc.ListMyWork(ctxWithUser("Carol", domain.RoleAccounts))
	require.NoError(t, err)
	require.Len(t, work, 1)
	assert.Equal(t, domain.StageAccounts, work[0].CurrentStage)

	work, err = svc.ListMyWork(ctxWithUser("Alice", domain.RoleExecutive))
	require.NoError(t, err)
	assert.Len(t, work, 4)

	_, err = svc.ListMyWork(ctxWithUser("Eve", domain.RoleClient))
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestProjectService_GetPayments_ChronologicalLedger(t *testing.T) {
	db := setupTestDB(t)
	svc := newProjectService(db)
	ctx := ctxWithUser("Carol", domain.RoleAccounts)

	project := seedProject(t, db, domain.StageAccounts, func(p *domain.Project) {
		p.InvoiceAmount = floatPtr(50000)
	})

	for _, amount := range []float64{10000, 15000} {
		_, err := svc.UpdateAccountsData(ctx, project.ID, &domain.UpdateAccountsDataRequest{
			AmountReceived: floatPtr(amount),
		})
		require.NoError(t, err)
	}

	ledger, err := svc.GetPayments(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, 10000.0, ledger[0].AmountPaid)
	assert.Equal(t, 15000.0, ledger[1].AmountPaid)
}
