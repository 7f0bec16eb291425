package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/incial/workhub-api/internal/auth"
	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/repository"
)

// amountEpsilon absorbs float rounding when comparing money values
const amountEpsilon = 0.005

// ProjectService owns the project pipeline: creation, base-field updates,
// stage transitions, and the stage-scoped sales/accounts/installation mutations.
type ProjectService struct {
	projectRepo  *repository.ProjectRepository
	paymentRepo  *repository.PaymentTransactionRepository
	historyRepo  *repository.StageHistoryRepository
	activityRepo *repository.ActivityLogRepository
	alertRepo    *repository.AlertRepository
	logger       *zap.Logger
	db           *gorm.DB
}

func NewProjectService(
	projectRepo *repository.ProjectRepository,
	paymentRepo *repository.PaymentTransactionRepository,
	historyRepo *repository.StageHistoryRepository,
	activityRepo *repository.ActivityLogRepository,
	alertRepo *repository.AlertRepository,
	logger *zap.Logger,
	db *gorm.DB,
) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		paymentRepo:  paymentRepo,
		historyRepo:  historyRepo,
		activityRepo: activityRepo,
		alertRepo:    alertRepo,
		logger:       logger,
		db:           db,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func actorFromContext(ctx context.Context) (name string, role domain.UserRoleType, ip string, err error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return "", "", "", ErrUnauthorized
	}
	return userCtx.DisplayName, userCtx.PrimaryRole(), userCtx.IPAddress, nil
}

// CreateProject registers a new lead owned by the executive funnel
func (s *ProjectService) CreateProject(ctx context.Context, req *domain.CreateProjectRequest) (*domain.Project, error) {
	actorName, actorRole, ip, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if req.ContactNumber != "" {
		if _, err := s.projectRepo.FindByContactNumber(ctx, req.ContactNumber); err == nil {
			return nil, fmt.Errorf("%w: contact number %s", ErrDuplicateContact, req.ContactNumber)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	now := time.Now()
	project := &domain.Project{
		School:           req.School,
		ContactPerson:    req.ContactPerson,
		ContactNumber:    req.ContactNumber,
		Place:            req.Place,
		District:         req.District,
		Region:           req.Region,
		ProjectName:      req.ProjectName,
		ParentCompany:    req.ParentCompany,
		ExecutiveRemarks: req.ExecutiveRemarks,
		CreatedBy:        actorName,

		CurrentStage:         domain.StageLead,
		StageChangeTimestamp: &now,
		StageChangedBy:       actorName,
		CurrentOwnerRole:     domain.RoleExecutive,

		PaymentStatus:      domain.PaymentStatusPending,
		InstallationStatus: domain.InstallationStatusPending,
		LastUpdatedBy:      actorName,
		LastUpdatedAt:      &now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		if err := tx.Create(&domain.ProjectStageHistory{
			ProjectID:     project.ID,
			ToStage:       domain.StageLead,
			ChangedBy:     actorName,
			ChangedByRole: actorRole,
			Remarks:       "Lead created",
		}).Error; err != nil {
			return err
		}
		return tx.Create(&domain.ProjectActivityLog{
			ProjectID:       project.ID,
			ActionType:      domain.ActionCreated,
			Description:     fmt.Sprintf("Lead created for %s", project.School),
			PerformedBy:     actorName,
			PerformedByRole: actorRole,
			IPAddress:       ip,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("school", project.School),
		zap.String("created_by", actorName),
	)
	return project, nil
}

// GetProject returns a project with its payment ledger loaded
func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	payments, err := s.paymentRepo.ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Payments = payments
	return project, nil
}

// ListProjects returns a filtered page of projects
func (s *ProjectService) ListProjects(ctx context.Context, page, pageSize int, filter repository.ProjectFilter) ([]domain.Project, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.projectRepo.List(ctx, page, pageSize, filter)
}

// ListMyWork returns the projects owned by the caller's role. Executives see
// the full funnel they work plus anything they created further downstream.
func (s *ProjectService) ListMyWork(ctx context.Context) ([]domain.Project, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	role := userCtx.PrimaryRole()
	switch role {
	case domain.RoleSuperAdmin, domain.RoleAdmin:
		return s.projectRepo.ListAll(ctx)
	case domain.RoleExecutive:
		return s.projectRepo.ListAll(ctx)
	case domain.RoleSalesCoordinator:
		return s.projectRepo.ListByStages(ctx, domain.StageOnboarded, domain.StageSales)
	case domain.RoleAccounts:
		return s.projectRepo.ListByStages(ctx, domain.StageAccounts)
	case domain.RoleInstallation:
		return s.projectRepo.ListByStages(ctx, domain.StageInstallation)
	default:
		return nil, ErrPermissionDenied
	}
}

// SearchProjects matches school or contact person
func (s *ProjectService) SearchProjects(ctx context.Context, query string, limit int) ([]domain.Project, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.projectRepo.Search(ctx, query, limit)
}

// UpdateProject changes base lead fields, gated by the edit policy
func (s *ProjectService) UpdateProject(ctx context.Context, id uuid.UUID, req *domain.UpdateProjectRequest) (*domain.Project, error) {
	actorName, actorRole, ip, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !domain.CanEditProject(project, actorName, actorRole) {
		return nil, ErrPermissionDenied
	}

	if req.ContactNumber != nil && *req.ContactNumber != project.ContactNumber {
		if existing, err := s.projectRepo.FindByContactNumber(ctx, *req.ContactNumber); err == nil && existing.ID != project.ID {
			return nil, fmt.Errorf("%w: contact number %s", ErrDuplicateContact, *req.ContactNumber)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	changes := collectFieldChanges(project, req)
	if len(changes) == 0 {
		return project, nil
	}

	now := time.Now()
	project.LastUpdatedBy = actorName
	project.LastUpdatedAt = &now

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(project).Error; err != nil {
			return err
		}
		for _, c := range changes {
			if err := tx.Create(&domain.ProjectActivityLog{
				ProjectID:       project.ID,
				ActionType:      domain.ActionFieldUpdated,
				Description:     fmt.Sprintf("Updated %s", c.field),
				FieldName:       c.field,
				OldValue:        c.oldValue,
				NewValue:        c.newValue,
				PerformedBy:     actorName,
				PerformedByRole: actorRole,
				IPAddress:       ip,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes a non-onboarded lead, gated by the delete policy
func (s *ProjectService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	actorName, actorRole, _, err := actorFromContext(ctx)
	if err != nil {
		return err
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !domain.CanDeleteProject(project, actorName, actorRole) {
		return ErrPermissionDenied
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("project deleted",
		zap.String("project_id", id.String()),
		zap.String("school", project.School),
		zap.String("deleted_by", actorName),
	)
	return nil
}

// TransitionStage moves a project to a new stage on behalf of the caller.
// Moving into ONBOARDED immediately hands the project to sales via a
// system-triggered follow-up transition, all in one transaction.
func (s *ProjectService) TransitionStage(ctx context.Context, id uuid.UUID, toStage domain.ProjectStage, remarks string) (*domain.Project, error) {
	actorName, actorRole, ip, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if !toStage.IsValid() {
		return nil, fmt.Errorf("%w: unknown stage %s", ErrInvalidTransition, toStage)
	}

	var project *domain.Project
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var p domain.Project
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if p.IsLocked && !domain.IsAdminRole(actorRole) && !domain.CanTransition(actorRole, p.CurrentStage, toStage) {
			return ErrProjectLocked
		}
		if !domain.CanTransition(actorRole, p.CurrentStage, toStage) {
			return fmt.Errorf("%w: %s cannot move %s to %s", ErrInvalidTransition, actorRole, p.CurrentStage, toStage)
		}

		// Handing off to accounts requires the sales figures to be in place
		if toStage == domain.StageAccounts {
			if p.ProjectValue == nil || p.InvoiceAmount == nil {
				return fmt.Errorf("%w: project value and invoice amount must be set before moving to %s", ErrInvalidInput, domain.StageAccounts)
			}
			received := 0.0
			if p.AmountReceived != nil {
				received = *p.AmountReceived
			}
			pending := round2(*p.InvoiceAmount - received)
			p.PendingAmount = &pending
		}

		if err := s.applyTransition(tx, &p, toStage, remarks, actorName, actorRole, ip, false); err != nil {
			return err
		}

		// Onboarding hands the project straight to the sales coordinator
		if p.CurrentStage == domain.StageOnboarded {
			if err := s.applyTransition(tx, &p, domain.StageSales, "Auto-transitioned after onboarding", domain.SystemActor, actorRole, ip, true); err != nil {
				return err
			}
		}

		project = &p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project stage changed",
		zap.String("project_id", project.ID.String()),
		zap.String("to_stage", string(project.CurrentStage)),
		zap.String("changed_by", actorName),
	)
	return project, nil
}

// applyTransition mutates the stage fields, records history and activity, and
// auto-dismisses alerts tied to the stage being left. Runs inside the caller's
// transaction; the project struct is updated in place.
func (s *ProjectService) applyTransition(tx *gorm.DB, p *domain.Project, toStage domain.ProjectStage, remarks, actorName string, actorRole domain.UserRoleType, ip string, systemTriggered bool) error {
	fromStage := p.CurrentStage
	now := time.Now()

	p.PreviousStage = &fromStage
	p.CurrentStage = toStage
	p.StageChangeTimestamp = &now
	p.StageChangedBy = actorName
	p.IsLocked = domain.LocksOnEntry(toStage)
	if owner, ok := domain.OwnerRoleFor(toStage); ok {
		p.CurrentOwnerRole = owner
	}
	p.LastUpdatedBy = actorName
	p.LastUpdatedAt = &now

	if err := tx.Save(p).Error; err != nil {
		return err
	}

	if err := tx.Create(&domain.ProjectStageHistory{
		ProjectID:         p.ID,
		FromStage:         &fromStage,
		ToStage:           toStage,
		ChangedBy:         actorName,
		ChangedByRole:     actorRole,
		Remarks:           remarks,
		IsSystemTriggered: systemTriggered,
	}).Error; err != nil {
		return err
	}

	if err := tx.Create(&domain.ProjectActivityLog{
		ProjectID:       p.ID,
		ActionType:      domain.ActionStageChanged,
		Description:     fmt.Sprintf("Stage changed from %s to %s", fromStage, toStage),
		FieldName:       "currentStage",
		OldValue:        string(fromStage),
		NewValue:        string(toStage),
		PerformedBy:     actorName,
		PerformedByRole: actorRole,
		IPAddress:       ip,
	}).Error; err != nil {
		return err
	}

	// Leaving a monitored stage clears its outstanding alert
	if alertType, ok := domain.AutoDismissAlertType(fromStage); ok {
		now := time.Now()
		if err := tx.Model(&domain.ProjectAlert{}).
			Where("project_id = ? AND alert_type = ? AND is_active = ?", p.ID, alertType, true).
			Updates(map[string]interface{}{
				"is_active":    false,
				"dismissed_at": now,
				"dismissed_by": domain.SystemActor,
			}).Error; err != nil {
			return err
		}
	}

	return nil
}

// UpdateSalesData applies the sales-stage mutation
func (s *ProjectService) UpdateSalesData(ctx context.Context, id uuid.UUID, req *domain.UpdateSalesDataRequest) (*domain.Project, error) {
	actorName, actorRole, ip, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var project *domain.Project
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var p domain.Project
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if p.CurrentStage != domain.StageSales {
			return fmt.Errorf("%w: sales data requires stage %s, project is in %s", ErrWrongStage, domain.StageSales, p.CurrentStage)
		}

		now := time.Now()
		if req.ProjectValue != nil {
			v := round2(*req.ProjectValue)
			p.ProjectValue = &v
		}
		if req.InvoiceAmount != nil {
			v := round2(*req.InvoiceAmount)
			p.InvoiceAmount = &v
			if p.AmountReceived == nil {
				pending := v
				p.PendingAmount = &pending
			} else {
				pending := round2(v - *p.AmountReceived)
				p.PendingAmount = &pending
			}
		}
		if req.PendingDelivery != nil {
			p.PendingDelivery = *req.PendingDelivery
		}
		if req.QuotationRemarks != nil {
			p.QuotationRemarks = *req.QuotationRemarks
		}
		if req.ExpectedDeliveryDate != nil {
			d, err := parseDate(*req.ExpectedDeliveryDate)
			if err != nil {
				return fmt.Errorf("%w: expectedDeliveryDate %q", ErrInvalidInput, *req.ExpectedDeliveryDate)
			}
			p.ExpectedDeliveryDate = d
		}
		if req.SalesRemarks != nil {
			p.SalesRemarks = *req.SalesRemarks
		}
		p.SalesUpdatedTimestamp = &now
		p.LastUpdatedBy = actorName
		p.LastUpdatedAt = &now

		if err := tx.Save(&p).Error; err != nil {
			return err
		}

		if err := tx.Create(&domain.ProjectActivityLog{
			ProjectID:       p.ID,
			ActionType:      domain.ActionFieldUpdated,
			Description:     "Sales data updated",
			PerformedBy:     actorName,
			PerformedByRole: actorRole,
			IPAddress:       ip,
		}).Error; err != nil {
			return err
		}

		project = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateAccountsData applies the accounts-stage mutation. A payment is a
// delta appended to the ledger; the cumulative total and pending amount are
// recomputed from the ledger, never trusted from the client. When the invoice
// is fully settled the project moves to INSTALLATION automatically, in the
// same transaction as the ledger write.
func (s *ProjectService) UpdateAccountsData(ctx context.Context, id uuid.UUID, req *domain.UpdateAccountsDataRequest) (*domain.Project, error) {
	actorName, actorRole, ip, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var project *domain.Project
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var p domain.Project
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if p.CurrentStage != domain.StageAccounts {
			return fmt.Errorf("%w: accounts data requires stage %s, project is in %s", ErrWrongStage, domain.StageAccounts, p.CurrentStage)
		}

		now := time.Now()
		var paymentDate *time.Time
		if req.PaymentDate != nil {
			d, err := parseDate(*req.PaymentDate)
			if err != nil {
				return fmt.Errorf("%w: paymentDate %q", ErrInvalidInput, *req.PaymentDate)
			}
			paymentDate = d
			p.PaymentDate = d
		}
		if req.PaymentRemarks != nil {
			p.PaymentRemarks = *req.PaymentRemarks
		}
		if req.PaymentProofURL != nil {
			p.PaymentProofURL = *req.PaymentProofURL
		}

		settled := false
		if req.AmountReceived != nil {
			delta := round2(*req.AmountReceived)
			if delta <= 0 {
				return fmt.Errorf("%w: payment must be positive", ErrInvalidInput)
			}
			if p.InvoiceAmount == nil || *p.InvoiceAmount <= 0 {
				return ErrInvoiceNotSet
			}

			var totalBefore float64
			if err := tx.Model(&domain.PaymentTransaction{}).
				Where("project_id = ?", p.ID).
				Select("COALESCE(SUM(amount_paid), 0)").
				Scan(&totalBefore).Error; err != nil {
				return err
			}

			pendingBefore := round2(*p.InvoiceAmount - totalBefore)
			if delta > pendingBefore+amountEpsilon {
				return fmt.Errorf("%w: payment %.2f exceeds pending %.2f", ErrOverpayment, delta, pendingBefore)
			}

			txn := &domain.PaymentTransaction{
				ProjectID:       p.ID,
				AmountPaid:      delta,
				PaymentDate:     paymentDate,
				PaymentProofURL: p.PaymentProofURL,
				Remarks:         p.PaymentRemarks,
				RecordedBy:      actorName,
			}
			if err := tx.Create(txn).Error; err != nil {
				return err
			}

			total := round2(totalBefore + delta)
			pending := round2(*p.InvoiceAmount - total)
			if pending < 0 {
				pending = 0
			}
			p.AmountReceived = &total
			p.PendingAmount = &pending

			switch {
			case pending <= amountEpsilon:
				p.PaymentStatus = domain.PaymentStatusCompleted
				settled = true
			case total > 0:
				p.PaymentStatus = domain.PaymentStatusPartial
			default:
				p.PaymentStatus = domain.PaymentStatusPending
			}

			if err := tx.Create(&domain.ProjectActivityLog{
				ProjectID:       p.ID,
				ActionType:      domain.ActionPaymentAdded,
				Description:     fmt.Sprintf("Payment of %.2f recorded, total received %.2f", delta, total),
				FieldName:       "amountReceived",
				OldValue:        fmt.Sprintf("%.2f", totalBefore),
				NewValue:        fmt.Sprintf("%.2f", total),
				PerformedBy:     actorName,
				PerformedByRole: actorRole,
				IPAddress:       ip,
			}).Error; err != nil {
				return err
			}
		}

		p.AccountsUpdatedTimestamp = &now
		p.LastUpdatedBy = actorName
		p.LastUpdatedAt = &now

		if err := tx.Save(&p).Error; err != nil {
			return err
		}

		// Full settlement hands the project to installation
		if settled {
			if err := s.applyTransition(tx, &p, domain.StageInstallation, "Auto-transitioned after full payment", domain.SystemActor, actorRole, ip, true); err != nil {
				return err
			}
		}

		project = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateInstallationData applies the installation-stage mutation. Marking the
// work done completes the project automatically in the same transaction.
func (s *ProjectService) UpdateInstallationData(ctx context.Context, id uuid.UUID, req *domain.UpdateInstallationDataRequest) (*domain.Project, error) {
	actorName, actorRole, ip, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var project *domain.Project
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var p domain.Project
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if p.CurrentStage != domain.StageInstallation {
			return fmt.Errorf("%w: installation data requires stage %s, project is in %s", ErrWrongStage, domain.StageInstallation, p.CurrentStage)
		}

		now := time.Now()
		workDone := false
		if req.InstallationStatus != nil {
			if !req.InstallationStatus.IsValid() {
				return fmt.Errorf("%w: installation status %s", ErrInvalidInput, *req.InstallationStatus)
			}
			p.InstallationStatus = *req.InstallationStatus
			workDone = *req.InstallationStatus == domain.InstallationStatusWorkDone
		}
		if req.InstallationRemarks != nil {
			p.InstallationRemarks = *req.InstallationRemarks
		}
		if p.InstallationStatus == domain.InstallationStatusNotDone && strings.TrimSpace(p.InstallationRemarks) == "" {
			return fmt.Errorf("%w: remarks are required when installation is marked %s", ErrInvalidInput, domain.InstallationStatusNotDone)
		}
		if req.CompletionDate != nil {
			d, err := parseDate(*req.CompletionDate)
			if err != nil {
				return fmt.Errorf("%w: completionDate %q", ErrInvalidInput, *req.CompletionDate)
			}
			p.CompletionDate = d
		}
		if workDone && p.CompletionDate == nil {
			p.CompletionDate = &now
		}
		p.InstallationUpdatedTimestamp = &now
		p.LastUpdatedBy = actorName
		p.LastUpdatedAt = &now

		if err := tx.Save(&p).Error; err != nil {
			return err
		}

		if err := tx.Create(&domain.ProjectActivityLog{
			ProjectID:       p.ID,
			ActionType:      domain.ActionFieldUpdated,
			Description:     "Installation data updated",
			PerformedBy:     actorName,
			PerformedByRole: actorRole,
			IPAddress:       ip,
		}).Error; err != nil {
			return err
		}

		if workDone {
			if err := s.applyTransition(tx, &p, domain.StageCompleted, "Auto-transitioned after installation", domain.SystemActor, actorRole, ip, true); err != nil {
				return err
			}
		}

		project = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// GetStageHistory returns the transition trail, newest first
func (s *ProjectService) GetStageHistory(ctx context.Context, id uuid.UUID) ([]domain.ProjectStageHistory, error) {
	if _, err := s.projectRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.historyRepo.ListByProject(ctx, id)
}

// GetActivity returns the activity feed, newest first
func (s *ProjectService) GetActivity(ctx context.Context, id uuid.UUID, page, pageSize int) ([]domain.ProjectActivityLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}
	if _, err := s.projectRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}
	return s.activityRepo.ListByProject(ctx, id, page, pageSize)
}

// GetPayments returns the payment ledger in chronological order
func (s *ProjectService) GetPayments(ctx context.Context, id uuid.UUID) ([]domain.PaymentTransaction, error) {
	if _, err := s.projectRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.paymentRepo.ListByProject(ctx, id)
}

// AttachPaymentProof stores the uploaded proof URL on the project
func (s *ProjectService) AttachPaymentProof(ctx context.Context, id uuid.UUID, url string) (*domain.Project, error) {
	actorName, _, _, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	project.PaymentProofURL = url
	project.LastUpdatedBy = actorName
	project.LastUpdatedAt = &now
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func parseDate(s string) (*time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type fieldChange struct {
	field    string
	oldValue string
	newValue string
}

func collectFieldChanges(p *domain.Project, req *domain.UpdateProjectRequest) []fieldChange {
	var changes []fieldChange

	apply := func(field string, current *string, next *string) {
		if next != nil && *next != *current {
			changes = append(changes, fieldChange{field: field, oldValue: *current, newValue: *next})
			*current = *next
		}
	}

	apply("school", &p.School, req.School)
	apply("contactPerson", &p.ContactPerson, req.ContactPerson)
	apply("contactNumber", &p.ContactNumber, req.ContactNumber)
	apply("place", &p.Place, req.Place)
	apply("district", &p.District, req.District)
	apply("projectName", &p.ProjectName, req.ProjectName)
	apply("parentCompany", &p.ParentCompany, req.ParentCompany)
	apply("executiveRemarks", &p.ExecutiveRemarks, req.ExecutiveRemarks)

	if req.Region != nil {
		old := ""
		if p.Region != nil {
			old = string(*p.Region)
		}
		if old != string(*req.Region) {
			changes = append(changes, fieldChange{field: "region", oldValue: old, newValue: string(*req.Region)})
			p.Region = req.Region
		}
	}

	return changes
}
