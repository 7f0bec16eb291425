package mapper

import (
	"encoding/json"
	"time"

	"github.com/incial/workhub-api/internal/domain"
)

const timestampFormat = "2006-01-02T15:04:05Z"
const dateFormat = "2006-01-02"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func formatTimestampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTimestamp(*t)
	return &s
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateFormat)
	return &s
}

// ToProjectDTO converts a Project to its API shape. The executive view status
// is derived from the current stage and the pending amount is clamped to zero.
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	dto := domain.ProjectDTO{
		ID:               project.ID,
		School:           project.School,
		ContactPerson:    project.ContactPerson,
		ContactNumber:    project.ContactNumber,
		Place:            project.Place,
		District:         project.District,
		Region:           project.Region,
		ProjectName:      project.ProjectName,
		ParentCompany:    project.ParentCompany,
		ExecutiveRemarks: project.ExecutiveRemarks,
		CreatedBy:        project.CreatedBy,

		CurrentStage:         project.CurrentStage,
		PreviousStage:        project.PreviousStage,
		StageChangeTimestamp: formatTimestampPtr(project.StageChangeTimestamp),
		StageChangedBy:       project.StageChangedBy,
		CurrentOwnerRole:     project.CurrentOwnerRole,
		IsLocked:             project.IsLocked,
		ExecutiveViewStatus:  domain.ExecutiveStatusFor(project.CurrentStage),

		ProjectValue:         project.ProjectValue,
		InvoiceAmount:        project.InvoiceAmount,
		PendingDelivery:      project.PendingDelivery,
		QuotationRemarks:     project.QuotationRemarks,
		ExpectedDeliveryDate: formatDatePtr(project.ExpectedDeliveryDate),
		SalesRemarks:         project.SalesRemarks,
		SalesUpdatedAt:       formatTimestampPtr(project.SalesUpdatedTimestamp),

		PaymentStatus:     project.PaymentStatus,
		AmountReceived:    project.AmountReceived,
		PendingAmount:     project.PendingAmount,
		PaymentDate:       formatDatePtr(project.PaymentDate),
		PaymentRemarks:    project.PaymentRemarks,
		PaymentProofURL:   project.PaymentProofURL,
		AccountsUpdatedAt: formatTimestampPtr(project.AccountsUpdatedTimestamp),

		InstallationStatus:  project.InstallationStatus,
		InstallationRemarks: project.InstallationRemarks,
		CompletionDate:      formatDatePtr(project.CompletionDate),
		InstallationUpdated: formatTimestampPtr(project.InstallationUpdatedTimestamp),

		LastUpdatedBy: project.LastUpdatedBy,
		LastUpdatedAt: formatTimestampPtr(project.LastUpdatedAt),
		CreatedAt:     formatTimestamp(project.CreatedAt),
		UpdatedAt:     formatTimestamp(project.UpdatedAt),
	}

	// Total received always comes from the ledger
	var total float64
	for i := range project.Payments {
		total += project.Payments[i].AmountPaid
		dto.PaymentHistory = append(dto.PaymentHistory, ToPaymentTransactionDTO(&project.Payments[i]))
	}
	dto.TotalReceived = total

	if dto.PendingAmount != nil && *dto.PendingAmount < 0 {
		zero := 0.0
		dto.PendingAmount = &zero
	}

	return dto
}

// ToPaymentTransactionDTO converts a ledger entry
func ToPaymentTransactionDTO(txn *domain.PaymentTransaction) domain.PaymentTransactionDTO {
	return domain.PaymentTransactionDTO{
		ID:              txn.ID,
		ProjectID:       txn.ProjectID,
		AmountPaid:      txn.AmountPaid,
		PaymentDate:     formatDatePtr(txn.PaymentDate),
		PaymentProofURL: txn.PaymentProofURL,
		Remarks:         txn.Remarks,
		RecordedBy:      txn.RecordedBy,
		CreatedAt:       formatTimestamp(txn.CreatedAt),
	}
}

// ToStageHistoryDTO converts a stage transition record
func ToStageHistoryDTO(h *domain.ProjectStageHistory) domain.StageHistoryDTO {
	return domain.StageHistoryDTO{
		ID:                h.ID,
		ProjectID:         h.ProjectID,
		FromStage:         h.FromStage,
		ToStage:           h.ToStage,
		ChangedBy:         h.ChangedBy,
		ChangedByRole:     string(h.ChangedByRole),
		Remarks:           h.Remarks,
		IsSystemTriggered: h.IsSystemTriggered,
		ChangedAt:         formatTimestamp(h.ChangedAt),
	}
}

// ToActivityLogDTO converts an activity feed entry
func ToActivityLogDTO(l *domain.ProjectActivityLog) domain.ActivityLogDTO {
	return domain.ActivityLogDTO{
		ID:              l.ID,
		ProjectID:       l.ProjectID,
		ActionType:      l.ActionType,
		Description:     l.Description,
		FieldName:       l.FieldName,
		OldValue:        l.OldValue,
		NewValue:        l.NewValue,
		PerformedBy:     l.PerformedBy,
		PerformedByRole: string(l.PerformedByRole),
		IPAddress:       l.IPAddress,
		CreatedAt:       formatTimestamp(l.CreatedAt),
	}
}

// ToAlertDTO converts an alert, attaching project context when available
func ToAlertDTO(a *domain.ProjectAlert, project *domain.Project) domain.AlertDTO {
	dto := domain.AlertDTO{
		ID:          a.ID,
		ProjectID:   a.ProjectID,
		AlertType:   a.AlertType,
		Severity:    a.Severity,
		Message:     a.Message,
		DaysOverdue: a.DaysOverdue,
		IsActive:    a.IsActive,
		DismissedAt: formatTimestampPtr(a.DismissedAt),
		DismissedBy: a.DismissedBy,
		CreatedAt:   formatTimestamp(a.CreatedAt),
	}
	if project != nil {
		dto.School = project.School
		dto.Stage = project.CurrentStage
	}
	return dto
}

// ToUserDTO converts a staff account
func ToUserDTO(u *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: formatTimestamp(u.CreatedAt),
		UpdatedAt: formatTimestamp(u.UpdatedAt),
	}
}

// ToCrmEntryDTO converts an imported contact
func ToCrmEntryDTO(e *domain.CrmEntry) domain.CrmEntryDTO {
	dto := domain.CrmEntryDTO{
		ID:              e.ID,
		Company:         e.Company,
		Phone:           e.Phone,
		Email:           e.Email,
		ContactName:     e.ContactName,
		Address:         e.Address,
		CompanyImageURL: e.CompanyImageURL,
		AssignedTo:      e.AssignedTo,
		LastContact:     formatDatePtr(e.LastContact),
		NextFollowUp:    formatDatePtr(e.NextFollowUp),
		ReferenceID:     e.ReferenceID,
		DealValue:       e.DealValue,
		Notes:           e.Notes,
		Status:          e.Status,
		Tags:            e.Tags,
		Work:            e.Work,
		LeadSources:     e.LeadSources,
		DriveLink:       e.DriveLink,
		LastUpdatedBy:   e.LastUpdatedBy,
		ImportedAt:      formatTimestampPtr(e.ImportedAt),
	}

	if e.Socials != "" {
		var socials map[string]string
		if err := json.Unmarshal([]byte(e.Socials), &socials); err == nil {
			dto.Socials = socials
		}
	}

	return dto
}
