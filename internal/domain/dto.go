package domain

import (
	"github.com/google/uuid"
)

// Request payloads

// CreateProjectRequest creates a new lead. Only the school name is mandatory;
// executives fill the rest in as the lead develops.
type CreateProjectRequest struct {
	School           string  `json:"school" validate:"required,max=255"`
	ContactPerson    string  `json:"contactPerson,omitempty" validate:"omitempty,max=255"`
	ContactNumber    string  `json:"contactNumber,omitempty" validate:"omitempty,max=30"`
	Place            string  `json:"place,omitempty" validate:"omitempty,max=255"`
	District         string  `json:"district,omitempty" validate:"omitempty,max=100"`
	Region           *Region `json:"region,omitempty" validate:"omitempty,oneof=North South"`
	ProjectName      string  `json:"projectName,omitempty" validate:"omitempty,max=255"`
	ParentCompany    string  `json:"parentCompany,omitempty" validate:"omitempty,max=255"`
	ExecutiveRemarks string  `json:"executiveRemarks,omitempty" validate:"omitempty,max=2000"`
}

// UpdateProjectRequest updates base lead fields. Nil pointers leave the
// current value untouched.
type UpdateProjectRequest struct {
	School           *string `json:"school,omitempty" validate:"omitempty,min=1,max=255"`
	ContactPerson    *string `json:"contactPerson,omitempty" validate:"omitempty,max=255"`
	ContactNumber    *string `json:"contactNumber,omitempty" validate:"omitempty,max=30"`
	Place            *string `json:"place,omitempty" validate:"omitempty,max=255"`
	District         *string `json:"district,omitempty" validate:"omitempty,max=100"`
	Region           *Region `json:"region,omitempty" validate:"omitempty,oneof=North South"`
	ProjectName      *string `json:"projectName,omitempty" validate:"omitempty,max=255"`
	ParentCompany    *string `json:"parentCompany,omitempty" validate:"omitempty,max=255"`
	ExecutiveRemarks *string `json:"executiveRemarks,omitempty" validate:"omitempty,max=2000"`
}

// TransitionStageRequest moves a project to a new stage
type TransitionStageRequest struct {
	ToStage ProjectStage `json:"toStage" validate:"required"`
	Remarks string       `json:"remarks,omitempty" validate:"omitempty,max=2000"`
}

// UpdateSalesDataRequest is the sales coordinator's stage-scoped mutation
type UpdateSalesDataRequest struct {
	ProjectValue         *float64 `json:"projectValue,omitempty" validate:"omitempty,gte=0"`
	InvoiceAmount        *float64 `json:"invoiceAmount,omitempty" validate:"omitempty,gte=0"`
	PendingDelivery      *string  `json:"pendingDelivery,omitempty" validate:"omitempty,max=2000"`
	QuotationRemarks     *string  `json:"quotationRemarks,omitempty" validate:"omitempty,max=2000"`
	ExpectedDeliveryDate *string  `json:"expectedDeliveryDate,omitempty"` // YYYY-MM-DD
	SalesRemarks         *string  `json:"salesRemarks,omitempty" validate:"omitempty,max=2000"`
}

// UpdateAccountsDataRequest is the accounts stage-scoped mutation.
// AmountReceived is the delta for this payment, not the new cumulative total.
type UpdateAccountsDataRequest struct {
	AmountReceived  *float64 `json:"amountReceived,omitempty" validate:"omitempty,gt=0"`
	PaymentDate     *string  `json:"paymentDate,omitempty"` // YYYY-MM-DD
	PaymentRemarks  *string  `json:"paymentRemarks,omitempty" validate:"omitempty,max=2000"`
	PaymentProofURL *string  `json:"paymentProofUrl,omitempty" validate:"omitempty,url"`
}

// UpdateInstallationDataRequest is the installation stage-scoped mutation
type UpdateInstallationDataRequest struct {
	InstallationStatus  *InstallationStatus `json:"installationStatus,omitempty" validate:"omitempty,oneof=PENDING WORK_DONE NOT_DONE"`
	InstallationRemarks *string             `json:"installationRemarks,omitempty" validate:"omitempty,max=2000"`
	CompletionDate      *string             `json:"completionDate,omitempty"` // YYYY-MM-DD
}

// OtpRequest starts an email login
type OtpRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// OtpVerifyRequest exchanges a delivered code for a session token
type OtpVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Otp   string `json:"otp" validate:"required,len=6"`
}

// CreateUserRequest registers a new staff account
type CreateUserRequest struct {
	Name  string       `json:"name" validate:"required,max=255"`
	Email string       `json:"email" validate:"required,email"`
	Role  UserRoleType `json:"role" validate:"required"`
}

// UpdateUserRequest changes a staff account's role or active flag
type UpdateUserRequest struct {
	Name     *string       `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Role     *UserRoleType `json:"role,omitempty"`
	IsActive *bool         `json:"isActive,omitempty"`
}

// Response payloads. Timestamps are ISO 8601 strings, dates are YYYY-MM-DD.

type ProjectDTO struct {
	ID               uuid.UUID `json:"id"`
	School           string    `json:"school"`
	ContactPerson    string    `json:"contactPerson,omitempty"`
	ContactNumber    string    `json:"contactNumber,omitempty"`
	Place            string    `json:"place,omitempty"`
	District         string    `json:"district,omitempty"`
	Region           *Region   `json:"region,omitempty"`
	ProjectName      string    `json:"projectName,omitempty"`
	ParentCompany    string    `json:"parentCompany,omitempty"`
	ExecutiveRemarks string    `json:"executiveRemarks,omitempty"`
	CreatedBy        string    `json:"createdBy,omitempty"`

	CurrentStage         ProjectStage           `json:"currentStage"`
	PreviousStage        *ProjectStage          `json:"previousStage,omitempty"`
	StageChangeTimestamp *string                `json:"stageChangeTimestamp,omitempty"`
	StageChangedBy       string                 `json:"stageChangedBy,omitempty"`
	CurrentOwnerRole     UserRoleType           `json:"currentOwnerRole"`
	IsLocked             bool                   `json:"isLocked"`
	ExecutiveViewStatus  ExecutiveProjectStatus `json:"executiveViewStatus"`

	ProjectValue         *float64 `json:"projectValue,omitempty"`
	InvoiceAmount        *float64 `json:"invoiceAmount,omitempty"`
	PendingDelivery      string   `json:"pendingDelivery,omitempty"`
	QuotationRemarks     string   `json:"quotationRemarks,omitempty"`
	ExpectedDeliveryDate *string  `json:"expectedDeliveryDate,omitempty"`
	SalesRemarks         string   `json:"salesRemarks,omitempty"`
	SalesUpdatedAt       *string  `json:"salesUpdatedTimestamp,omitempty"`

	PaymentStatus      PaymentStatus           `json:"paymentStatus"`
	AmountReceived     *float64                `json:"amountReceived,omitempty"`
	PendingAmount      *float64                `json:"pendingAmount,omitempty"`
	TotalReceived      float64                 `json:"totalReceived"`
	PaymentDate        *string                 `json:"paymentDate,omitempty"`
	PaymentRemarks     string                  `json:"paymentRemarks,omitempty"`
	PaymentProofURL    string                  `json:"paymentProofUrl,omitempty"`
	AccountsUpdatedAt  *string                 `json:"accountsUpdatedTimestamp,omitempty"`
	PaymentHistory     []PaymentTransactionDTO `json:"paymentHistory,omitempty"`

	InstallationStatus  InstallationStatus `json:"installationStatus"`
	InstallationRemarks string             `json:"installationRemarks,omitempty"`
	CompletionDate      *string            `json:"completionDate,omitempty"`
	InstallationUpdated *string            `json:"installationUpdatedTimestamp,omitempty"`

	LastUpdatedBy string  `json:"lastUpdatedBy,omitempty"`
	LastUpdatedAt *string `json:"lastUpdatedAt,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

type PaymentTransactionDTO struct {
	ID              uuid.UUID `json:"id"`
	ProjectID       uuid.UUID `json:"projectId"`
	AmountPaid      float64   `json:"amountPaid"`
	PaymentDate     *string   `json:"paymentDate,omitempty"`
	PaymentProofURL string    `json:"paymentProofUrl,omitempty"`
	Remarks         string    `json:"remarks,omitempty"`
	RecordedBy      string    `json:"recordedBy,omitempty"`
	CreatedAt       string    `json:"createdAt"`
}

type StageHistoryDTO struct {
	ID                uuid.UUID     `json:"id"`
	ProjectID         uuid.UUID     `json:"projectId"`
	FromStage         *ProjectStage `json:"fromStage,omitempty"`
	ToStage           ProjectStage  `json:"toStage"`
	ChangedBy         string        `json:"changedBy"`
	ChangedByRole     string        `json:"changedByRole,omitempty"`
	Remarks           string        `json:"remarks,omitempty"`
	IsSystemTriggered bool          `json:"isSystemTriggered"`
	ChangedAt         string        `json:"changedAt"`
}

type ActivityLogDTO struct {
	ID              uuid.UUID          `json:"id"`
	ProjectID       uuid.UUID          `json:"projectId"`
	ActionType      ActivityActionType `json:"actionType"`
	Description     string             `json:"description"`
	FieldName       string             `json:"fieldName,omitempty"`
	OldValue        string             `json:"oldValue,omitempty"`
	NewValue        string             `json:"newValue,omitempty"`
	PerformedBy     string             `json:"performedBy"`
	PerformedByRole string             `json:"performedByRole,omitempty"`
	IPAddress       string             `json:"ipAddress,omitempty"`
	CreatedAt       string             `json:"createdAt"`
}

type AlertDTO struct {
	ID          uuid.UUID     `json:"id"`
	ProjectID   uuid.UUID     `json:"projectId"`
	School      string        `json:"school,omitempty"`
	Stage       ProjectStage  `json:"stage,omitempty"`
	AlertType   AlertType     `json:"alertType"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	DaysOverdue int           `json:"daysOverdue"`
	IsActive    bool          `json:"isActive"`
	DismissedAt *string       `json:"dismissedAt,omitempty"`
	DismissedBy string        `json:"dismissedBy,omitempty"`
	CreatedAt   string        `json:"createdAt"`
}

// AlertSummaryDTO is the alert badge payload
type AlertSummaryDTO struct {
	TotalAlerts    int64 `json:"totalAlerts"`
	CriticalAlerts int64 `json:"criticalAlerts"`
	WarningAlerts  int64 `json:"warningAlerts"`
	InfoAlerts     int64 `json:"infoAlerts"`
}

// Analytics payloads

type AnalyticsDTO struct {
	TotalProjects     int64                  `json:"totalProjects"`
	ActiveProjects    int64                  `json:"activeProjects"`
	CompletedProjects int64                  `json:"completedProjects"`
	SuccessRate       float64                `json:"successRate"`
	Financial         FinancialSummaryDTO    `json:"financialSummary"`
	StageDistribution []StageDistributionDTO `json:"stageDistribution"`
	MonthlyTrends     []MonthlyTrendDTO      `json:"monthlyTrends"`
	ThisMonth         QuickStatsDTO          `json:"thisMonth"`
}

type FinancialSummaryDTO struct {
	TotalRevenue     float64 `json:"totalRevenue"`
	CompletedRevenue float64 `json:"completedRevenue"`
	TotalReceived    float64 `json:"totalReceived"`
	PendingRevenue   float64 `json:"pendingRevenue"`
}

type StageDistributionDTO struct {
	Stage      ProjectStage `json:"stage"`
	Count      int64        `json:"count"`
	Percentage float64      `json:"percentage"`
}

type MonthlyTrendDTO struct {
	Month     string  `json:"month"` // YYYY-MM
	Created   int64   `json:"created"`
	Completed int64   `json:"completed"`
	Revenue   float64 `json:"revenue"`
}

type QuickStatsDTO struct {
	NewProjects       int64   `json:"newProjects"`
	CompletedProjects int64   `json:"completedProjects"`
	RevenueCollected  float64 `json:"revenueCollected"`
}

// Auth payloads

type UserDTO struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Role      UserRoleType `json:"role"`
	IsActive  bool         `json:"isActive"`
	CreatedAt string       `json:"createdAt"`
	UpdatedAt string       `json:"updatedAt"`
}

// LoginResponse is returned after a successful OTP verification
type LoginResponse struct {
	StatusCode  int          `json:"statusCode"`
	Token       string       `json:"token,omitempty"`
	Role        UserRoleType `json:"role,omitempty"`
	Message     string       `json:"message"`
	LandingPath string       `json:"landingPath,omitempty"`
	User        *UserDTO     `json:"user,omitempty"`
}

// LandingResponse tells the client where a role lands after login
type LandingResponse struct {
	Role UserRoleType `json:"role"`
	Path string       `json:"path"`
}

// CrmEntryDTO mirrors a row imported from the previous CRM
type CrmEntryDTO struct {
	ID              uuid.UUID         `json:"id"`
	Company         string            `json:"company"`
	Phone           string            `json:"phone,omitempty"`
	Email           string            `json:"email,omitempty"`
	ContactName     string            `json:"contactName,omitempty"`
	Address         string            `json:"address,omitempty"`
	CompanyImageURL string            `json:"companyImageUrl,omitempty"`
	AssignedTo      string            `json:"assignedTo,omitempty"`
	LastContact     *string           `json:"lastContact,omitempty"`
	NextFollowUp    *string           `json:"nextFollowUp,omitempty"`
	ReferenceID     string            `json:"referenceId,omitempty"`
	DealValue       *float64          `json:"dealValue,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Status          string            `json:"status,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	Work            []string          `json:"work,omitempty"`
	LeadSources     []string          `json:"leadSources,omitempty"`
	DriveLink       string            `json:"driveLink,omitempty"`
	Socials         map[string]string `json:"socials,omitempty"`
	LastUpdatedBy   string            `json:"lastUpdatedBy,omitempty"`
	ImportedAt      *string           `json:"importedAt,omitempty"`
}

// PaginatedResponse wraps list endpoints
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// NewPaginatedResponse computes the page count from the total
func NewPaginatedResponse(data interface{}, total int64, page, pageSize int) PaginatedResponse {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// UploadResponse is returned after a payment proof upload
type UploadResponse struct {
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Name string `json:"name"`
}
