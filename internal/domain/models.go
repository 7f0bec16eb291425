package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database does not (e.g. sqlite)
func (b *BaseModel) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ProjectStage represents a project's position in the pipeline
type ProjectStage string

const (
	StageLead          ProjectStage = "LEAD"
	StageOnProgress    ProjectStage = "ON_PROGRESS"
	StageQuotationSent ProjectStage = "QUOTATION_SENT"
	StageInReview      ProjectStage = "IN_REVIEW"
	StageOnboarded     ProjectStage = "ONBOARDED"
	StageSales         ProjectStage = "SALES"
	StageAccounts      ProjectStage = "ACCOUNTS"
	StageInstallation  ProjectStage = "INSTALLATION"
	StageCompleted     ProjectStage = "COMPLETED"
)

// IsValid checks if the ProjectStage is a valid enum value
func (s ProjectStage) IsValid() bool {
	switch s {
	case StageLead, StageOnProgress, StageQuotationSent, StageInReview,
		StageOnboarded, StageSales, StageAccounts, StageInstallation, StageCompleted:
		return true
	}
	return false
}

// UserRoleType represents the role assigned to a user
type UserRoleType string

const (
	RoleSuperAdmin       UserRoleType = "ROLE_SUPER_ADMIN"
	RoleAdmin            UserRoleType = "ROLE_ADMIN"
	RoleExecutive        UserRoleType = "ROLE_EXECUTIVE"
	RoleSalesCoordinator UserRoleType = "ROLE_SALES_COORDINATOR"
	RoleAccounts         UserRoleType = "ROLE_ACCOUNTS"
	RoleInstallation     UserRoleType = "ROLE_INSTALLATION"
	RoleEmployee         UserRoleType = "ROLE_EMPLOYEE"
	RoleClient           UserRoleType = "ROLE_CLIENT"
)

// IsValid checks if the UserRoleType is a valid enum value
func (r UserRoleType) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleExecutive, RoleSalesCoordinator,
		RoleAccounts, RoleInstallation, RoleEmployee, RoleClient:
		return true
	}
	return false
}

// ExecutiveProjectStatus is the three-way dashboard classification of a project
type ExecutiveProjectStatus string

const (
	ExecutiveStatusNonOnboarded    ExecutiveProjectStatus = "NON_ONBOARDED"
	ExecutiveStatusOnboardedActive ExecutiveProjectStatus = "ONBOARDED_ACTIVE"
	ExecutiveStatusCompleted       ExecutiveProjectStatus = "COMPLETED"
)

// PaymentStatus represents the payment state of a project invoice
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPartial   PaymentStatus = "PARTIAL"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// IsValid checks if the PaymentStatus is a valid enum value
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusCompleted:
		return true
	}
	return false
}

// InstallationStatus represents the installation state of a project
type InstallationStatus string

const (
	InstallationStatusPending  InstallationStatus = "PENDING"
	InstallationStatusWorkDone InstallationStatus = "WORK_DONE"
	InstallationStatusNotDone  InstallationStatus = "NOT_DONE"
)

// IsValid checks if the InstallationStatus is a valid enum value
func (i InstallationStatus) IsValid() bool {
	switch i {
	case InstallationStatusPending, InstallationStatusWorkDone, InstallationStatusNotDone:
		return true
	}
	return false
}

// Region represents the sales region a project belongs to
type Region string

const (
	RegionNorth Region = "North"
	RegionSouth Region = "South"
)

// IsValid checks if the Region is a valid enum value
func (r Region) IsValid() bool {
	switch r {
	case RegionNorth, RegionSouth:
		return true
	}
	return false
}

// ParseRegion matches a region name case-insensitively
func ParseRegion(s string) (Region, bool) {
	switch strings.ToLower(s) {
	case "north":
		return RegionNorth, true
	case "south":
		return RegionSouth, true
	}
	return "", false
}

// AlertType categorizes operational alerts
type AlertType string

const (
	AlertStageInactivity   AlertType = "STAGE_INACTIVITY"
	AlertPaymentDelay      AlertType = "PAYMENT_DELAY"
	AlertInstallationDelay AlertType = "INSTALLATION_DELAY"
	AlertDuplicateLead     AlertType = "DUPLICATE_LEAD"
	AlertUnauthorizedEdit  AlertType = "UNAUTHORIZED_EDIT"
)

// AlertSeverity represents how urgent an alert is
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "INFO"
	SeverityWarning  AlertSeverity = "WARNING"
	SeverityCritical AlertSeverity = "CRITICAL"
)

// ActivityActionType categorizes entries in the project activity log
type ActivityActionType string

const (
	ActionCreated      ActivityActionType = "CREATED"
	ActionStageChanged ActivityActionType = "STAGE_CHANGED"
	ActionFieldUpdated ActivityActionType = "FIELD_UPDATED"
	ActionPaymentAdded ActivityActionType = "PAYMENT_ADDED"
	ActionDeleted      ActivityActionType = "DELETED"
)

// SystemActor is recorded as the acting user for automatic transitions and
// system-generated alert dismissals.
const SystemActor = "SYSTEM"

// Project is the central pipeline entity, tracked from lead intake through
// completed installation.
type Project struct {
	BaseModel

	// Base information, set by the creating executive
	School           string  `gorm:"type:varchar(200);not null;index"`
	ContactPerson    string  `gorm:"type:varchar(200);column:contact_person"`
	ContactNumber    string  `gorm:"type:varchar(20);uniqueIndex;column:contact_number"`
	Place            string  `gorm:"type:varchar(200)"`
	District         string  `gorm:"type:varchar(100);index"`
	Region           *Region `gorm:"type:varchar(20);index"`
	ProjectName      string  `gorm:"type:varchar(200);column:project_name"`
	ParentCompany    string  `gorm:"type:varchar(200);column:parent_company"`
	ExecutiveRemarks string  `gorm:"type:text;column:executive_remarks"`
	CreatedBy        string  `gorm:"type:varchar(200);not null;column:created_by;index"`

	// Stage tracking
	CurrentStage         ProjectStage  `gorm:"type:varchar(50);not null;default:'LEAD';index;column:current_stage"`
	PreviousStage        *ProjectStage `gorm:"type:varchar(50);column:previous_stage"`
	StageChangeTimestamp *time.Time    `gorm:"column:stage_change_timestamp"`
	StageChangedBy       string        `gorm:"type:varchar(200);column:stage_changed_by"`
	CurrentOwnerRole     UserRoleType  `gorm:"type:varchar(50);not null;default:'ROLE_EXECUTIVE';index;column:current_owner_role"`
	IsLocked             bool          `gorm:"not null;default:false;column:is_locked"`

	// Sales data
	ProjectValue          *float64   `gorm:"type:decimal(15,2);column:project_value"`
	InvoiceAmount         *float64   `gorm:"type:decimal(15,2);column:invoice_amount"`
	PendingDelivery       string     `gorm:"type:varchar(500);column:pending_delivery"`
	QuotationRemarks      string     `gorm:"type:text;column:quotation_remarks"`
	ExpectedDeliveryDate  *time.Time `gorm:"type:date;column:expected_delivery_date"`
	SalesRemarks          string     `gorm:"type:text;column:sales_remarks"`
	SalesUpdatedTimestamp *time.Time `gorm:"column:sales_updated_timestamp"`

	// Accounts data. AmountReceived is the cumulative total across the
	// payment ledger, not the last transaction.
	PaymentStatus            PaymentStatus `gorm:"type:varchar(50);not null;default:'PENDING';column:payment_status"`
	AmountReceived           *float64      `gorm:"type:decimal(15,2);column:amount_received"`
	PendingAmount            *float64      `gorm:"type:decimal(15,2);column:pending_amount"`
	PaymentDate              *time.Time    `gorm:"type:date;column:payment_date"`
	PaymentRemarks           string        `gorm:"type:text;column:payment_remarks"`
	PaymentProofURL          string        `gorm:"type:varchar(500);column:payment_proof_url"`
	AccountsUpdatedTimestamp *time.Time    `gorm:"column:accounts_updated_timestamp"`

	// Installation data
	InstallationStatus           InstallationStatus `gorm:"type:varchar(50);not null;default:'PENDING';column:installation_status"`
	InstallationRemarks          string             `gorm:"type:text;column:installation_remarks"`
	CompletionDate               *time.Time         `gorm:"type:date;column:completion_date"`
	InstallationUpdatedTimestamp *time.Time         `gorm:"column:installation_updated_timestamp"`

	// Audit
	LastUpdatedBy string     `gorm:"type:varchar(200);column:last_updated_by"`
	LastUpdatedAt *time.Time `gorm:"column:last_updated_at"`

	Payments []PaymentTransaction `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// PaymentTransaction is one immutable ledger entry toward a project invoice.
// Rows are only ever appended, never updated.
type PaymentTransaction struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key"`
	ProjectID       uuid.UUID  `gorm:"type:uuid;not null;index;column:project_id"`
	Project         *Project   `gorm:"foreignKey:ProjectID"`
	AmountPaid      float64    `gorm:"type:decimal(15,2);not null;column:amount_paid"`
	PaymentDate     *time.Time `gorm:"type:date;column:payment_date"`
	PaymentProofURL string     `gorm:"type:varchar(500);column:payment_proof_url"`
	Remarks         string     `gorm:"type:text"`
	RecordedBy      string     `gorm:"type:varchar(200);column:recorded_by"`
	CreatedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName overrides the default table name
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

func (t *PaymentTransaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ProjectStageHistory tracks every stage transition of a project
type ProjectStageHistory struct {
	ID                uuid.UUID     `gorm:"type:uuid;primary_key"`
	ProjectID         uuid.UUID     `gorm:"type:uuid;not null;index;column:project_id"`
	Project           *Project      `gorm:"foreignKey:ProjectID"`
	FromStage         *ProjectStage `gorm:"type:varchar(50);column:from_stage"`
	ToStage           ProjectStage  `gorm:"type:varchar(50);not null;column:to_stage"`
	ChangedBy         string        `gorm:"type:varchar(200);column:changed_by"`
	ChangedByRole     UserRoleType  `gorm:"type:varchar(50);column:changed_by_role"`
	Remarks           string        `gorm:"type:text"`
	IsSystemTriggered bool          `gorm:"not null;default:false;column:is_system_triggered"`
	ChangedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;column:changed_at"`
}

// TableName overrides the default table name
func (ProjectStageHistory) TableName() string {
	return "project_stage_history"
}

func (h *ProjectStageHistory) BeforeCreate(*gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// ProjectActivityLog records every mutation against a project for auditing
type ProjectActivityLog struct {
	ID              uuid.UUID          `gorm:"type:uuid;primary_key"`
	ProjectID       uuid.UUID          `gorm:"type:uuid;not null;index;column:project_id"`
	ActionType      ActivityActionType `gorm:"type:varchar(50);not null;column:action_type"`
	Description     string             `gorm:"type:text"`
	FieldName       string             `gorm:"type:varchar(100);column:field_name"`
	OldValue        string             `gorm:"type:text;column:old_value"`
	NewValue        string             `gorm:"type:text;column:new_value"`
	PerformedBy     string             `gorm:"type:varchar(200);column:performed_by"`
	PerformedByRole UserRoleType       `gorm:"type:varchar(50);column:performed_by_role"`
	IPAddress       string             `gorm:"type:varchar(64);column:ip_address"`
	CreatedAt       time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName overrides the default table name
func (ProjectActivityLog) TableName() string {
	return "project_activity_logs"
}

func (l *ProjectActivityLog) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ProjectAlert is a dismissible operational alert raised against a project
type ProjectAlert struct {
	ID          uuid.UUID     `gorm:"type:uuid;primary_key"`
	ProjectID   uuid.UUID     `gorm:"type:uuid;not null;index;column:project_id"`
	Project     *Project      `gorm:"foreignKey:ProjectID"`
	AlertType   AlertType     `gorm:"type:varchar(50);not null;index;column:alert_type"`
	Severity    AlertSeverity `gorm:"type:varchar(20);not null"`
	Message     string        `gorm:"type:text"`
	DaysOverdue int           `gorm:"not null;default:0;column:days_overdue"`
	IsActive    bool          `gorm:"not null;default:true;index;column:is_active"`
	DismissedAt *time.Time    `gorm:"column:dismissed_at"`
	DismissedBy string        `gorm:"type:varchar(200);column:dismissed_by"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName overrides the default table name
func (ProjectAlert) TableName() string {
	return "project_alerts"
}

func (a *ProjectAlert) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// User represents an application user
type User struct {
	BaseModel
	Name     string       `gorm:"type:varchar(200);not null"`
	Email    string       `gorm:"type:varchar(255);not null;uniqueIndex"`
	Role     UserRoleType `gorm:"type:varchar(50);not null;default:'ROLE_EMPLOYEE'"`
	IsActive bool         `gorm:"not null;default:true;column:is_active"`
}

// Otp is a one-time login code issued for an email address
type Otp struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Email     string    `gorm:"type:varchar(255);not null;index"`
	Code      string    `gorm:"type:varchar(6);not null;column:otp_code"`
	ExpiresAt time.Time `gorm:"not null;column:expires_at"`
	Verified  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName overrides the default table name
func (Otp) TableName() string {
	return "otps"
}

func (o *Otp) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// CrmEntry is a contact record carried over from the previous CRM system.
// ReferenceID is the import key used to upsert rows from the legacy database.
type CrmEntry struct {
	BaseModel
	Company         string         `gorm:"type:varchar(200);not null;index"`
	Phone           string         `gorm:"type:varchar(50)"`
	Email           string         `gorm:"type:varchar(255)"`
	ContactName     string         `gorm:"type:varchar(200);column:contact_name"`
	Address         string         `gorm:"type:varchar(500)"`
	CompanyImageURL string         `gorm:"type:varchar(500);column:company_image_url"`
	AssignedTo      string         `gorm:"type:varchar(200);column:assigned_to"`
	LastContact     *time.Time     `gorm:"type:date;column:last_contact"`
	NextFollowUp    *time.Time     `gorm:"type:date;column:next_follow_up"`
	ReferenceID     string         `gorm:"type:varchar(100);uniqueIndex;column:reference_id"`
	DealValue       *float64       `gorm:"type:decimal(15,2);column:deal_value"`
	Notes           string         `gorm:"type:text"`
	Status          string         `gorm:"type:varchar(50);index"`
	Tags            pq.StringArray `gorm:"type:text[]"`
	Work            pq.StringArray `gorm:"type:text[]"`
	LeadSources     pq.StringArray `gorm:"type:text[];column:lead_sources"`
	DriveLink       string         `gorm:"type:varchar(500);column:drive_link"`
	Socials         string         `gorm:"type:jsonb;default:'{}'"`
	LastUpdatedBy   string         `gorm:"type:varchar(200);column:last_updated_by"`
	ImportedAt      *time.Time     `gorm:"column:imported_at"`
}

// TableName overrides the default table name
func (CrmEntry) TableName() string {
	return "crm_entries"
}
