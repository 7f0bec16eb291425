package domain_test

import (
	"testing"

	"github.com/incial/workhub-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		role    domain.UserRoleType
		from    domain.ProjectStage
		to      domain.ProjectStage
		allowed bool
	}{
		{"executive lead to on progress", domain.RoleExecutive, domain.StageLead, domain.StageOnProgress, true},
		{"executive on progress to quotation", domain.RoleExecutive, domain.StageOnProgress, domain.StageQuotationSent, true},
		{"executive quotation to in review", domain.RoleExecutive, domain.StageQuotationSent, domain.StageInReview, true},
		{"executive in review to onboarded", domain.RoleExecutive, domain.StageInReview, domain.StageOnboarded, true},
		{"executive cannot skip stages", domain.RoleExecutive, domain.StageLead, domain.StageQuotationSent, false},
		{"executive cannot move backwards", domain.RoleExecutive, domain.StageOnProgress, domain.StageLead, false},
		{"executive cannot touch sales", domain.RoleExecutive, domain.StageSales, domain.StageAccounts, false},
		{"sales coordinator sales to accounts", domain.RoleSalesCoordinator, domain.StageSales, domain.StageAccounts, true},
		{"sales coordinator cannot work executive funnel", domain.RoleSalesCoordinator, domain.StageLead, domain.StageOnProgress, false},
		{"accounts to installation", domain.RoleAccounts, domain.StageAccounts, domain.StageInstallation, true},
		{"accounts cannot complete", domain.RoleAccounts, domain.StageInstallation, domain.StageCompleted, false},
		{"installation to completed", domain.RoleInstallation, domain.StageInstallation, domain.StageCompleted, true},
		{"admin owns executive funnel", domain.RoleAdmin, domain.StageLead, domain.StageOnProgress, true},
		{"admin owns specialist edges", domain.RoleAdmin, domain.StageSales, domain.StageAccounts, true},
		{"admin cannot skip stages", domain.RoleAdmin, domain.StageLead, domain.StageInReview, false},
		{"super admin any forward edge", domain.RoleSuperAdmin, domain.StageLead, domain.StageInstallation, true},
		{"super admin cannot move backwards", domain.RoleSuperAdmin, domain.StageAccounts, domain.StageSales, false},
		{"super admin rejects unknown stage", domain.RoleSuperAdmin, "BOGUS", domain.StageCompleted, false},
		{"employee has no edges", domain.RoleEmployee, domain.StageLead, domain.StageOnProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, domain.CanTransition(tt.role, tt.from, tt.to))
		})
	}
}

func TestNextStage(t *testing.T) {
	tests := []struct {
		current domain.ProjectStage
		next    domain.ProjectStage
		ok      bool
	}{
		{domain.StageLead, domain.StageOnProgress, true},
		{domain.StageOnProgress, domain.StageQuotationSent, true},
		{domain.StageQuotationSent, domain.StageInReview, true},
		{domain.StageInReview, domain.StageOnboarded, true},
		{domain.StageOnboarded, "", false},
		{domain.StageSales, "", false},
		{domain.StageCompleted, "", false},
	}

	for _, tt := range tests {
		next, ok := domain.NextStage(tt.current)
		assert.Equal(t, tt.ok, ok, "stage %s", tt.current)
		assert.Equal(t, tt.next, next, "stage %s", tt.current)
	}
}

func TestExecutiveStatusFor(t *testing.T) {
	assert.Equal(t, domain.ExecutiveStatusNonOnboarded, domain.ExecutiveStatusFor(domain.StageLead))
	assert.Equal(t, domain.ExecutiveStatusNonOnboarded, domain.ExecutiveStatusFor(domain.StageInReview))
	assert.Equal(t, domain.ExecutiveStatusOnboardedActive, domain.ExecutiveStatusFor(domain.StageOnboarded))
	assert.Equal(t, domain.ExecutiveStatusOnboardedActive, domain.ExecutiveStatusFor(domain.StageAccounts))
	assert.Equal(t, domain.ExecutiveStatusCompleted, domain.ExecutiveStatusFor(domain.StageCompleted))
}

func TestOwnerRoleFor(t *testing.T) {
	tests := []struct {
		stage domain.ProjectStage
		role  domain.UserRoleType
		ok    bool
	}{
		{domain.StageLead, domain.RoleExecutive, true},
		{domain.StageInReview, domain.RoleExecutive, true},
		{domain.StageOnboarded, domain.RoleSalesCoordinator, true},
		{domain.StageSales, domain.RoleSalesCoordinator, true},
		{domain.StageAccounts, domain.RoleAccounts, true},
		{domain.StageInstallation, domain.RoleInstallation, true},
		{domain.StageCompleted, "", false},
	}

	for _, tt := range tests {
		role, ok := domain.OwnerRoleFor(tt.stage)
		assert.Equal(t, tt.ok, ok, "stage %s", tt.stage)
		assert.Equal(t, tt.role, role, "stage %s", tt.stage)
	}
}

func TestLocksOnEntry(t *testing.T) {
	assert.True(t, domain.LocksOnEntry(domain.StageSales))
	assert.True(t, domain.LocksOnEntry(domain.StageCompleted))
	assert.False(t, domain.LocksOnEntry(domain.StageOnboarded))
	assert.False(t, domain.LocksOnEntry(domain.StageAccounts))
}

func TestAutoDismissAlertType(t *testing.T) {
	alertType, ok := domain.AutoDismissAlertType(domain.StageInReview)
	assert.True(t, ok)
	assert.Equal(t, domain.AlertStageInactivity, alertType)

	alertType, ok = domain.AutoDismissAlertType(domain.StageAccounts)
	assert.True(t, ok)
	assert.Equal(t, domain.AlertPaymentDelay, alertType)

	alertType, ok = domain.AutoDismissAlertType(domain.StageInstallation)
	assert.True(t, ok)
	assert.Equal(t, domain.AlertInstallationDelay, alertType)

	_, ok = domain.AutoDismissAlertType(domain.StageLead)
	assert.False(t, ok)
}

func TestCanEditProject(t *testing.T) {
	lead := &domain.Project{CurrentStage: domain.StageLead, CreatedBy: "Alice"}
	onboarded := &domain.Project{CurrentStage: domain.StageSales, CreatedBy: "Alice"}
	completed := &domain.Project{CurrentStage: domain.StageCompleted, CreatedBy: "Alice"}

	// Any executive can edit a non-onboarded lead
	assert.True(t, domain.CanEditProject(lead, "Bob", domain.RoleExecutive))
	assert.False(t, domain.CanEditProject(lead, "Bob", domain.RoleAccounts))

	// Onboarded projects are creator-only for executives
	assert.True(t, domain.CanEditProject(onboarded, "Alice", domain.RoleExecutive))
	assert.False(t, domain.CanEditProject(onboarded, "Bob", domain.RoleExecutive))
	assert.True(t, domain.CanEditProject(onboarded, "Bob", domain.RoleAdmin))

	// Completed projects are read-only for everyone
	assert.False(t, domain.CanEditProject(completed, "Alice", domain.RoleExecutive))
	assert.False(t, domain.CanEditProject(completed, "Bob", domain.RoleSuperAdmin))
}

func TestCanDeleteProject(t *testing.T) {
	lead := &domain.Project{CurrentStage: domain.StageQuotationSent, CreatedBy: "Alice"}
	onboarded := &domain.Project{CurrentStage: domain.StageOnboarded, CreatedBy: "Alice"}

	assert.True(t, domain.CanDeleteProject(lead, "Alice", domain.RoleExecutive))
	assert.False(t, domain.CanDeleteProject(lead, "Bob", domain.RoleExecutive))
	assert.True(t, domain.CanDeleteProject(lead, "Bob", domain.RoleAdmin))

	// Once onboarded, nobody deletes
	assert.False(t, domain.CanDeleteProject(onboarded, "Alice", domain.RoleExecutive))
	assert.False(t, domain.CanDeleteProject(onboarded, "Bob", domain.RoleSuperAdmin))
}

func TestDefaultLandingPath(t *testing.T) {
	tests := []struct {
		role domain.UserRoleType
		path string
	}{
		{domain.RoleSuperAdmin, "/dashboard"},
		{domain.RoleAdmin, "/admin"},
		{domain.RoleExecutive, "/executive"},
		{domain.RoleSalesCoordinator, "/sales"},
		{domain.RoleAccounts, "/accounts"},
		{domain.RoleInstallation, "/installation"},
		{domain.RoleEmployee, "/operations"},
		{domain.RoleClient, "/unauthorized"},
		{"ROLE_UNKNOWN", "/unauthorized"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.path, domain.DefaultLandingPath(tt.role), "role %s", tt.role)
	}
}

func TestStageIndex(t *testing.T) {
	assert.Equal(t, 0, domain.StageIndex(domain.StageLead))
	assert.Equal(t, 8, domain.StageIndex(domain.StageCompleted))
	assert.Equal(t, -1, domain.StageIndex("BOGUS"))
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		input    string
		expected domain.Region
		ok       bool
	}{
		{"North", domain.RegionNorth, true},
		{"north", domain.RegionNorth, true},
		{"SOUTH", domain.RegionSouth, true},
		{"east", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		region, ok := domain.ParseRegion(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.expected, region, "input %q", tt.input)
	}

	assert.Equal(t, domain.Region("North"), domain.RegionNorth)
	assert.True(t, domain.RegionSouth.IsValid())
	assert.False(t, domain.Region("WEST").IsValid())
}
