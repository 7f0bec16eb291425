package domain

// stageOrder is the canonical funnel order used for forward-transition checks
var stageOrder = []ProjectStage{
	StageLead,
	StageOnProgress,
	StageQuotationSent,
	StageInReview,
	StageOnboarded,
	StageSales,
	StageAccounts,
	StageInstallation,
	StageCompleted,
}

// AllStages returns every pipeline stage in canonical order
func AllStages() []ProjectStage {
	out := make([]ProjectStage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// StageIndex returns the position of a stage in the canonical order, or -1
// for an unknown stage.
func StageIndex(stage ProjectStage) int {
	for i, s := range stageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

// NextStage returns the manual "next stage" for the executive funnel.
// ONBOARDED and later stages have no generic next step: their advancement is
// driven by the owning specialist's workflow, so ok is false.
func NextStage(current ProjectStage) (ProjectStage, bool) {
	switch current {
	case StageLead:
		return StageOnProgress, true
	case StageOnProgress:
		return StageQuotationSent, true
	case StageQuotationSent:
		return StageInReview, true
	case StageInReview:
		return StageOnboarded, true
	default:
		return "", false
	}
}

// ExecutiveStatusFor classifies a stage for the executive dashboard.
// The classification is always derived from the current stage, never stored.
func ExecutiveStatusFor(stage ProjectStage) ExecutiveProjectStatus {
	switch stage {
	case StageLead, StageOnProgress, StageQuotationSent, StageInReview:
		return ExecutiveStatusNonOnboarded
	case StageCompleted:
		return ExecutiveStatusCompleted
	default:
		return ExecutiveStatusOnboardedActive
	}
}

// stageTransition is one legal directed edge in the pipeline
type stageTransition struct {
	From ProjectStage
	To   ProjectStage
}

// roleTransitions maps each role to the transitions it may perform manually.
// Super admins bypass this table and may perform any forward transition.
var roleTransitions = map[UserRoleType][]stageTransition{
	RoleExecutive: {
		{StageLead, StageOnProgress},
		{StageOnProgress, StageQuotationSent},
		{StageQuotationSent, StageInReview},
		{StageInReview, StageOnboarded},
	},
	RoleSalesCoordinator: {
		{StageSales, StageAccounts},
	},
	RoleAccounts: {
		{StageAccounts, StageInstallation},
	},
	RoleInstallation: {
		{StageInstallation, StageCompleted},
	},
}

func init() {
	// Admins share the executive funnel edges plus every specialist edge
	var all []stageTransition
	for _, edges := range []UserRoleType{RoleExecutive, RoleSalesCoordinator, RoleAccounts, RoleInstallation} {
		all = append(all, roleTransitions[edges]...)
	}
	roleTransitions[RoleAdmin] = all
}

// CanTransition reports whether a role may manually move a project between
// the given stages. Forward-only: a super admin may take any forward edge,
// everyone else is limited to their owned edges.
func CanTransition(role UserRoleType, from, to ProjectStage) bool {
	if role == RoleSuperAdmin {
		fromIdx, toIdx := StageIndex(from), StageIndex(to)
		return fromIdx >= 0 && toIdx > fromIdx
	}
	for _, t := range roleTransitions[role] {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}

// OwnerRoleFor returns the role responsible for a project at the given stage.
// Completed projects keep their previous owner, signalled by ok=false.
func OwnerRoleFor(stage ProjectStage) (UserRoleType, bool) {
	switch stage {
	case StageLead, StageOnProgress, StageQuotationSent, StageInReview:
		return RoleExecutive, true
	case StageOnboarded, StageSales:
		return RoleSalesCoordinator, true
	case StageAccounts:
		return RoleAccounts, true
	case StageInstallation:
		return RoleInstallation, true
	default:
		return "", false
	}
}

// LocksOnEntry reports whether entering a stage locks the project against
// generic forward transitions.
func LocksOnEntry(stage ProjectStage) bool {
	return stage == StageSales || stage == StageCompleted
}

// AutoDismissAlertType returns the alert type that is auto-dismissed when a
// project leaves the given stage.
func AutoDismissAlertType(fromStage ProjectStage) (AlertType, bool) {
	switch fromStage {
	case StageInReview:
		return AlertStageInactivity, true
	case StageAccounts:
		return AlertPaymentDelay, true
	case StageInstallation:
		return AlertInstallationDelay, true
	default:
		return "", false
	}
}

// CanEditProject reports whether an actor may update a project's base fields.
// Completed projects are read-only, leads are editable by any executive, and
// onboarded projects only by their creator. Admins bypass the creator rule.
func CanEditProject(p *Project, actorName string, actorRole UserRoleType) bool {
	switch ExecutiveStatusFor(p.CurrentStage) {
	case ExecutiveStatusCompleted:
		return false
	case ExecutiveStatusNonOnboarded:
		return actorRole == RoleExecutive || IsAdminRole(actorRole)
	default:
		if IsAdminRole(actorRole) {
			return true
		}
		return actorRole == RoleExecutive && p.CreatedBy == actorName
	}
}

// CanDeleteProject reports whether an actor may delete a project. Only
// non-onboarded projects can be deleted, and only by their creator (admins
// bypass the creator rule).
func CanDeleteProject(p *Project, actorName string, actorRole UserRoleType) bool {
	if ExecutiveStatusFor(p.CurrentStage) != ExecutiveStatusNonOnboarded {
		return false
	}
	if IsAdminRole(actorRole) {
		return true
	}
	return p.CreatedBy == actorName
}

// IsAdminRole reports whether a role carries blanket access to all gated areas
func IsAdminRole(role UserRoleType) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// DefaultLandingPath returns the client landing path for a role. Clients and
// unrecognized roles land on the unauthorized page.
func DefaultLandingPath(role UserRoleType) string {
	switch role {
	case RoleSuperAdmin:
		return "/dashboard"
	case RoleAdmin:
		return "/admin"
	case RoleExecutive:
		return "/executive"
	case RoleSalesCoordinator:
		return "/sales"
	case RoleAccounts:
		return "/accounts"
	case RoleInstallation:
		return "/installation"
	case RoleEmployee:
		return "/operations"
	default:
		return "/unauthorized"
	}
}
