package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/mapper"
	"github.com/incial/workhub-api/internal/repository"
	"github.com/incial/workhub-api/internal/service"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// List godoc
// @Summary List projects
// @Description Get paginated list of projects with optional filters
// @Tags Projects
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param stage query string false "Filter by stage" Enums(LEAD, ON_PROGRESS, QUOTATION_SENT, IN_REVIEW, ONBOARDED, SALES, ACCOUNTS, INSTALLATION, COMPLETED)
// @Param district query string false "Filter by district"
// @Param region query string false "Filter by region" Enums(North, South)
// @Param parentCompany query string false "Filter by parent company"
// @Param createdBy query string false "Filter by creating executive"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProjectDTO}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	filter := repository.ProjectFilter{}

	if s := r.URL.Query().Get("stage"); s != "" {
		stage := domain.ProjectStage(s)
		if !stage.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid stage filter")
			return
		}
		filter.Stage = &stage
	}
	filter.District = r.URL.Query().Get("district")
	filter.ParentCompany = r.URL.Query().Get("parentCompany")
	filter.CreatedBy = r.URL.Query().Get("createdBy")
	if reg := r.URL.Query().Get("region"); reg != "" {
		region, ok := domain.ParseRegion(reg)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "Invalid region filter")
			return
		}
		filter.Region = &region
	}

	projects, total, err := h.projectService.ListProjects(r.Context(), page, pageSize, filter)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}

	respondJSON(w, http.StatusOK, domain.NewPaginatedResponse(toProjectDTOs(projects), total, page, pageSize))
}

// MyWork godoc
// @Summary List projects for the caller's work queue
// @Description Get the projects in the stages owned by the caller's role
// @Tags Projects
// @Accept json
// @Produce json
// @Success 200 {array} domain.ProjectDTO
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/my-work [get]
func (h *ProjectHandler) MyWork(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.ListMyWork(r.Context())
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toProjectDTOs(projects))
}

// Search godoc
// @Summary Search projects
// @Description Search projects by school or contact person name
// @Tags Projects
// @Accept json
// @Produce json
// @Param q query string true "Search term"
// @Param limit query int false "Limit" default(20) maximum(100)
// @Success 200 {array} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/search [get]
func (h *ProjectHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondWithError(w, http.StatusBadRequest, "Search term is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	projects, err := h.projectService.SearchProjects(r.Context(), q, limit)
	if err != nil {
		h.logger.Error("failed to search projects", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to search projects")
		return
	}

	respondJSON(w, http.StatusOK, toProjectDTOs(projects))
}

// Create godoc
// @Summary Create project
// @Description Create a new lead. Requires executive or admin permissions.
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.CreateProjectRequest true "Project data"
// @Success 201 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Contact number already registered"
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.CreateProject(r.Context(), &req)
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/projects/"+project.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToProjectDTO(project))
}

// GetByID godoc
// @Summary Get project by ID
// @Description Get a project with full details including the payment ledger
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	project, err := h.projectService.GetProject(r.Context(), id)
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToProjectDTO(project))
}

// Update godoc
// @Summary Update project
// @Description Update base lead fields. Editability depends on the project's stage and the caller's role.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.UpdateProjectRequest true "Project data"
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Contact number already registered"
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	var req domain.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.UpdateProject(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update project", zap.Error(err), zap.String("project_id", id.String()))
		h.handleProjectError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToProjectDTO(project))
}

// Delete godoc
// @Summary Delete project
// @Description Delete a project. Only allowed before onboarding.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError "Project is past onboarding or caller is not the creator"
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	if err := h.projectService.DeleteProject(r.Context(), id); err != nil {
		h.logger.Error("failed to delete project", zap.Error(err), zap.String("project_id", id.String()))
		h.handleProjectError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Transition godoc
// @Summary Move a project to a new stage
// @Description Transition a project along the pipeline. The allowed edges depend on the caller's role.
// @Description Reaching ONBOARDED immediately hands the project to sales, and fully settled payments
// @Description and completed installations advance the project automatically.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.TransitionStageRequest true "Target stage"
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError "Transition not allowed from the current stage"
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 423 {object} domain.APIError "Project is locked"
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/transition [post]
func (h *ProjectHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	var req domain.TransitionStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	if !req.ToStage.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid target stage")
		return
	}

	project, err := h.projectService.TransitionStage(r.Context(), id, req.ToStage, req.Remarks)
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToProjectDTO(project))
}

// UpdateSalesData godoc
// @Summary Update sales data
// @Description Update quotation and invoice fields. Only allowed while the project is in SALES.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.UpdateSalesDataRequest true "Sales data"
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError "Project is not in the SALES stage"
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/sales [put]
func (h *ProjectHandler) UpdateSalesData(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	var req domain.UpdateSalesDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.UpdateSalesData(r.Context(), id, &req)
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToProjectDTO(project))
}

// UpdateAccountsData godoc
// @Summary Record a payment
// @Description Append a payment to the project's ledger. amountReceived is the amount of this
// @Description payment, not the new total. A fully settled invoice moves the project to INSTALLATION.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.UpdateAccountsDataRequest true "Payment data"
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError "Not in ACCOUNTS, no invoice set, or payment exceeds the pending amount"
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/accounts [put]
func (h *ProjectHandler) UpdateAccountsData(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	var req domain.UpdateAccountsDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.UpdateAccountsData(r.Context(), id, &req)
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToProjectDTO(project))
}

// UpdateInstallationData godoc
// @Summary Update installation data
// @Description Update installation progress. Marking the work done moves the project to COMPLETED.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.UpdateInstallationDataRequest true "Installation data"
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError "Project is not in the INSTALLATION stage"
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/installation [put]
func (h *ProjectHandler) UpdateInstallationData(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	var req domain.UpdateInstallationDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.UpdateInstallationData(r.Context(), id, &req)
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToProjectDTO(project))
}

// GetStageHistory godoc
// @Summary Get stage history
// @Description Get the project's stage transitions, newest first
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.StageHistoryDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/history [get]
func (h *ProjectHandler) GetStageHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	history, err := h.projectService.GetStageHistory(r.Context(), id)
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	dtos := make([]domain.StageHistoryDTO, 0, len(history))
	for i := range history {
		dtos = append(dtos, mapper.ToStageHistoryDTO(&history[i]))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// GetActivity godoc
// @Summary Get activity log
// @Description Get the project's audit trail, newest first
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(50)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ActivityLogDTO}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/activity [get]
func (h *ProjectHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}

	logs, total, err := h.projectService.GetActivity(r.Context(), id, page, pageSize)
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	dtos := make([]domain.ActivityLogDTO, 0, len(logs))
	for i := range logs {
		dtos = append(dtos, mapper.ToActivityLogDTO(&logs[i]))
	}
	respondJSON(w, http.StatusOK, domain.NewPaginatedResponse(dtos, total, page, pageSize))
}

// GetPayments godoc
// @Summary Get payment ledger
// @Description Get the project's payment transactions, oldest first
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.PaymentTransactionDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/payments [get]
func (h *ProjectHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	payments, err := h.projectService.GetPayments(r.Context(), id)
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	dtos := make([]domain.PaymentTransactionDTO, 0, len(payments))
	for i := range payments {
		dtos = append(dtos, mapper.ToPaymentTransactionDTO(&payments[i]))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func toProjectDTOs(projects []domain.Project) []domain.ProjectDTO {
	dtos := make([]domain.ProjectDTO, 0, len(projects))
	for i := range projects {
		dtos = append(dtos, mapper.ToProjectDTO(&projects[i]))
	}
	return dtos
}

// handleProjectError maps service errors to HTTP status codes
func (h *ProjectHandler) handleProjectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "You do not have permission to perform this action")
	case errors.Is(err, service.ErrProjectLocked):
		respondWithError(w, http.StatusLocked, "Project is locked")
	case errors.Is(err, service.ErrInvalidTransition):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrWrongStage):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrOverpayment):
		respondWithError(w, http.StatusBadRequest, "Payment exceeds the pending amount")
	case errors.Is(err, service.ErrInvoiceNotSet):
		respondWithError(w, http.StatusBadRequest, "Invoice amount must be set before recording payments")
	case errors.Is(err, service.ErrDuplicateContact):
		respondWithError(w, http.StatusConflict, "A project with this contact number already exists")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		h.logger.Error("project handler error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
