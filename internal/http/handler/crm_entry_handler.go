package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/mapper"
	"github.com/incial/workhub-api/internal/service"
	"go.uber.org/zap"
)

type CrmEntryHandler struct {
	crmService *service.CrmEntryService
	logger     *zap.Logger
}

func NewCrmEntryHandler(crmService *service.CrmEntryService, logger *zap.Logger) *CrmEntryHandler {
	return &CrmEntryHandler{
		crmService: crmService,
		logger:     logger,
	}
}

// List godoc
// @Summary List imported CRM contacts
// @Description Get paginated contacts carried over from the previous CRM
// @Tags CRM
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(25)
// @Param search query string false "Search by company or contact name"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.CrmEntryDTO}
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /crm-entries [get]
func (h *CrmEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 25
	}

	entries, total, err := h.crmService.ListEntries(r.Context(), page, pageSize, r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("failed to list crm entries", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list CRM entries")
		return
	}

	dtos := make([]domain.CrmEntryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, mapper.ToCrmEntryDTO(&entries[i]))
	}
	respondJSON(w, http.StatusOK, domain.NewPaginatedResponse(dtos, total, page, pageSize))
}

// GetByID godoc
// @Summary Get an imported CRM contact
// @Tags CRM
// @Accept json
// @Produce json
// @Param id path string true "Entry ID" format(uuid)
// @Success 200 {object} domain.CrmEntryDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /crm-entries/{id} [get]
func (h *CrmEntryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid entry ID: must be a valid UUID")
		return
	}

	entry, err := h.crmService.GetEntry(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "CRM entry not found")
			return
		}
		h.logger.Error("failed to get crm entry", zap.Error(err), zap.String("entry_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get CRM entry")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToCrmEntryDTO(entry))
}

// TriggerImport godoc
// @Summary Trigger a CRM import
// @Description Run a legacy CRM import immediately instead of waiting for the schedule. Admin only.
// @Tags CRM
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 503 {object} domain.APIError "Legacy CRM source not configured"
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /crm-entries/import [post]
func (h *CrmEntryHandler) TriggerImport(w http.ResponseWriter, r *http.Request) {
	if !h.crmService.ImportEnabled() {
		respondWithError(w, http.StatusServiceUnavailable, "Legacy CRM source is not configured")
		return
	}

	imported, err := h.crmService.RunImport(r.Context())
	if err != nil {
		h.logger.Error("manual crm import failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "CRM import failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"imported": imported,
		"syncedAt": h.crmService.LastSync().UTC().Format(time.RFC3339),
	})
}
