package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/mapper"
	"github.com/incial/workhub-api/internal/repository"
	"github.com/incial/workhub-api/internal/service"
	"go.uber.org/zap"
)

type AlertHandler struct {
	alertService *service.AlertService
	logger       *zap.Logger
}

func NewAlertHandler(alertService *service.AlertService, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
		logger:       logger,
	}
}

// List godoc
// @Summary List active alerts
// @Description Get active alerts ordered by severity, with project context attached
// @Tags Alerts
// @Accept json
// @Produce json
// @Param severity query string false "Filter by severity" Enums(INFO, WARNING, CRITICAL)
// @Param alertType query string false "Filter by alert type" Enums(STAGE_INACTIVITY, PAYMENT_DELAY, INSTALLATION_DELAY)
// @Param projectId query string false "Filter by project ID" format(uuid)
// @Success 200 {array} domain.AlertDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /alerts [get]
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.AlertFilter{}

	if s := r.URL.Query().Get("severity"); s != "" {
		severity := domain.AlertSeverity(s)
		filter.Severity = &severity
	}
	if t := r.URL.Query().Get("alertType"); t != "" {
		alertType := domain.AlertType(t)
		filter.AlertType = &alertType
	}
	if pid := r.URL.Query().Get("projectId"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
			return
		}
		filter.ProjectID = &id
	}

	alerts, projects, err := h.alertService.ListActiveAlerts(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list alerts", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}

	dtos := make([]domain.AlertDTO, 0, len(alerts))
	for i := range alerts {
		dtos = append(dtos, mapper.ToAlertDTO(&alerts[i], projects[alerts[i].ProjectID]))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// Dismiss godoc
// @Summary Dismiss an alert
// @Description Deactivate an alert. Dismissing an already dismissed alert succeeds without effect.
// @Tags Alerts
// @Accept json
// @Produce json
// @Param id path string true "Alert ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /alerts/{id}/dismiss [post]
func (h *AlertHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid alert ID: must be a valid UUID")
		return
	}

	if err := h.alertService.DismissAlert(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Alert not found")
		case errors.Is(err, service.ErrUnauthorized):
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		default:
			h.logger.Error("failed to dismiss alert", zap.Error(err), zap.String("alert_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to dismiss alert")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Generate godoc
// @Summary Run the alert scan now
// @Description Scan all active projects against the overdue thresholds without waiting for the hourly job. Admin only.
// @Tags Alerts
// @Accept json
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /alerts/generate [post]
func (h *AlertHandler) Generate(w http.ResponseWriter, r *http.Request) {
	generated, err := h.alertService.GenerateAlerts(r.Context())
	if err != nil {
		h.logger.Error("failed to generate alerts", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to generate alerts")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"generated": generated})
}

// Summary godoc
// @Summary Get alert summary
// @Description Get active alert counts by severity for the dashboard badge
// @Tags Alerts
// @Accept json
// @Produce json
// @Success 200 {object} domain.AlertSummaryDTO
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /alerts/summary [get]
func (h *AlertHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.alertService.GetSummary(r.Context())
	if err != nil {
		h.logger.Error("failed to get alert summary", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get alert summary")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
