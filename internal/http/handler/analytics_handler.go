package handler

import (
	"net/http"

	"github.com/incial/workhub-api/internal/service"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	logger           *zap.Logger
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// Dashboard godoc
// @Summary Get analytics dashboard
// @Description Get pipeline counts, financial summary, stage distribution and monthly trends.
// @Description Restricted to super admins.
// @Tags Analytics
// @Accept json
// @Produce json
// @Success 200 {object} domain.AnalyticsDTO
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.analyticsService.GetDashboard(r.Context())
	if err != nil {
		h.logger.Error("failed to build analytics dashboard", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to build analytics dashboard")
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}
