package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/service"
	"github.com/incial/workhub-api/internal/storage"
	"go.uber.org/zap"
)

// UploadHandler stores payment proof documents and links them to projects
type UploadHandler struct {
	projectService *service.ProjectService
	store          storage.Storage
	maxUploadMB    int64
	logger         *zap.Logger
}

func NewUploadHandler(projectService *service.ProjectService, store storage.Storage, maxUploadMB int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		projectService: projectService,
		store:          store,
		maxUploadMB:    maxUploadMB,
		logger:         logger,
	}
}

// UploadPaymentProof godoc
// @Summary Upload a payment proof
// @Description Upload a payment proof document and attach it to the project
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param file formData file true "Proof document"
// @Success 201 {object} domain.UploadResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 413 {object} domain.APIError "File too large"
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/payment-proof [post]
func (h *UploadHandler) UploadPaymentProof(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	storagePath, size, err := h.store.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.logger.Error("failed to store payment proof", zap.Error(err), zap.String("project_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to upload payment proof")
		return
	}

	if _, err := h.projectService.AttachPaymentProof(r.Context(), id, storagePath); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Project not found")
		case errors.Is(err, service.ErrUnauthorized):
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		default:
			h.logger.Error("failed to attach payment proof", zap.Error(err), zap.String("project_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to attach payment proof")
		}
		return
	}

	respondJSON(w, http.StatusCreated, domain.UploadResponse{
		URL:  storagePath,
		Size: size,
		Name: header.Filename,
	})
}

// DownloadPaymentProof godoc
// @Summary Download a payment proof
// @Description Stream the payment proof attached to the project
// @Tags Projects
// @Produce application/octet-stream
// @Param id path string true "Project ID" format(uuid)
// @Success 200
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/payment-proof [get]
func (h *UploadHandler) DownloadPaymentProof(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	project, err := h.projectService.GetProject(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Project not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load project")
		return
	}

	if project.PaymentProofURL == "" {
		respondWithError(w, http.StatusNotFound, "No payment proof attached")
		return
	}

	reader, err := h.store.Download(r.Context(), project.PaymentProofURL)
	if err != nil {
		h.logger.Error("failed to download payment proof", zap.Error(err), zap.String("project_id", id.String()))
		respondWithError(w, http.StatusNotFound, "Payment proof not found")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Disposition", "attachment")
	w.Header().Set("Content-Type", "application/octet-stream")

	_, _ = io.Copy(w, reader)
}
