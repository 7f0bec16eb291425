package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/incial/workhub-api/internal/auth"
	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/mapper"
	"github.com/incial/workhub-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RequestOtp godoc
// @Summary Request a login code
// @Description Send a one-time login code to a registered staff email
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.OtpRequest true "Email"
// @Success 200 {object} map[string]string
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError "Account is deactivated"
// @Failure 404 {object} domain.APIError "No account with this email"
// @Failure 500 {object} domain.APIError
// @Router /auth/otp/request [post]
func (h *AuthHandler) RequestOtp(w http.ResponseWriter, r *http.Request) {
	var req domain.OtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.authService.RequestOtp(r.Context(), req.Email); err != nil {
		h.handleAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "OTP sent"})
}

// VerifyOtp godoc
// @Summary Verify a login code
// @Description Exchange a delivered one-time code for a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.OtpVerifyRequest true "Email and code"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError "Invalid or expired code"
// @Failure 500 {object} domain.APIError
// @Router /auth/otp/verify [post]
func (h *AuthHandler) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	var req domain.OtpVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.authService.VerifyOtp(r.Context(), req.Email, req.Otp)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Landing godoc
// @Summary Get the caller's landing path
// @Description Resolve where the caller's role lands after login
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} domain.LandingResponse
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/landing [get]
func (h *AuthHandler) Landing(w http.ResponseWriter, r *http.Request) {
	landing, err := h.authService.LandingFor(r.Context())
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, landing)
}

// Me godoc
// @Summary Get the caller's account
// @Description Echo the authenticated caller's account details
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} domain.UserDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.GetUser(r.Context(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrNotFound) {
			// Service accounts authenticated by API key have no user row
			respondJSON(w, http.StatusOK, domain.UserDTO{
				ID:       userCtx.UserID,
				Name:     userCtx.DisplayName,
				Email:    userCtx.Email,
				Role:     userCtx.PrimaryRole(),
				IsActive: true,
			})
			return
		}
		h.handleAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToUserDTO(user))
}

// ListUsers godoc
// @Summary List staff accounts
// @Description Get paginated list of staff accounts. Admin only.
// @Tags Users
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param role query string false "Filter by role"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.UserDTO}
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /users [get]
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
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

	var role *domain.UserRoleType
	if s := r.URL.Query().Get("role"); s != "" {
		rt := domain.UserRoleType(s)
		if !rt.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid role filter")
			return
		}
		role = &rt
	}

	users, total, err := h.authService.ListUsers(r.Context(), page, pageSize, role)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	dtos := make([]domain.UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, mapper.ToUserDTO(&users[i]))
	}
	respondJSON(w, http.StatusOK, domain.NewPaginatedResponse(dtos, total, page, pageSize))
}

// GetUser godoc
// @Summary Get a staff account
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Success 200 {object} domain.UserDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /users/{id} [get]
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID: must be a valid UUID")
		return
	}

	user, err := h.authService.GetUser(r.Context(), id)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToUserDTO(user))
}

// CreateUser godoc
// @Summary Create a staff account
// @Description Register a new staff account with a role. Admin only.
// @Tags Users
// @Accept json
// @Produce json
// @Param request body domain.CreateUserRequest true "User data"
// @Success 201 {object} domain.UserDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Email already registered"
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /users [post]
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.authService.CreateUser(r.Context(), &req)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToUserDTO(user))
}

// UpdateUser godoc
// @Summary Update a staff account
// @Description Change a staff account's name, role or active flag. Admin only.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Param request body domain.UpdateUserRequest true "User data"
// @Success 200 {object} domain.UserDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /users/{id} [put]
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID: must be a valid UUID")
		return
	}

	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.authService.UpdateUser(r.Context(), id, &req)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToUserDTO(user))
}

// DeleteUser godoc
// @Summary Delete a staff account
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /users/{id} [delete]
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID: must be a valid UUID")
		return
	}

	if err := h.authService.DeleteUser(r.Context(), id); err != nil {
		h.handleAuthError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleAuthError maps service errors to HTTP status codes
func (h *AuthHandler) handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrUserInactive):
		respondWithError(w, http.StatusForbidden, "Account is deactivated")
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "Permission denied")
	case errors.Is(err, service.ErrInvalidOtp):
		respondWithError(w, http.StatusUnauthorized, "Invalid or expired OTP")
	case errors.Is(err, service.ErrInvalidRole):
		respondWithError(w, http.StatusBadRequest, "Invalid role")
	case errors.Is(err, service.ErrConflict):
		respondWithError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		h.logger.Error("auth handler error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
