package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/incial/workhub-api/internal/auth"
	"github.com/incial/workhub-api/internal/config"
	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/repository"
)

// OtpSender delivers a login code to a user
type OtpSender interface {
	Send(ctx context.Context, email, code string) error
}

// LogOtpSender writes codes to the application log instead of sending mail.
// Used in development and as the fallback when no mail provider is wired.
type LogOtpSender struct {
	Logger *zap.Logger
}

func (s *LogOtpSender) Send(_ context.Context, email, code string) error {
	s.Logger.Info("otp issued",
		zap.String("email", email),
		zap.String("code", code),
	)
	return nil
}

// AuthService owns the OTP login flow and user administration
type AuthService struct {
	userRepo *repository.UserRepository
	otpRepo  *repository.OtpRepository
	tokens   *auth.TokenManager
	sender   OtpSender
	otpTTL   time.Duration
	logger   *zap.Logger
}

func NewAuthService(
	userRepo *repository.UserRepository,
	otpRepo *repository.OtpRepository,
	tokens *auth.TokenManager,
	sender OtpSender,
	cfg *config.AuthConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		otpRepo:  otpRepo,
		tokens:   tokens,
		sender:   sender,
		otpTTL:   cfg.OTPTTLDuration(),
		logger:   logger,
	}
}

// RequestOtp issues a fresh login code for a known, active user. Any
// outstanding codes for the email are invalidated first.
func (s *AuthService) RequestOtp(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !user.IsActive {
		return ErrUserInactive
	}

	if err := s.otpRepo.InvalidateForEmail(ctx, email); err != nil {
		return err
	}

	code, err := generateOtpCode()
	if err != nil {
		return err
	}

	otp := &domain.Otp{
		Email:     user.Email,
		Code:      code,
		ExpiresAt: time.Now().Add(s.otpTTL),
	}
	if err := s.otpRepo.Create(ctx, otp); err != nil {
		return err
	}

	return s.sender.Send(ctx, user.Email, code)
}

// VerifyOtp exchanges a valid code for a session token
func (s *AuthService) VerifyOtp(ctx context.Context, email, code string) (*domain.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	otp, err := s.otpRepo.FindValid(ctx, email, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidOtp
		}
		return nil, err
	}
	if err := s.otpRepo.MarkVerified(ctx, otp); err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)),
	)

	userDTO := userToDTO(user)
	return &domain.LoginResponse{
		StatusCode:  http.StatusOK,
		Token:       token,
		Role:        user.Role,
		Message:     "Login successful",
		LandingPath: domain.DefaultLandingPath(user.Role),
		User:        &userDTO,
	}, nil
}

// CreateUser registers a new staff account
func (s *AuthService) CreateUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, req.Role)
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: email %s", ErrConflict, req.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser changes a staff account's name, role, or active flag
func (s *AuthService) UpdateUser(ctx context.Context, id uuid.UUID, req *domain.UpdateUserRequest) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRole, *req.Role)
		}
		// Admins cannot change their own role
		if actor, ok := auth.FromContext(ctx); ok && actor.UserID == id && *req.Role != user.Role {
			return nil, ErrPermissionDenied
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a staff account
func (s *AuthService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

// ListUsers returns a page of staff accounts
func (s *AuthService) ListUsers(ctx context.Context, page, pageSize int, role *domain.UserRoleType) ([]domain.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}
	return s.userRepo.List(ctx, page, pageSize, role)
}

// GetUser returns one staff account
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// LandingFor resolves the landing path for the authenticated caller
func (s *AuthService) LandingFor(ctx context.Context) (*domain.LandingResponse, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	role := userCtx.PrimaryRole()
	return &domain.LandingResponse{
		Role: role,
		Path: domain.DefaultLandingPath(role),
	}, nil
}

func generateOtpCode() (string, error) {
	const digits = "0123456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	for i := range buf {
		buf[i] = digits[int(buf[i])%len(digits)]
	}
	return string(buf), nil
}

func userToDTO(u *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}
