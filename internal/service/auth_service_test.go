package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/incial/workhub-api/internal/auth"
	"github.com/incial/workhub-api/internal/config"
	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/repository"
	"github.com/incial/workhub-api/internal/service"
)

// captureSender records issued codes instead of delivering them
type captureSender struct {
	email string
	code  string
}

func (s *captureSender) Send(_ context.Context, email, code string) error {
	s.email = email
	s.code = code
	return nil
}

func newAuthService(db *gorm.DB, sender service.OtpSender) *service.AuthService {
	cfg := &config.AuthConfig{
		JWTSecret:     "test-signing-secret",
		Issuer:        "workhub-api",
		TokenTTLHours: 1,
		OTPTTLMinutes: 10,
	}
	return service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewOtpRepository(db),
		auth.NewTokenManager(cfg),
		sender,
		cfg,
		testLogger(),
	)
}

func seedUser(t *testing.T, db *gorm.DB, email string, role domain.UserRoleType, active bool) *domain.User {
	user := &domain.User{
		Name:     "Test User",
		Email:    email,
		Role:     role,
		IsActive: active,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestAuthService_RequestOtp_UnknownUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db, &captureSender{})

	err := svc.RequestOtp(context.Background(), "nobody@incial.io")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestAuthService_RequestOtp_InactiveUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db, &captureSender{})
	seedUser(t, db, "gone@incial.io", domain.RoleExecutive, false)

	err := svc.RequestOtp(context.Background(), "gone@incial.io")
	assert.ErrorIs(t, err, service.ErrUserInactive)
}

func TestAuthService_OtpLoginFlow(t *testing.T) {
	db := setupTestDB(t)
	sender := &captureSender{}
	svc := newAuthService(db, sender)
	seedUser(t, db, "alice@incial.io", domain.RoleExecutive, true)

	require.NoError(t, svc.RequestOtp(context.Background(), "alice@incial.io"))
	require.Len(t, sender.code, 6)
	assert.Equal(t, "alice@incial.io", sender.email)

	resp, err := svc.VerifyOtp(context.Background(), "alice@incial.io", sender.code)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, domain.RoleExecutive, resp.Role)
	assert.Equal(t, "/executive", resp.LandingPath)
	require.NotNil(t, resp.User)
	assert.Equal(t, "alice@incial.io", resp.User.Email)

	// The issued token validates against the same manager
	cfg := &config.AuthConfig{JWTSecret: "test-signing-secret", Issuer: "workhub-api", TokenTTLHours: 1}
	userCtx, err := auth.NewTokenManager(cfg).ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@incial.io", userCtx.Email)
	assert.Equal(t, domain.RoleExecutive, userCtx.PrimaryRole())
}

func TestAuthService_VerifyOtp_WrongCode(t *testing.T) {
	db := setupTestDB(t)
	sender := &captureSender{}
	svc := newAuthService(db, sender)
	seedUser(t, db, "alice@incial.io", domain.RoleExecutive, true)

	require.NoError(t, svc.RequestOtp(context.Background(), "alice@incial.io"))

	_, err := svc.VerifyOtp(context.Background(), "alice@incial.io", "000000")
	if sender.code == "000000" {
		t.Skip("generated code collided with the guess")
	}
	assert.ErrorIs(t, err, service.ErrInvalidOtp)
}

func TestAuthService_VerifyOtp_CannotReplay(t *testing.T) {
	db := setupTestDB(t)
	sender := &captureSender{}
	svc := newAuthService(db, sender)
	seedUser(t, db, "alice@incial.io", domain.RoleExecutive, true)

	require.NoError(t, svc.RequestOtp(context.Background(), "alice@incial.io"))

	_, err := svc.VerifyOtp(context.Background(), "alice@incial.io", sender.code)
	require.NoError(t, err)

	_, err = svc.VerifyOtp(context.Background(), "alice@incial.io", sender.code)
	assert.ErrorIs(t, err, service.ErrInvalidOtp)
}

func TestAuthService_RequestOtp_InvalidatesPreviousCodes(t *testing.T) {
	db := setupTestDB(t)
	sender := &captureSender{}
	svc := newAuthService(db, sender)
	seedUser(t, db, "alice@incial.io", domain.RoleExecutive, true)

	require.NoError(t, svc.RequestOtp(context.Background(), "alice@incial.io"))
	firstCode := sender.code

	require.NoError(t, svc.RequestOtp(context.Background(), "alice@incial.io"))
	if firstCode == sender.code {
		t.Skip("consecutive codes collided")
	}

	_, err := svc.VerifyOtp(context.Background(), "alice@incial.io", firstCode)
	assert.ErrorIs(t, err, service.ErrInvalidOtp)

	_, err = svc.VerifyOtp(context.Background(), "alice@incial.io", sender.code)
	assert.NoError(t, err)
}

func TestAuthService_VerifyOtp_ExpiredCode(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db, &captureSender{})
	seedUser(t, db, "alice@incial.io", domain.RoleExecutive, true)

	require.NoError(t, db.Create(&domain.Otp{
		Email:     "alice@incial.io",
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Minute),
	}).Error)

	_, err := svc.VerifyOtp(context.Background(), "alice@incial.io", "123456")
	assert.ErrorIs(t, err, service.ErrInvalidOtp)
}

func TestAuthService_CreateUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db, &captureSender{})

	user, err := svc.CreateUser(context.Background(), &domain.CreateUserRequest{
		Name:  "Bob",
		Email: "bob@incial.io",
		Role:  domain.RoleSalesCoordinator,
	})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.Equal(t, domain.RoleSalesCoordinator, user.Role)

	// Duplicate email is a conflict
	_, err = svc.CreateUser(context.Background(), &domain.CreateUserRequest{
		Name:  "Bobby",
		Email: "bob@incial.io",
		Role:  domain.RoleAccounts,
	})
	assert.ErrorIs(t, err, service.ErrConflict)

	// Unknown role is rejected
	_, err = svc.CreateUser(context.Background(), &domain.CreateUserRequest{
		Name:  "Mallory",
		Email: "mallory@incial.io",
		Role:  "ROLE_HACKER",
	})
	assert.ErrorIs(t, err, service.ErrInvalidRole)
}

func TestAuthService_UpdateUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db, &captureSender{})
	user := seedUser(t, db, "bob@incial.io", domain.RoleSalesCoordinator, true)

	inactive := false
	role := domain.RoleAccounts
	updated, err := svc.UpdateUser(context.Background(), user.ID, &domain.UpdateUserRequest{
		Role:     &role,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAccounts, updated.Role)
	assert.False(t, updated.IsActive)

	_, err = svc.UpdateUser(context.Background(), uuid.New(), &domain.UpdateUserRequest{Role: &role})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestAuthService_UpdateUser_CannotChangeOwnRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db, &captureSender{})
	admin := seedUser(t, db, "admin@incial.io", domain.RoleAdmin, true)

	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      admin.ID,
		DisplayName: admin.Name,
		Email:       admin.Email,
		Roles:       []domain.UserRoleType{domain.RoleAdmin},
	})

	role := domain.RoleEmployee
	_, err := svc.UpdateUser(ctx, admin.ID, &domain.UpdateUserRequest{Role: &role})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	// Renaming yourself is still allowed
	name := "Admin Renamed"
	updated, err := svc.UpdateUser(ctx, admin.ID, &domain.UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Admin Renamed", updated.Name)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
}

func TestAuthService_DeleteUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db, &captureSender{})
	user := seedUser(t, db, "bob@incial.io", domain.RoleSalesCoordinator, true)

	require.NoError(t, svc.DeleteUser(context.Background(), user.ID))
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), user.ID), service.ErrUserNotFound)
}

func TestAuthService_LandingFor(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db, &captureSender{})

	landing, err := svc.LandingFor(ctxWithUser("Carol", domain.RoleAccounts))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAccounts, landing.Role)
	assert.Equal(t, "/accounts", landing.Path)

	_, err = svc.LandingFor(context.Background())
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}
