package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/incial/workhub-api/internal/auth"
	"github.com/incial/workhub-api/internal/domain"
)

// setupTestDB opens an in-memory sqlite database and migrates the pipeline
// models. Connections are capped at one so every query sees the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&domain.Project{},
		&domain.PaymentTransaction{},
		&domain.ProjectStageHistory{},
		&domain.ProjectActivityLog{},
		&domain.ProjectAlert{},
		&domain.User{},
		&domain.Otp{},
	)
	require.NoError(t, err)

	return db
}

func ctxWithUser(name string, role domain.UserRoleType) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: name,
		Email:       "test@example.com",
		Roles:       []domain.UserRoleType{role},
		IPAddress:   "127.0.0.1",
	})
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func timePtr(v time.Time) *time.Time {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

func strPtr(v string) *string {
	return &v
}
