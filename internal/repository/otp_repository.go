package repository

import (
	"context"
	"strings"
	"time"

	"github.com/incial/workhub-api/internal/domain"
	"gorm.io/gorm"
)

// OtpRepository stores short-lived email login codes
type OtpRepository struct {
	db *gorm.DB
}

func NewOtpRepository(db *gorm.DB) *OtpRepository {
	return &OtpRepository{db: db}
}

func (r *OtpRepository) Create(ctx context.Context, otp *domain.Otp) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

// FindValid returns the newest unverified, unexpired code for an email
func (r *OtpRepository) FindValid(ctx context.Context, email, code string) (*domain.Otp, error) {
	var otp domain.Otp
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ? AND otp_code = ? AND verified = ? AND expires_at > ?",
			strings.ToLower(email), code, false, time.Now()).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// MarkVerified consumes a code so it cannot be replayed
func (r *OtpRepository) MarkVerified(ctx context.Context, otp *domain.Otp) error {
	otp.Verified = true
	return r.db.WithContext(ctx).Save(otp).Error
}

// InvalidateForEmail expires all outstanding codes before issuing a new one
func (r *OtpRepository) InvalidateForEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Otp{}).
		Where("LOWER(email) = ? AND verified = ?", strings.ToLower(email), false).
		Update("verified", true).Error
}

// DeleteExpired removes stale codes; run periodically
func (r *OtpRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&domain.Otp{})
	return result.RowsAffected, result.Error
}
