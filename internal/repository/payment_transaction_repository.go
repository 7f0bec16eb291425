package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/incial/workhub-api/internal/domain"
	"gorm.io/gorm"
)

// PaymentTransactionRepository manages the append-only payment ledger
type PaymentTransactionRepository struct {
	db *gorm.DB
}

func NewPaymentTransactionRepository(db *gorm.DB) *PaymentTransactionRepository {
	return &PaymentTransactionRepository{db: db}
}

func (r *PaymentTransactionRepository) Create(ctx context.Context, txn *domain.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// ListByProject returns the ledger in chronological order
func (r *PaymentTransactionRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.PaymentTransaction, error) {
	var txns []domain.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&txns).Error
	return txns, err
}

// SumByProject returns the total amount recorded against a project
func (r *PaymentTransactionRepository) SumByProject(ctx context.Context, projectID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&domain.PaymentTransaction{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(SUM(amount_paid), 0)").
		Scan(&total).Error
	return total, err
}
