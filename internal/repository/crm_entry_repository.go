package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/incial/workhub-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CrmEntryRepository stores rows imported from the previous CRM
type CrmEntryRepository struct {
	db *gorm.DB
}

func NewCrmEntryRepository(db *gorm.DB) *CrmEntryRepository {
	return &CrmEntryRepository{db: db}
}

func (r *CrmEntryRepository) Create(ctx context.Context, entry *domain.CrmEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Upsert inserts or refreshes an entry keyed by its legacy reference ID
func (r *CrmEntryRepository) Upsert(ctx context.Context, entry *domain.CrmEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "reference_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"company", "phone", "email", "contact_name", "address",
				"company_image_url", "assigned_to", "last_contact", "next_follow_up",
				"deal_value", "notes", "status", "tags", "work", "lead_sources",
				"drive_link", "socials", "last_updated_by", "imported_at",
			}),
		}).
		Create(entry).Error
}

func (r *CrmEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CrmEntry, error) {
	var entry domain.CrmEntry
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *CrmEntryRepository) List(ctx context.Context, page, pageSize int, search string) ([]domain.CrmEntry, int64, error) {
	var entries []domain.CrmEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.CrmEntry{})

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(company) LIKE ? OR LOWER(contact_name) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("company ASC").Find(&entries).Error

	return entries, total, err
}

func (r *CrmEntryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CrmEntry{}).Count(&count).Error
	return count, err
}
