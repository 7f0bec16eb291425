package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/incial/workhub-api/internal/domain"
	"gorm.io/gorm"
)

// ProjectFilter narrows project listings
type ProjectFilter struct {
	Stage         *domain.ProjectStage
	Stages        []domain.ProjectStage
	OwnerRole     *domain.UserRoleType
	CreatedBy     string
	District      string
	Region        *domain.Region
	ParentCompany string
}

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Project{}, "id = ?", id).Error
}

func (r *ProjectRepository) List(ctx context.Context, page, pageSize int, filter ProjectFilter) ([]domain.Project, int64, error) {
	var projects []domain.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Project{})

	if filter.Stage != nil {
		query = query.Where("current_stage = ?", *filter.Stage)
	}
	if len(filter.Stages) > 0 {
		query = query.Where("current_stage IN ?", filter.Stages)
	}
	if filter.OwnerRole != nil {
		query = query.Where("current_owner_role = ?", *filter.OwnerRole)
	}
	if filter.CreatedBy != "" {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.District != "" {
		query = query.Where("district = ?", filter.District)
	}
	if filter.Region != nil {
		query = query.Where("region = ?", *filter.Region)
	}
	if filter.ParentCompany != "" {
		query = query.Where("parent_company = ?", filter.ParentCompany)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&projects).Error

	return projects, total, err
}

// ListAll returns every project; used by the analytics and alert scans
func (r *ProjectRepository) ListAll(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

// ListByStages returns all projects currently in any of the given stages
func (r *ProjectRepository) ListByStages(ctx context.Context, stages ...domain.ProjectStage) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).
		Where("current_stage IN ?", stages).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// FindByContactNumber looks up a project by its unique contact number
func (r *ProjectRepository) FindByContactNumber(ctx context.Context, contactNumber string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).First(&project, "contact_number = ?", contactNumber).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Search matches school or contact person, case-insensitive
func (r *ProjectRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Project, error) {
	var projects []domain.Project
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(school) LIKE ? OR LOWER(contact_person) LIKE ?", searchPattern, searchPattern).
		Limit(limit).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) CountByStage(ctx context.Context, stage domain.ProjectStage) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("current_stage = ?", stage).
		Count(&count).Error
	return count, err
}

func (r *ProjectRepository) CountTotal(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Project{}).Count(&count).Error
	return count, err
}
