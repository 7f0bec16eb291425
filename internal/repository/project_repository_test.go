package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.Project{},
		&domain.PaymentTransaction{},
		&domain.ProjectStageHistory{},
		&domain.ProjectActivityLog{},
		&domain.ProjectAlert{},
	))
	return db
}

func createProject(t *testing.T, db *gorm.DB, mutate func(*domain.Project)) *domain.Project {
	p := &domain.Project{
		School:             "Test School",
		ContactNumber:      uuid.New().String()[:18],
		CreatedBy:          "Alice",
		CurrentStage:       domain.StageLead,
		CurrentOwnerRole:   domain.RoleExecutive,
		PaymentStatus:      domain.PaymentStatusPending,
		InstallationStatus: domain.InstallationStatusPending,
	}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestProjectRepository_List_Filters(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewProjectRepository(db)

	north := domain.RegionNorth
	createProject(t, db, func(p *domain.Project) {
		p.District = "Ernakulam"
		p.Region = &north
	})
	createProject(t, db, func(p *domain.Project) {
		p.District = "Kozhikode"
		p.CurrentStage = domain.StageSales
		p.CurrentOwnerRole = domain.RoleSalesCoordinator
	})
	createProject(t, db, func(p *domain.Project) {
		p.District = "Ernakulam"
		p.CreatedBy = "Bob"
	})

	stage := domain.StageLead
	projects, total, err := repo.List(context.Background(), 1, 20, repository.ProjectFilter{Stage: &stage})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, projects, 2)

	projects, total, err = repo.List(context.Background(), 1, 20, repository.ProjectFilter{District: "Ernakulam", CreatedBy: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, projects, 1)
	assert.Equal(t, "Bob", projects[0].CreatedBy)

	projects, total, err = repo.List(context.Background(), 1, 20, repository.ProjectFilter{Region: &north})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, projects, 1)
}

func TestProjectRepository_List_Pagination(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewProjectRepository(db)

	for i := 0; i < 5; i++ {
		createProject(t, db, nil)
	}

	projects, total, err := repo.List(context.Background(), 2, 2, repository.ProjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, projects, 2)

	projects, _, err = repo.List(context.Background(), 3, 2, repository.ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestProjectRepository_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewProjectRepository(db)

	createProject(t, db, func(p *domain.Project) {
		p.School = "St. Mary's School"
		p.ContactPerson = "John Thomas"
	})
	createProject(t, db, func(p *domain.Project) {
		p.School = "Government HSS"
		p.ContactPerson = "Mary Jacob"
	})

	// School match, case-insensitive
	results, err := repo.Search(context.Background(), "mary's", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "St. Mary's School", results[0].School)

	// Contact person match
	results, err = repo.Search(context.Background(), "jacob", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Government HSS", results[0].School)

	results, err = repo.Search(context.Background(), "nothing here", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProjectRepository_FindByContactNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewProjectRepository(db)

	p := createProject(t, db, func(p *domain.Project) {
		p.ContactNumber = "9847012345"
	})

	found, err := repo.FindByContactNumber(context.Background(), "9847012345")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	_, err = repo.FindByContactNumber(context.Background(), "0000000000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProjectRepository_ListByStages(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewProjectRepository(db)

	createProject(t, db, func(p *domain.Project) { p.CurrentStage = domain.StageOnboarded })
	createProject(t, db, func(p *domain.Project) { p.CurrentStage = domain.StageSales })
	createProject(t, db, func(p *domain.Project) { p.CurrentStage = domain.StageCompleted })

	projects, err := repo.ListByStages(context.Background(), domain.StageOnboarded, domain.StageSales)
	require.NoError(t, err)
	assert.Len(t, projects, 2)
}
