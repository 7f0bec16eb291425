package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/repository"
	"github.com/incial/workhub-api/internal/service"
)

func newCrmEntryService(t *testing.T, db *gorm.DB) *service.CrmEntryService {
	require.NoError(t, db.AutoMigrate(&domain.CrmEntry{}))
	return service.NewCrmEntryService(repository.NewCrmEntryRepository(db), nil, testLogger())
}

func TestCrmEntryService_ListEntries(t *testing.T) {
	db := setupTestDB(t)
	svc := newCrmEntryService(t, db)

	for _, company := range []string{"Apex Traders", "Bright Schools", "Coastal Exports"} {
		require.NoError(t, db.Create(&domain.CrmEntry{
			Company:     company,
			ReferenceID: uuid.New().String(),
		}).Error)
	}

	entries, total, err := svc.ListEntries(context.Background(), 1, 2, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, entries, 2)
	assert.Equal(t, "Apex Traders", entries[0].Company)

	entries, total, err = svc.ListEntries(context.Background(), 1, 25, "bright")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, "Bright Schools", entries[0].Company)
}

func TestCrmEntryService_GetEntry_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newCrmEntryService(t, db)

	_, err := svc.GetEntry(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCrmEntryService_ImportDisabledWithoutClient(t *testing.T) {
	db := setupTestDB(t)
	svc := newCrmEntryService(t, db)

	assert.False(t, svc.ImportEnabled())

	imported, err := svc.RunImport(context.Background())
	require.NoError(t, err)
	assert.Zero(t, imported)
}
