package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/legacy"
	"github.com/incial/workhub-api/internal/repository"
)

// CrmEntryService serves the contact book imported from the previous CRM and
// runs the import itself.
type CrmEntryService struct {
	entryRepo    *repository.CrmEntryRepository
	legacyClient *legacy.Client
	logger       *zap.Logger

	mu       sync.Mutex
	lastSync time.Time
}

func NewCrmEntryService(
	entryRepo *repository.CrmEntryRepository,
	legacyClient *legacy.Client,
	logger *zap.Logger,
) *CrmEntryService {
	return &CrmEntryService{
		entryRepo:    entryRepo,
		legacyClient: legacyClient,
		logger:       logger,
	}
}

// ListEntries returns a page of imported contacts
func (s *CrmEntryService) ListEntries(ctx context.Context, page, pageSize int, search string) ([]domain.CrmEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 25
	}
	return s.entryRepo.List(ctx, page, pageSize, search)
}

// GetEntry returns one imported contact
func (s *CrmEntryService) GetEntry(ctx context.Context, id uuid.UUID) (*domain.CrmEntry, error) {
	entry, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

// ImportEnabled reports whether the legacy source is configured
func (s *CrmEntryService) ImportEnabled() bool {
	return s.legacyClient.IsEnabled()
}

// LastSync returns when an import last completed successfully
func (s *CrmEntryService) LastSync() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync
}

// RunImport fetches contacts changed since the previous sync and upserts them
// keyed by reference ID. The first run imports the full table.
func (s *CrmEntryService) RunImport(ctx context.Context) (int, error) {
	if !s.legacyClient.IsEnabled() {
		return 0, nil
	}

	s.mu.Lock()
	since := s.lastSync
	s.mu.Unlock()

	contacts, err := s.legacyClient.FetchContacts(ctx, since)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	imported := 0
	for i := range contacts {
		entry := contactToEntry(&contacts[i], now)
		if entry.ReferenceID == "" {
			continue
		}
		if err := s.entryRepo.Upsert(ctx, entry); err != nil {
			s.logger.Warn("failed to upsert crm entry",
				zap.String("reference_id", entry.ReferenceID),
				zap.Error(err),
			)
			continue
		}
		imported++
	}

	s.mu.Lock()
	s.lastSync = now
	s.mu.Unlock()

	s.logger.Info("legacy crm import completed",
		zap.Int("fetched", len(contacts)),
		zap.Int("imported", imported),
	)
	return imported, nil
}

func contactToEntry(c *legacy.Contact, importedAt time.Time) *domain.CrmEntry {
	entry := &domain.CrmEntry{
		Company:         c.Company,
		Phone:           c.Phone,
		Email:           c.Email,
		ContactName:     c.ContactName,
		Address:         c.Address,
		CompanyImageURL: c.ImageURL,
		AssignedTo:      c.AssignedTo,
		LastContact:     c.LastContact,
		NextFollowUp:    c.NextFollowUp,
		ReferenceID:     c.ReferenceID,
		DealValue:       c.DealValue,
		Notes:           c.Notes,
		Status:          c.Status,
		Tags:            splitList(c.Tags),
		Work:            splitList(c.Work),
		LeadSources:     splitList(c.LeadSources),
		DriveLink:       c.DriveLink,
		Socials:         normalizeSocials(c.Socials),
		LastUpdatedBy:   c.LastUpdatedBy,
		ImportedAt:      &importedAt,
	}
	return entry
}

// splitList turns the legacy comma-separated columns into arrays
func splitList(raw string) pq.StringArray {
	if strings.TrimSpace(raw) == "" {
		return pq.StringArray{}
	}
	parts := strings.Split(raw, ",")
	out := make(pq.StringArray, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// normalizeSocials keeps valid JSON objects and drops anything else
func normalizeSocials(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "{}"
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return "{}"
	}
	return raw
}
