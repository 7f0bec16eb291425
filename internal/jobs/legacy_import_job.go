package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LegacyImportJobName is the name of the legacy CRM import job
const LegacyImportJobName = "legacy_crm_import"

// CrmImporter defines the interface for the legacy CRM import.
type CrmImporter interface {
	// ImportEnabled reports whether the legacy source is configured.
	ImportEnabled() bool

	// RunImport fetches changed contacts and upserts them.
	// Returns the number of imported rows.
	RunImport(ctx context.Context) (int, error)
}

// LegacyImportJob periodically imports contacts from the previous CRM
type LegacyImportJob struct {
	importer CrmImporter
	logger   *zap.Logger
	timeout  time.Duration
}

// NewLegacyImportJob creates a new legacy import job.
// The timeout controls how long one import is allowed to run.
func NewLegacyImportJob(importer CrmImporter, logger *zap.Logger, timeout time.Duration) *LegacyImportJob {
	return &LegacyImportJob{
		importer: importer,
		logger:   logger,
		timeout:  timeout,
	}
}

// Run executes the import.
// This is called by the scheduler according to the cron expression.
func (j *LegacyImportJob) Run() {
	if !j.importer.ImportEnabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting legacy crm import job")

	imported, err := j.importer.RunImport(ctx)
	if err != nil {
		j.logger.Error("legacy crm import failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("legacy crm import job completed",
		zap.Int("imported", imported),
		zap.Duration("duration", time.Since(start)))
}

// RegisterLegacyImportJob registers the import with the scheduler.
// If runOnStartup is true, a full import runs immediately in a background
// goroutine so it doesn't block API startup.
func RegisterLegacyImportJob(scheduler *Scheduler, importer CrmImporter, logger *zap.Logger, cronExpr string, timeout time.Duration, runOnStartup bool) error {
	job := NewLegacyImportJob(importer, logger, timeout)

	if runOnStartup && importer.ImportEnabled() {
		go job.Run()
	}

	return scheduler.AddJob(LegacyImportJobName, cronExpr, job.Run)
}
