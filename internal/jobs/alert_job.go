package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AlertJobName is the name of the periodic alert scan job
const AlertJobName = "alert_scan"

// AlertGenerator defines the interface for the alert scan.
// This interface allows the job to call the service without importing the service package directly.
type AlertGenerator interface {
	// GenerateAlerts scans monitored stages and raises alerts for overdue projects.
	// Returns the number of newly raised alerts.
	GenerateAlerts(ctx context.Context) (int, error)
}

// AlertJob runs the periodic alert scan over all monitored stages
type AlertJob struct {
	alerts  AlertGenerator
	logger  *zap.Logger
	timeout time.Duration
}

// NewAlertJob creates a new alert scan job.
// The timeout controls how long one scan is allowed to run.
func NewAlertJob(alerts AlertGenerator, logger *zap.Logger, timeout time.Duration) *AlertJob {
	return &AlertJob{
		alerts:  alerts,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes the alert scan.
// This is called by the scheduler according to the cron expression.
func (j *AlertJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting alert scan job")

	generated, err := j.alerts.GenerateAlerts(ctx)
	if err != nil {
		j.logger.Error("alert scan failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("alert scan job completed",
		zap.Int("alerts_raised", generated),
		zap.Duration("duration", time.Since(start)))
}

// RegisterAlertJob registers the alert scan with the scheduler.
// The cronExpr should be a valid cron expression with seconds (e.g., "0 0 * * * *" for hourly).
// If runOnStartup is true, one scan runs immediately in a background goroutine
// so it doesn't block API startup.
func RegisterAlertJob(scheduler *Scheduler, alerts AlertGenerator, logger *zap.Logger, cronExpr string, timeout time.Duration, runOnStartup bool) error {
	job := NewAlertJob(alerts, logger, timeout)

	if runOnStartup {
		go job.Run()
	}

	return scheduler.AddJob(AlertJobName, cronExpr, job.Run)
}
