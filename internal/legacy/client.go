// Package legacy provides read-only connectivity to the previous CRM's
// MS SQL Server database. It is only used to import contact records into the
// crm_entries table; nothing is ever written back.
package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb" // MS SQL Server driver
	"github.com/incial/workhub-api/internal/config"
	"go.uber.org/zap"
)

const (
	// Default retry configuration for connection attempts
	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 10 * time.Second
	defaultBackoffFactor  = 2.0

	// Default health check timeout
	defaultHealthCheckTimeout = 5 * time.Second
)

// Contact is one row of the legacy CRM's contact table
type Contact struct {
	ReferenceID   string
	Company       string
	Phone         string
	Email         string
	ContactName   string
	Address       string
	ImageURL      string
	AssignedTo    string
	LastContact   *time.Time
	NextFollowUp  *time.Time
	DealValue     *float64
	Notes         string
	Status        string
	Tags          string
	Work          string
	LeadSources   string
	DriveLink     string
	Socials       string
	LastUpdatedBy string
	UpdatedAt     *time.Time
}

// Client provides read-only access to the legacy CRM database.
// It manages connection pooling and typed row fetching.
type Client struct {
	db           *sql.DB
	config       *config.LegacyCRMConfig
	logger       *zap.Logger
	queryTimeout time.Duration
}

// HealthStatus represents the health check result for the legacy connection
type HealthStatus struct {
	Status     string        `json:"status"`
	Latency    time.Duration `json:"latency_ms"`
	Error      string        `json:"error,omitempty"`
	MaxOpen    int           `json:"max_open_connections"`
	Open       int           `json:"open_connections"`
	InUse      int           `json:"in_use"`
	Idle       int           `json:"idle"`
	WaitCount  int64         `json:"wait_count"`
	WaitTimeMs int64         `json:"wait_time_ms"`
}

// NewClient creates a new legacy CRM client with the given configuration.
// Returns nil if the import is not enabled or not configured.
// The client establishes a connection pool with retry logic for transient failures.
func NewClient(cfg *config.LegacyCRMConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Legacy CRM connection disabled")
		return nil, nil
	}

	// Validate required configuration
	if cfg.URL == "" || cfg.User == "" || cfg.Password == "" {
		logger.Warn("Legacy CRM enabled but missing credentials, skipping connection",
			zap.Bool("url_present", cfg.URL != ""),
			zap.Bool("user_present", cfg.User != ""),
			zap.Bool("password_present", cfg.Password != ""),
		)
		return nil, nil
	}

	logger.Info("Initializing legacy CRM connection",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Int("conn_max_lifetime_seconds", cfg.ConnMaxLifetime),
		zap.Int("query_timeout_seconds", cfg.QueryTimeout),
	)

	connStr, err := buildConnectionString(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	// Attempt connection with retry logic
	var db *sql.DB
	backoff := defaultInitialBackoff

	for attempt := 1; attempt <= defaultMaxRetries; attempt++ {
		logger.Info("Attempting legacy CRM connection",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", defaultMaxRetries),
		)

		db, err = sql.Open("sqlserver", connStr)
		if err != nil {
			logger.Warn("Failed to open legacy CRM connection",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = min(time.Duration(float64(backoff)*defaultBackoffFactor), defaultMaxBackoff)
			}
			continue
		}

		// Configure connection pool
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

		// Test connection with ping
		ctx, cancel := context.WithTimeout(context.Background(), defaultHealthCheckTimeout)
		err = db.PingContext(ctx)
		cancel()

		if err != nil {
			logger.Warn("Legacy CRM ping failed",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			_ = db.Close()
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = min(time.Duration(float64(backoff)*defaultBackoffFactor), defaultMaxBackoff)
			}
			continue
		}

		logger.Info("Legacy CRM connection established successfully",
			zap.Int("attempts_taken", attempt),
		)

		return &Client{
			db:           db,
			config:       cfg,
			logger:       logger,
			queryTimeout: cfg.QueryTimeoutDuration(),
		}, nil
	}

	return nil, fmt.Errorf("failed to connect to legacy CRM after %d attempts: %w", defaultMaxRetries, err)
}

// buildConnectionString constructs a SQL Server connection string from the config.
// URL format expected: host:port/database or host:port (uses default database)
func buildConnectionString(cfg *config.LegacyCRMConfig) (string, error) {
	urlParts := strings.SplitN(cfg.URL, "/", 2)
	hostPort := urlParts[0]
	database := ""
	if len(urlParts) > 1 {
		database = urlParts[1]
	}

	hostParts := strings.SplitN(hostPort, ":", 2)
	host := hostParts[0]
	port := "1433" // Default SQL Server port
	if len(hostParts) > 1 {
		port = hostParts[1]
	}

	query := url.Values{}
	query.Add("encrypt", "true")
	query.Add("TrustServerCertificate", "false")
	query.Add("connection timeout", "30")
	if database != "" {
		query.Add("database", database)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%s", host, port),
		RawQuery: query.Encode(),
	}

	return u.String(), nil
}

// Close gracefully closes the legacy CRM connection.
// Should be called during application shutdown.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}

	c.logger.Info("Closing legacy CRM connection")

	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close legacy CRM connection", zap.Error(err))
		return fmt.Errorf("failed to close legacy CRM connection: %w", err)
	}

	return nil
}

// HealthCheck performs a health check on the legacy CRM connection.
// Returns detailed status including connection pool statistics.
func (c *Client) HealthCheck(ctx context.Context) *HealthStatus {
	if c == nil || c.db == nil {
		return &HealthStatus{
			Status: "disabled",
		}
	}

	start := time.Now()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultHealthCheckTimeout)
		defer cancel()
	}

	err := c.db.PingContext(ctx)
	latency := time.Since(start)

	stats := c.db.Stats()
	status := &HealthStatus{
		Latency:    latency,
		MaxOpen:    stats.MaxOpenConnections,
		Open:       stats.OpenConnections,
		InUse:      stats.InUse,
		Idle:       stats.Idle,
		WaitCount:  stats.WaitCount,
		WaitTimeMs: stats.WaitDuration.Milliseconds(),
	}

	if err != nil {
		c.logger.Warn("Legacy CRM health check failed",
			zap.Error(err),
			zap.Duration("latency", latency),
		)
		status.Status = "unhealthy"
		status.Error = err.Error()
	} else {
		status.Status = "healthy"
	}

	return status
}

// FetchContacts returns contacts modified since the given time. A zero time
// fetches the full table.
func (c *Client) FetchContacts(ctx context.Context, since time.Time) ([]Contact, error) {
	if c == nil || c.db == nil {
		return nil, fmt.Errorf("legacy CRM client not initialized")
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.queryTimeout)
		defer cancel()
	}

	query := `SELECT reference_id, company, phone, email, contact_name, address,
		company_image_url, assigned_to, last_contact, next_follow_up, deal_value,
		notes, status, tags, work, lead_sources, drive_link, socials,
		last_updated_by, updated_at
		FROM dbo.crm_contacts`
	args := []interface{}{}
	if !since.IsZero() {
		query += " WHERE updated_at > @p1"
		args = append(args, since)
	}
	query += " ORDER BY updated_at"

	start := time.Now()

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		c.logger.Error("Legacy CRM query failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var (
			ct           Contact
			phone        sql.NullString
			email        sql.NullString
			contactName  sql.NullString
			address      sql.NullString
			imageURL     sql.NullString
			assignedTo   sql.NullString
			lastContact  sql.NullTime
			nextFollowUp sql.NullTime
			dealValue    sql.NullFloat64
			notes        sql.NullString
			status       sql.NullString
			tags         sql.NullString
			work         sql.NullString
			leadSources  sql.NullString
			driveLink    sql.NullString
			socials      sql.NullString
			updatedBy    sql.NullString
			updatedAt    sql.NullTime
		)

		if err := rows.Scan(
			&ct.ReferenceID, &ct.Company, &phone, &email, &contactName, &address,
			&imageURL, &assignedTo, &lastContact, &nextFollowUp, &dealValue,
			&notes, &status, &tags, &work, &leadSources, &driveLink, &socials,
			&updatedBy, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		ct.Phone = phone.String
		ct.Email = email.String
		ct.ContactName = contactName.String
		ct.Address = address.String
		ct.ImageURL = imageURL.String
		ct.AssignedTo = assignedTo.String
		if lastContact.Valid {
			ct.LastContact = &lastContact.Time
		}
		if nextFollowUp.Valid {
			ct.NextFollowUp = &nextFollowUp.Time
		}
		if dealValue.Valid {
			ct.DealValue = &dealValue.Float64
		}
		ct.Notes = notes.String
		ct.Status = status.String
		ct.Tags = tags.String
		ct.Work = work.String
		ct.LeadSources = leadSources.String
		ct.DriveLink = driveLink.String
		ct.Socials = socials.String
		ct.LastUpdatedBy = updatedBy.String
		if updatedAt.Valid {
			ct.UpdatedAt = &updatedAt.Time
		}

		contacts = append(contacts, ct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	c.logger.Debug("Legacy CRM fetch completed",
		zap.Int("rows_returned", len(contacts)),
		zap.Duration("duration", time.Since(start)),
	)

	return contacts, nil
}

// IsEnabled returns true if the client is initialized and ready for queries.
func (c *Client) IsEnabled() bool {
	return c != nil && c.db != nil
}
