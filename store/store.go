// Package store is the tenant store: SQLite-backed records for tenants,
// clients, websites, integrations and the activity log. The WordPress core
// consumes it read-only except for the advisory credential-cache update.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"agency-dashboard/models"
)

// ErrNotFound is returned when a record lookup misses.
var ErrNotFound = errors.New("record not found")

const schema = `
CREATE TABLE IF NOT EXISTS tenants (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS clients (
	id        TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL REFERENCES tenants(id),
	name      TEXT NOT NULL,
	email     TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS websites (
	id        TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL REFERENCES tenants(id),
	client_id TEXT NOT NULL DEFAULT '',
	name      TEXT NOT NULL,
	url       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS integrations (
	id          TEXT PRIMARY KEY,
	tenant_id   TEXT NOT NULL REFERENCES tenants(id),
	type        TEXT NOT NULL,
	active      INTEGER NOT NULL DEFAULT 1,
	credentials TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_integrations_tenant_type ON integrations(tenant_id, type);
CREATE TABLE IF NOT EXISTS activities (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	tenant_id  TEXT NOT NULL DEFAULT '',
	website_id TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL,
	level      TEXT NOT NULL DEFAULT 'info',
	timestamp  TIMESTAMP NOT NULL
);
`

// Store wraps the dashboard database.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open opens (and migrates) the database at path.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA busy_timeout = 5000")

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateTenant inserts a tenant record.
func (s *Store) CreateTenant(ctx context.Context, t models.Tenant) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, created_at) VALUES (?, ?, ?)`,
		t.ID, t.Name, t.CreatedAt)
	return err
}

// CreateWebsite inserts a website record.
func (s *Store) CreateWebsite(ctx context.Context, w models.Website) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO websites (id, tenant_id, client_id, name, url) VALUES (?, ?, ?, ?, ?)`,
		w.ID, w.TenantID, w.ClientID, w.Name, w.URL)
	return err
}

// Website looks up a website by id.
func (s *Store) Website(ctx context.Context, id string) (models.Website, error) {
	var w models.Website
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, client_id, name, url FROM websites WHERE id = ?`, id).
		Scan(&w.ID, &w.TenantID, &w.ClientID, &w.Name, &w.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return w, ErrNotFound
	}
	return w, err
}

// ListWebsites returns all website records.
func (s *Store) ListWebsites(ctx context.Context) ([]models.Website, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, client_id, name, url FROM websites ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var websites []models.Website
	for rows.Next() {
		var w models.Website
		if err := rows.Scan(&w.ID, &w.TenantID, &w.ClientID, &w.Name, &w.URL); err != nil {
			return nil, err
		}
		websites = append(websites, w)
	}
	return websites, rows.Err()
}

// SaveIntegration inserts an integration record.
func (s *Store) SaveIntegration(ctx context.Context, in models.Integration) error {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO integrations (id, tenant_id, type, active, credentials, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.TenantID, in.Type, in.Active, in.Credentials, in.CreatedAt)
	return err
}

// ActiveIntegration returns the tenant's active integration of the given
// type.
func (s *Store) ActiveIntegration(ctx context.Context, tenantID, typ string) (models.Integration, error) {
	var in models.Integration
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, type, active, credentials, created_at
		 FROM integrations WHERE tenant_id = ? AND type = ? AND active = 1
		 ORDER BY created_at DESC LIMIT 1`, tenantID, typ).
		Scan(&in.ID, &in.TenantID, &in.Type, &in.Active, &in.Credentials, &in.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return in, ErrNotFound
	}
	return in, err
}

// UpdateIntegrationCredentials replaces the encrypted credential blob. Used
// for the advisory health-cache writeback; last writer wins.
func (s *Store) UpdateIntegrationCredentials(ctx context.Context, id, blob string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE integrations SET credentials = ? WHERE id = ?`, blob, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteIntegration removes an integration and its credential blob. This is
// irreversible from the dashboard's side; the remote application password is
// not revoked by this call.
func (s *Store) DeleteIntegration(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM integrations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// LogActivity appends an audit entry. Failures are logged, not returned;
// audit writes never block the calling operation.
func (s *Store) LogActivity(ctx context.Context, a models.Activity) {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	if a.Level == "" {
		a.Level = "info"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (tenant_id, website_id, message, level, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		a.TenantID, a.WebsiteID, a.Message, a.Level, a.Timestamp)
	if err != nil {
		s.logger.Error().Err(err).Str("message", a.Message).Msg("failed to record activity")
	}
}

// Activities returns the most recent audit entries, newest first.
func (s *Store) Activities(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, website_id, message, level, timestamp
		 FROM activities ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.TenantID, &a.WebsiteID, &a.Message, &a.Level, &a.Timestamp); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
