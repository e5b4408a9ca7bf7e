package wordpress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"agency-dashboard/models"
	"agency-dashboard/store"
)

// CredentialStore is the slice of the tenant store the factory needs:
// read-only resolution plus the advisory credential-cache writeback.
type CredentialStore interface {
	Website(ctx context.Context, id string) (models.Website, error)
	ActiveIntegration(ctx context.Context, tenantID, typ string) (models.Integration, error)
	UpdateIntegrationCredentials(ctx context.Context, id, blob string) error
}

// CredentialVault opens and seals stored credential records.
type CredentialVault interface {
	EncryptCredentials(creds models.WordPressCredentials) (string, error)
	DecryptCredentials(blob string) (models.WordPressCredentials, error)
}

// Connection is a resolved, ready-to-use link to one website's WordPress
// installation: the operation client plus enough context to write back the
// advisory health cache.
type Connection struct {
	Client        *Client
	Credentials   models.WordPressCredentials
	WebsiteID     string
	IntegrationID string

	store  CredentialStore
	vault  CredentialVault
	logger zerolog.Logger
}

// ForWebsite resolves websiteID → tenant → active WordPress integration →
// credentials, decrypts them and constructs the client. Every broken link
// in the chain surfaces as *NotFoundError; which link broke is only
// distinguished in the logs. A vault failure aborts construction - a client
// with corrupt headers must never exist.
func ForWebsite(ctx context.Context, st CredentialStore, vt CredentialVault, logger zerolog.Logger, websiteID string) (*Connection, error) {
	website, err := st.Website(ctx, websiteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn().Str("website", websiteID).Msg("website record missing")
			return nil, &NotFoundError{Resource: "website", ID: websiteID}
		}
		return nil, fmt.Errorf("looking up website %s: %w", websiteID, err)
	}

	integration, err := st.ActiveIntegration(ctx, website.TenantID, models.IntegrationTypeWordPress)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn().Str("website", websiteID).Str("tenant", website.TenantID).
				Msg("no active wordpress integration for tenant")
			return nil, &NotFoundError{Resource: "wordpress integration", ID: websiteID}
		}
		return nil, fmt.Errorf("looking up integration for tenant %s: %w", website.TenantID, err)
	}

	if integration.Credentials == "" {
		logger.Error().Str("integration", integration.ID).
			Msg("integration present but credential blob empty, likely data corruption")
		return nil, &NotFoundError{Resource: "wordpress credentials", ID: websiteID}
	}

	creds, err := vt.DecryptCredentials(integration.Credentials)
	if err != nil {
		return nil, fmt.Errorf("decrypting credentials for integration %s: %w", integration.ID, err)
	}

	return &Connection{
		Client:        New(creds, logger),
		Credentials:   creds,
		WebsiteID:     websiteID,
		IntegrationID: integration.ID,
		store:         st,
		vault:         vt,
		logger:        logger,
	}, nil
}

// RecordHealthCheck updates the cached companion-plugin observations on the
// stored credential record after a successful health check. The cache is
// advisory and last-writer-wins; a failed write is logged, never fatal.
func (conn *Connection) RecordHealthCheck(ctx context.Context, info *CompanionInfo, status string) {
	now := time.Now().UTC()
	creds := conn.Credentials
	creds.MuPluginInstalled = info != nil
	if info != nil {
		creds.MuPluginVersion = info.Version
	}
	creds.LastHealthCheck = &now
	creds.LastHealthStatus = status

	blob, err := conn.vault.EncryptCredentials(creds)
	if err != nil {
		conn.logger.Error().Err(err).Str("integration", conn.IntegrationID).
			Msg("failed to re-encrypt credentials for health cache update")
		return
	}
	if err := conn.store.UpdateIntegrationCredentials(ctx, conn.IntegrationID, blob); err != nil {
		conn.logger.Error().Err(err).Str("integration", conn.IntegrationID).
			Msg("failed to persist health cache update")
		return
	}
	conn.Credentials = creds
}
