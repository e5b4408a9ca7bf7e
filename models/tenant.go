package models

import "time"

// Tenant is an agency workspace. Clients, websites and integrations all hang
// off a tenant; the WordPress core only ever reads these records.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Client is a customer of the agency.
type Client struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
}

// Website is a managed site belonging to a client.
type Website struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
	ClientID string `json:"clientId,omitempty"`
	Name     string `json:"name"`
	URL      string `json:"url"`
}

// Integration links a tenant to a third-party service. For WordPress the
// Credentials column holds the encrypted models.WordPressCredentials blob.
type Integration struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	Type        string    `json:"type"`
	Active      bool      `json:"active"`
	Credentials string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IntegrationTypeWordPress is the integration type the WordPress core
// resolves through the store.
const IntegrationTypeWordPress = "wordpress"

// Activity is a dashboard audit entry.
type Activity struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenantId,omitempty"`
	WebsiteID string    `json:"websiteId,omitempty"`
	Message   string    `json:"message"`
	Level     string    `json:"level"`
	Timestamp time.Time `json:"timestamp"`
}
