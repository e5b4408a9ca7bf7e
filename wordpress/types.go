package wordpress

// Response shapes for the typed operation catalog. Fields follow the wire
// names of the WordPress REST API and the companion plugin's routes.

// CurrentUser is the authenticated user returned by /users/me?context=edit.
type CurrentUser struct {
	ID           int             `json:"id"`
	Username     string          `json:"username"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Roles        []string        `json:"roles"`
	Capabilities map[string]bool `json:"capabilities"`
}

// IsAdministrator reports whether the user can administer the site.
func (u *CurrentUser) IsAdministrator() bool {
	if u.Capabilities[capManageOptions] {
		return true
	}
	for _, r := range u.Roles {
		if r == roleAdministrator {
			return true
		}
	}
	return false
}

const (
	capManageOptions  = "manage_options"
	roleAdministrator = "administrator"
)

// CompanionInfo is the companion plugin's health snapshot.
type CompanionInfo struct {
	Version    string `json:"version"`
	WPVersion  string `json:"wp_version"`
	PHPVersion string `json:"php_version"`
	Status     string `json:"status"`
}

// DebugLog is a bounded tail of the remote debug.log.
type DebugLog struct {
	Lines     []string `json:"lines"`
	Truncated bool     `json:"truncated"`
}

// SiteHealth is the companion plugin's site snapshot.
type SiteHealth struct {
	WPVersion       string `json:"wp_version"`
	PHPVersion      string `json:"php_version"`
	DBVersion       string `json:"db_version"`
	ActivePlugins   int    `json:"active_plugins"`
	PendingUpdates  int    `json:"pending_updates"`
	MaintenanceMode bool   `json:"maintenance_mode"`
	DebugMode       bool   `json:"debug_mode"`
}

// DatabaseHealth is the companion plugin's database snapshot.
type DatabaseHealth struct {
	SizeBytes      int64  `json:"size_bytes"`
	Tables         int    `json:"tables"`
	OverheadBytes  int64  `json:"overhead_bytes"`
	ServerVersion  string `json:"server_version"`
	LastOptimizeAt string `json:"last_optimize_at,omitempty"`
}

// Plugin is one entry from the standard plugins endpoint.
type Plugin struct {
	Plugin  string `json:"plugin"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Theme is one entry from the standard themes endpoint.
type Theme struct {
	Stylesheet string `json:"stylesheet"`
	Status     string `json:"status"`
	Version    string `json:"version"`
}

// UpdateResult reports a companion-driven update run.
type UpdateResult struct {
	Updated    bool   `json:"updated"`
	OldVersion string `json:"old_version,omitempty"`
	NewVersion string `json:"new_version,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Rendered is WordPress's rendered-content wrapper.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// Post is a post or page from the content API.
type Post struct {
	ID      int      `json:"id"`
	Status  string   `json:"status"`
	Link    string   `json:"link"`
	Title   Rendered `json:"title"`
	Content Rendered `json:"content,omitempty"`
}

// PostInput shapes post/page create and update calls.
type PostInput struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Status  string `json:"status,omitempty"`
}

// MediaItem is an attachment from the content API.
type MediaItem struct {
	ID        int      `json:"id"`
	SourceURL string   `json:"source_url"`
	MimeType  string   `json:"mime_type"`
	Title     Rendered `json:"title"`
}

// Menu is a navigation menu from the content API.
type Menu struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// UserAccount is a site user record on the standard surface.
type UserAccount struct {
	ID       int      `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// UserInput shapes user create and update calls.
type UserInput struct {
	Username string   `json:"username,omitempty"`
	Name     string   `json:"name,omitempty"`
	Email    string   `json:"email,omitempty"`
	Password string   `json:"password,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// Order is a commerce order surfaced through the companion plugin.
type Order struct {
	ID       int    `json:"id"`
	Status   string `json:"status"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
	Customer string `json:"customer,omitempty"`
}

// Product is a commerce product surfaced through the companion plugin.
type Product struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Price       string `json:"price"`
	StockStatus string `json:"stock_status,omitempty"`
}
