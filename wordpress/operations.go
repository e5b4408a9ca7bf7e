package wordpress

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Typed operation catalog. Each method is a thin wrapper over the request
// primitive: input shaping and output typing only. Operations that change
// remote state carry the write-confirmation header; reads never do. Once
// the companion endpoint accepts a mutating call it is irreversible.

// TestConnection fetches the authenticated user ("who am I").
func (c *Client) TestConnection(ctx context.Context) (*CurrentUser, error) {
	var user CurrentUser
	q := url.Values{"context": {"edit"}}
	if err := c.do(ctx, http.MethodGet, SurfaceStandard, "/users/me", q, nil, false, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CompanionStatus checks companion-plugin presence and version.
func (c *Client) CompanionStatus(ctx context.Context) (*CompanionInfo, error) {
	var info CompanionInfo
	if err := c.do(ctx, http.MethodGet, SurfaceCustom, "/health", nil, nil, false, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// DebugLog tails the remote debug.log. The line count is clamped to
// [1, 2000].
func (c *Client) DebugLog(ctx context.Context, lines int) (*DebugLog, error) {
	if lines < 1 {
		lines = 1
	}
	if lines > 2000 {
		lines = 2000
	}
	var log DebugLog
	q := url.Values{"lines": {strconv.Itoa(lines)}}
	if err := c.do(ctx, http.MethodGet, SurfaceCustom, "/logs", q, nil, false, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

// SiteHealth fetches the companion plugin's site snapshot.
func (c *Client) SiteHealth(ctx context.Context) (*SiteHealth, error) {
	var health SiteHealth
	if err := c.do(ctx, http.MethodGet, SurfaceCustom, "/site-health", nil, nil, false, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// DatabaseHealth fetches the companion plugin's database snapshot.
func (c *Client) DatabaseHealth(ctx context.Context) (*DatabaseHealth, error) {
	var health DatabaseHealth
	if err := c.do(ctx, http.MethodGet, SurfaceCustom, "/db/health", nil, nil, false, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// ListPlugins lists installed plugins via the standard surface.
func (c *Client) ListPlugins(ctx context.Context) ([]Plugin, error) {
	var plugins []Plugin
	if err := c.do(ctx, http.MethodGet, SurfaceStandard, "/plugins", nil, nil, false, &plugins); err != nil {
		return nil, err
	}
	return plugins, nil
}

// TogglePlugin activates or deactivates a plugin.
func (c *Client) TogglePlugin(ctx context.Context, plugin string, active bool) (*Plugin, error) {
	status := "inactive"
	if active {
		status = "active"
	}
	var out Plugin
	body := map[string]string{"status": status}
	path := "/plugins/" + url.PathEscape(plugin)
	if err := c.do(ctx, http.MethodPut, SurfaceStandard, path, nil, body, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListThemes lists installed themes via the standard surface.
func (c *Client) ListThemes(ctx context.Context) ([]Theme, error) {
	var themes []Theme
	if err := c.do(ctx, http.MethodGet, SurfaceStandard, "/themes", nil, nil, false, &themes); err != nil {
		return nil, err
	}
	return themes, nil
}

// ActivateTheme switches the active theme. Theme activation is not exposed
// by the standard surface, so this goes through the companion plugin.
func (c *Client) ActivateTheme(ctx context.Context, stylesheet string) error {
	body := map[string]string{"stylesheet": stylesheet}
	return c.do(ctx, http.MethodPost, SurfaceCustom, "/themes/activate", nil, body, true, nil)
}

// ClearCache flushes the remote object and page caches.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, SurfaceCustom, "/cache/clear", nil, nil, true, nil)
}

// SetMaintenanceMode toggles the remote maintenance page.
func (c *Client) SetMaintenanceMode(ctx context.Context, enabled bool) error {
	body := map[string]bool{"enabled": enabled}
	return c.do(ctx, http.MethodPost, SurfaceCustom, "/maintenance", nil, body, true, nil)
}

// SetDebugMode toggles WP_DEBUG by patching the remote configuration file.
func (c *Client) SetDebugMode(ctx context.Context, enabled bool) error {
	body := map[string]bool{"enabled": enabled}
	return c.do(ctx, http.MethodPost, SurfaceCustom, "/debug", nil, body, true, nil)
}

// UpdatePlugin triggers an update of one plugin.
func (c *Client) UpdatePlugin(ctx context.Context, plugin string) (*UpdateResult, error) {
	var res UpdateResult
	body := map[string]string{"plugin": plugin}
	if err := c.do(ctx, http.MethodPost, SurfaceCustom, "/update/plugin", nil, body, true, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateTheme triggers an update of one theme.
func (c *Client) UpdateTheme(ctx context.Context, stylesheet string) (*UpdateResult, error) {
	var res UpdateResult
	body := map[string]string{"stylesheet": stylesheet}
	if err := c.do(ctx, http.MethodPost, SurfaceCustom, "/update/theme", nil, body, true, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateCore triggers a WordPress core update.
func (c *Client) UpdateCore(ctx context.Context) (*UpdateResult, error) {
	var res UpdateResult
	if err := c.do(ctx, http.MethodPost, SurfaceCustom, "/update/core", nil, nil, true, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListOrders lists commerce orders through the companion plugin.
func (c *Client) ListOrders(ctx context.Context, page int) ([]Order, error) {
	var orders []Order
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if err := c.do(ctx, http.MethodGet, SurfaceCustom, "/woo/orders", q, nil, false, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus changes a commerce order's status.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int, status string) (*Order, error) {
	var out Order
	body := map[string]string{"status": status}
	path := fmt.Sprintf("/woo/orders/%d", id)
	if err := c.do(ctx, http.MethodPost, SurfaceCustom, path, nil, body, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProducts lists commerce products through the companion plugin.
func (c *Client) ListProducts(ctx context.Context, page int) ([]Product, error) {
	var products []Product
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if err := c.do(ctx, http.MethodGet, SurfaceCustom, "/woo/products", q, nil, false, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProduct patches a commerce product.
func (c *Client) UpdateProduct(ctx context.Context, id int, fields map[string]any) (*Product, error) {
	var out Product
	path := fmt.Sprintf("/woo/products/%d", id)
	if err := c.do(ctx, http.MethodPost, SurfaceCustom, path, nil, fields, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// contentKind maps the content CRUD helpers onto standard-surface routes.
type contentKind string

const (
	ContentPosts contentKind = "posts"
	ContentPages contentKind = "pages"
)

// ListContent lists posts or pages.
func (c *Client) ListContent(ctx context.Context, kind contentKind, page int) ([]Post, error) {
	var items []Post
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if err := c.do(ctx, http.MethodGet, SurfaceStandard, "/"+string(kind), q, nil, false, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateContent creates a post or page.
func (c *Client) CreateContent(ctx context.Context, kind contentKind, in PostInput) (*Post, error) {
	var out Post
	if err := c.do(ctx, http.MethodPost, SurfaceStandard, "/"+string(kind), nil, in, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateContent updates a post or page.
func (c *Client) UpdateContent(ctx context.Context, kind contentKind, id int, in PostInput) (*Post, error) {
	var out Post
	path := fmt.Sprintf("/%s/%d", kind, id)
	if err := c.do(ctx, http.MethodPost, SurfaceStandard, path, nil, in, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteContent deletes a post or page. With force the item bypasses trash
// and is destroyed immediately.
func (c *Client) DeleteContent(ctx context.Context, kind contentKind, id int, force bool) error {
	q := url.Values{}
	if force {
		q.Set("force", "true")
	}
	path := fmt.Sprintf("/%s/%d", kind, id)
	return c.do(ctx, http.MethodDelete, SurfaceStandard, path, q, nil, true, nil)
}

// ListMedia lists attachments.
func (c *Client) ListMedia(ctx context.Context, page int) ([]MediaItem, error) {
	var items []MediaItem
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if err := c.do(ctx, http.MethodGet, SurfaceStandard, "/media", q, nil, false, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteMedia deletes an attachment. Media cannot be trashed, so force is
// always set.
func (c *Client) DeleteMedia(ctx context.Context, id int) error {
	q := url.Values{"force": {"true"}}
	path := fmt.Sprintf("/media/%d", id)
	return c.do(ctx, http.MethodDelete, SurfaceStandard, path, q, nil, true, nil)
}

// ListMenus lists navigation menus.
func (c *Client) ListMenus(ctx context.Context) ([]Menu, error) {
	var menus []Menu
	if err := c.do(ctx, http.MethodGet, SurfaceStandard, "/menus", nil, nil, false, &menus); err != nil {
		return nil, err
	}
	return menus, nil
}

// ListUsers lists site users.
func (c *Client) ListUsers(ctx context.Context) ([]UserAccount, error) {
	var users []UserAccount
	q := url.Values{"context": {"edit"}}
	if err := c.do(ctx, http.MethodGet, SurfaceStandard, "/users", q, nil, false, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates a site user.
func (c *Client) CreateUser(ctx context.Context, in UserInput) (*UserAccount, error) {
	var out UserAccount
	if err := c.do(ctx, http.MethodPost, SurfaceStandard, "/users", nil, in, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser updates a site user.
func (c *Client) UpdateUser(ctx context.Context, id int, in UserInput) (*UserAccount, error) {
	var out UserAccount
	path := fmt.Sprintf("/users/%d", id)
	if err := c.do(ctx, http.MethodPost, SurfaceStandard, path, nil, in, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser deletes a site user, reassigning their content to another
// user. The standard surface requires force for user deletion.
func (c *Client) DeleteUser(ctx context.Context, id, reassignTo int) error {
	q := url.Values{
		"force":    {"true"},
		"reassign": {strconv.Itoa(reassignTo)},
	}
	path := fmt.Sprintf("/users/%d", id)
	return c.do(ctx, http.MethodDelete, SurfaceStandard, path, q, nil, true, nil)
}

// ResetUserPassword triggers a password reset email through the companion
// plugin.
func (c *Client) ResetUserPassword(ctx context.Context, id int) error {
	path := fmt.Sprintf("/users/%d/reset-password", id)
	return c.do(ctx, http.MethodPost, SurfaceCustom, path, nil, nil, true, nil)
}
