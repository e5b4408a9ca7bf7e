package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agency-dashboard/models"
	"agency-dashboard/services"
	"agency-dashboard/store"
	"agency-dashboard/vault"
	"agency-dashboard/wordpress"
)

// WordPressController exposes the connection lifecycle, diagnostics and the
// typed remote operations over the dashboard API. It owns no business
// logic; everything is delegated to the wordpress package.
type WordPressController struct {
	store    *store.Store
	vault    *vault.Vault
	runner   *wordpress.Runner
	deployer *services.Deployer
	logger   zerolog.Logger
}

// NewWordPressController builds the controller.
func NewWordPressController(st *store.Store, vt *vault.Vault, runner *wordpress.Runner, deployer *services.Deployer, logger zerolog.Logger) *WordPressController {
	return &WordPressController{store: st, vault: vt, runner: runner, deployer: deployer, logger: logger}
}

// respondError maps the error taxonomy onto HTTP responses. Remote API
// errors keep their upstream status so the UI can tell a remote 401 from a
// dashboard-side failure.
func (w *WordPressController) respondError(c *gin.Context, err error) {
	var notFound *wordpress.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
		return
	}
	var netErr *wordpress.NetworkUnreachableError
	if errors.As(err, &netErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": netErr.Error(), "kind": string(netErr.Kind)})
		return
	}
	var apiErr *wordpress.RemoteAPIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Message, "code": apiErr.Code})
		return
	}
	w.logger.Error().Err(err).Msg("wordpress operation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed."})
}

// connection resolves the website's WordPress connection or writes the
// error response itself.
func (w *WordPressController) connection(c *gin.Context) (*wordpress.Connection, bool) {
	conn, err := wordpress.ForWebsite(c.Request.Context(), w.store, w.vault, w.logger, c.Param("websiteId"))
	if err != nil {
		w.respondError(c, err)
		return nil, false
	}
	return conn, true
}

// ConnectRequest is the connect form payload.
type ConnectRequest struct {
	SiteURL      string `json:"siteUrl" binding:"required,url"`
	Username     string `json:"username" binding:"required"`
	AppPassword  string `json:"appPassword" binding:"required"`
	SharedSecret string `json:"sharedSecret" binding:"required"`
	SSHHost      string `json:"sshHost"`
	SSHUser      string `json:"sshUser"`
	SSHKey       string `json:"sshKey"`
	SSHPort      int    `json:"sshPort"`
}

// Connect stores an encrypted WordPress connection for the website's
// tenant.
func (w *WordPressController) Connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	website, err := w.store.Website(c.Request.Context(), c.Param("websiteId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Website not found."})
			return
		}
		w.respondError(c, err)
		return
	}

	creds := models.WordPressCredentials{
		SiteURL:      models.NormalizeSiteURL(req.SiteURL),
		Username:     req.Username,
		AppPassword:  req.AppPassword,
		SharedSecret: req.SharedSecret,
		SSHHost:      req.SSHHost,
		SSHUser:      req.SSHUser,
		SSHKey:       req.SSHKey,
		SSHPort:      req.SSHPort,
	}

	blob, err := w.vault.EncryptCredentials(creds)
	if err != nil {
		w.logger.Error().Err(err).Msg("encrypting credentials failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store credentials."})
		return
	}

	integration := models.Integration{
		ID:          newID(),
		TenantID:    website.TenantID,
		Type:        models.IntegrationTypeWordPress,
		Active:      true,
		Credentials: blob,
	}
	if err := w.store.SaveIntegration(c.Request.Context(), integration); err != nil {
		w.logger.Error().Err(err).Msg("saving integration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store connection."})
		return
	}

	w.store.LogActivity(c.Request.Context(), models.Activity{
		TenantID:  website.TenantID,
		WebsiteID: website.ID,
		Message:   fmt.Sprintf("WordPress connection created for '%s'.", website.Name),
	})
	c.JSON(http.StatusOK, gin.H{"message": "WordPress site connected.", "integrationId": integration.ID})
}

// Disconnect deletes the stored credentials. This is irreversible on the
// dashboard side only: the application password stays valid on the remote
// site until revoked there manually, and the response says so.
func (w *WordPressController) Disconnect(c *gin.Context) {
	conn, ok := w.connection(c)
	if !ok {
		return
	}

	if err := w.store.DeleteIntegration(c.Request.Context(), conn.IntegrationID); err != nil {
		w.respondError(c, err)
		return
	}

	w.store.LogActivity(c.Request.Context(), models.Activity{
		WebsiteID: conn.WebsiteID,
		Message:   "WordPress connection removed.",
		Level:     "warn",
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Connection removed from the dashboard.",
		"note": "The application password on the WordPress site was NOT revoked. " +
			"Remove it manually under Users > Profile > Application Passwords.",
	})
}

// Diagnose runs the connection diagnostics pipeline and returns the full
// report. The report itself is always 200; failures live inside it.
func (w *WordPressController) Diagnose(c *gin.Context) {
	conn, ok := w.connection(c)
	if !ok {
		return
	}
	report := w.runner.Run(c.Request.Context(), conn.Credentials)
	c.JSON(http.StatusOK, report)
}

// Status runs the connection test and companion check, refreshing the
// advisory health cache on success.
func (w *WordPressController) Status(c *gin.Context) {
	conn, ok := w.connection(c)
	if !ok {
		return
	}

	user, err := conn.Client.TestConnection(c.Request.Context())
	if err != nil {
		w.respondError(c, err)
		return
	}

	response := gin.H{"connected": true, "user": user}
	info, err := conn.Client.CompanionStatus(c.Request.Context())
	if err == nil {
		conn.RecordHealthCheck(c.Request.Context(), info, "healthy")
		response["companion"] = info
	} else {
		response["companion"] = nil
	}
	c.JSON(http.StatusOK, response)
}

// DeployCompanion uploads the companion plugin over SSH using the stored
// credentials.
func (w *WordPressController) DeployCompanion(c *gin.Context) {
	conn, ok := w.connection(c)
	if !ok {
		return
	}

	if err := w.deployer.DeployCompanionPlugin(conn.Credentials, services.CompanionPluginSource(conn.Credentials.SharedSecret)); err != nil {
		w.logger.Error().Err(err).Str("website", conn.WebsiteID).Msg("companion deploy failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	w.store.LogActivity(c.Request.Context(), models.Activity{
		WebsiteID: conn.WebsiteID,
		Message:   "Companion plugin deployed over SSH.",
	})
	c.JSON(http.StatusOK, gin.H{"message": "Companion plugin deployed."})
}

// ClearCache flushes the remote caches.
func (w *WordPressController) ClearCache(c *gin.Context) {
	conn, ok := w.connection(c)
	if !ok {
		return
	}
	if err := conn.Client.ClearCache(c.Request.Context()); err != nil {
		w.respondError(c, err)
		return
	}
	w.store.LogActivity(c.Request.Context(), models.Activity{
		WebsiteID: conn.WebsiteID, Message: "Remote cache cleared.",
	})
	c.JSON(http.StatusOK, gin.H{"message": "Cache cleared."})
}

type toggleRequest struct {
	Enabled bool `json:"enabled"`
}

// SetMaintenance toggles the remote maintenance page.
func (w *WordPressController) SetMaintenance(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	conn, ok := w.connection(c)
	if !ok {
		return
	}
	if err := conn.Client.SetMaintenanceMode(c.Request.Context(), req.Enabled); err != nil {
		w.respondError(c, err)
		return
	}
	w.store.LogActivity(c.Request.Context(), models.Activity{
		WebsiteID: conn.WebsiteID,
		Message:   fmt.Sprintf("Maintenance mode set to %t.", req.Enabled),
	})
	c.JSON(http.StatusOK, gin.H{"enabled": req.Enabled})
}

// SetDebug toggles WP_DEBUG on the remote site.
func (w *WordPressController) SetDebug(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	conn, ok := w.connection(c)
	if !ok {
		return
	}
	if err := conn.Client.SetDebugMode(c.Request.Context(), req.Enabled); err != nil {
		w.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": req.Enabled})
}

// DebugLog tails the remote debug log.
func (w *WordPressController) DebugLog(c *gin.Context) {
	lines, _ := strconv.Atoi(c.DefaultQuery("lines", "200"))
	conn, ok := w.connection(c)
	if !ok {
		return
	}
	log, err := conn.Client.DebugLog(c.Request.Context(), lines)
	if err != nil {
		w.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

// SiteHealth returns the companion plugin's site snapshot.
func (w *WordPressController) SiteHealth(c *gin.Context) {
	conn, ok := w.connection(c)
	if !ok {
		return
	}
	health, err := conn.Client.SiteHealth(c.Request.Context())
	if err != nil {
		w.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, health)
}

// DatabaseHealth returns the companion plugin's database snapshot.
func (w *WordPressController) DatabaseHealth(c *gin.Context) {
	conn, ok := w.connection(c)
	if !ok {
		return
	}
	health, err := conn.Client.DatabaseHealth(c.Request.Context())
	if err != nil {
		w.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, health)
}

// ListPlugins lists the remote site's plugins.
func (w *WordPressController) ListPlugins(c *gin.Context) {
	conn, ok := w.connection(c)
	if !ok {
		return
	}
	plugins, err := conn.Client.ListPlugins(c.Request.Context())
	if err != nil {
		w.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plugins)
}

// TogglePlugin activates or deactivates a plugin.
func (w *WordPressController) TogglePlugin(c *gin.Context) {
	var req struct {
		Plugin string `json:"plugin" binding:"required"`
		Active bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	conn, ok := w.connection(c)
	if !ok {
		return
	}
	plugin, err := conn.Client.TogglePlugin(c.Request.Context(), req.Plugin, req.Active)
	if err != nil {
		w.respondError(c, err)
		return
	}
	w.store.LogActivity(c.Request.Context(), models.Activity{
		WebsiteID: conn.WebsiteID,
		Message:   fmt.Sprintf("Plugin '%s' set to %s.", req.Plugin, plugin.Status),
	})
	c.JSON(http.StatusOK, plugin)
}

// UpdatePlugin triggers a plugin update.
func (w *WordPressController) UpdatePlugin(c *gin.Context) {
	var req struct {
		Plugin string `json:"plugin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	conn, ok := w.connection(c)
	if !ok {
		return
	}
	res, err := conn.Client.UpdatePlugin(c.Request.Context(), req.Plugin)
	if err != nil {
		w.respondError(c, err)
		return
	}
	w.store.LogActivity(c.Request.Context(), models.Activity{
		WebsiteID: conn.WebsiteID,
		Message:   fmt.Sprintf("Plugin '%s' updated.", req.Plugin),
	})
	c.JSON(http.StatusOK, res)
}

// UpdateCore triggers a WordPress core update.
func (w *WordPressController) UpdateCore(c *gin.Context) {
	conn, ok := w.connection(c)
	if !ok {
		return
	}
	res, err := conn.Client.UpdateCore(c.Request.Context())
	if err != nil {
		w.respondError(c, err)
		return
	}
	w.store.LogActivity(c.Request.Context(), models.Activity{
		WebsiteID: conn.WebsiteID,
		Message:   "WordPress core update triggered.",
		Level:     "warn",
	})
	c.JSON(http.StatusOK, res)
}
