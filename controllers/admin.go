package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agency-dashboard/models"
	"agency-dashboard/store"
)

// newID returns a random 16-byte hex identifier.
func newID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// AdminController covers the thin record-keeping endpoints the WordPress
// flows hang off: tenants, websites and the activity feed.
type AdminController struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewAdminController builds the controller.
func NewAdminController(st *store.Store, logger zerolog.Logger) *AdminController {
	return &AdminController{store: st, logger: logger}
}

// CreateTenant registers an agency workspace.
func (a *AdminController) CreateTenant(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tenant := models.Tenant{ID: newID(), Name: req.Name}
	if err := a.store.CreateTenant(c.Request.Context(), tenant); err != nil {
		a.logger.Error().Err(err).Msg("creating tenant failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tenant."})
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// CreateWebsite registers a managed website under a tenant.
func (a *AdminController) CreateWebsite(c *gin.Context) {
	var req struct {
		TenantID string `json:"tenantId" binding:"required"`
		ClientID string `json:"clientId"`
		Name     string `json:"name" binding:"required"`
		URL      string `json:"url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	website := models.Website{
		ID:       newID(),
		TenantID: req.TenantID,
		ClientID: req.ClientID,
		Name:     req.Name,
		URL:      models.NormalizeSiteURL(req.URL),
	}
	if err := a.store.CreateWebsite(c.Request.Context(), website); err != nil {
		a.logger.Error().Err(err).Msg("creating website failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create website."})
		return
	}
	c.JSON(http.StatusOK, website)
}

// ListWebsites lists all managed websites.
func (a *AdminController) ListWebsites(c *gin.Context) {
	websites, err := a.store.ListWebsites(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve websites."})
		return
	}
	c.JSON(http.StatusOK, websites)
}

// GetWebsite returns one website record.
func (a *AdminController) GetWebsite(c *gin.Context) {
	website, err := a.store.Website(c.Request.Context(), c.Param("websiteId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Website not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve website."})
		return
	}
	c.JSON(http.StatusOK, website)
}

// GetActivities returns the most recent audit entries.
func (a *AdminController) GetActivities(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	activities, err := a.store.Activities(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve activities."})
		return
	}
	c.JSON(http.StatusOK, activities)
}
