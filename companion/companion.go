// Package companion is the executable statement of the companion plugin's
// administrative contract. The real plugin runs inside the managed
// WordPress installation; this reference implementation preserves its gate
// order, error codes and rate limiting so the client and diagnostics engine
// can be written and tested against the exact wire behavior. Changing a
// code here is a breaking change to the diagnostics classification.
package companion

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Wire protocol constants shared with the client.
const (
	HeaderSecret  = "X-Dashboard-Secret"
	HeaderAction  = "X-Dashboard-Action"
	ActionConfirm = "confirm"
)

// Machine-readable error codes carried in {code, message} bodies.
const (
	CodeNotLoggedIn         = "rest_not_logged_in"
	CodeForbidden           = "rest_forbidden"
	CodeInvalidSecret       = "dashboard_invalid_secret"
	CodeSecretNotConfigured = "dashboard_secret_not_configured"
	CodeConfirmRequired     = "dashboard_confirmation_required"
	CodeRateLimited         = "dashboard_rate_limited"
)

// Rate limit: 60 requests per rolling 60 seconds, per caller IP.
const (
	rateWindow   = time.Minute
	rateRequests = 60
)

// Authenticator validates Basic-Auth credentials the way WordPress
// validates application passwords, reporting whether the user exists and
// whether it holds the administrator capability.
type Authenticator func(username, password string) (admin bool, ok bool)

// Config configures the reference endpoint. An empty SharedSecret models a
// site where the configuration constant was never defined.
type Config struct {
	SharedSecret string
	Authenticate Authenticator
	Version      string
}

// Endpoint serves the /wp-json/dashboard/v1 surface.
type Endpoint struct {
	cfg Config

	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	maintenance bool
	debug       bool
	logLines    []string
}

// New builds the reference endpoint.
func New(cfg Config) *Endpoint {
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	return &Endpoint{
		cfg:      cfg,
		limiters: make(map[string]*rate.Limiter),
		logLines: []string{"[notice] debug log initialized"},
	}
}

// Router returns a gin engine serving the custom surface.
func (e *Endpoint) Router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	v1 := router.Group("/wp-json/dashboard/v1")
	v1.Use(e.rateLimit(), e.authorize())

	v1.GET("/health", e.health)
	v1.GET("/logs", e.logs)
	v1.GET("/site-health", e.siteHealth)
	v1.GET("/db/health", e.dbHealth)
	v1.GET("/woo/orders", e.listOrders)
	v1.GET("/woo/products", e.listProducts)

	write := v1.Group("", e.requireConfirmation())
	write.POST("/cache/clear", e.clearCache)
	write.POST("/maintenance", e.setMaintenance)
	write.POST("/debug", e.setDebug)
	write.POST("/themes/activate", e.activateTheme)
	write.POST("/update/plugin", e.update)
	write.POST("/update/theme", e.update)
	write.POST("/update/core", e.update)
	write.POST("/woo/orders/:id", e.updateOrder)
	write.POST("/woo/products/:id", e.updateProduct)
	write.POST("/users/:id/reset-password", e.resetPassword)

	return router
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"code": code, "message": message})
}

// rateLimit enforces the per-IP budget. x/time/rate's token bucket with a
// burst of the full window budget approximates the rolling window the
// production plugin keeps.
func (e *Endpoint) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		e.mu.Lock()
		limiter, found := e.limiters[ip]
		if !found {
			limiter = rate.NewLimiter(rate.Every(rateWindow/rateRequests), rateRequests)
			e.limiters[ip] = limiter
		}
		e.mu.Unlock()

		if !limiter.Allow() {
			fail(c, http.StatusTooManyRequests, CodeRateLimited,
				"Too many requests from this address; try again in a minute.")
			return
		}
		c.Next()
	}
}

// authorize applies the three gates in contract order: authenticated user,
// administrator capability, shared secret. A missing server-side secret is
// a distinct 500, never silently treated as a match.
func (e *Endpoint) authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, hasAuth := c.Request.BasicAuth()
		if !hasAuth {
			fail(c, http.StatusUnauthorized, CodeNotLoggedIn,
				"You are not currently logged in.")
			return
		}
		admin, ok := e.cfg.Authenticate(username, password)
		if !ok {
			fail(c, http.StatusUnauthorized, CodeNotLoggedIn,
				"You are not currently logged in.")
			return
		}
		if !admin {
			fail(c, http.StatusForbidden, CodeForbidden,
				"Sorry, you are not allowed to do that.")
			return
		}

		if e.cfg.SharedSecret == "" {
			fail(c, http.StatusInternalServerError, CodeSecretNotConfigured,
				"The dashboard shared secret is not configured on this site.")
			return
		}
		if c.GetHeader(HeaderSecret) != e.cfg.SharedSecret {
			fail(c, http.StatusForbidden, CodeInvalidSecret,
				"The dashboard shared secret does not match.")
			return
		}
		c.Next()
	}
}

// requireConfirmation gates every state-changing route behind the explicit
// write-confirmation header, checked after the authorization gates.
func (e *Endpoint) requireConfirmation() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(HeaderAction) != ActionConfirm {
			fail(c, http.StatusBadRequest, CodeConfirmRequired,
				"This operation changes the site and requires explicit confirmation.")
			return
		}
		c.Next()
	}
}

func (e *Endpoint) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":     e.cfg.Version,
		"wp_version":  "6.5.3",
		"php_version": "8.2.18",
		"status":      "ok",
	})
}

func (e *Endpoint) logs(c *gin.Context) {
	e.mu.Lock()
	lines := append([]string(nil), e.logLines...)
	e.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"lines": lines, "truncated": false})
}

func (e *Endpoint) siteHealth(c *gin.Context) {
	e.mu.Lock()
	maintenance, debug := e.maintenance, e.debug
	e.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"wp_version":       "6.5.3",
		"php_version":      "8.2.18",
		"db_version":       "10.11.6-MariaDB",
		"active_plugins":   7,
		"pending_updates":  0,
		"maintenance_mode": maintenance,
		"debug_mode":       debug,
	})
}

func (e *Endpoint) dbHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"size_bytes":     52428800,
		"tables":         14,
		"overhead_bytes": 0,
		"server_version": "10.11.6-MariaDB",
	})
}

func (e *Endpoint) clearCache(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

func (e *Endpoint) setMaintenance(c *gin.Context) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "dashboard_invalid_request", err.Error())
		return
	}
	e.mu.Lock()
	e.maintenance = body.Enabled
	e.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"enabled": body.Enabled})
}

func (e *Endpoint) setDebug(c *gin.Context) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "dashboard_invalid_request", err.Error())
		return
	}
	e.mu.Lock()
	e.debug = body.Enabled
	e.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"enabled": body.Enabled})
}

func (e *Endpoint) activateTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"activated": true})
}

func (e *Endpoint) update(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"updated": true, "message": "update completed"})
}

func (e *Endpoint) listOrders(c *gin.Context) {
	c.JSON(http.StatusOK, []gin.H{})
}

func (e *Endpoint) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, []gin.H{})
}

func (e *Endpoint) updateOrder(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": "updated"})
}

func (e *Endpoint) updateProduct(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
}

func (e *Endpoint) resetPassword(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sent": true})
}
