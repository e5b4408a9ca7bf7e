package server

import (
	"github.com/gin-gonic/gin"

	"agency-dashboard/controllers"
)

// SetupRoutes wires the dashboard API. Everything except login sits behind
// the JWT middleware.
func SetupRoutes(router *gin.Engine, auth *controllers.AuthController, admin *controllers.AdminController, wp *controllers.WordPressController) {
	router.POST("/api/login", auth.Login)
	router.POST("/api/logout", auth.Logout)

	api := router.Group("/api")
	api.Use(auth.Middleware())
	{
		api.POST("/tenants", admin.CreateTenant)
		api.POST("/websites", admin.CreateWebsite)
		api.GET("/websites", admin.ListWebsites)
		api.GET("/websites/:websiteId", admin.GetWebsite)
		api.GET("/activities", admin.GetActivities)

		wordpress := api.Group("/websites/:websiteId/wordpress")
		{
			wordpress.POST("/connect", wp.Connect)
			wordpress.DELETE("/connection", wp.Disconnect)
			wordpress.POST("/diagnostics", wp.Diagnose)
			wordpress.GET("/status", wp.Status)
			wordpress.POST("/companion/deploy", wp.DeployCompanion)

			wordpress.POST("/cache/clear", wp.ClearCache)
			wordpress.POST("/maintenance", wp.SetMaintenance)
			wordpress.POST("/debug", wp.SetDebug)
			wordpress.GET("/logs", wp.DebugLog)
			wordpress.GET("/site-health", wp.SiteHealth)
			wordpress.GET("/db-health", wp.DatabaseHealth)
			wordpress.GET("/plugins", wp.ListPlugins)
			wordpress.PUT("/plugins", wp.TogglePlugin)
			wordpress.POST("/plugins/update", wp.UpdatePlugin)
			wordpress.POST("/core/update", wp.UpdateCore)
		}
	}
}
