package main

import (
	"flag"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"agency-dashboard/config"
	"agency-dashboard/controllers"
	"agency-dashboard/server"
	"agency-dashboard/services"
	"agency-dashboard/store"
	"agency-dashboard/utils"
	"agency-dashboard/vault"
	"agency-dashboard/wordpress"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger := utils.NewLogger("error", false)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := utils.NewLogger(cfg.LogLevel, cfg.LogJSON)

	st, err := store.Open(cfg.DatabasePath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	vt := vault.New(cfg.VaultKey)
	runner := wordpress.NewRunner(logger)
	deployer := services.NewDeployer(logger)

	sweeper := services.NewHealthSweeper(st, vt, logger)
	if err := sweeper.Start(cfg.HealthCheckSpec); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule health sweep")
	}
	defer sweeper.Stop()

	authCtrl := controllers.NewAuthController([]byte(cfg.JWTKey), cfg.AdminUser, cfg.AdminPassword)
	adminCtrl := controllers.NewAdminController(st, logger)
	wpCtrl := controllers.NewWordPressController(st, vt, runner, deployer, logger)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	server.SetupRoutes(router, authCtrl, adminCtrl, wpCtrl)

	logger.Info().Str("addr", cfg.ListenAddr).Msg("dashboard server starting")
	if err := router.Run(cfg.ListenAddr); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
