package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itzRohit45/Student-Progress-Management/internal/config"
	"github.com/itzRohit45/Student-Progress-Management/internal/database"
	"github.com/itzRohit45/Student-Progress-Management/internal/handlers"
	"github.com/itzRohit45/Student-Progress-Management/internal/middleware"
	"github.com/itzRohit45/Student-Progress-Management/internal/models"
	"github.com/itzRohit45/Student-Progress-Management/internal/routes"
	"github.com/itzRohit45/Student-Progress-Management/internal/seeds"
	"github.com/itzRohit45/Student-Progress-Management/internal/services"
	"github.com/itzRohit45/Student-Progress-Management/pkg/logger"
)

func main() {
	// 0. Load Config & Initialize Logger
	config.LoadConfig()

	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	logger.Info().Str("environment", env).Msg("Starting Student Progress Management backend...")

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Connect storage
	database.Connect()
	database.InitRedis()

	logger.Info().Msg("Running database migrations...")
	if err := database.DB.AutoMigrate(
		&models.Student{},
		&models.CodeforcesData{},
		&models.Config{},
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}

	seeds.SeedDefaultConfigs()

	// 2. Wire the sync pipeline
	cfClient := services.NewCodeforcesClient(config.AppConfig.CodeforcesAPIBase)
	mailer := services.NewSMTPMailer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUser,
		config.AppConfig.SMTPPassword,
		config.AppConfig.EmailFrom,
	)

	syncService := services.NewSyncService(cfClient)
	inactivityService := services.NewInactivityService(mailer)
	cronService := services.NewCronService(syncService, inactivityService)

	schedule := services.GetConfigString(services.ConfigSyncSchedule, config.AppConfig.SyncSchedule)
	if err := cronService.Start(schedule); err != nil {
		logger.Fatal().Err(err).Str("schedule", schedule).Msg("Failed to start sync scheduler")
	}
	defer cronService.Stop()

	handlers.Init(syncService, cronService)

	// 3. Router
	r := gin.New()
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.GeneralRateLimit())

	api := r.Group("/api")
	{
		routes.RegisterStudentRoutes(api)
		routes.RegisterCodeforcesRoutes(api)
		routes.RegisterConfigRoutes(api)
	}

	r.GET("/health", func(c *gin.Context) {
		dbStatus := "ok"
		redisStatus := "ok"

		sqlDB, err := database.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			dbStatus = "error"
		}

		if database.Redis != nil {
			if _, err := database.Redis.Ping(context.Background()).Result(); err != nil {
				redisStatus = "error"
			}
		} else {
			redisStatus = "not configured"
		}

		status := "ok"
		if dbStatus != "ok" || (redisStatus != "ok" && redisStatus != "not configured") {
			status = "degraded"
		}

		c.JSON(200, gin.H{
			"status": status,
			"checks": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
			},
		})
	})

	// 4. Start server with graceful shutdown
	port := config.AppConfig.Port
	if port == "" {
		port = "5001"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", port).Str("env", env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited gracefully")
}
