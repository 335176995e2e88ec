package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpMetrics "skinTrack/app/echo-server/metrics"
	"skinTrack/app/echo-server/router"
	"skinTrack/business/anomaly"
	"skinTrack/business/forecast"
	"skinTrack/business/report"
	"skinTrack/business/tracking"
	userService "skinTrack/business/user"
	"skinTrack/internal/middleware"
	psqlRepo "skinTrack/internal/repository/postgres"
	redisRepo "skinTrack/internal/repository/redis"
	"skinTrack/internal/rest"
	"skinTrack/pkg/config"
	"skinTrack/pkg/database"
	redisClient "skinTrack/pkg/database/redis"
	"skinTrack/pkg/logger"
	"skinTrack/pkg/metrics"
	"skinTrack/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting Skin Track", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	logger.Info("Database connected successfully")

	rdb, err := redisClient.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", err)
	}
	defer func() {
		if err := redisClient.CloseRedisClient(rdb); err != nil {
			logger.Error("Failed to close redis client", err)
		}
	}()
	logger.Info("Redis connected successfully")

	utils.InitJWT(cfg.JWT.SecretKey, cfg.JWT.TTL)
	metrics.Init()
	httpMetrics.Init()

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	sessionRepo := psqlRepo.NewTrackingSessionRepository(db)
	checkInRepo := psqlRepo.NewCheckInRepository(db)
	analysisRepo := psqlRepo.NewSkinAnalysisRepository(db)
	tokenRepo := redisRepo.NewTokenRepository(rdb)
	reportCache := redisRepo.NewReportCache(rdb)

	// Init engines
	anomalyCfg, forecastCfg := engineConfigs(cfg.Analytics)
	generator := report.NewGenerator(report.Config{
		Anomaly:        anomalyCfg,
		Forecast:       forecastCfg,
		MinReliability: cfg.Analytics.MinReliability,
	})

	// Init service
	userService := userService.NewUserService(userRepo, tokenRepo, validate)
	trackingService := tracking.NewTrackingService(sessionRepo, checkInRepo, analysisRepo, reportCache, validate, cfg.Security.NoteEncryptionKey)
	reportService := report.NewReportService(sessionRepo, checkInRepo, analysisRepo, reportCache, generator, cfg.Analytics.ReportCacheTTL)

	// Init handler
	userHandler := rest.NewUserHandler(userService)
	sessionHandler := rest.NewSessionHandler(trackingService, reportService)
	analyticsHandler := rest.NewAnalyticsHandler(
		anomaly.NewDetector(anomalyCfg),
		forecast.NewEngine(forecastCfg),
		cfg.Analytics.EMAAlpha,
		cfg.Analytics.MinReliability,
	)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(httpMetrics.Middleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth middleware
	authRequired := middleware.AuthMiddlewareWithRedis(userService)

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, authRequired)
	router.SetSessionRoutes(api, sessionHandler, authRequired)
	router.SetAnalysisRoutes(api, sessionHandler, authRequired)
	router.SetAnalyticsRoutes(api, analyticsHandler, authRequired)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", err)
	}

	logger.Info("Server stopped")
}

// engineConfigs converts the analytics section of the config into engine
// configs. Zero values fall through to the engine defaults.
func engineConfigs(a config.AnalyticsConfig) (anomaly.Config, forecast.Config) {
	return anomaly.Config{
			ZScoreThreshold: a.Anomaly.ZScoreThreshold,
			MADThreshold:    a.Anomaly.MADThreshold,
			IQRMultiplier:   a.Anomaly.IQRMultiplier,
			JumpThreshold:   a.Anomaly.JumpThreshold,
			MinSamples:      a.Anomaly.MinSamples,
		}, forecast.Config{
			ConfidenceLevel: a.Forecast.ConfidenceLevel,
			Horizons:        a.Forecast.Horizons,
		}
}
