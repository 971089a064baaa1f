package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/healthclarity/lead-intake-api/api/swagger"
	"github.com/healthclarity/lead-intake-api/internal/handler"
	"github.com/healthclarity/lead-intake-api/internal/middleware"
	"github.com/healthclarity/lead-intake-api/internal/repository"
	"github.com/healthclarity/lead-intake-api/internal/service"
	"github.com/healthclarity/lead-intake-api/pkg/cache"
	"github.com/healthclarity/lead-intake-api/pkg/config"
	"github.com/healthclarity/lead-intake-api/pkg/gsheet"
	"github.com/healthclarity/lead-intake-api/pkg/logger"
	corsmiddleware "github.com/healthclarity/lead-intake-api/pkg/middleware/cors"
	reqidmiddleware "github.com/healthclarity/lead-intake-api/pkg/middleware/requestid"
)

// @title Health Clarity Lead Intake API
// @version 1.0.0
// @description Lead intake over a spreadsheet-backed store with chat notifications
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sheetsSvc, err := gsheet.NewService(ctx, cfg.Sheets)
	if err != nil {
		logr.Sugar().Fatalw("failed to init sheets client", "error", err)
	}
	leadRepo := repository.NewLeadRepository(sheetsSvc, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName)

	clock, err := service.ISTClock()
	if err != nil {
		logr.Sugar().Fatalw("failed to load timezone", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	var locker service.ContactLocker
	if cfg.Redis.LockEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect redis", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
		locker = service.NewRedisContactLock(redisClient, cfg.Redis.LockTTL)
	} else {
		local := service.NewLocalContactLock(15 * time.Minute)
		local.StartJanitor(ctx, 2*time.Minute)
		locker = local
	}

	notifier := service.NewTelegramNotifier(cfg.Telegram, logr)
	dispatcher := service.NewNotificationDispatcher(notifier, cfg.Notifications, metricsSvc, logr)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	admissionSvc := service.NewAdmissionService(
		service.WithStoreMetrics(leadRepo, metricsSvc),
		locker,
		dispatcher,
		clock,
		nil,
		cfg.Sheets.OperationTimeout,
		logr,
	)

	leadHandler := handler.NewLeadHandler(admissionSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	r.POST("/submit-lead", leadHandler.Submit)
	r.POST("/track-referral", leadHandler.TrackReferral)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "notifier_enabled", notifier.Enabled())
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
