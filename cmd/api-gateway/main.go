package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hadirku/presensi-api/api/swagger"
	"github.com/hadirku/presensi-api/internal/handler"
	"github.com/hadirku/presensi-api/internal/middleware"
	"github.com/hadirku/presensi-api/internal/models"
	"github.com/hadirku/presensi-api/internal/repository"
	"github.com/hadirku/presensi-api/internal/service"
	"github.com/hadirku/presensi-api/pkg/cache"
	"github.com/hadirku/presensi-api/pkg/config"
	"github.com/hadirku/presensi-api/pkg/database"
	"github.com/hadirku/presensi-api/pkg/evidence"
	"github.com/hadirku/presensi-api/pkg/geocode"
	"github.com/hadirku/presensi-api/pkg/logger"
	corsmiddleware "github.com/hadirku/presensi-api/pkg/middleware/cors"
	ratelimitmiddleware "github.com/hadirku/presensi-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/hadirku/presensi-api/pkg/middleware/requestid"
)

// @title Presensi API
// @version 0.1.0
// @description Attendance capture and reconciliation service
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, settings cache disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	evidenceStore, err := evidence.NewStore(cfg.Evidence.StorageDir, cfg.Evidence.PublicBaseURL)
	if err != nil {
		logr.Sugar().Fatalw("failed to init evidence store", "error", err)
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go evidence.NewJanitor(evidenceStore, cfg.Evidence.RetentionTTL, cfg.Evidence.JanitorInterval, logr).Run(janitorCtx)

	geocoder := geocode.New(cfg.Geocoding.BaseURL, cfg.Geocoding.Timeout)
	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	cardRepo := repository.NewNFCCardRepository(db)
	sessionRepo := repository.NewNFCSessionRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	settingsSvc := service.NewSettingsService(settingRepo, redisClient, logr,
		cfg.Attendance.SettingsCacheTTL, cfg.Attendance.RequireLocationDefault)
	locationSvc := service.NewLocationService(geocoder, settingsSvc, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, scheduleRepo, cardRepo, sessionRepo,
		locationSvc, metricsSvc, validate, logr)
	qrSvc := service.NewQRService(scheduleRepo, validate, logr, service.QRConfig{
		TokenTTL:  cfg.QR.TokenTTL,
		SubmitURL: cfg.QR.SubmitURL,
	})
	nfcSvc := service.NewNFCService(cardRepo, sessionRepo, userRepo, scheduleRepo, validate, logr, service.NFCConfig{
		SessionTTL:    cfg.NFC.SessionTTL,
		ShortIDLength: cfg.NFC.ShortIDLength,
		TagBaseURL:    cfg.NFC.TagBaseURL,
	})

	authHandler := handler.NewAuthHandler(authSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, evidenceStore)
	qrHandler := handler.NewQRHandler(qrSvc)
	nfcHandler := handler.NewNFCHandler(nfcSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	r.Static("/evidence", cfg.Evidence.StorageDir)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	if cfg.RateLimit.Enabled {
		limiter := ratelimitmiddleware.NewTokenBucket(cfg.RateLimit.Burst, cfg.RateLimit.PerMinute)
		api.Use(limiter.Middleware())
	}

	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	attendance := authed.Group("/attendance")
	attendance.POST("/manual", middleware.RequireRoles(models.RoleStudent), attendanceHandler.SubmitManual)
	attendance.POST("/qr", middleware.RequireRoles(models.RoleStudent), attendanceHandler.SubmitQR)
	attendance.POST("/nfc/tap", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), attendanceHandler.Tap)
	attendance.POST("/evidence", middleware.RequireRoles(models.RoleStudent), attendanceHandler.UploadEvidence)
	attendance.GET("/me", attendanceHandler.MyAttendance)
	attendance.GET("/schedule/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), attendanceHandler.ScheduleDay)

	authed.POST("/qr/tokens", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), qrHandler.IssueToken)

	nfc := authed.Group("/nfc")
	nfc.POST("/cards", middleware.RequireRoles(models.RoleAdmin), nfcHandler.RegisterCard)
	nfc.GET("/cards/me", nfcHandler.MyCard)
	nfc.DELETE("/cards/:id", middleware.RequireRoles(models.RoleAdmin), nfcHandler.DeactivateCard)
	nfc.POST("/sessions", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), nfcHandler.ActivateSession)
	nfc.DELETE("/sessions/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), nfcHandler.DeactivateSession)
	nfc.GET("/sessions/usable", nfcHandler.UsableSessions)

	settings := authed.Group("/settings")
	settings.GET("/:key", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), settingsHandler.Get)
	settings.PUT("/:key", middleware.RequireRoles(models.RoleAdmin), settingsHandler.Update)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
