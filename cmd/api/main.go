package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/isa-florenville/focustime-api/api/swagger"
	"github.com/isa-florenville/focustime-api/internal/catalog"
	"github.com/isa-florenville/focustime-api/internal/handler"
	"github.com/isa-florenville/focustime-api/internal/middleware"
	"github.com/isa-florenville/focustime-api/internal/repository"
	"github.com/isa-florenville/focustime-api/internal/service"
	"github.com/isa-florenville/focustime-api/pkg/cache"
	"github.com/isa-florenville/focustime-api/pkg/config"
	"github.com/isa-florenville/focustime-api/pkg/database"
	"github.com/isa-florenville/focustime-api/pkg/export"
	"github.com/isa-florenville/focustime-api/pkg/logger"
	corsmiddleware "github.com/isa-florenville/focustime-api/pkg/middleware/cors"
	reqidmiddleware "github.com/isa-florenville/focustime-api/pkg/middleware/requestid"
)

// @title Focus Time Registration API
// @version 1.0.0
// @description Capacity-aware registration service for focus-time activities
// @BasePath /api/v1
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

	// Catalog documents drive every registration decision; a broken document
	// aborts startup rather than running degraded.
	cat, err := catalog.Load(cfg.Registration)
	if err != nil {
		logr.Sugar().Fatalw("failed to load activity catalog", "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The roster cache is an optimization; the service runs without it.
		logr.Sugar().Warnw("redis unavailable, roster cache disabled", "error", err)
		redisClient = nil
	}

	registrationRepo := repository.NewRegistrationRepository(db, cfg.ChoiceTable())
	directoryRepo := repository.NewStudentDirectoryRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metrics := service.NewMetricsService()
	validate := validator.New()

	ledgerSvc := service.NewLedgerService(registrationRepo, metrics, logr, cfg.Registration.LedgerReadRetries, cfg.Registration.LedgerRetryBackoff)
	authSvc := service.NewAuthService(directoryRepo, logr, cfg.Auth)
	sessionSvc := service.NewSessionService(ledgerSvc, cat, cfg.Registration, logr)
	rosterSvc := service.NewRosterService(ledgerSvc, directoryRepo, cacheRepo, export.NewCSVExporter(), export.NewPDFExporter(), cfg.Rosters.CacheTTL, logr)
	registrationSvc := service.NewRegistrationService(ledgerSvc, registrationRepo, cat, directoryRepo, rosterSvc, metrics, validate, logr)

	sessionHandler := handler.NewSessionHandler(sessionSvc)
	activityHandler := handler.NewActivityHandler(sessionSvc)
	registrationHandler := handler.NewRegistrationHandler(registrationSvc, sessionSvc)
	teacherHandler := handler.NewTeacherHandler(registrationSvc, rosterSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Authenticate(authSvc))
	{
		api.GET("/session", sessionHandler.Get)
		api.GET("/activities", activityHandler.List)
		api.GET("/registrations", registrationHandler.ListOwn)
		api.POST("/registrations", registrationHandler.Create)

		teacher := api.Group("/teacher")
		teacher.Use(middleware.RequireStaff())
		{
			teacher.POST("/enrollments", teacherHandler.Enroll)
			teacher.GET("/rosters", teacherHandler.Rosters)
			teacher.GET("/rosters/export", teacherHandler.Export)
			teacher.GET("/students", teacherHandler.Students)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "mode", cfg.Registration.Mode)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
