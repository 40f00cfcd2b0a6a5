package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hseworks/sst-backoffice-api/api/swagger"
	"github.com/hseworks/sst-backoffice-api/internal/handler"
	"github.com/hseworks/sst-backoffice-api/internal/middleware"
	"github.com/hseworks/sst-backoffice-api/internal/repository"
	"github.com/hseworks/sst-backoffice-api/internal/service"
	"github.com/hseworks/sst-backoffice-api/pkg/broker"
	"github.com/hseworks/sst-backoffice-api/pkg/cache"
	"github.com/hseworks/sst-backoffice-api/pkg/config"
	"github.com/hseworks/sst-backoffice-api/pkg/database"
	"github.com/hseworks/sst-backoffice-api/pkg/export"
	"github.com/hseworks/sst-backoffice-api/pkg/logger"
	corsmiddleware "github.com/hseworks/sst-backoffice-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hseworks/sst-backoffice-api/pkg/middleware/requestid"
	"github.com/hseworks/sst-backoffice-api/pkg/storage"
)

// @title SST Backoffice API
// @version 1.0.0
// @description Occupational health and safety backoffice
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, token checks fall back to the database", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	var publisher *broker.Publisher
	if cfg.Broker.Enabled {
		publisher, err = broker.NewPublisher(cfg.Broker.URI, cfg.Broker.Queue)
		if err != nil {
			logr.Sugar().Warnw("broker unavailable, domain events are dropped", "error", err)
		} else {
			defer publisher.Close() //nolint:errcheck
		}
	}

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare upload storage", "error", err)
	}
	signer := storage.NewViewTokenSigner(cfg.Uploads.ViewURLSecret, cfg.Uploads.ViewURLTTL)

	validate := service.NewValidator()
	pdfExporter := export.NewPDFExporter()
	csvExporter := export.NewCSVExporter()
	metricsService := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	examRepo := repository.NewMedicalExamRepository(db)
	epiRepo := repository.NewEpiRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)
	eventRepo := repository.NewEventRepository(db)
	occurrenceRepo := repository.NewOccurrenceRepository(db)
	technicianRepo := repository.NewTechnicianRepository(db)

	authService := service.NewAuthService(userRepo, redisClient, validate, logr, service.AuthConfig{
		TokenSecret:     cfg.Auth.TokenSecret,
		TokenExpiration: cfg.Auth.TokenExpiration,
		Issuer:          cfg.Auth.Issuer,
	})
	userService := service.NewUserService(userRepo, validate, logr)
	catalogService := service.NewCatalogService(catalogRepo, validate, logr)
	companyService := service.NewCompanyService(companyRepo, validate, logr)
	employeeService := service.NewEmployeeService(employeeRepo, validate, logr)
	documentService := service.NewDocumentService(documentRepo, validate, logr)
	uploadService := service.NewUploadService(uploadRepo, store, signer, publisher, cfg.Uploads.MaxFileSizeBytes, cfg.Uploads.AllowedMIMEs, validate, logr)
	examService := service.NewMedicalExamService(examRepo, uploadService, validate, logr)
	epiService := service.NewEpiService(epiRepo, validate, logr)
	deliveryService := service.NewDeliveryService(deliveryRepo, pdfExporter, validate, logr)
	eventService := service.NewEventService(eventRepo, pdfExporter, validate, logr)
	occurrenceService := service.NewOccurrenceService(occurrenceRepo, csvExporter, publisher, validate, logr)
	technicianService := service.NewTechnicianService(technicianRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	companyHandler := handler.NewCompanyHandler(companyService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	documentHandler := handler.NewDocumentHandler(documentService)
	uploadHandler := handler.NewUploadHandler(uploadService, metricsService)
	examHandler := handler.NewMedicalExamHandler(examService)
	epiHandler := handler.NewEpiHandler(epiService)
	deliveryHandler := handler.NewDeliveryHandler(deliveryService, metricsService)
	eventHandler := handler.NewEventHandler(eventService, metricsService)
	occurrenceHandler := handler.NewOccurrenceHandler(occurrenceService, metricsService)
	technicianHandler := handler.NewTechnicianHandler(technicianService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/check-token", authHandler.CheckToken)
	api.GET("/uploads/view/:id", middleware.OptionalJWT(authService), uploadHandler.View)
	api.GET("/view/:id", middleware.OptionalJWT(authService), uploadHandler.View)

	secured := api.Group("", middleware.JWT(authService))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/me", authHandler.Me)
	secured.POST("/auth/change-password", authHandler.ChangePassword)

	catalogHandler.Register(secured)

	users := secured.Group("/users")
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	companies := secured.Group("/companies")
	companies.GET("", companyHandler.List)
	companies.GET("/:id", companyHandler.Get)
	companies.POST("", companyHandler.Create)
	companies.PUT("/:id", companyHandler.Update)
	companies.DELETE("/:id", companyHandler.Delete)

	employees := secured.Group("/employees")
	employees.GET("", employeeHandler.List)
	employees.GET("/:id", employeeHandler.Get)
	employees.POST("", employeeHandler.Create)
	employees.PUT("/:id", employeeHandler.Update)
	employees.DELETE("/:id", employeeHandler.Delete)

	documents := secured.Group("/documents")
	documents.GET("", documentHandler.List)
	documents.GET("/:id", documentHandler.Get)
	documents.POST("", documentHandler.Create)
	documents.PUT("/:id", documentHandler.Update)
	documents.DELETE("/:id", documentHandler.Delete)

	uploads := secured.Group("/uploads")
	uploads.GET("", uploadHandler.List)
	uploads.GET("/:id", uploadHandler.Get)
	uploads.POST("", uploadHandler.Create)
	uploads.PUT("/:id", uploadHandler.Update)
	uploads.PATCH("/:id/status", uploadHandler.UpdateStatus)
	uploads.DELETE("/:id", uploadHandler.Delete)

	exams := secured.Group("/medical-exams")
	exams.GET("", examHandler.List)
	exams.GET("/:id", examHandler.Get)
	exams.POST("", examHandler.Create)
	exams.PUT("/:id", examHandler.Update)
	exams.DELETE("/:id", examHandler.Delete)

	epis := secured.Group("/epis")
	epis.GET("", epiHandler.List)
	epis.GET("/:id", epiHandler.Get)
	epis.POST("", epiHandler.Create)
	epis.PUT("/:id", epiHandler.Update)
	epis.DELETE("/:id", epiHandler.Delete)

	deliveries := secured.Group("/epi-deliveries")
	deliveries.GET("", deliveryHandler.List)
	deliveries.GET("/:id", deliveryHandler.Get)
	deliveries.GET("/:id/receipt", deliveryHandler.Receipt)
	deliveries.POST("", deliveryHandler.Create)
	deliveries.PUT("/:id", deliveryHandler.Update)
	deliveries.DELETE("/:id", deliveryHandler.Delete)

	events := secured.Group("/events")
	events.GET("", eventHandler.List)
	events.GET("/:id", eventHandler.Get)
	events.GET("/:id/participants/:participantId/certificate", eventHandler.Certificate)
	events.POST("", eventHandler.Create)
	events.PUT("/:id", eventHandler.Update)
	events.DELETE("/:id", eventHandler.Delete)

	occurrences := secured.Group("/occurrences")
	occurrences.GET("", occurrenceHandler.List)
	occurrences.GET("/export", occurrenceHandler.Export)
	occurrences.GET("/:id", occurrenceHandler.Get)
	occurrences.POST("", occurrenceHandler.Create)
	occurrences.PUT("/:id", occurrenceHandler.Update)
	occurrences.DELETE("/:id", occurrenceHandler.Delete)

	technicians := secured.Group("/technicians")
	technicians.GET("", technicianHandler.List)
	technicians.GET("/:id", technicianHandler.Get)
	technicians.POST("", technicianHandler.Create)
	technicians.PUT("/:id", technicianHandler.Update)
	technicians.DELETE("/:id", technicianHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           middleware.MethodOverride(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
