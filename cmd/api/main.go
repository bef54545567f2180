package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/auditnote/auditnote-api/docs" // Swagger docs
	"github.com/auditnote/auditnote-api/internal/config"
	"github.com/auditnote/auditnote-api/internal/handlers"
	"github.com/auditnote/auditnote-api/internal/jobs"
	"github.com/auditnote/auditnote-api/internal/middleware"
	"github.com/auditnote/auditnote-api/internal/repository"
	"github.com/auditnote/auditnote-api/internal/services"
	"github.com/auditnote/auditnote-api/internal/session"
	"github.com/auditnote/auditnote-api/internal/sheets"
	"github.com/auditnote/auditnote-api/internal/storage"
	"github.com/auditnote/auditnote-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title AuditNote API
// @version 1.0
// @description REST API for recording ISO audit findings and exporting audit reports

// @contact.name API Support
// @contact.email support@auditnote.local

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry (GlitchTip) when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if !cfg.EmailEnabled() {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), time.Minute)
	defer bootCancel()

	// Open the table store and make sure every table has its header row
	store, closeStore, err := sheets.Open(bootCtx, cfg)
	if err != nil {
		logger.Error("Failed to open table store", "backend", cfg.TableBackend, "error", err)
		os.Exit(1)
	}
	if err := sheets.EnsureSchemas(bootCtx, store); err != nil {
		logger.Error("Failed to prepare tables", "error", err)
		os.Exit(1)
	}

	// Initialize image host
	host, err := storage.New(bootCtx, cfg)
	if err != nil {
		logger.Error("Failed to initialize image host", "host", cfg.ImageHost, "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized image host", "host", cfg.ImageHost)

	// Initialize repositories
	repos := repository.NewRepositories(store)

	// Live audit sessions
	sessions := session.NewStore()

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, sessions, worker, host, cfg)

	if err := svcs.Auth.EnsureDefaultAuditor(bootCtx); err != nil {
		logger.Error("Failed to seed default auditor", "error", err)
	}

	// Schedule recurring jobs
	svcs.Job.Start()

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg, host)

	// Create HTTP server. Report exports fetch every evidence photo, so the
	// write timeout is longer than a plain JSON API needs.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	if err := closeStore(); err != nil {
		logger.Error("Failed to close table store", "error", err)
	}

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config, host storage.ImageHost) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	// Report files and photos are already compressed
	router.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/api/v1/reports/export", "/uploads/"}),
	))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Evidence photos kept on local disk
	if local, ok := host.(*storage.LocalStorage); ok {
		router.Static("/uploads", local.BasePath())
	}

	// API v1 routes
	h.Register(router.Group("/api/v1"), cfg.JWTSecret)

	return router
}
