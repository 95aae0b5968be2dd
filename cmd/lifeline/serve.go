package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/JonnyWalker81/lifeline/internal/classifier"
	"github.com/JonnyWalker81/lifeline/internal/config"
	"github.com/JonnyWalker81/lifeline/internal/handlers"
	"github.com/JonnyWalker81/lifeline/internal/logger"
	"github.com/JonnyWalker81/lifeline/internal/metrics"
	"github.com/JonnyWalker81/lifeline/internal/middleware"
	"github.com/JonnyWalker81/lifeline/internal/repository"
	"github.com/JonnyWalker81/lifeline/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var (
	port string
)

const shutdownTimeout = 15 * time.Second

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override port from flag if provided
	if port != "" {
		cfg.Server.Port = port
	}

	log := logger.NewSlogLogger(cfg.LoggerConfig())
	logger.SetDefault(log)

	log.Info("starting lifeline API server",
		logger.String("env", cfg.Server.Env),
		logger.String("timezone", cfg.Analysis.Timezone),
	)

	m := metrics.New()

	// Initialize the report cache
	var reports repository.ReportRepository
	if cfg.Storage.SQLitePath != "" {
		db, err := openReportDB(cmd.Context(), cfg.Storage.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		reports = repository.NewReportRepository(db)
	} else {
		log.Warn("report cache disabled; reports cannot be fetched by id")
	}

	// Initialize services
	analysisService := service.NewAnalysisService(cfg.AnalysisOptions(), cfg.Location(), reports, m)

	var classifyHandler *handlers.ClassifyHandler
	if cfg.Classifier.APIToken != "" {
		client := classifier.NewClient(cfg.ClassifierClientConfig(), m)
		activity := classifier.NewActivityClassifier(client, cfg.ActivityOptions())
		classifyHandler = handlers.NewClassifyHandler(service.NewClassificationService(activity))
	} else {
		log.Warn("no classifier API token configured; classification routes disabled")
	}

	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(analysisService)

	// Set Gin mode based on environment
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, 10*time.Minute, "api")
	defer limiter.Stop()

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(log, m))
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(middleware.SecurityHeaders(cfg.Server.Env))

	// Health check and metrics are not rate limited
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("")
	api.Use(middleware.RateLimit(limiter))
	handlers.RegisterRoutes(api, analysisHandler, classifyHandler)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func openReportDB(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := repository.OpenSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report database: %w", err)
	}
	return db, nil
}
