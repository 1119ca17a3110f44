package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreddluiz/Dash-AOS/internal/ai"
	"github.com/andreddluiz/Dash-AOS/internal/api"
	"github.com/andreddluiz/Dash-AOS/internal/auth"
	"github.com/andreddluiz/Dash-AOS/internal/config"
	"github.com/andreddluiz/Dash-AOS/internal/dashboard"
	"github.com/andreddluiz/Dash-AOS/internal/db"
	"github.com/andreddluiz/Dash-AOS/internal/logger"
	"github.com/andreddluiz/Dash-AOS/internal/metrics"
	"github.com/andreddluiz/Dash-AOS/internal/queue"
	"github.com/andreddluiz/Dash-AOS/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting API server")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize database
	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	repo := db.NewRepository(database)

	// S3 is optional: without it uploads are not archived and async imports are off.
	var archive storage.Storage
	if cfg.Storage.S3.Bucket != "" {
		s3Storage, err := storage.NewS3Storage(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
		}
		archive = s3Storage
	}

	checks := map[string]api.HealthCheck{"database": database.PingContext}

	// Redis is optional too: it backs the import queue and shared session revocation.
	var revoked auth.RevocationStore = auth.NewMemoryRevocationStore()
	var importer *dashboard.Importer
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, async imports disabled")
	} else {
		defer redisClient.Close()
		checks["redis"] = redisClient.Ping
		revoked = auth.NewRedisRevocationStore(redisClient.Client(), cfg.Redis.RevokedPrefix)
		if archive != nil {
			importer = dashboard.NewImporter(archive, repo, queue.NewProducer(redisClient, cfg), cfg.Storage.S3.Prefix)
		}
	}

	authenticator := auth.NewStaticAuthenticator(auth.Options{
		Password:   cfg.Auth.AdminPassword,
		SigningKey: []byte(cfg.Auth.SigningKey),
		TTL:        cfg.Auth.SessionTTL,
		Issuer:     cfg.Auth.Issuer,
	}, revoked)

	var summarizer ai.Summarizer
	if cfg.AI.Enabled {
		summarizer = ai.NewClient(ai.Config{
			BaseURL:           cfg.AI.BaseURL,
			Model:             cfg.AI.Model,
			APIKey:            cfg.AI.APIKey,
			Timeout:           cfg.AI.Timeout,
			RequestsPerMinute: cfg.AI.RequestsPerMinute,
			MaxContextRecords: cfg.AI.MaxContextRecords,
		})
	}

	var uploadArchive storage.Storage
	if cfg.Dashboard.ArchiveUploads {
		uploadArchive = archive
	}
	service := dashboard.NewService(repo, uploadArchive, m, dashboard.Options{ArchivePrefix: cfg.Storage.S3.Prefix})

	refreshCtx, cancelRefresh := context.WithTimeout(context.Background(), cfg.Dashboard.RefreshTimeout)
	if err := service.Refresh(refreshCtx); err != nil {
		log.Error().Err(err).Msg("Initial record load failed, starting with an empty set")
	}
	cancelRefresh()

	viewers := dashboard.NewRegistry(dashboard.ViewerOptions{
		PageSize:        cfg.Dashboard.DefaultPageSize,
		ColumnWidth:     cfg.Dashboard.ColumnWidth,
		MinColumnWidth:  cfg.Dashboard.MinColumnWidth,
		PartNumberLimit: cfg.Dashboard.PartNumberLimit,
	}, cfg.Dashboard.ViewerTTL, cfg.Dashboard.ViewerCleanup, m)

	handler := api.NewHandler(api.Dependencies{
		Service:      service,
		Viewers:      viewers,
		Importer:     importer,
		Auth:         authenticator,
		Summarizer:   summarizer,
		Metrics:      m,
		Config:       cfg,
		HealthChecks: checks,
	})

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(handler, m, cfg.Server.AllowedOrigins)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
