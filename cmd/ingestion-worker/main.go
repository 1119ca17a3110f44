package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreddluiz/Dash-AOS/internal/config"
	"github.com/andreddluiz/Dash-AOS/internal/db"
	"github.com/andreddluiz/Dash-AOS/internal/logger"
	"github.com/andreddluiz/Dash-AOS/internal/metrics"
	"github.com/andreddluiz/Dash-AOS/internal/queue"
	"github.com/andreddluiz/Dash-AOS/internal/storage"
	"github.com/andreddluiz/Dash-AOS/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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

	log.Info().Str("version", cfg.App.Version).Msg("Starting ingestion worker")

	// Initialize database
	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	repo := db.NewRepository(database)

	// Initialize Redis client
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Initialize S3 storage
	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var metricsServer *http.Server
	if port := cfg.Workers.Import.MetricsPort; port > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	consumer := queue.NewConsumer(redisClient, cfg)
	pool := worker.NewWorkerPool(cfg.Workers.Import.Count, cfg.Workers.Import.QueueSize)
	importWorker := worker.NewImportWorker(repo, repo, s3Storage, pool, consumer.DeadLetter, m)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)

	// Jobs parked by a previous run get one more attempt
	if _, err := consumer.ReplayDeadLetters(ctx, cfg.Workers.Import.QueueSize); err != nil {
		log.Error().Err(err).Msg("Failed to replay parked import jobs")
	}

	go func() {
		log.Info().Str("queue", cfg.Redis.ImportQueue).Msg("Consuming import queue")
		if err := consumer.ConsumeImportQueue(ctx, importWorker.HandleMessage); err != nil && err != context.Canceled {
			log.Fatal().Err(err).Msg("Import consumer failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down ingestion worker...")

	// Cancel context to stop consuming, then drain running imports
	cancel()
	pool.Stop()
	if metricsServer != nil {
		metricsServer.Close()
	}

	log.Info().Msg("Ingestion worker exited")
}
