package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/brightstart/screening-api/internal/config"
	"github.com/brightstart/screening-api/internal/http/handlers"
	"github.com/brightstart/screening-api/internal/http/routes"
	"github.com/brightstart/screening-api/internal/services/archive"
	"github.com/brightstart/screening-api/internal/services/auth"
	"github.com/brightstart/screening-api/internal/services/inference"
	"github.com/brightstart/screening-api/internal/services/normalizer"
	"github.com/brightstart/screening-api/internal/services/pipeline"
	"github.com/brightstart/screening-api/internal/services/storage"
)

const archiveWorkerCount = 2

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		logger.Fatal("Failed to parse database config", zap.Error(err))
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Redis (session store)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Repositories and migrations
	recordRepo := archive.NewRepository(pool)
	userRepo := auth.NewUserRepository(pool)
	if err := recordRepo.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate predictions table", zap.Error(err))
	}
	if err := userRepo.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate users table", zap.Error(err))
	}

	// Auth
	sessions := auth.NewSessionStore(redisClient, cfg.Auth.SessionTTL)
	authService := auth.NewService(userRepo, sessions, cfg.Auth, logger)
	if err := authService.BootstrapAdmin(ctx); err != nil {
		logger.Fatal("Failed to bootstrap admin user", zap.Error(err))
	}

	// Image store (optional: predictions still work without archival copies)
	var imageStore *storage.Service
	store, err := storage.NewService(cfg.Supabase)
	if err != nil {
		logger.Warn("Image store disabled", zap.Error(err))
	} else {
		imageStore = store
	}

	// Archiver: queue-backed when RabbitMQ is up, synchronous otherwise
	var archiver pipeline.Archiver
	queue, err := archive.NewQueue(cfg.RabbitMQ.URL, recordRepo, logger)
	if err != nil {
		logger.Warn("Queue unavailable, archiving synchronously", zap.Error(err))
		archiver = archive.NewDirectArchiver(recordRepo)
	} else {
		defer queue.Close()
		for i := 1; i <= archiveWorkerCount; i++ {
			if err := queue.StartWorker(ctx, i); err != nil {
				logger.Fatal("Failed to start archive worker", zap.Error(err))
			}
		}
		archiver = queue
	}

	// Inference engine: loading failure is fatal, the service has no function
	// without the classifier.
	engine, err := inference.NewEngine(cfg.Model, logger)
	if err != nil {
		logger.Fatal("Failed to load model", zap.Error(err))
	}
	defer engine.Close()

	// Pipeline
	norm := normalizer.NewNormalizer(cfg.Upload, cfg.Model)
	var pipelineStore pipeline.ImageStore
	if imageStore != nil {
		pipelineStore = imageStore
	}
	pipe := pipeline.NewPipeline(norm, engine, archiver, pipelineStore, logger)

	var imageRemover handlers.ImageRemover
	if imageStore != nil {
		imageRemover = imageStore
	}

	// Handlers
	healthChecks := map[string]handlers.HealthFunc{
		"model": func(ctx context.Context) string {
			if len(engine.Classes()) == 0 {
				return "unhealthy: no classes loaded"
			}
			return "healthy"
		},
		"database": func(ctx context.Context) string {
			if err := pool.Ping(ctx); err != nil {
				return "unhealthy: " + err.Error()
			}
			return "healthy"
		},
		"redis": func(ctx context.Context) string {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return "unhealthy: " + err.Error()
			}
			return "healthy"
		},
		"storage": func(ctx context.Context) string {
			if imageStore == nil {
				return "not configured"
			}
			return imageStore.HealthCheck(ctx)
		},
	}

	router := routes.NewRouter(
		handlers.NewAuthHandler(authService, cfg.Auth, logger),
		handlers.NewPredictHandler(pipe, cfg.Upload, logger),
		handlers.NewRecordsHandler(recordRepo, imageRemover, logger),
		handlers.NewHealthHandler(healthChecks),
		authService,
		cfg.Auth,
		logger,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
