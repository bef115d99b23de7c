package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/recipe-manager/backend/config"
	"github.com/pageza/recipe-manager/backend/internal/api"
	"github.com/pageza/recipe-manager/backend/internal/database"
	"github.com/pageza/recipe-manager/backend/internal/logger"
	"github.com/pageza/recipe-manager/backend/internal/metrics"
	"github.com/pageza/recipe-manager/backend/internal/middleware"
	"github.com/pageza/recipe-manager/backend/internal/router"
	"github.com/pageza/recipe-manager/backend/internal/server"
	"github.com/pageza/recipe-manager/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLog, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zapLog); err != nil {
		zapLog.Fatal("Server stopped with error", zap.Error(err))
	}
	zapLog.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting recipe API",
		zap.String("environment", string(cfg.Environment)),
		zap.String("provider", cfg.AI.Provider),
		zap.String("api_key", cfg.AI.MaskedKey()),
	)

	db, err := database.New(cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(db.DB, cfg.Server.MigrationsDir, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = database.NewRedisClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn("Redis unavailable, continuing without cache and shared rate limits", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	m := metrics.New()

	images, err := newImageStore(ctx, cfg.Upload, log)
	if err != nil {
		return err
	}

	provider, err := newChatProvider(ctx, cfg.AI, log)
	if err != nil {
		return err
	}
	defer closeProvider(provider, log)

	genOpts := []service.GenerationOption{service.WithMetrics(m)}
	if cfg.AI.ImagesEnabled {
		genOpts = append(genOpts, service.WithImageGenerator(
			service.NewImageService(cfg.AI, images, cfg.Upload.MaxDimension, m, log),
		))
	}
	if cfg.Cache.Enabled && redisClient != nil {
		genOpts = append(genOpts, service.WithRecipeCache(service.NewRedisRecipeCache(redisClient, cfg.Cache.TTL)))
	}
	generator := service.NewGenerationService(provider, log, genOpts...)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewGenerationRateLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window, log)
	}

	recipes := service.NewRecipeService(db.DB, service.LocalEmbedder{}, m, log)

	handlers := api.Handlers{
		Recipes:  api.NewRecipeHandler(recipes, images, cfg.Upload, m, log),
		Generate: api.NewGenerateHandler(generator, limiter),
		Health:   api.NewHealthHandler(db, log),
		Metrics:  m,
	}

	srv := server.New(cfg.Server, router.SetupRouter(cfg, handlers, log), log)
	return srv.Run(ctx)
}

func newImageStore(ctx context.Context, cfg config.UploadConfig, log *zap.Logger) (service.ImageStore, error) {
	if cfg.Storage == "s3" {
		s3Config, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure S3: %w", err)
		}
		return service.NewS3ImageStore(s3Config, log), nil
	}
	store, err := service.NewLocalImageStore(cfg.LocalDir, cfg.PublicBaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare image directory: %w", err)
	}
	return store, nil
}

func newChatProvider(ctx context.Context, cfg config.AIConfig, log *zap.Logger) (service.ChatProvider, error) {
	if cfg.Provider == "gemini" {
		p, err := service.NewGeminiChatProvider(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return p, nil
	}
	return service.NewOpenAIChatProvider(cfg, log), nil
}

// closeProvider releases providers that hold a client connection.
func closeProvider(p service.ChatProvider, log *zap.Logger) {
	c, ok := p.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn("Failed to close chat provider", zap.Error(err))
	}
}
