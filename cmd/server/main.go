package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecomarket/marketplace/config"
	"github.com/ecomarket/marketplace/internal/email"
	"github.com/ecomarket/marketplace/internal/health"
	"github.com/ecomarket/marketplace/internal/infrastructure/postgres"
	"github.com/ecomarket/marketplace/internal/keywords"
	ctxlog "github.com/ecomarket/marketplace/internal/log"
	"github.com/ecomarket/marketplace/internal/metrics"
	"github.com/ecomarket/marketplace/internal/storage"
	httptransport "github.com/ecomarket/marketplace/internal/transport/http"
	"github.com/ecomarket/marketplace/internal/transport/http/handler"
	"github.com/ecomarket/marketplace/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := postgres.Migrate(ctx, cfg.DatabaseURL); err != nil {
		stop()
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	imageStore, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Endpoint:      cfg.S3Endpoint,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		stop()
		log.Fatalf("image store: %v", err)
	}

	var expander keywords.Expander
	expander, err = keywords.NewGeminiExpander(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		stop()
		log.Fatalf("gemini: %v", err)
	}

	healthDeps := map[string]health.Pinger{"postgres": pool}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		expander = keywords.NewCachedExpander(expander, redisClient,
			time.Duration(cfg.KeywordCacheTTLSec)*time.Second, logger)
		healthDeps["redis"] = redisPinger{redisClient}
	}

	// Users
	userRepo := postgres.NewUserRepository(pool)
	emailSender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, emailSender, []byte(cfg.JWTSecret), logger)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Products
	productRepo := postgres.NewProductRepository(pool)
	productUsecase := usecase.NewProductUsecase(productRepo, imageStore, logger)
	productHandler := handler.NewProductHandler(productUsecase, logger)

	// Search
	searchUsecase := usecase.NewSearchUsecase(productRepo, expander,
		cfg.SearchAIMinQueryLen, time.Duration(cfg.SearchTimeoutSec)*time.Second, logger)
	searchHandler := handler.NewSearchHandler(searchUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(healthDeps, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, productHandler, searchHandler, []byte(cfg.JWTSecret)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis close", "error", err)
		}
	}
}

// redisPinger adapts *redis.Client to the health.Pinger interface.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
