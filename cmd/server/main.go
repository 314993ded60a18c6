// Command server starts the future prediction HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/ai"
	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/ai/real"
	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/ai/stub"
	httpserver "github.com/fairyhunter13/ai-future-predictor/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/observability"
	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/storage/gcs"
	"github.com/fairyhunter13/ai-future-predictor/internal/app"
	"github.com/fairyhunter13/ai-future-predictor/internal/config"
	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
	"github.com/fairyhunter13/ai-future-predictor/internal/service/ratelimiter"
	"github.com/fairyhunter13/ai-future-predictor/internal/usecase"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()

	// Infra: DB pool and schema
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		slog.Error("schema bootstrap failed", slog.Any("error", err))
		os.Exit(1)
	}
	predictions := postgres.NewPredictionRepo(pool)
	profiles := postgres.NewProfileRepo(pool)

	// Model and image client
	var chat domain.AIClient
	var images domain.ImageGenerator
	if cfg.AIEnabled() {
		c := real.New(cfg)
		chat, images = c, c
		slog.Info("AI client initialized", slog.String("chat_model", cfg.ChatModel), slog.String("image_model", cfg.ImageModel))
	} else {
		c := stub.New()
		chat, images = c, c
		slog.Warn("OPENAI_API_KEY not set; using stub model client")
	}
	breaker := ai.NewCircuitBreakerWithConfig("chat", cfg.AICircuitFailureThreshold, cfg.AICircuitRecoveryTimeout)
	breaker.OnStateChange(func(name string, s ai.CircuitState) { observability.SetCircuitState(name, int(s)) })

	// Optional prediction events
	var events domain.EventPublisher = redpanda.Noop{}
	if cfg.EventsEnabled() {
		pub, err := redpanda.NewPublisher(ctx, cfg.KafkaBrokers, cfg.EventsTopic)
		if err != nil {
			slog.Warn("event publisher disabled", slog.Any("error", err))
		} else {
			events = pub
			defer func() {
				if err := pub.Close(); err != nil {
					slog.Error("failed to close event publisher", slog.Any("error", err))
				}
			}()
		}
	}

	// Optional photo storage
	var photos domain.PhotoStore
	if cfg.PhotoUploadEnabled() {
		store, err := gcs.NewAvatarStore(ctx, cfg)
		if err != nil {
			slog.Warn("photo upload disabled", slog.Any("error", err))
		} else {
			photos = store
			defer func() { _ = store.Close() }()
		}
	}

	// Optional per-user predict throttle
	var limiter domain.RateLimiter
	var rdb app.RedisPinger
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", slog.Any("error", err))
			os.Exit(1)
		}
		client := redis.NewClient(opts)
		defer func() { _ = client.Close() }()
		rdb = client
		limiter = ratelimiter.NewRedisLuaLimiter(client, map[string]ratelimiter.BucketConfig{
			ratelimiter.ScopePredict: ratelimiter.NewBucketConfigFromPerMinute(cfg.PredictRateLimitPerMin),
		})
	}

	// Usecases
	predictSvc := usecase.NewPredictService(predictions, chat, images, ai.NewPredictionDecoder())
	predictSvc.Breaker = breaker
	predictSvc.Events = events
	predictSvc.PublishTimeout = cfg.EventsPublishTimeout
	predictSvc.Settings = usecase.PromptSettings{
		Model:             cfg.ChatModel,
		FullMaxTokens:     cfg.FullPromptMaxTokens,
		FallbackMaxTokens: cfg.FallbackMaxTokens,
		Temperature:       cfg.ChatTemperature,
	}
	profileSvc := usecase.NewProfileService(profiles, photos, cfg.MaxPhotoBytes())

	dbCheck, redisCheck := app.BuildReadinessChecks(pool, rdb)
	srv := httpserver.NewServer(cfg, predictSvc, predictions, profileSvc, limiter, dbCheck, redisCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port), slog.String("env", cfg.AppEnv))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	if err := srvHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", slog.Any("error", err))
	}
}
