package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/happyscroll/verdict-api/internal/api/handler"
	"github.com/happyscroll/verdict-api/internal/api/middleware"
	"github.com/happyscroll/verdict-api/internal/config"
	"github.com/happyscroll/verdict-api/internal/infrastructure/cache"
	"github.com/happyscroll/verdict-api/internal/infrastructure/gemini"
	"github.com/happyscroll/verdict-api/internal/infrastructure/vision"
	"github.com/happyscroll/verdict-api/internal/infrastructure/youtube"
	"github.com/happyscroll/verdict-api/internal/usecase"
)

const (
	serviceName    = "HappyScroll Verdict API"
	serviceVersion = "1.0.0"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Single-flight and the in-process fallbacks are per-process; the
	// instance id distinguishes processes in logs and stats.
	instanceID := uuid.NewString()
	logger.Info("starting up",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("instance_id", instanceID),
	)

	ctx := context.Background()

	verdictCache := selectCacheBackend(ctx, cfg.Cache, logger)

	ytClient, err := youtube.NewClient(ctx, cfg.YouTube.APIKey)
	if err != nil {
		return fmt.Errorf("youtube client: %w", err)
	}

	thumbnails, err := vision.NewClassifier(ctx, cfg.Vision.SafetyThreshold)
	if err != nil {
		return fmt.Errorf("vision classifier: %w", err)
	}
	defer thumbnails.Close()

	transcripts := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model)

	loc, err := time.LoadLocation(cfg.RateLimit.Timezone)
	if err != nil {
		return fmt.Errorf("rate limit timezone: %w", err)
	}

	svc := usecase.NewVerdictService(
		ytClient,
		transcripts,
		thumbnails,
		verdictCache,
		usecase.NewDailyLimiter(cfg.RateLimit.GlobalDailyLimit, loc),
		usecase.NewClientLimiter(cfg.RateLimit.ClientDailyLimit, loc),
		usecase.VerdictServiceConfig{
			CacheTTL:     cfg.Cache.TTL(),
			BuildTimeout: 75 * time.Second,
		},
	)

	r := setupRouter(logger, handler.NewVerdictHandler(svc))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      withCORS(r),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// selectCacheBackend prefers the shared Redis backend when configured and
// reachable, otherwise falls back to the in-process cache. Runtime Redis
// failures degrade individual requests, not the whole service.
func selectCacheBackend(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) cache.VerdictCache {
	if cfg.BackendURL == "" {
		logger.Info("using in-process verdict cache", slog.Int("ttl_days", cfg.TTLDays))
		return cache.NewMemoryVerdictCache(cfg.TTLDays)
	}

	opts, err := redis.ParseURL(cfg.BackendURL)
	if err != nil {
		logger.Warn("invalid CACHE_BACKEND_URL, falling back to in-process cache",
			slog.String("error", err.Error()))
		return cache.NewMemoryVerdictCache(cfg.TTLDays)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, falling back to in-process cache",
			slog.String("error", err.Error()))
		_ = client.Close()
		return cache.NewMemoryVerdictCache(cfg.TTLDays)
	}

	logger.Info("using redis verdict cache", slog.Int("ttl_days", cfg.TTLDays))
	return cache.NewRedisVerdictCache(client, cfg.TTLDays)
}

func setupRouter(logger *slog.Logger, vh *handler.VerdictHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/", handler.Root(serviceName, serviceVersion))
	r.Get("/api/health", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/happyScroll/v1", func(r chi.Router) {
		r.Post("/verdict", vh.Verdict)
		r.Get("/cache/stats", vh.CacheStats)
		r.Post("/cache/clear", vh.CacheClear)
	})

	return r
}

// withCORS permits browser-extension origins. The allow-list is wide by
// design: extension ids are not enumerable at deploy time.
func withCORS(h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Client-Id"},
		AllowCredentials: false,
	}).Handler(h)
}
