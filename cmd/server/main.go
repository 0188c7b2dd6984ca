package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/restoflow/restoflow/internal/httpx"
	"github.com/restoflow/restoflow/internal/pkg/cache"
	"github.com/restoflow/restoflow/internal/pkg/telemetry"
	"github.com/restoflow/restoflow/internal/service"
	"github.com/restoflow/restoflow/internal/storage"
)

func main() {
	telemetry.InitLogger(getEnv("LOG_LEVEL", "info"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "restoflow"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	store, err := storage.Open(getEnv("DB_PATH", "restoflow.db"))
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	redisCache := cache.NewRedisCache(getEnv("REDIS_ADDR", "localhost:6379"), "restoflow")

	secret := []byte(getEnv("JWT_SECRET", ""))
	if len(secret) == 0 {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	notifier := service.NewNotifier(store)
	handler := httpx.NewHandler(
		service.NewAuthService(store, secret, getDuration("TOKEN_TTL", 24*time.Hour)),
		service.NewUserService(store),
		service.NewCatalogService(store, redisCache, getDuration("CATALOG_CACHE_TTL", 5*time.Minute)),
		service.NewOrderService(store, notifier),
		service.NewPaymentService(store),
		notifier,
		service.NewTableService(store),
	)

	addr := ":" + getEnv("PORT", "8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(httpx.NewRouter(handler), "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("http server running", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("invalid duration, using fallback", "key", key, "fallback", fallback)
	}
	return fallback
}
