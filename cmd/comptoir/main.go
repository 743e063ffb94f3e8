package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/comptoir-erp/comptoir-erp/internal/app"
	"github.com/comptoir-erp/comptoir-erp/internal/bridge"
	"github.com/comptoir-erp/comptoir-erp/internal/observability"
	"github.com/comptoir-erp/comptoir-erp/internal/pages"
	"github.com/comptoir-erp/comptoir-erp/internal/prefs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A local .env is a convenience for development; absence is fine.
	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Preferences degrade to defaults without Redis; keep serving.
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	bridgeClient := bridge.New(cfg.BridgeURL, cfg.BridgeTimeout, logger, metrics)
	prefsStore := prefs.NewStore(redisClient)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		ProductsHandler:     pages.NewProductsHandler(logger, bridgeClient, cfg.PageSize),
		RawMaterialsHandler: pages.NewRawMaterialsHandler(logger, bridgeClient, cfg.PageSize),
		PartiesHandler:      pages.NewPartiesHandler(logger, bridgeClient, prefsStore, cfg.PageSize),
		SalesHandler:        pages.NewSalesHandler(logger, bridgeClient, prefsStore, cfg.PageSize),
		PurchasesHandler:    pages.NewPurchasesHandler(logger, bridgeClient, prefsStore, cfg.PageSize),
		TreasuryHandler:     pages.NewTreasuryHandler(logger, bridgeClient, prefsStore, cfg.PageSize),
		PrefsHandler:        pages.NewPrefsHandler(logger, prefsStore),
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
