package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/internal/handler"
	mid "storefront-service/internal/middleware"
	"storefront-service/internal/service"
	"storefront-service/internal/store"
	"storefront-service/internal/validation"
	"storefront-service/pkg/config"
	"storefront-service/pkg/database"
	"storefront-service/pkg/jwtutil"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	promclient "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const tokenPurgeInterval = time.Hour

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting storefront-service", appConfig.LogConfig()...)

	// Initialize database
	db, err := database.Open(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize Prometheus metrics
	metrics := prometheus.NewMetrics(appConfig.Metrics.Prefix, promclient.DefaultRegisterer, promclient.DefaultGatherer)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize JWT utility
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey: appConfig.JWT.SigningKey,
		AccessTTL:  appConfig.JWT.AccessTTL,
		RefreshTTL: appConfig.JWT.RefreshTTL,
	})

	st := store.New(db)
	identity := service.NewIdentityService(st, jwt, metrics)
	h := handler.New(handler.Options{
		Catalog:  service.NewCatalogService(st, metrics),
		Overview: service.NewOverviewService(st, metrics),
		Orders:   service.NewOrderService(st, metrics),
		Identity: identity,
		DB:       db,
		Pretty:   appConfig.Server.RendererMode == config.RendererPretty,
	})

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.EchoValidator{}
	e.HTTPErrorHandler = handler.ErrorHandler(appConfig.Server.RendererMode == config.RendererPretty)

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware(metrics))
	e.Use(logger.Middleware(log))
	e.Use(mid.AllowedHosts(appConfig.Server.AllowedHosts))

	// Routes
	h.Routes(e, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go purgeTokens(ctx, identity, log)

	// Start server
	port := appConfig.Server.Port
	go func() {
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}

// purgeTokens periodically drops blacklist entries of expired refresh tokens
func purgeTokens(ctx context.Context, identity *service.IdentityService, log *zap.Logger) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := identity.PurgeExpiredTokens(ctx)
			if err != nil {
				log.Error("Failed to purge expired tokens", zap.Error(err))
				continue
			}
			if purged > 0 {
				log.Info("Purged expired tokens", zap.Int64("count", purged))
			}
		}
	}
}
