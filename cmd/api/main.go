package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/gocomet/rider-roster/internal/api/handlers"
	"github.com/gocomet/rider-roster/internal/api/routes"
	"github.com/gocomet/rider-roster/internal/config"
	"github.com/gocomet/rider-roster/internal/domain/rider"
	"github.com/gocomet/rider-roster/internal/persistence"
	"github.com/gocomet/rider-roster/internal/service/roster"
	"github.com/gocomet/rider-roster/pkg/cache"
	"github.com/gocomet/rider-roster/pkg/logger"
	"github.com/gocomet/rider-roster/pkg/monitoring"
)

const redisStatsInterval = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Rider Roster API",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
		logger.String("store_driver", cfg.Store.Driver),
	)

	// Initialize New Relic
	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
		LogLevel:   cfg.NewRelic.LogLevel,
	})
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
	} else if nrApp.IsEnabled() {
		appLogger.Info("New Relic APM initialized successfully",
			logger.String("app_name", cfg.NewRelic.AppName))
	} else {
		appLogger.Info("New Relic APM disabled")
	}
	defer nrApp.Shutdown(10 * time.Second)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Redis is an optional cache in front of the primary store
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cache.Config{
			Host:        cfg.Redis.Host,
			Port:        cfg.Redis.Port,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			MaxRetries:  cfg.Redis.MaxRetries,
			PoolSize:    cfg.Redis.PoolSize,
			MinIdleConn: cfg.Redis.MinIdleConn,
			DialTimeout: cfg.Redis.DialTimeout,
			ReadTimeout: cfg.Redis.ReadTimeout,
		})
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without rider cache", logger.Err(err))
			redisClient = nil
		} else {
			appLogger.Info("Connected to Redis successfully")
			defer cache.Close(redisClient)
			go reportRedisStats(ctx, redisClient, nrApp)
		}
	}

	// Select the rider store in the background so the listener comes up immediately
	selector := persistence.New(persistence.Options{
		Primary:        persistence.PrimaryConnector(cfg, redisClient, appLogger),
		Fallback:       persistence.SnapshotLoader(cfg),
		ConnectTimeout: cfg.Store.ConnectTimeout,
		Production:     cfg.IsProduction(),
		Logger:         appLogger,
		OnSelected: func(state persistence.State, store rider.Store, elapsed time.Duration) {
			nrApp.RecordStoreSelected(state.String(), store.Name(), float64(elapsed.Milliseconds()))
		},
	})
	selector.Start(ctx)
	appLogger.Info("Rider store selection started",
		logger.Bool("fallback_configured", cfg.HasFallback()),
		logger.Bool("redis_cache", redisClient != nil),
	)

	riderService := roster.NewService(selector, appLogger, nrApp)

	if cfg.Features.EnableSeed {
		go func() {
			<-selector.Ready()
			if !selector.Available() {
				return
			}
			if _, err := riderService.SeedIfEmpty(ctx); err != nil {
				appLogger.Error("Failed to seed sample riders", logger.Err(err))
			}
		}()
	}

	h := handlers.NewHandlers(riderService, selector, appLogger, cfg.Server.Env)

	// Initialize Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	routes.SetupRoutes(router, h, routes.Options{
		Logger:         appLogger,
		NewRelic:       nrApp.Agent(),
		Registry:       registry,
		Availability:   selector,
		CORS:           cfg.CORS,
		BodyLimit:      cfg.Server.BodyLimitBytes,
		RequestTimeout: cfg.Server.RequestTimeout,
		RequestLogging: cfg.Features.EnableRequestLogging,
	})

	appLogger.Info("Routes configured successfully")

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Server starting", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for an interrupt signal or a fatal startup failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...", logger.String("signal", sig.String()))
	case err := <-selector.Fatal():
		appLogger.Error("Rider store selection failed", logger.Err(err))
		exitCode = 1
	case err := <-serverErr:
		appLogger.Error("Failed to start server", logger.Err(err))
		exitCode = 1
	}
	stop()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}
	if err := selector.Close(shutdownCtx); err != nil {
		appLogger.Error("Failed to close rider store", logger.Err(err))
	}

	appLogger.Info("Server stopped gracefully")

	if exitCode != 0 {
		cache.Close(redisClient)
		nrApp.Shutdown(5 * time.Second)
		appLogger.Sync()
		os.Exit(exitCode)
	}
}

func reportRedisStats(ctx context.Context, client *redis.Client, nr *monitoring.NewRelicApp) {
	if !nr.IsEnabled() {
		return
	}
	ticker := time.NewTicker(redisStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			nr.RecordRedisPoolStats(cache.GetClientStats(client))
		}
	}
}
