package main

import (
	"context"
	"log"
	"time"

	"github.com/gocomet/rider-roster/internal/config"
	"github.com/gocomet/rider-roster/internal/persistence"
	"github.com/gocomet/rider-roster/internal/service/roster"
	"github.com/gocomet/rider-roster/pkg/logger"
	"github.com/gocomet/rider-roster/pkg/monitoring"
)

// seed resets the primary store to the sample roster
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
		LogLevel:   cfg.NewRelic.LogLevel,
	})
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
	}
	defer nrApp.Shutdown(10 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.ConnectTimeout+30*time.Second)
	defer cancel()

	// The seed always targets the primary store; the snapshot is never rewritten
	store, err := persistence.PrimaryConnector(cfg, nil, appLogger)(ctx)
	if err != nil {
		appLogger.Fatal("Failed to connect to rider store", logger.Err(err))
	}
	defer store.Close(context.Background())

	txn := nrApp.StartTransaction("seed")
	defer txn.End()

	n, err := roster.NewService(store, appLogger, nrApp).Reset(ctx)
	if err != nil {
		txn.NoticeError(err)
		appLogger.Fatal("Failed to seed riders", logger.Err(err), logger.Int("inserted", n))
	}

	appLogger.Info("Seed completed",
		logger.String("store", store.Name()),
		logger.Int("riders", n),
	)
}
