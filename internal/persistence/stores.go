package persistence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gocomet/rider-roster/internal/config"
	"github.com/gocomet/rider-roster/internal/domain/rider"
	"github.com/gocomet/rider-roster/internal/repository/cached"
	"github.com/gocomet/rider-roster/internal/repository/local"
	"github.com/gocomet/rider-roster/internal/repository/mongo"
	"github.com/gocomet/rider-roster/internal/repository/postgres"
	"github.com/gocomet/rider-roster/pkg/database"
	"github.com/gocomet/rider-roster/pkg/logger"
)

// PrimaryConnector returns the connector for the configured STORE_DRIVER. When
// redisClient is non-nil the store is wrapped with the rider cache.
func PrimaryConnector(cfg *config.Config, redisClient *redis.Client, log *logger.Logger) Connector {
	return func(ctx context.Context) (rider.Store, error) {
		var (
			store rider.Store
			err   error
		)
		switch cfg.Store.Driver {
		case config.StoreDriverPostgres:
			store, err = connectPostgres(ctx, cfg)
		default:
			store, err = connectMongo(ctx, cfg)
		}
		if err != nil {
			return nil, err
		}
		if redisClient != nil {
			store = cached.New(store, redisClient, cfg.Redis.RiderTTL, log)
		}
		return store, nil
	}
}

// SnapshotLoader returns the fallback loader, or nil when no snapshot file is configured
func SnapshotLoader(cfg *config.Config) Loader {
	if !cfg.HasFallback() {
		return nil
	}
	return func() (rider.Store, error) {
		return local.LoadFile(cfg.Store.FallbackFile)
	}
}

func connectMongo(ctx context.Context, cfg *config.Config) (rider.Store, error) {
	db, err := database.NewMongoDB(ctx, database.MongoConfig{
		URI:                    cfg.Mongo.URI,
		Database:               cfg.Mongo.Database,
		MaxPoolSize:            cfg.Mongo.MaxPoolSize,
		ServerSelectionTimeout: cfg.Mongo.ServerSelectionTimeout,
		SocketTimeout:          cfg.Mongo.SocketTimeout,
	})
	if err != nil {
		return nil, err
	}

	store := mongo.New(db, cfg.Mongo.Collection)
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}
	return store, nil
}

func connectPostgres(ctx context.Context, cfg *config.Config) (rider.Store, error) {
	db, err := database.NewPostgresDB(ctx, database.PostgresConfig{
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		DBName:      cfg.Database.Name,
		SSLMode:     cfg.Database.SSLMode,
		MaxConns:    cfg.Database.MaxConnections,
		MaxIdle:     cfg.Database.MaxIdleConns,
		MaxLifetime: cfg.Database.MaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(db, cfg.Database.MigrationsDir); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres store: %w", err)
	}
	return postgres.New(db), nil
}
