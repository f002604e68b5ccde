package kv

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/starcoin-api/pkg/config"
	"github.com/noah-isme/starcoin-api/pkg/database"
)

// Open builds the store selected by cfg.Store.Driver, applying the optional
// quota and instrumentation wrappers.
func Open(ctx context.Context, cfg *config.Config, observer Observer, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		store Store
		err   error
	)

	switch cfg.Store.Driver {
	case config.StoreMemory:
		store = NewMemoryStore()
	case config.StoreBadger:
		store, err = OpenBadger(BadgerConfig{Path: cfg.Store.Path, SyncWrites: true}, logger)
	case config.StoreSQLite, "":
		db, openErr := database.NewSQLite(cfg.Store.Path)
		if openErr != nil {
			return nil, fmt.Errorf("open sqlite store: %w", openErr)
		}
		store, err = OpenSQLStore(ctx, db)
		if err != nil {
			_ = db.Close()
		}
	case config.StorePostgres:
		db, openErr := database.NewPostgres(ctx, cfg.Database)
		if openErr != nil {
			return nil, fmt.Errorf("open postgres store: %w", openErr)
		}
		store, err = OpenSQLStore(ctx, db)
		if err != nil {
			_ = db.Close()
		}
	case config.StoreRedis:
		client, openErr := OpenRedis(cfg.Redis)
		if openErr != nil {
			return nil, fmt.Errorf("open redis store: %w", openErr)
		}
		store = NewRedisStore(client)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("key/value store opened", zap.String("driver", cfg.Store.Driver), zap.Int64("quota_bytes", cfg.Store.QuotaBytes))

	return Instrument(WithQuota(store, cfg.Store.QuotaBytes), observer), nil
}
