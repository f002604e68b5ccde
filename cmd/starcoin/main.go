package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/starcoin-api/internal/repository"
	"github.com/noah-isme/starcoin-api/internal/service"
	"github.com/noah-isme/starcoin-api/pkg/config"
	"github.com/noah-isme/starcoin-api/pkg/kv"
	"github.com/noah-isme/starcoin-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(openDataService).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// openDataService wires the data service against the configured store.
func openDataService(ctx context.Context) (*service.DataService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Log.Format = "console"
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	clock := service.NewClock(loc)

	store, err := kv.Open(ctx, cfg, nil, logr)
	if err != nil {
		return nil, nil, err
	}
	repo := repository.NewCollectionRepository(store, cfg.Store.KeyPrefix, cfg.Store.BackupInterval, logr,
		repository.WithClock(clock.Now))

	closeFn := func() {
		if err := store.Close(); err != nil {
			logr.Warn("failed to close store", zap.Error(err))
		}
		_ = logr.Sync()
	}
	return service.NewDataService(repo, nil, logr), closeFn, nil
}
