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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/starcoin-api/api/swagger"
	"github.com/noah-isme/starcoin-api/internal/handler"
	internalmiddleware "github.com/noah-isme/starcoin-api/internal/middleware"
	"github.com/noah-isme/starcoin-api/internal/repository"
	"github.com/noah-isme/starcoin-api/internal/service"
	"github.com/noah-isme/starcoin-api/pkg/config"
	"github.com/noah-isme/starcoin-api/pkg/export"
	"github.com/noah-isme/starcoin-api/pkg/kv"
	"github.com/noah-isme/starcoin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/starcoin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/starcoin-api/pkg/middleware/requestid"
	"github.com/noah-isme/starcoin-api/pkg/storage"
)

// @title StarCoin API
// @version 1.0.0
// @description Classroom star ledger, prize shop, lesson schedule and coin printing
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	clock := service.NewClock(loc)
	metrics := service.NewMetricsService()

	store, err := kv.Open(ctx, cfg, metrics, logr)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	repo := repository.NewCollectionRepository(store, cfg.Store.KeyPrefix, cfg.Store.BackupInterval, logr,
		repository.WithClock(clock.Now),
		repository.WithSnapshotObserver(metrics),
	)

	files, err := storage.NewLocalStorage(cfg.Attachments.StorageDir)
	if err != nil {
		return fmt.Errorf("prepare attachments dir: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Attachments.SignedURLSecret, cfg.Attachments.SignedURLTTL)
	pdf := export.NewPDFExporter(cfg.Export.PDFFontPath)
	validate := validator.New()

	attachments := service.NewAttachmentService(repo, files, signer, logr, service.AttachmentServiceConfig{
		MaxFileSize:  cfg.Attachments.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Attachments.AllowedMIMEs,
		APIPrefix:    cfg.APIPrefix,
	})
	students := service.NewStudentService(repo, cfg.Locale, export.NewCSVExporter(), pdf, validate, logr)
	shop := service.NewShopService(repo, metrics, clock, validate, logr)
	prizes := service.NewPrizeService(repo, validate, logr)
	classes := service.NewClassService(repo, attachments, clock, validate, logr)
	schedule := service.NewScheduleService(repo, attachments, validate, logr)
	coins := service.NewCoinService(repo, pdf, clock, validate, logr)
	data := service.NewDataService(repo, metrics, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics", "/health", "/ready"))

	metricsHandler := handler.NewMetricsHandler(metrics, repo)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Students:    handler.NewStudentHandler(students),
		Shop:        handler.NewShopHandler(shop),
		Prizes:      handler.NewPrizeHandler(prizes),
		Classes:     handler.NewClassHandler(classes),
		Schedule:    handler.NewScheduleHandler(schedule),
		Attachments: handler.NewAttachmentHandler(attachments),
		Data:        handler.NewDataHandler(data),
		Coins:       handler.NewCoinHandler(coins),
		Metrics:     metricsHandler,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
