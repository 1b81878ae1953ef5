package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/mini-crm/internal/api"
	"github.com/dom/mini-crm/internal/config"
	"github.com/dom/mini-crm/internal/logger"
	"github.com/dom/mini-crm/internal/metrics"
	"github.com/dom/mini-crm/internal/repository"
	"github.com/dom/mini-crm/internal/repository/memory"
	"github.com/dom/mini-crm/internal/repository/postgres"
	"github.com/dom/mini-crm/internal/service"
	"go.uber.org/zap"
	gormLogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot, _ := logger.New("info", "development")
		boot.Fatal("failed to load config", zap.Error(err))
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.InsecureSecret() {
		log.Warn("JWT_SECRET is unset or uses the public default; tokens can be forged")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize repositories
	repos, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer closeStore()

	m := metrics.New()

	// Initialize services
	services := service.NewServices(repos, cfg, time.Now, log, m)

	// Expired refresh tokens are swept in the background
	sweeper := service.NewSweeper(services.Refresh, cfg.RefreshSweepInterval, log, m)
	go sweeper.Run(ctx)

	// Initialize router
	router := api.NewRouter(services, cfg, log, m)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("storage", cfg.StorageDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	log.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repository.Repositories, func(), error) {
	if cfg.StorageDriver == "memory" {
		log.Warn("using in-memory storage; data is lost on restart")
		return memory.NewRepositories(time.Now), func() {}, nil
	}

	level := gormLogger.Warn
	if cfg.LogLevel == "debug" {
		level = gormLogger.Info
	}

	db, err := postgres.NewConnection(ctx, cfg.DatabaseURL, level)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return postgres.NewRepositories(db), closeFn, nil
}
