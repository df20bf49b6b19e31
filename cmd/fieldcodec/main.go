package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fieldcodec/internal/config"
	"github.com/kailas-cloud/fieldcodec/internal/db"
	"github.com/kailas-cloud/fieldcodec/internal/db/memory"
	dbRedis "github.com/kailas-cloud/fieldcodec/internal/db/redis"
	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
	logpkg "github.com/kailas-cloud/fieldcodec/internal/logger"
	"github.com/kailas-cloud/fieldcodec/internal/metrics"
	chiTransport "github.com/kailas-cloud/fieldcodec/internal/transport/chi"
	healthuc "github.com/kailas-cloud/fieldcodec/internal/usecase/health"
	"github.com/kailas-cloud/fieldcodec/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/fieldcodec/internal/usecase/search"
	"github.com/kailas-cloud/fieldcodec/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level, cfg.Shard.Name)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting fieldcodec shard",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	types := fieldtype.NewRegistry()
	s, err := cfg.Schema.Build(types.CheckField)
	if err != nil {
		logger.Fatal("Invalid schema", zap.Error(err))
	}
	logger.Info("Schema loaded",
		zap.String("schema", s.Name()),
		zap.Int("fields", len(s.Fields())),
	)

	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterCodecMetrics()

	indexSvc := indexing.New(s, types, store, logger)
	searchSvc := searchuc.New(s, types, store, logger).
		WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	healthSvc := healthuc.New(store, cfg.Shard.Name)

	server := chiTransport.NewServer(indexSvc, searchSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore picks the storage backend. Valkey speaks the same protocol as Redis.
func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewStore(), nil
	case config.DriverRedis, config.DriverValkey:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Addrs,
			Username:  cfg.Username,
			Password:  cfg.Password,
			DB:        cfg.DB,
			KeyPrefix: cfg.KeyPrefix,
		})
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
