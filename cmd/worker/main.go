package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/erd-studio/engine/internal/queue/tasks"
	"github.com/erd-studio/engine/internal/repository"
	"github.com/erd-studio/engine/pkg/config"
	"github.com/erd-studio/engine/pkg/logger"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.RedisAddr == "" {
		log.Fatal("REDIS_ADDR is required for the persist worker")
	}

	store, release, err := repository.Open(context.Background(), cfg, log.Named("db"))
	if err != nil {
		log.Fatal("failed to open project store", zap.Error(err))
	}
	defer func() { _ = release() }()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		},
		asynq.Config{
			Concurrency: cfg.AsynqConcurrency,
			Queues:      map[string]int{tasks.QueuePersist: 1},
			Logger:      log.Named("asynq").Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	handler := tasks.NewPersistTaskHandler(store)
	mux.HandleFunc(tasks.TypeProjectPersist, handler.HandlePersist)

	errCh := make(chan error, 1)
	go func() {
		log.Info("asynq worker starting", zap.Int("concurrency", cfg.AsynqConcurrency))
		if err := srv.Run(mux); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("worker stopped with error", zap.Error(err))
	}

	// Let in-flight writes finish.
	srv.Shutdown()
}
