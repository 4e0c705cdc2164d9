package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/erd-studio/engine/internal/api"
	"github.com/erd-studio/engine/internal/api/handlers"
	"github.com/erd-studio/engine/internal/api/validators"
	"github.com/erd-studio/engine/internal/editor"
	"github.com/erd-studio/engine/internal/queue"
	"github.com/erd-studio/engine/internal/repository"
	"github.com/erd-studio/engine/internal/services"
	"github.com/erd-studio/engine/internal/templates"
	"github.com/erd-studio/engine/pkg/config"
	"github.com/erd-studio/engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("Starting ERD Studio Engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("storage", cfg.StorageDriver),
		zap.String("persist_mode", cfg.PersistMode),
	)

	ctx := context.Background()
	store, release, err := repository.Open(ctx, cfg, log.Named("db"))
	if err != nil {
		log.Fatal("Failed to open project store", zap.Error(err))
	}
	defer func() {
		if err := release(); err != nil {
			log.Warn("store close failed", zap.Error(err))
		}
	}()
	log.Info("Project store ready")

	// Editor sessions write through the store, or through the persist queue.
	var sessionStore editor.Gateway = store
	if cfg.PersistMode == config.PersistQueue {
		client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		sessionStore = queue.NewWriteBehind(store, client)
	}

	registry := editor.NewRegistry(func() *editor.Session {
		return editor.New(sessionStore,
			editor.WithDebounce(cfg.SaveDebounce),
			editor.WithLogger(logger.Named("editor")),
		)
	}, cfg.SessionIdleTimeout, logger.Named("registry"))

	runCtx, stopRegistry := context.WithCancel(ctx)
	registryDone := make(chan struct{})
	go func() {
		defer close(registryDone)
		registry.Run(runCtx)
	}()

	var checks []repository.Checker
	if c, ok := store.(repository.Checker); ok {
		checks = append(checks, c)
	}
	var checkOrigin func(*http.Request) bool
	if cfg.AppEnv == "development" {
		checkOrigin = func(*http.Request) bool { return true }
	}

	v := validators.New()
	router := api.NewRouter(api.Dependencies{
		HealthHandler:   handlers.NewHealthHandler(checks...),
		ProjectsHandler: handlers.NewProjectsHandler(services.NewProjectService(store, templates.New(), registry), v),
		DiagramHandler:  handlers.NewDiagramHandler(registry, handlers.NewDispatcher(v, uuid.NewString), checkOrigin),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}

	// Flush every open diagram before the store goes away.
	stopRegistry()
	<-registryDone
	log.Info("server exited gracefully")
}
