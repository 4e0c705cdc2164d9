package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/erd-studio/engine/pkg/config"
	"github.com/erd-studio/engine/pkg/database"
	"github.com/erd-studio/engine/pkg/logger"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()
	opts := database.Options{Verbose: cfg.AppEnv == "development", Log: log}
	var db *gorm.DB
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err = database.OpenPostgres(ctx, cfg.DatabaseURL, opts)
	case config.DriverSQLite:
		db, err = database.OpenSQLite(ctx, cfg.SQLitePath, opts)
	default:
		log.Info("storage driver has no schema", zap.String("driver", cfg.StorageDriver))
		return
	}
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := runMigrations(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	fmt.Fprintln(os.Stdout, "migrations completed")
}
