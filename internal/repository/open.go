package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/erd-studio/engine/internal/models"
	"github.com/erd-studio/engine/pkg/config"
	"github.com/erd-studio/engine/pkg/database"
	appErr "github.com/erd-studio/engine/pkg/errors"
)

// Migrate creates or updates the projects table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Project{}); err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "migrate projects failed")
	}
	return nil
}

// Open builds the Gateway selected by cfg.StorageDriver. The returned func
// releases the underlying connections. SQLite files are migrated on open;
// postgres schemas are owned by cmd/migrate.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (Gateway, func() error, error) {
	opts := database.Options{Verbose: cfg.AppEnv == "development", Log: log}
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, opts)
		if err != nil {
			return nil, nil, err
		}
		return NewProjectRepository(db), closeDB(db), nil
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath, opts)
		if err != nil {
			return nil, nil, err
		}
		if err := Migrate(db); err != nil {
			_ = closeDB(db)()
			return nil, nil, err
		}
		return NewProjectRepository(db), closeDB(db), nil
	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		gw := NewRedisGateway(rdb)
		if err := gw.Check(ctx); err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		return gw, rdb.Close, nil
	case config.DriverMemory:
		return NewMemoryGateway(), func() error { return nil }, nil
	default:
		return nil, nil, appErr.New(appErr.CodeInvalid, fmt.Sprintf("unknown storage driver %q", cfg.StorageDriver))
	}
}

func closeDB(db *gorm.DB) func() error {
	return func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
}
