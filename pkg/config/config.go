package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers backing the persistence gateway.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Persist modes: direct writes from the editor, or write-behind through asynq.
const (
	PersistDirect = "direct"
	PersistQueue  = "queue"
)

// Config holds application configuration loaded from environment variables or config files.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER" validate:"required,oneof=postgres sqlite redis memory"`
	DatabaseURL   string `mapstructure:"DATABASE_URL" validate:"required_if=StorageDriver postgres,omitempty,url|uri"`
	SQLitePath    string `mapstructure:"SQLITE_PATH" validate:"required_if=StorageDriver sqlite"`

	RedisAddr     string `mapstructure:"REDIS_ADDR" validate:"required_if=StorageDriver redis,required_if=PersistMode queue,omitempty,hostname_port"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	PersistMode      string `mapstructure:"PERSIST_MODE" validate:"required,oneof=direct queue"`
	AsynqConcurrency int    `mapstructure:"ASYNQ_CONCURRENCY" validate:"gte=1,lte=1000"`

	SaveDebounce       time.Duration `mapstructure:"SAVE_DEBOUNCE" validate:"gt=0"`
	SessionIdleTimeout time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT" validate:"gt=0"`

	GoMaxProcs int `mapstructure:"GOMAXPROCS" validate:"gte=0,lte=4096"`
}

var (
	cfg      *Config
	validate = validator.New(validator.WithRequiredStructEnabled())
)

var keys = []string{
	"APP_ENV",
	"HTTP_ADDR",
	"SHUTDOWN_TIMEOUT",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"STORAGE_DRIVER",
	"DATABASE_URL",
	"SQLITE_PATH",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"PERSIST_MODE",
	"ASYNQ_CONCURRENCY",
	"SAVE_DEBOUNCE",
	"SESSION_IDLE_TIMEOUT",
	"GOMAXPROCS",
}

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", "0.0.0.0:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("STORAGE_DRIVER", DriverSQLite)
	v.SetDefault("SQLITE_PATH", "erd-studio.db")
	v.SetDefault("PERSIST_MODE", PersistDirect)
	v.SetDefault("ASYNQ_CONCURRENCY", 10)
	v.SetDefault("SAVE_DEBOUNCE", "1s")
	v.SetDefault("SESSION_IDLE_TIMEOUT", "10m")
	v.SetDefault("GOMAXPROCS", 0)

	// Optional config file
	_ = v.ReadInConfig()

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	// Durations may arrive as plain strings from the environment.
	for key, dst := range map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT":     &c.ShutdownTimeout,
		"SAVE_DEBOUNCE":        &c.SaveDebounce,
		"SESSION_IDLE_TIMEOUT": &c.SessionIdleTimeout,
	} {
		if s := v.GetString(key); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if c.GoMaxProcs > 0 {
		runtime.GOMAXPROCS(c.GoMaxProcs)
	}

	cfg = &c
	return cfg, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// Get returns the loaded configuration. Panics if not loaded.
func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call config.Load or config.MustLoad first")
	}
	return cfg
}
