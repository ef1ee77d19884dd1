package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"agriconnect/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port           string
	GinMode        string
	DBDriver       string
	DatabaseURL    string
	SessionSecret  string
	JWTSecret      string
	UploadDir      string
	MaxUploadBytes int64
	LogLevel       string
}

// Load reads configuration from the environment, after an optional .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", "16777216"), 10, 64)
	if err != nil || maxUpload <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be a positive integer")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        os.Getenv("GIN_MODE"),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DatabaseURL:    getEnv("DATABASE_URL", "agriconnect.db"),
		SessionSecret:  getEnv("SESSION_SECRET", "agriconnect_session_secret_change_me"),
		JWTSecret:      getEnv("JWT_SECRET", "agriconnect_jwt_secret_change_me"),
		UploadDir:      getEnv("UPLOAD_DIR", "static/images"),
		MaxUploadBytes: maxUpload,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
	if cfg.DBDriver != DriverSQLite && cfg.DBDriver != DriverPostgres {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// InitDB opens the configured database, tunes the pool and migrates all models
func InitDB(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		dialector = sqlite.Open(sqliteDSN(cfg.DatabaseURL))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}
	if cfg.DBDriver == DriverSQLite {
		// SQLite has a single writer; one connection keeps transactions serialized
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	slog.Info("database connected and migrated", "driver", cfg.DBDriver)
	return db, nil
}

// Migrate creates or updates every table the marketplace uses
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.Review{},
		&models.OrderStatusHistory{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
