// Package config loads the exporter's flat env-file configuration: global
// connection and export defaults plus the per-view registry mapping each
// database view to its template, output pattern and insertion anchor.
package config

import (
	"context"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/visheskaras/Postgres-to-excel-for-scada/internal/logger"
)

// DefaultEnvPath is the configuration file looked up when none is given.
const DefaultEnvPath = "view_export.env"

// AppConfig is the frozen result of one configuration load.
type AppConfig struct {
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	DBSchema   string

	TemplatesFolder string
	OutputFolder    string

	DefaultStartRow    int
	DefaultStartCol    int
	AutoAdjustColumns  bool
	PreserveFormatting bool

	LogFilePath string

	Views *Registry
}

// Load reads the env file at path and resolves the full configuration.
// A missing file is not fatal: globals fall back to their defaults (or the
// process environment) and the view registry comes back empty.
func Load(ctx context.Context, path string) (*AppConfig, error) {
	if path == "" {
		path = DefaultEnvPath
	}

	if err := godotenv.Load(path); err != nil {
		logger.WarnLog(ctx, "config file %s not loaded: %v", path, err)
	}

	cfg := &AppConfig{
		DBHost:             getEnvString("DB_HOST", "localhost"),
		DBPort:             getEnvInt("DB_PORT", 5432),
		DBName:             getEnvString("DB_NAME", "postgres"),
		DBUser:             getEnvString("DB_USER", "postgres"),
		DBPassword:         getEnvString("DB_PASSWORD", ""),
		DBSSLMode:          getEnvString("DB_SSL_MODE", "disable"),
		DBSchema:           getEnvString("DB_SCHEMA", "public"),
		TemplatesFolder:    getEnvString("TEMPLATES_FOLDER", "./templates"),
		OutputFolder:       getEnvString("OUTPUT_FOLDER", "./output"),
		DefaultStartRow:    getEnvInt("DEFAULT_START_ROW", 2),
		DefaultStartCol:    getEnvInt("DEFAULT_START_COL", 1),
		AutoAdjustColumns:  getEnvBool("AUTO_ADJUST_COLUMNS", true),
		PreserveFormatting: getEnvBool("PRESERVE_FORMATTING", true),
		LogFilePath:        getEnvString("LOG_FILE_PATH", ""),
	}

	// Anchor defaults guard against nonsense in the env file itself.
	if cfg.DefaultStartRow < 1 {
		cfg.DefaultStartRow = 2
	}
	if cfg.DefaultStartCol < 1 {
		cfg.DefaultStartCol = 1
	}

	// View entries are parsed from the raw file text, not the process
	// environment: godotenv has already merged the file into os.Environ
	// and the registry must see only the file's own lines.
	cfg.Views = LoadViews(ctx, path, cfg.DefaultStartRow, cfg.DefaultStartCol)

	return cfg, nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}
