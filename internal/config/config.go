package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends accepted by STORAGE_BACKEND
const (
	BackendPostgres = "postgres"
	BackendFile     = "file"
)

// Config holds application configuration
type Config struct {
	Port                string
	LogLevel            string
	StorageBackend      string
	DBConn              string
	DataFile            string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	CacheTTL            time.Duration
	ModelPath           string
	ModelBootstrap      bool
	ModelReloadSchedule string
	RulesFile           string
	JWTSecret           string
}

// NewConfig loads configuration from environment variables.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8000"),
		LogLevel:            getEnv("LOG_LEVEL", "INFO"),
		StorageBackend:      getEnv("STORAGE_BACKEND", BackendPostgres),
		DBConn:              getEnv("DB_CONN", "host=localhost port=5432 user=credit password=credit dbname=creditai sslmode=disable"),
		DataFile:            getEnv("DATA_FILE", "data/clientes.json"),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		ModelPath:           getEnv("MODEL_PATH", "credit_model.json"),
		ModelReloadSchedule: getEnv("MODEL_RELOAD_SCHEDULE", ""),
		RulesFile:           getEnv("RULES_FILE", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	if cfg.ModelBootstrap, err = strconv.ParseBool(getEnv("MODEL_BOOTSTRAP", "true")); err != nil {
		return nil, fmt.Errorf("invalid MODEL_BOOTSTRAP: %w", err)
	}

	switch cfg.StorageBackend {
	case BackendPostgres:
		if cfg.DBConn == "" {
			return nil, fmt.Errorf("DB_CONN is required")
		}
	case BackendFile:
		if cfg.DataFile == "" {
			return nil, fmt.Errorf("DATA_FILE is required")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	if cfg.ModelReloadSchedule != "" && cfg.ModelPath == "" {
		return nil, fmt.Errorf("MODEL_RELOAD_SCHEDULE requires MODEL_PATH")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
