package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds source database connection settings.
// Driver is either "mysql" (default) or "postgres".
type DatabaseConfig struct {
	Driver             string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// CacheConfig controls how long a loaded dataset stays valid and where it is kept.
type CacheConfig struct {
	Backend       string
	TTLSec        int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
	Mode  string
	File  string
	// Output is "stdout" (default) or "stderr".
	Output string
}

// ReportConfig holds defaults for generated artifacts.
type ReportConfig struct {
	DefaultTitle    string
	DefaultDays     int
	IncludeDetailed bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	Cache    CacheConfig
	Log      LogConfig
	Report   ReportConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	driver := getEnv("DB_DRIVER", "mysql")
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Driver:             driver,
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", defaultPort(driver)),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Cache: CacheConfig{
			Backend:       getEnv("CACHE_BACKEND", "memory"),
			TTLSec:        getEnvInt("CACHE_TTL_SEC", 3600),
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			KeyPrefix:     getEnv("CACHE_KEY_PREFIX", "dmsreport"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Mode:   getEnv("LOG_MODE", "json"),
			File:   getEnv("LOG_FILE", ""),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Report: ReportConfig{
			DefaultTitle:    getEnv("REPORT_DEFAULT_TITLE", "DMS Analytics Report"),
			DefaultDays:     getEnvInt("REPORT_DEFAULT_DAYS", 30),
			IncludeDetailed: getEnvBool("REPORT_INCLUDE_DETAILED", true),
		},
	}
}

func defaultPort(driver string) string {
	if driver == "postgres" {
		return "5432"
	}
	return "3306"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
