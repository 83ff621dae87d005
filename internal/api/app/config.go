package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseFile string        // Optional: path to SQLite database file (default: ./pizzeria.db)
	RedisAddr    string        // Optional: address of the Redis session cache (default: localhost:6379)
	RedisDB      int           // Optional: Redis logical database (default: 0)
	SessionTTL   time.Duration // Optional: credential lifetime (default: 5h)
	UploadDir    string        // Optional: directory for uploaded images (default: ./uploads)
	UploadURL    string        // Optional: public base URL for uploaded images (default: /uploads)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile: getEnvOrDefault("PIZZERIA_DATABASE_FILE", "pizzeria.db"),
		RedisAddr:    getEnvOrDefault("PIZZERIA_REDIS_ADDR", "localhost:6379"),
		RedisDB:      getEnvIntOrDefault("PIZZERIA_REDIS_DB", 0),
		SessionTTL:   getEnvDurationOrDefault("PIZZERIA_SESSION_TTL", 5*time.Hour),
		UploadDir:    getEnvOrDefault("PIZZERIA_UPLOAD_DIR", "uploads"),
		UploadURL:    getEnvOrDefault("PIZZERIA_UPLOAD_URL", "/uploads"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
