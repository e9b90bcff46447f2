package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP Configuration
	Server ServerConfig

	// Database Configuration
	Database DatabaseConfig

	// Redis Configuration
	Redis RedisConfig

	// Logging Configuration
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr      string // Listen address (host:port)
	PublicURL string // Base URL used when rendering verification/reset links
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string // Redis address (host:port)
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	publicURL := os.Getenv("PUBLIC_URL")
	if publicURL == "" {
		publicURL = "http://localhost:8080"
	}

	// Database URL - default to pakproperty.sqlite, allow override for dev
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "pakproperty.sqlite"
	}

	// Redis address - default to localhost:6379, allow override for dev/docker
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	// Logging configuration - defaults suitable for production
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	return &Config{
		Server: ServerConfig{
			Addr:      addr,
			PublicURL: publicURL,
		},
		Database: DatabaseConfig{
			URL: dbURL,
		},
		Redis: RedisConfig{
			Address: redisAddr,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}
