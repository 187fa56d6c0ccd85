package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is not set")

// This function will Load the ENVIRONMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	GO_ENV    string
	LOG_LEVEL string
	PORT      int
	// Database Configuration
	DB_DRIVER    string // pgx (default) or postgres (lib/pq)
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	// JWT Configuration
	JWT_SECRET string
	JWT_ISSUER string
	JWT_EXPIRY time.Duration
	// Redis Configuration
	REDIS_URL string
	// RabbitMQ Configuration
	MQ_URL string
	// HTTP Security
	ALLOWED_ORIGINS     string
	RATE_LIMIT_REQUESTS int
	// Background jobs
	CRON_ENABLED bool
}

func Get() (*EnvironmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	rateLimit, err := strconv.Atoi(os.Getenv("RATE_LIMIT_REQUESTS"))
	if err != nil {
		rateLimit = 100
	}

	jwtExpiry, err := time.ParseDuration(os.Getenv("JWT_EXPIRY"))
	if err != nil || jwtExpiry <= 0 {
		jwtExpiry = 24 * time.Hour
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	envVariables := &EnvironmentVariable{
		GO_ENV:    os.Getenv("GO_ENV"),
		LOG_LEVEL: getEnvOrDefault("LOG_LEVEL", "info"),
		PORT:      port,
		// Database
		DB_DRIVER:    getEnvOrDefault("DB_DRIVER", "pgx"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      getEnvOrDefault("DB_HOST", "localhost"),
		DB_PORT:      getEnvOrDefault("DB_PORT", "5432"),
		DB_SSL_MODE:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		// JWT
		JWT_SECRET: jwtSecret,
		JWT_ISSUER: getEnvOrDefault("JWT_ISSUER", "taskboard-api"),
		JWT_EXPIRY: jwtExpiry,
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// RabbitMQ
		MQ_URL: os.Getenv("MQ_URL"),
		// HTTP
		ALLOWED_ORIGINS:     getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000"),
		RATE_LIMIT_REQUESTS: rateLimit,
		// Cron defaults to enabled
		CRON_ENABLED: os.Getenv("CRON_ENABLED") != "false",
	}

	return envVariables, nil
}

// IsProduction reports whether the service runs with GO_ENV=production
func (e *EnvironmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
