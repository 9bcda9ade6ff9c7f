package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the backend configuration.
type Config struct {
	Port         string
	Environment  string
	LogLevel     string
	MLServiceURL string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	KafkaBrokers []string

	JWTSecret       string
	HostedJWTSecret string
}

// LoadConfig loads configuration from the environment, reading a .env
// file first if one is present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		MLServiceURL: getEnv("ML_SERVICE_URL", "http://localhost:5678/forecast"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "forecastdb"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		HostedJWTSecret: getEnv("HOSTED_AUTH_JWT_SECRET", ""),
	}
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
