package config

import (
	"os"
	"strings"
	"time"
)

// BackendConfig describes the forecast backend upstream.
type BackendConfig struct {
	Name        string
	Instances   []string
	Timeout     time.Duration
	HealthCheck string
}

// GatewayConfig holds the gateway configuration.
type GatewayConfig struct {
	Port    string
	Backend BackendConfig
}

// LoadConfig reads gateway settings from the environment. The backend
// may run as several instances behind the round-robin balancer, listed
// comma-separated in FORECAST_BACKEND_URLS.
func LoadConfig() *GatewayConfig {
	return &GatewayConfig{
		Port: getEnv("GATEWAY_PORT", "8000"),
		Backend: BackendConfig{
			Name:        "forecast-backend",
			Instances:   splitURLs(getEnv("FORECAST_BACKEND_URLS", "http://localhost:8080")),
			Timeout:     30 * time.Second,
			HealthCheck: "/health",
		},
	}
}

func splitURLs(raw string) []string {
	var urls []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
