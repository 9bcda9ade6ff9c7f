package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	vars := map[string]string{
		"PORT":           "9000",
		"ENVIRONMENT":    "test",
		"ML_SERVICE_URL": "http://ml:5678/forecast",
		"KAFKA_BROKERS":  "kafka-1:9092, kafka-2:9092",
	}
	for key, value := range vars {
		os.Setenv(key, value)
	}
	defer func() {
		for key := range vars {
			os.Unsetenv(key)
		}
	}()

	cfg := LoadConfig()

	if cfg.Port != "9000" {
		t.Errorf("expected Port '9000', got %q", cfg.Port)
	}
	if cfg.Environment != "test" {
		t.Errorf("expected Environment 'test', got %q", cfg.Environment)
	}
	if cfg.MLServiceURL != "http://ml:5678/forecast" {
		t.Errorf("expected ML service URL to be read, got %q", cfg.MLServiceURL)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Errorf("expected two trimmed brokers, got %v", cfg.KafkaBrokers)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "ML_SERVICE_URL", "KAFKA_BROKERS", "DB_NAME"} {
		os.Unsetenv(key)
	}

	cfg := LoadConfig()

	if cfg.Port != "8080" {
		t.Errorf("expected default port, got %q", cfg.Port)
	}
	if cfg.DBName != "forecastdb" {
		t.Errorf("expected default db name, got %q", cfg.DBName)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development mode by default")
	}
	if cfg.KafkaBrokers != nil {
		t.Errorf("expected no brokers by default, got %v", cfg.KafkaBrokers)
	}
}
