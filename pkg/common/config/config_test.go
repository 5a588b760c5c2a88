package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONSOLE_CONFIG", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("API_BASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerPort != "3000" || cfg.StorageBackend != "file" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.APIBaseURL != "http://localhost:8080/api" {
		t.Fatalf("unexpected api base %q", cfg.APIBaseURL)
	}
	if cfg.KafkaEnabled() {
		t.Fatalf("kafka should be disabled without brokers")
	}
	if cfg.APIRequestTimeout != 10*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.APIRequestTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONSOLE_CONFIG", "")
	t.Setenv("API_BASE_URL", "https://clinic.example.com/api/")
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("API_RETRY_ATTEMPTS", "0")
	t.Setenv("API_REQUEST_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://clinic.example.com/api" {
		t.Fatalf("trailing slash should be trimmed, got %q", cfg.APIBaseURL)
	}
	if cfg.StorageBackend != "redis" {
		t.Fatalf("backend should be lower-cased, got %q", cfg.StorageBackend)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.APIRetryAttempts != 1 {
		t.Fatalf("retry attempts should be at least 1, got %d", cfg.APIRetryAttempts)
	}
	if cfg.APIRequestTimeout != 3*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.APIRequestTimeout)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.yaml")
	content := "SERVER_PORT: \"4100\"\nSTORAGE_PATH: /var/lib/console.json\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONSOLE_CONFIG", path)
	t.Setenv("SERVER_PORT", "")
	t.Setenv("API_BASE_URL", "http://api")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerPort != "4100" || cfg.StoragePath != "/var/lib/console.json" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CONSOLE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u", PostgresPassword: "p", PostgresDB: "c", PostgresSSLMode: "disable"}
	want := "host=db user=u password=p dbname=c port=5432 sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
