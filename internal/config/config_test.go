package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"doc-intel-pipeline/internal/repository"
)

var configEnvKeys = []string{
	"PORT", "SERVER_PORT", "LOG_LEVEL", "LOG_FORMAT", "API_KEY",
	"SERVICE_FOR_CU", "SERVICE_API_FOR_CU", "CU_SUBSCRIPTION_KEY", "CU_API_TOKEN", "CU_USER_AGENT",
	"POLL_TIMEOUT_SECONDS", "POLL_INTERVAL_SECONDS", "HTTP_TIMEOUT_SECONDS",
	"STORAGE_BACKEND", "LOCAL_STORAGE_PATH", "SUPABASE_URL", "SUPABASE_SERVICE_KEY",
	"RESULTS_CONTAINER", "SUMMARY_CONTAINER", "SPREADSHEET_CONTAINER", "INCOMING_CONTAINER", "PROCESSED_CONTAINER",
	"CONFIG_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := NewConfig()

	if cfg.GetServerPort() != "8080" {
		t.Fatalf("expected default server port 8080, got %s", cfg.GetServerPort())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if cfg.GetAPIKey() != "" {
		t.Fatalf("expected api key to be empty, got %s", cfg.GetAPIKey())
	}
	if cfg.GetUserAgent() != "cu-sample-code" {
		t.Fatalf("expected default user agent, got %s", cfg.GetUserAgent())
	}
	policy := cfg.GetPollPolicy()
	if policy.Timeout != 920*time.Second || policy.Interval != 25*time.Second {
		t.Fatalf("expected 920s/25s poll policy, got %+v", policy)
	}
	if err := policy.Validate(); err != nil {
		t.Fatalf("default poll policy must be valid: %v", err)
	}
	if cfg.GetStorageBackend() != StorageBackendSupabase {
		t.Fatalf("expected supabase backend, got %s", cfg.GetStorageBackend())
	}
	c := cfg.GetContainers()
	if c.Results != "enhanced-results" || c.Summary != "summary-reports" || c.Spreadsheet != "spreadsheet-results" ||
		c.Incoming != "incoming-docs" || c.Processed != "processed-docs" {
		t.Fatalf("unexpected default containers %+v", c)
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVICE_FOR_CU", "https://cu.example.com")
	t.Setenv("CU_SUBSCRIPTION_KEY", "key")
	t.Setenv("POLL_TIMEOUT_SECONDS", "60")
	t.Setenv("POLL_INTERVAL_SECONDS", "0.5")
	t.Setenv("RESULTS_CONTAINER", "results")
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_SERVICE_KEY", "test-key")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetLogLevel() != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.GetLogLevel())
	}
	if cfg.GetServiceEndpoint() != "https://cu.example.com" || cfg.GetSubscriptionKey() != "key" {
		t.Fatalf("unexpected service settings %s %s", cfg.GetServiceEndpoint(), cfg.GetSubscriptionKey())
	}
	if p := cfg.GetPollPolicy(); p.Timeout != time.Minute || p.Interval != 500*time.Millisecond {
		t.Fatalf("unexpected poll policy %+v", p)
	}
	if cfg.GetContainers().Results != "results" {
		t.Fatalf("expected results container override, got %s", cfg.GetContainers().Results)
	}
	if cfg.GetSupabaseURL() != "http://localhost:54321" || cfg.GetSupabaseKey() != "test-key" {
		t.Fatalf("unexpected supabase settings %s %s", cfg.GetSupabaseURL(), cfg.GetSupabaseKey())
	}
}

func TestNewConfig_Fallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("POLL_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "-3")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9091" {
		t.Fatalf("expected server port 9091, got %s", cfg.GetServerPort())
	}
	if cfg.GetPollPolicy().Timeout != 920*time.Second {
		t.Fatalf("expected default poll timeout, got %s", cfg.GetPollPolicy().Timeout)
	}
	if cfg.GetHTTPTimeout() != 60*time.Second {
		t.Fatalf("expected default http timeout, got %s", cfg.GetHTTPTimeout())
	}
}

func TestLoad_YAMLOverlayThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlDoc := `
log_level: warn
service_endpoint: https://from-file.example.com
poll_timeout: 300s
poll_interval: 10s
storage_backend: local
containers:
  summary: file-summaries
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.GetLogLevel() != "error" {
		t.Fatalf("expected env to win over file, got %s", cfg.GetLogLevel())
	}
	if cfg.GetServiceEndpoint() != "https://from-file.example.com" {
		t.Fatalf("expected endpoint from file, got %s", cfg.GetServiceEndpoint())
	}
	if p := cfg.GetPollPolicy(); p.Timeout != 300*time.Second || p.Interval != 10*time.Second {
		t.Fatalf("unexpected poll policy %+v", p)
	}
	if cfg.GetStorageBackend() != StorageBackendLocal {
		t.Fatalf("expected local backend, got %s", cfg.GetStorageBackend())
	}
	c := cfg.GetContainers()
	if c.Summary != "file-summaries" || c.Results != "enhanced-results" {
		t.Fatalf("expected partial container overlay, got %+v", c)
	}
}

func TestLoad_BadFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
	if cfg.GetServerPort() != "8080" {
		t.Fatalf("expected defaults to survive, got port %s", cfg.GetServerPort())
	}
}

func TestNewContainerFromConfig_LocalBackend(t *testing.T) {
	clearEnv(t)
	cfg, _ := Load()
	cfg.StorageBackend = StorageBackendLocal
	cfg.LocalStoragePath = t.TempDir()
	cfg.ServiceEndpoint = "https://cu.example.com"
	cfg.SubscriptionKey = "key"

	c, err := NewContainerFromConfig(cfg, "test")
	if err != nil {
		t.Fatalf("NewContainerFromConfig: %v", err)
	}
	if _, ok := c.Store.(*repository.LocalBlobStore); !ok {
		t.Fatalf("expected local blob store, got %T", c.Store)
	}
	if c.Client == nil || c.OCRService == nil || c.ReportService == nil || c.CleanupService == nil {
		t.Fatalf("expected all services to be wired")
	}
}

func TestNewContainerFromConfig_Errors(t *testing.T) {
	clearEnv(t)
	cfg, _ := Load()
	cfg.StorageBackend = StorageBackendLocal
	if _, err := NewContainerFromConfig(cfg, "test"); err == nil {
		t.Fatalf("expected error without service credentials")
	}

	cfg.ServiceEndpoint = "https://cu.example.com"
	cfg.SubscriptionKey = "key"
	cfg.StorageBackend = "s3"
	if _, err := NewContainerFromConfig(cfg, "test"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}

	cfg.StorageBackend = StorageBackendSupabase
	if _, err := NewContainerFromConfig(cfg, "test"); err == nil {
		t.Fatalf("expected error when supabase settings are missing")
	}
}
