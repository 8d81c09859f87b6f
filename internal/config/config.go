package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"doc-intel-pipeline/internal/domain"

	"gopkg.in/yaml.v3"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort string `yaml:"server_port"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
	APIKey     string `yaml:"api_key"`

	ServiceEndpoint   string        `yaml:"service_endpoint"`
	ServiceAPIVersion string        `yaml:"service_api_version"`
	SubscriptionKey   string        `yaml:"subscription_key"`
	BearerToken       string        `yaml:"bearer_token"`
	UserAgent         string        `yaml:"user_agent"`
	PollTimeout       time.Duration `yaml:"poll_timeout"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	HTTPTimeout       time.Duration `yaml:"http_timeout"`

	StorageBackend   string            `yaml:"storage_backend"`
	LocalStoragePath string            `yaml:"local_storage_path"`
	SupabaseURL      string            `yaml:"supabase_url"`
	SupabaseKey      string            `yaml:"supabase_service_key"`
	Containers       domain.Containers `yaml:"containers"`
}

// NewConfig creates a new configuration instance from the environment. When
// CONFIG_FILE names a YAML file, its values are applied first and the
// environment still wins.
func NewConfig() domain.Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return cfg
}

// Load is NewConfig with the overlay error reported. The returned config is
// usable even when err is non-nil.
func Load() (*AppConfig, error) {
	cfg := defaults()

	var overlayErr error
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		overlayErr = cfg.applyFile(path)
	}
	cfg.applyEnv()
	return cfg, overlayErr
}

func defaults() *AppConfig {
	return &AppConfig{
		ServerPort:        "8080",
		LogLevel:          "info",
		LogFormat:         "console",
		ServiceAPIVersion: "2024-12-01-preview",
		UserAgent:         "cu-sample-code",
		PollTimeout:       920 * time.Second,
		PollInterval:      25 * time.Second,
		HTTPTimeout:       60 * time.Second,
		StorageBackend:    "supabase",
		LocalStoragePath:  "./data",
		Containers: domain.Containers{
			Results:     "enhanced-results",
			Summary:     "summary-reports",
			Spreadsheet: "spreadsheet-results",
			Incoming:    "incoming-docs",
			Processed:   "processed-docs",
		},
	}
}

func (c *AppConfig) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file %s could not be read: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config file %s is not valid YAML: %w", path, err)
	}
	return nil
}

func (c *AppConfig) applyEnv() {
	// Cloud Run (and many PaaS) provide the listening port via PORT.
	// Keep SERVER_PORT for local/dev compatibility.
	c.ServerPort = getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", c.ServerPort))
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvOrDefault("LOG_FORMAT", c.LogFormat)
	c.APIKey = getEnvOrDefault("API_KEY", c.APIKey)

	c.ServiceEndpoint = getEnvOrDefault("SERVICE_FOR_CU", c.ServiceEndpoint)
	c.ServiceAPIVersion = getEnvOrDefault("SERVICE_API_FOR_CU", c.ServiceAPIVersion)
	c.SubscriptionKey = getEnvOrDefault("CU_SUBSCRIPTION_KEY", c.SubscriptionKey)
	c.BearerToken = getEnvOrDefault("CU_API_TOKEN", c.BearerToken)
	c.UserAgent = getEnvOrDefault("CU_USER_AGENT", c.UserAgent)
	c.PollTimeout = getEnvSecondsOrDefault("POLL_TIMEOUT_SECONDS", c.PollTimeout)
	c.PollInterval = getEnvSecondsOrDefault("POLL_INTERVAL_SECONDS", c.PollInterval)
	c.HTTPTimeout = getEnvSecondsOrDefault("HTTP_TIMEOUT_SECONDS", c.HTTPTimeout)

	c.StorageBackend = getEnvOrDefault("STORAGE_BACKEND", c.StorageBackend)
	c.LocalStoragePath = getEnvOrDefault("LOCAL_STORAGE_PATH", c.LocalStoragePath)
	c.SupabaseURL = getEnvOrDefault("SUPABASE_URL", c.SupabaseURL)
	c.SupabaseKey = getEnvOrDefault("SUPABASE_SERVICE_KEY", c.SupabaseKey)

	c.Containers.Results = getEnvOrDefault("RESULTS_CONTAINER", c.Containers.Results)
	c.Containers.Summary = getEnvOrDefault("SUMMARY_CONTAINER", c.Containers.Summary)
	c.Containers.Spreadsheet = getEnvOrDefault("SPREADSHEET_CONTAINER", c.Containers.Spreadsheet)
	c.Containers.Incoming = getEnvOrDefault("INCOMING_CONTAINER", c.Containers.Incoming)
	c.Containers.Processed = getEnvOrDefault("PROCESSED_CONTAINER", c.Containers.Processed)
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

func (c *AppConfig) GetLogFormat() string {
	return c.LogFormat
}

// GetAPIKey returns the key guarding /api/v1. Empty disables the check.
func (c *AppConfig) GetAPIKey() string {
	return c.APIKey
}

func (c *AppConfig) GetServiceEndpoint() string {
	return c.ServiceEndpoint
}

func (c *AppConfig) GetServiceAPIVersion() string {
	return c.ServiceAPIVersion
}

func (c *AppConfig) GetSubscriptionKey() string {
	return c.SubscriptionKey
}

func (c *AppConfig) GetBearerToken() string {
	return c.BearerToken
}

func (c *AppConfig) GetUserAgent() string {
	return c.UserAgent
}

// GetPollPolicy returns the policy used by server-side operations.
func (c *AppConfig) GetPollPolicy() domain.PollPolicy {
	return domain.PollPolicy{Timeout: c.PollTimeout, Interval: c.PollInterval}
}

func (c *AppConfig) GetHTTPTimeout() time.Duration {
	return c.HTTPTimeout
}

// GetStorageBackend returns "supabase" or "local".
func (c *AppConfig) GetStorageBackend() string {
	return c.StorageBackend
}

func (c *AppConfig) GetLocalStoragePath() string {
	return c.LocalStoragePath
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase service key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

func (c *AppConfig) GetContainers() domain.Containers {
	return c.Containers
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvSecondsOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.ParseFloat(value, 64); err == nil && seconds > 0 {
			return time.Duration(seconds * float64(time.Second))
		}
	}
	return defaultValue
}
