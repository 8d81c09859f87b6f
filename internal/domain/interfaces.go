package domain

import (
	"context"
	"net/http"
	"time"
)

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetLogFormat() string
	GetAPIKey() string

	GetServiceEndpoint() string
	GetServiceAPIVersion() string
	GetSubscriptionKey() string
	GetBearerToken() string
	GetUserAgent() string
	GetPollPolicy() PollPolicy
	GetHTTPTimeout() time.Duration

	GetStorageBackend() string
	GetLocalStoragePath() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetContainers() Containers
}

// Containers names the object-store containers the pipeline publishes to.
type Containers struct {
	Results     string `yaml:"results"`
	Summary     string `yaml:"summary"`
	Spreadsheet string `yaml:"spreadsheet"`
	Incoming    string `yaml:"incoming"`
	Processed   string `yaml:"processed"`
}

// Response is what a Transport returns for a 2xx call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport issues HTTP calls against the analysis service. Implementations
// must report every non-2xx status as an error.
type Transport interface {
	Do(ctx context.Context, method, url string, headers map[string]string, body []byte) (*Response, error)
}

// ObjectStore is the blob storage the pipeline publishes artifacts to.
type ObjectStore interface {
	Upload(ctx context.Context, container, key string, data []byte, overwrite bool) error
	Download(ctx context.Context, container, key string) ([]byte, error)
	Delete(ctx context.Context, container, key string) error
}

// Clock measures elapsed time and suspends the caller between polls.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}
