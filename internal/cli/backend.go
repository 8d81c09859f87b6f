package cli

import (
	"os"

	"doc-intel-pipeline/internal/config"
	"doc-intel-pipeline/internal/contentunderstanding"
	"doc-intel-pipeline/internal/domain"
	"doc-intel-pipeline/pkg/logger"
)

// ConfigBackend builds collaborators from the environment and the optional
// CONFIG_FILE overlay.
type ConfigBackend struct {
	cfg    *config.AppConfig
	logger domain.Logger
}

// NewConfigBackend loads the configuration. Logs go to stderr so stdout
// stays parseable.
func NewConfigBackend() (*ConfigBackend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &ConfigBackend{
		cfg: cfg,
		logger: logger.New(logger.Options{
			Level:   cfg.GetLogLevel(),
			Format:  cfg.GetLogFormat(),
			Service: "cuctl",
			Writer:  os.Stderr,
		}),
	}, nil
}

func (b *ConfigBackend) Client(_ *Options) (ServiceClient, error) {
	client, err := contentunderstanding.NewClient(contentunderstanding.ClientOptions{
		Endpoint:        b.cfg.GetServiceEndpoint(),
		APIVersion:      b.cfg.GetServiceAPIVersion(),
		SubscriptionKey: b.cfg.GetSubscriptionKey(),
		BearerToken:     b.cfg.GetBearerToken(),
		UserAgent:       b.cfg.GetUserAgent(),
	}, contentunderstanding.NewHTTPTransport(b.cfg.GetHTTPTimeout()), contentunderstanding.SystemClock{}, b.logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (b *ConfigBackend) Store(opts *Options) (domain.ObjectStore, error) {
	backend := b.cfg.GetStorageBackend()
	if opts != nil && opts.Store != "" {
		backend = opts.Store
	}
	return config.NewObjectStore(b.cfg, backend, b.logger)
}

func (b *ConfigBackend) Logger() domain.Logger {
	return b.logger
}
