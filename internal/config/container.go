package config

import (
	"fmt"

	"doc-intel-pipeline/internal/contentunderstanding"
	"doc-intel-pipeline/internal/domain"
	"doc-intel-pipeline/internal/infra/supabase"
	"doc-intel-pipeline/internal/repository"
	"doc-intel-pipeline/internal/service"
	"doc-intel-pipeline/pkg/logger"
)

const (
	StorageBackendSupabase = "supabase"
	StorageBackendLocal    = "local"
)

// Container holds all application dependencies
type Container struct {
	Config    domain.Config
	Logger    domain.Logger
	Transport domain.Transport
	Clock     domain.Clock
	Client    *contentunderstanding.Client
	Store     domain.ObjectStore

	OCRService     *service.OCRService
	ReportService  *service.ReportService
	CleanupService *service.CleanupService
}

// NewContainer creates a new dependency injection container
func NewContainer(serviceName string) (*Container, error) {
	return NewContainerFromConfig(NewConfig(), serviceName)
}

// NewContainerFromConfig wires every dependency from cfg. serviceName tags log
// lines.
func NewContainerFromConfig(cfg domain.Config, serviceName string) (*Container, error) {
	appLogger := logger.New(logger.Options{
		Level:   cfg.GetLogLevel(),
		Format:  cfg.GetLogFormat(),
		Service: serviceName,
	})

	transport := contentunderstanding.NewHTTPTransport(cfg.GetHTTPTimeout())
	clock := contentunderstanding.SystemClock{}

	client, err := contentunderstanding.NewClient(contentunderstanding.ClientOptions{
		Endpoint:        cfg.GetServiceEndpoint(),
		APIVersion:      cfg.GetServiceAPIVersion(),
		SubscriptionKey: cfg.GetSubscriptionKey(),
		BearerToken:     cfg.GetBearerToken(),
		UserAgent:       cfg.GetUserAgent(),
	}, transport, clock, appLogger)
	if err != nil {
		return nil, fmt.Errorf("content understanding client: %w", err)
	}

	store, err := NewObjectStore(cfg, cfg.GetStorageBackend(), appLogger)
	if err != nil {
		return nil, err
	}

	containers := cfg.GetContainers()
	return &Container{
		Config:    cfg,
		Logger:    appLogger,
		Transport: transport,
		Clock:     clock,
		Client:    client,
		Store:     store,

		OCRService:     service.NewOCRService(client, store, containers, cfg.GetPollPolicy(), clock, appLogger),
		ReportService:  service.NewReportService(store, containers, appLogger),
		CleanupService: service.NewCleanupService(store, containers, appLogger),
	}, nil
}

// NewObjectStore builds the blob store for backend.
func NewObjectStore(cfg domain.Config, backend string, log domain.Logger) (domain.ObjectStore, error) {
	switch backend {
	case StorageBackendLocal:
		log.Info("Using local blob store", "path", cfg.GetLocalStoragePath())
		return repository.NewLocalBlobStore(cfg.GetLocalStoragePath(), log), nil
	case StorageBackendSupabase, "":
		conn := supabase.NewSupabaseClient(cfg, log)
		if err := conn.Initialize(); err != nil {
			return nil, err
		}
		return repository.NewSupabaseBlobStore(conn.Storage(), log), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
