package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/first-aid-triage/internal/catalog"
	"github.com/anime-shed/first-aid-triage/internal/config"
	"github.com/anime-shed/first-aid-triage/internal/factory"
	"github.com/anime-shed/first-aid-triage/internal/logger"
	"github.com/anime-shed/first-aid-triage/internal/observer"
	"github.com/anime-shed/first-aid-triage/internal/repository"
	"github.com/anime-shed/first-aid-triage/internal/service"
	"github.com/anime-shed/first-aid-triage/internal/transport"
	"github.com/anime-shed/first-aid-triage/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config        *config.Config
	publisher     *observer.EventPublisher
	metrics       *observer.MetricsObserver
	triageService service.TriageService
	handler       http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger.SetLevel(cfg.LogLevel)

	components := factory.NewComponentFactory(factory.StorageConfig{
		FetchTimeout:     cfg.ImageFetchTimeout,
		MaxBytes:         cfg.MaxUploadSize,
		AzureAccountName: cfg.AzureAccountName,
		AzureAccountKey:  cfg.AzureAccountKey,
	})

	injuryClassifier, err := components.ClassifierFactory.CreateClassifier(factory.CascadeClassifier)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}

	imageRepository := repository.NewSourceImageRepository(
		factory.NewSourceRouter(components.StorageFactory),
		validation.NewURLValidator(),
	)

	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	triageService := service.NewTriageService(
		imageRepository,
		injuryClassifier,
		catalog.Default(),
		validation.NewUploadValidator(cfg.AllowedExtensions),
		publisher,
	)

	return &Container{
		config:        cfg,
		publisher:     publisher,
		metrics:       metrics,
		triageService: triageService,
		handler:       transport.NewHandler(triageService, metrics, cfg),
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the triage service
func (c *Container) Service() service.TriageService {
	return c.triageService
}

// Metrics returns the metrics observer backing /api/stats
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

// Close waits for in-flight observer notifications to finish.
func (c *Container) Close() {
	c.publisher.Wait()
}
