package factory

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/anime-shed/first-aid-triage/internal/classifier"
	apperrors "github.com/anime-shed/first-aid-triage/internal/errors"
	"github.com/anime-shed/first-aid-triage/internal/storage"
)

// ClassifierType represents different classifier implementations
type ClassifierType string

const (
	// CascadeClassifier is the colour-statistics rule cascade
	CascadeClassifier ClassifierType = "cascade"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
)

// StorageConfig carries what the storage backends need to be built.
type StorageConfig struct {
	FetchTimeout     time.Duration
	MaxBytes         int64
	RetryBackoff     time.Duration
	AzureAccountName string
	AzureAccountKey  string
}

// ClassifierFactory creates classifiers
type ClassifierFactory interface {
	CreateClassifier(classifierType ClassifierType) (classifier.Classifier, error)
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
}

type classifierFactory struct{}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory() ClassifierFactory {
	return &classifierFactory{}
}

// CreateClassifier creates a classifier based on the specified type
func (f *classifierFactory) CreateClassifier(classifierType ClassifierType) (classifier.Classifier, error) {
	switch classifierType {
	case CascadeClassifier, "":
		return classifier.NewInjuryClassifier(), nil
	default:
		return nil, fmt.Errorf("unsupported classifier type: %s", classifierType)
	}
}

type storageFactory struct {
	cfg StorageConfig
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg StorageConfig) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcherWithOptions(storage.HTTPFetcherOptions{
			Timeout:  f.cfg.FetchTimeout,
			MaxBytes: f.cfg.MaxBytes,
			Backoff:  f.cfg.RetryBackoff,
		}), nil
	case AzureStorage:
		if f.cfg.AzureAccountName == "" || f.cfg.AzureAccountKey == "" {
			return nil, apperrors.NewValidationError("Blob storage is not configured", nil)
		}
		fetcher, err := storage.NewAzureStorage(f.cfg.AzureAccountName, f.cfg.AzureAccountKey, f.cfg.MaxBytes)
		if err != nil {
			return nil, apperrors.NewInternalError("Blob storage unavailable", err)
		}
		return fetcher, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// StorageTypeFor picks the backend serving ref from its scheme.
func StorageTypeFor(ref string) (StorageType, error) {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", apperrors.NewValidationError("Invalid URL format", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return HTTPStorage, nil
	case storage.BlobScheme:
		return AzureStorage, nil
	default:
		return "", apperrors.NewValidationError("URL scheme not allowed", nil)
	}
}

// SourceRouter is an ImageFetcher that dispatches each reference to the
// backend for its scheme. Backends are created on first use and reused.
type SourceRouter struct {
	factory StorageFactory

	mu       sync.Mutex
	backends map[StorageType]storage.ImageFetcher
}

// NewSourceRouter creates a router over the given storage factory
func NewSourceRouter(f StorageFactory) *SourceRouter {
	return &SourceRouter{
		factory:  f,
		backends: make(map[StorageType]storage.ImageFetcher),
	}
}

// FetchImage resolves the backend for ref and fetches through it.
func (r *SourceRouter) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	storageType, err := StorageTypeFor(ref)
	if err != nil {
		return nil, err
	}

	backend, err := r.backend(storageType)
	if err != nil {
		return nil, err
	}
	return backend.FetchImage(ctx, ref)
}

func (r *SourceRouter) backend(storageType StorageType) (storage.ImageFetcher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if backend, ok := r.backends[storageType]; ok {
		return backend, nil
	}

	backend, err := r.factory.CreateStorage(storageType)
	if err != nil {
		return nil, err
	}
	r.backends[storageType] = backend
	return backend, nil
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	ClassifierFactory ClassifierFactory
	StorageFactory    StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg StorageConfig) *ComponentFactory {
	return &ComponentFactory{
		ClassifierFactory: NewClassifierFactory(),
		StorageFactory:    NewStorageFactory(cfg),
	}
}
