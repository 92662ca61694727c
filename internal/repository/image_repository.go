package repository

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/anime-shed/first-aid-triage/internal/errors"
	"github.com/anime-shed/first-aid-triage/internal/storage"
	"github.com/anime-shed/first-aid-triage/pkg/validation"
)

// SourceImageRepository implements ImageRepository over any storage.ImageFetcher,
// translating storage failures into application errors.
type SourceImageRepository struct {
	fetcher   storage.ImageFetcher
	validator *validation.URLValidator
}

// NewSourceImageRepository creates a new image repository
func NewSourceImageRepository(fetcher storage.ImageFetcher, validator *validation.URLValidator) ImageRepository {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	return &SourceImageRepository{
		fetcher:   fetcher,
		validator: validator,
	}
}

// FetchImage validates ref and retrieves its bytes
func (r *SourceImageRepository) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	if err := r.ValidateImageURL(ref); err != nil {
		return nil, err
	}

	data, err := r.fetcher.FetchImage(ctx, strings.TrimSpace(ref))
	if err != nil {
		return nil, classifyFetchError(err)
	}
	return data, nil
}

// ValidateImageURL validates if the provided reference is acceptable
func (r *SourceImageRepository) ValidateImageURL(ref string) error {
	return r.validator.ValidateImageURL(ref)
}

func classifyFetchError(err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("Image fetch timeout", err)
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.NewNotFoundError("Image not found", err)
	case errors.Is(err, storage.ErrTooLarge):
		return apperrors.NewPayloadTooLargeError("Image exceeds the maximum allowed size", err)
	default:
		return apperrors.NewNetworkError("Failed to fetch image", err)
	}
}
