package repository

import (
	"context"
)

// ImageRepository defines the interface for remote image access
type ImageRepository interface {
	// FetchImage retrieves the encoded bytes behind a reference
	FetchImage(ctx context.Context, ref string) ([]byte, error)

	// ValidateImageURL validates if the provided reference is acceptable
	ValidateImageURL(ref string) error
}
