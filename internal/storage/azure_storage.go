package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobScheme is the URL scheme for blob references: azblob://<container>/<blob path>
const BlobScheme = "azblob"

// BlobRef identifies a blob inside the configured storage account.
type BlobRef struct {
	Container string
	Blob      string
}

// ParseBlobReference splits an azblob:// reference into container and blob name.
func ParseBlobReference(ref string) (BlobRef, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return BlobRef{}, fmt.Errorf("invalid blob reference: %w", err)
	}
	if !strings.EqualFold(parsed.Scheme, BlobScheme) {
		return BlobRef{}, fmt.Errorf("invalid blob reference: scheme %q is not %s", parsed.Scheme, BlobScheme)
	}

	blob := strings.TrimLeft(parsed.Path, "/")
	if parsed.Host == "" || blob == "" {
		return BlobRef{}, fmt.Errorf("invalid blob reference: expected %s://<container>/<blob>", BlobScheme)
	}
	return BlobRef{Container: parsed.Host, Blob: blob}, nil
}

type azureStorage struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureStorage creates a blob-backed ImageFetcher using a shared key credential.
func NewAzureStorage(accountName, accountKey string, maxBytes int64) (ImageFetcher, error) {
	return newAzureStorageWithURL(fmt.Sprintf("https://%s.blob.core.windows.net/", accountName), accountName, accountKey, maxBytes)
}

func newAzureStorageWithURL(serviceURL, accountName, accountKey string, maxBytes int64) (*azureStorage, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &azureStorage{client: client, maxBytes: maxBytes}, nil
}

func (s *azureStorage) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	blobRef, err := ParseBlobReference(ref)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, blobRef.Container, blobRef.Blob, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("download failed: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.ContentLength != nil && *resp.ContentLength > s.maxBytes {
		return nil, ErrTooLarge
	}
	return readLimited(resp.Body, s.maxBytes)
}
