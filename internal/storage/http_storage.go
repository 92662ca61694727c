package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrNotFound is returned when the source reports the image does not exist.
	ErrNotFound = errors.New("image not found")
	// ErrTooLarge is returned when the image body exceeds the configured cap.
	ErrTooLarge = errors.New("image exceeds size limit")
)

const (
	defaultMaxAttempts = 3
	defaultMaxBytes    = 16 << 20
)

// ImageFetcher retrieves raw encoded image bytes for a reference.
// Decoding is left to the classifier.
type ImageFetcher interface {
	FetchImage(ctx context.Context, ref string) ([]byte, error)
}

// HTTPFetcherOptions tunes the HTTP fetcher. Zero values select defaults.
type HTTPFetcherOptions struct {
	Timeout  time.Duration
	MaxBytes int64
	// Backoff is the base delay; attempt n waits n*Backoff.
	Backoff time.Duration
}

// HTTPImageFetcher implements ImageFetcher over plain HTTP(S)
type HTTPImageFetcher struct {
	client      *http.Client
	maxBytes    int64
	backoff     time.Duration
	maxAttempts int
}

// NewHTTPImageFetcher creates an HTTP image fetcher with default options
func NewHTTPImageFetcher() *HTTPImageFetcher {
	return NewHTTPImageFetcherWithOptions(HTTPFetcherOptions{})
}

// NewHTTPImageFetcherWithOptions creates an HTTP image fetcher
func NewHTTPImageFetcherWithOptions(opts HTTPFetcherOptions) *HTTPImageFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}

	// Connection pooling sized for single image downloads
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,

			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes:    opts.MaxBytes,
		backoff:     opts.Backoff,
		maxAttempts: defaultMaxAttempts,
	}
}

func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "First-Aid-Triage/1.0")

	var lastErr error
	for attempt := 0; attempt < h.maxAttempts; attempt++ {
		data, retry, err := h.attempt(req)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if !retry || ctx.Err() != nil {
			break
		}

		// Linear backoff between retryable failures, skipped after the last attempt
		if attempt < h.maxAttempts-1 {
			if err := sleepContext(ctx, time.Duration(attempt+1)*h.backoff); err != nil {
				lastErr = err
				break
			}
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(lastErr, ctxErr) {
		lastErr = fmt.Errorf("%v: %w", lastErr, ctxErr)
	}
	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", h.maxAttempts, lastErr)
}

// attempt performs one request. retry reports whether the failure is transient.
func (h *HTTPImageFetcher) attempt(req *http.Request) (data []byte, retry bool, err error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("client error: status code %d: %w", resp.StatusCode, ErrNotFound)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if resp.ContentLength > h.maxBytes {
		return nil, false, ErrTooLarge
	}

	data, err = readLimited(resp.Body, h.maxBytes)
	if err != nil {
		return nil, !errors.Is(err, ErrTooLarge), err
	}
	return data, false, nil
}

// readLimited reads at most limit bytes, failing with ErrTooLarge beyond that.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
