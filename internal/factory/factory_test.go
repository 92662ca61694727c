package factory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	apperrors "github.com/anime-shed/first-aid-triage/internal/errors"
	"github.com/anime-shed/first-aid-triage/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageTypeFor(t *testing.T) {
	tests := []struct {
		ref     string
		want    StorageType
		wantErr bool
	}{
		{ref: "http://example.com/a.png", want: HTTPStorage},
		{ref: "HTTPS://example.com/a.png", want: HTTPStorage},
		{ref: "azblob://wounds/a.png", want: AzureStorage},
		{ref: "ftp://example.com/a.png", wantErr: true},
		{ref: "a.png", wantErr: true},
		{ref: "://bad", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := StorageTypeFor(tt.ref)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateStorage(t *testing.T) {
	t.Run("http", func(t *testing.T) {
		fetcher, err := NewStorageFactory(StorageConfig{}).CreateStorage(HTTPStorage)
		require.NoError(t, err)
		assert.IsType(t, &storage.HTTPImageFetcher{}, fetcher)
	})

	t.Run("azure without credentials", func(t *testing.T) {
		_, err := NewStorageFactory(StorageConfig{}).CreateStorage(AzureStorage)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("azure with malformed key", func(t *testing.T) {
		_, err := NewStorageFactory(StorageConfig{
			AzureAccountName: "acct",
			AzureAccountKey:  "not base64!!",
		}).CreateStorage(AzureStorage)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	})

	t.Run("azure with credentials", func(t *testing.T) {
		fetcher, err := NewStorageFactory(StorageConfig{
			AzureAccountName: "acct",
			AzureAccountKey:  "dGVzdC1rZXk=",
		}).CreateStorage(AzureStorage)
		require.NoError(t, err)
		assert.NotNil(t, fetcher)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := NewStorageFactory(StorageConfig{}).CreateStorage("local")
		assert.Error(t, err)
	})
}

func TestCreateClassifier(t *testing.T) {
	f := NewClassifierFactory()

	c, err := f.CreateClassifier(CascadeClassifier)
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = f.CreateClassifier("neural")
	assert.Error(t, err)
}

type countingFactory struct {
	created int32
	fetcher storage.ImageFetcher
	err     error
}

func (f *countingFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	atomic.AddInt32(&f.created, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.fetcher, nil
}

type staticFetcher []byte

func (s staticFetcher) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	return s, nil
}

func TestSourceRouter_ReusesBackend(t *testing.T) {
	f := &countingFactory{fetcher: staticFetcher("img")}
	router := NewSourceRouter(f)

	for i := 0; i < 3; i++ {
		data, err := router.FetchImage(context.Background(), "https://example.com/a.png")
		require.NoError(t, err)
		assert.Equal(t, []byte("img"), data)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.created))
}

func TestSourceRouter_FactoryErrorNotCached(t *testing.T) {
	f := &countingFactory{err: errors.New("boom")}
	router := NewSourceRouter(f)

	_, err := router.FetchImage(context.Background(), "azblob://c/a.png")
	require.Error(t, err)
	_, err = router.FetchImage(context.Background(), "azblob://c/a.png")
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.created))
}

func TestSourceRouter_HTTPEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	router := NewSourceRouter(NewStorageFactory(StorageConfig{}))

	data, err := router.FetchImage(context.Background(), server.URL+"/img.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	_, err = router.FetchImage(context.Background(), "azblob://wounds/img.png")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
