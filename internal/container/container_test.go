package container

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anime-shed/first-aid-triage/internal/config"
	"github.com/anime-shed/first-aid-triage/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "5000",
		RequestTimeout:     5 * time.Second,
		ImageFetchTimeout:  time.Second,
		ShutdownTimeout:    time.Second,
		MaxUploadSize:      1 << 20,
		AllowedExtensions:  []string{"png"},
		CORSAllowedOrigins: []string{"*"},
		LogLevel:           "error",
	}
}

func TestNewContainer_Wiring(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.SetOutput(io.Discard)

	c, err := NewContainer(testConfig())
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Service())
	assert.NotNil(t, c.Metrics())
	assert.Equal(t, "127.0.0.1:5000", c.Config().ServerAddress())

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Blob references need credentials the test config does not carry.
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/url", strings.NewReader(`{"url":"azblob://wounds/a.png"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Blob storage is not configured")
}

func TestNewContainer_NilConfig(t *testing.T) {
	_, err := NewContainer(nil)
	assert.Error(t, err)
}
