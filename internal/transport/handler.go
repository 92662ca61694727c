package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/anime-shed/first-aid-triage/internal/config"
	apperrors "github.com/anime-shed/first-aid-triage/internal/errors"
	"github.com/anime-shed/first-aid-triage/internal/logger"
	"github.com/anime-shed/first-aid-triage/internal/service"
	"github.com/anime-shed/first-aid-triage/pkg/models"
	"github.com/anime-shed/first-aid-triage/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const serviceName = "first-aid-assistant"

// StatsProvider exposes process-lifetime classification counters
type StatsProvider interface {
	Snapshot() models.StatsResponse
}

func NewHandler(svc service.TriageService, stats StatsProvider, cfg *config.Config) http.Handler {
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadSize

	// Add middleware
	r.Use(
		recovery(),
		requestID(),
		requestLogger(),
		corsMiddleware(cfg.CORSAllowedOrigins),
		requestSizeLimiter(cfg.MaxUploadSize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)

	api := r.Group("/api")
	api.POST("/analyze", analyzeUpload(svc, cfg))
	api.POST("/analyze/url", analyzeURL(svc, cfg))
	api.GET("/info", info(svc))
	api.GET("/stats", statsHandler(stats))

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, apperrors.NewNotFoundError("Route not found", nil))
	})

	return r
}

func analyzeUpload(svc service.TriageService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		file, err := c.FormFile("image")
		if err != nil {
			switch {
			case isBodyTooLarge(err):
				c.Error(tooLargeError(cfg.MaxUploadSize, err))
			case fieldWithoutFilename(c, "image"):
				c.Error(apperrors.NewValidationError(validation.MsgNoFileSelected, err))
			default:
				c.Error(apperrors.NewValidationError(validation.MsgNoImage, err))
			}
			return
		}

		src, err := file.Open()
		if err != nil {
			c.Error(apperrors.NewInternalError("Unable to open uploaded file", err))
			return
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			c.Error(apperrors.NewInternalError("Failed to read uploaded file", err))
			return
		}

		resp, err := svc.AnalyzeUpload(ctx, file.Filename, data)
		if err != nil {
			c.Error(err)
			return
		}

		logClassification(resp, logrus.Fields{"filename": file.Filename, "bytes": len(data)})
		c.JSON(http.StatusOK, resp)
	}
}

// fieldWithoutFilename reports whether the form carried the field as a
// plain value, which is how a file input with nothing selected arrives.
func fieldWithoutFilename(c *gin.Context, field string) bool {
	form := c.Request.MultipartForm
	if form == nil {
		return false
	}
	_, ok := form.Value[field]
	return ok
}

func analyzeURL(svc service.TriageService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.AnalyzeURLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if isBodyTooLarge(err) {
				c.Error(tooLargeError(cfg.MaxUploadSize, err))
				return
			}
			c.Error(apperrors.NewValidationError("Invalid request format", err).WithDetails(`expected JSON body {"url": "..."}`))
			return
		}

		resp, err := svc.AnalyzeRemote(ctx, req.URL)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
				err = apperrors.NewTimeoutError("Request timed out", err)
			}
			c.Error(err)
			return
		}

		logClassification(resp, logrus.Fields{"source": req.URL})
		c.JSON(http.StatusOK, resp)
	}
}

func info(svc service.TriageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Info())
	}
}

func statsHandler(stats StatsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if stats == nil {
			c.JSON(http.StatusOK, models.StatsResponse{ByCategory: map[string]int64{}})
			return
		}
		c.JSON(http.StatusOK, stats.Snapshot())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Service: serviceName,
	})
}

func logClassification(resp *models.TriageResponse, fields logrus.Fields) {
	fields["request_id"] = resp.RequestID
	fields["category"] = resp.Classification.Category
	fields["confidence"] = resp.Classification.Confidence
	fields["decoded"] = resp.Features != nil
	fields["processing_time_ms"] = time.Duration(resp.ProcessingTimeSec * float64(time.Second)).Milliseconds()
	logger.WithFields(fields).Info("Image classified")
}
