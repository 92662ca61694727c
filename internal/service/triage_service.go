package service

import (
	"context"
	"errors"
	"time"

	"github.com/anime-shed/first-aid-triage/internal/catalog"
	"github.com/anime-shed/first-aid-triage/internal/classifier"
	apperrors "github.com/anime-shed/first-aid-triage/internal/errors"
	"github.com/anime-shed/first-aid-triage/internal/observer"
	"github.com/anime-shed/first-aid-triage/internal/repository"
	"github.com/anime-shed/first-aid-triage/pkg/models"
	"github.com/anime-shed/first-aid-triage/pkg/validation"

	"github.com/google/uuid"
)

// TriageService classifies injury photos and attaches first-aid guidance
type TriageService interface {
	// AnalyzeUpload classifies bytes received directly from a client
	AnalyzeUpload(ctx context.Context, filename string, data []byte) (*models.TriageResponse, error)

	// AnalyzeRemote fetches the referenced image and classifies it
	AnalyzeRemote(ctx context.Context, ref string) (*models.TriageResponse, error)

	// Info describes supported categories and the model in use
	Info() models.InfoResponse
}

type requestIDKey struct{}

// ContextWithRequestID attaches a request ID for the service to report.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID carried by ctx, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

type triageService struct {
	imageRepo  repository.ImageRepository
	classifier classifier.Classifier
	catalog    *catalog.Catalog
	uploads    *validation.UploadValidator
	events     observer.Subject
	now        func() time.Time
}

// NewTriageService creates a new triage service. A nil events subject
// disables event publishing.
func NewTriageService(
	imageRepository repository.ImageRepository,
	injuryClassifier classifier.Classifier,
	instructions *catalog.Catalog,
	uploads *validation.UploadValidator,
	events observer.Subject,
) TriageService {
	return &triageService{
		imageRepo:  imageRepository,
		classifier: injuryClassifier,
		catalog:    instructions,
		uploads:    uploads,
		events:     events,
		now:        time.Now,
	}
}

func (s *triageService) AnalyzeUpload(ctx context.Context, filename string, data []byte) (*models.TriageResponse, error) {
	if err := s.uploads.ValidateUpload(filename, int64(len(data))); err != nil {
		return nil, err
	}

	started := s.now()
	requestID := requestID(ctx)
	s.publish(ctx, observer.ClassificationEvent{
		EventType: observer.ClassificationStarted,
		RequestID: requestID,
		Source:    "upload",
		Success:   true,
		Metadata:  map[string]interface{}{"filename": filename, "bytes": len(data)},
	})

	return s.classify(ctx, requestID, "upload", started, data)
}

func (s *triageService) AnalyzeRemote(ctx context.Context, ref string) (*models.TriageResponse, error) {
	if err := s.imageRepo.ValidateImageURL(ref); err != nil {
		return nil, err
	}

	started := s.now()
	requestID := requestID(ctx)
	s.publish(ctx, observer.ClassificationEvent{
		EventType: observer.ClassificationStarted,
		RequestID: requestID,
		Source:    ref,
		Success:   true,
	})

	data, err := s.imageRepo.FetchImage(ctx, ref)
	if err != nil {
		s.publish(ctx, observer.ClassificationEvent{
			EventType:      observer.ImageFetchFailed,
			RequestID:      requestID,
			Source:         ref,
			ProcessingTime: s.now().Sub(started),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	s.publish(ctx, observer.ClassificationEvent{
		EventType:      observer.ImageFetched,
		RequestID:      requestID,
		Source:         ref,
		ProcessingTime: s.now().Sub(started),
		Success:        true,
		Metadata:       map[string]interface{}{"bytes": len(data)},
	})

	return s.classify(ctx, requestID, ref, started, data)
}

func (s *triageService) classify(ctx context.Context, requestID, source string, started time.Time, data []byte) (*models.TriageResponse, error) {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("Request timed out before classification", err)
		}
		return nil, apperrors.NewProcessingError("Request cancelled", err)
	}

	result := s.classifier.Classify(data)
	if !result.Decoded() {
		s.publish(ctx, observer.ClassificationEvent{
			EventType:    observer.ImageDecodeFailed,
			RequestID:    requestID,
			Source:       source,
			ErrorMessage: "image could not be decoded",
		})
	}

	response := s.buildResponse(requestID, source, started, result)

	s.publish(ctx, observer.ClassificationEvent{
		EventType:      observer.ClassificationCompleted,
		RequestID:      requestID,
		Source:         source,
		Category:       response.Classification.Category,
		Confidence:     response.Classification.Confidence,
		ProcessingTime: s.now().Sub(started),
		Success:        true,
	})

	return response, nil
}

func (s *triageService) buildResponse(requestID, source string, started time.Time, result classifier.Result) *models.TriageResponse {
	record := s.catalog.Lookup(result.Category)

	response := &models.TriageResponse{
		Success:           true,
		RequestID:         requestID,
		Timestamp:         s.now().UTC().Format(time.RFC3339),
		ProcessingTimeSec: s.now().Sub(started).Seconds(),
		Classification: models.ClassificationSummary{
			Category:   result.Category.String(),
			Name:       record.Name,
			Confidence: result.Confidence,
			Severity:   string(record.Severity),
		},
		Instructions: models.Instructions{
			ImmediateSteps: record.ImmediateSteps,
			WarningSigns:   record.WarningSigns,
			WhenToSeekHelp: record.WhenToSeekHelp,
			AdditionalTips: record.AdditionalTips,
		},
		Disclaimer:       s.catalog.Disclaimer(),
		SafetyExclusions: s.catalog.SafetyExclusions(),
	}
	if source != "upload" {
		response.Source = source
	}

	if result.Features != nil {
		f := result.Features
		response.Features = &models.FeatureVector{
			AvgRed:       f.AvgRed,
			AvgGreen:     f.AvgGreen,
			AvgBlue:      f.AvgBlue,
			RedVariance:  f.RedVariance,
			RedDominance: f.RedDominance,
		}
	}

	return response
}

func (s *triageService) Info() models.InfoResponse {
	categories := s.catalog.Categories()
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.String())
	}

	info := s.catalog.ModelInfo()
	return models.InfoResponse{
		SupportedCategories: names,
		Disclaimer:          s.catalog.Disclaimer(),
		SafetyExclusions:    s.catalog.SafetyExclusions(),
		ModelInfo: models.ModelInfo{
			Type:                   info.Type,
			Note:                   info.Note,
			TrainingRecommendation: info.TrainingRecommendation,
		},
	}
}

func (s *triageService) publish(ctx context.Context, event observer.ClassificationEvent) {
	if s.events == nil {
		return
	}
	s.events.NotifyObservers(ctx, event)
}

func requestID(ctx context.Context) string {
	if id, ok := RequestIDFromContext(ctx); ok {
		return id
	}
	return uuid.NewString()
}
