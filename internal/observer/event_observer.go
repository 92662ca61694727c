package observer

import (
	"context"
	"sync"
	"time"

	"github.com/anime-shed/first-aid-triage/pkg/models"

	"github.com/sirupsen/logrus"
)

// ClassificationEvent represents a step in handling one triage request
type ClassificationEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	RequestID      string                 `json:"request_id"`
	Source         string                 `json:"source"`
	Category       string                 `json:"category,omitempty"`
	Confidence     float64                `json:"confidence,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of classification event
type EventType string

const (
	// ClassificationStarted when a request begins
	ClassificationStarted EventType = "classification_started"
	// ImageFetched when a remote image is successfully fetched
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when a remote fetch fails
	ImageFetchFailed EventType = "image_fetch_failed"
	// ImageDecodeFailed when bytes could not be decoded and the result fell back to unknown
	ImageDecodeFailed EventType = "image_decode_failed"
	// ClassificationCompleted when a result has been produced
	ClassificationCompleted EventType = "classification_completed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event ClassificationEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event ClassificationEvent)
}

// LoggingObserver logs classification events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event ClassificationEvent) {
	fields := logrus.Fields{
		"event_type":         event.EventType,
		"request_id":         event.RequestID,
		"source":             event.Source,
		"processing_time_ms": event.ProcessingTime.Milliseconds(),
		"success":            event.Success,
	}

	if event.Category != "" {
		fields["category"] = event.Category
		fields["confidence"] = event.Confidence
	}

	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case ClassificationStarted:
		entry.Debug("Classification started")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	case ImageDecodeFailed:
		entry.Warn("Image could not be decoded, falling back to unknown")
	case ClassificationCompleted:
		entry.Info("Classification completed")
	default:
		entry.Info("Classification event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects process-lifetime counters from events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalRequests       int64
	completed           int64
	byCategory          map[string]int64
	decodeFailures      int64
	fetchFailures       int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		byCategory: make(map[string]int64),
	}
}

// OnEvent handles events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event ClassificationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case ClassificationStarted:
		o.totalRequests++
	case ClassificationCompleted:
		o.completed++
		o.byCategory[event.Category]++
		o.totalProcessingTime += event.ProcessingTime
	case ImageDecodeFailed:
		o.decodeFailures++
	case ImageFetchFailed:
		o.fetchFailures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// Snapshot returns a copy of the current counters
func (o *MetricsObserver) Snapshot() models.StatsResponse {
	o.mu.RLock()
	defer o.mu.RUnlock()

	byCategory := make(map[string]int64, len(o.byCategory))
	for k, v := range o.byCategory {
		byCategory[k] = v
	}

	var avg float64
	if o.completed > 0 {
		avg = (o.totalProcessingTime / time.Duration(o.completed)).Seconds()
	}

	return models.StatsResponse{
		TotalRequests:        o.totalRequests,
		TotalClassifications: o.completed,
		ByCategory:           byCategory,
		DecodeFailures:       o.decodeFailures,
		FetchFailures:        o.fetchFailures,
		AverageProcessingSec: avg,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	inflight  sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event concurrently.
// The context is detached from cancellation so observers outlive the request.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event ClassificationEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	ctx = context.WithoutCancel(ctx)

	for _, observer := range observers {
		p.inflight.Add(1)
		go func(obs Observer) {
			defer p.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Wait blocks until every notification dispatched so far has been handled.
func (p *EventPublisher) Wait() {
	p.inflight.Wait()
}
