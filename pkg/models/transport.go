package models

// AnalyzeURLRequest is the body of POST /api/analyze/url
type AnalyzeURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// StatsResponse reports process-lifetime classification counters
type StatsResponse struct {
	TotalRequests        int64            `json:"total_requests"`
	TotalClassifications int64            `json:"total_classifications"`
	ByCategory           map[string]int64 `json:"by_category"`
	DecodeFailures       int64            `json:"decode_failures"`
	FetchFailures        int64            `json:"fetch_failures"`
	AverageProcessingSec float64          `json:"average_processing_sec"`
}
