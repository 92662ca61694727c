package models

// ClassificationSummary describes the category the image was assigned to.
type ClassificationSummary struct {
	Category   string  `json:"category"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Severity   string  `json:"severity"`
}

// Instructions is the first-aid guidance attached to a category.
type Instructions struct {
	ImmediateSteps []string `json:"immediate_steps"`
	WarningSigns   []string `json:"warning_signs"`
	WhenToSeekHelp string   `json:"when_to_seek_help"`
	AdditionalTips []string `json:"additional_tips"`
}

// FeatureVector mirrors the colour statistics the classifier used.
type FeatureVector struct {
	AvgRed       float64 `json:"avg_red"`
	AvgGreen     float64 `json:"avg_green"`
	AvgBlue      float64 `json:"avg_blue"`
	RedVariance  float64 `json:"red_var"`
	RedDominance float64 `json:"red_dominance"`
}

// TriageResponse is the full answer for a single image.
// Features is nil when the image could not be decoded.
type TriageResponse struct {
	Success           bool                  `json:"success"`
	RequestID         string                `json:"request_id"`
	Source            string                `json:"source,omitempty"`
	Timestamp         string                `json:"timestamp"`
	ProcessingTimeSec float64               `json:"processing_time_sec"`
	Classification    ClassificationSummary `json:"classification"`
	Instructions      Instructions          `json:"instructions"`
	Features          *FeatureVector        `json:"features,omitempty"`
	Disclaimer        string                `json:"disclaimer"`
	SafetyExclusions  []string              `json:"safety_exclusions"`
}

// ModelInfo describes the classifier in use.
type ModelInfo struct {
	Type                   string `json:"type"`
	Note                   string `json:"note"`
	TrainingRecommendation string `json:"training_recommendation"`
}

// InfoResponse is returned by GET /api/info
type InfoResponse struct {
	SupportedCategories []string  `json:"supported_categories"`
	Disclaimer          string    `json:"disclaimer"`
	SafetyExclusions    []string  `json:"safety_exclusions"`
	ModelInfo           ModelInfo `json:"model_info"`
}
