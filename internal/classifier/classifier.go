package classifier

// Result is the outcome of a single classification call. Features is nil
// when the input bytes could not be decoded.
type Result struct {
	Category   Category       `json:"category"`
	Confidence float64        `json:"confidence"`
	Features   *ColorFeatures `json:"features,omitempty"`
}

// Decoded reports whether the result was computed from a decoded image.
func (r Result) Decoded() bool {
	return r.Features != nil
}

// Classifier maps encoded image bytes to a category.
type Classifier interface {
	Classify(data []byte) Result
}

// InjuryClassifier runs decode, feature extraction and the rule cascade.
// It holds no mutable state and is safe for concurrent use.
type InjuryClassifier struct {
	rules []Rule
}

// NewInjuryClassifier returns a classifier using the built-in cascade.
func NewInjuryClassifier() *InjuryClassifier {
	return &InjuryClassifier{rules: DefaultRules()}
}

// NewInjuryClassifierWithRules returns a classifier evaluating rules in the
// given order.
func NewInjuryClassifierWithRules(rules []Rule) *InjuryClassifier {
	return &InjuryClassifier{rules: append([]Rule(nil), rules...)}
}

// Classify never fails: undecodable input degrades to Unknown at
// FallbackConfidence with no features.
func (c *InjuryClassifier) Classify(data []byte) Result {
	raw, err := Decode(data)
	if err != nil {
		return Result{Category: Unknown, Confidence: FallbackConfidence}
	}

	features := ExtractFeatures(raw)
	category, confidence := Evaluate(c.rules, features)
	return Result{
		Category:   category,
		Confidence: confidence,
		Features:   &features,
	}
}

var defaultClassifier = NewInjuryClassifier()

// Classify runs the built-in pipeline over data.
func Classify(data []byte) Result {
	return defaultClassifier.Classify(data)
}
