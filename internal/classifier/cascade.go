package classifier

import "slices"

// FallbackConfidence is reported whenever no rule matches or the input
// could not be decoded.
const FallbackConfidence = 0.50

// Rule is one entry of the first-match-wins decision table.
type Rule struct {
	Name       string
	Category   Category
	Confidence float64
	Matches    func(ColorFeatures) bool
}

var defaultRules = []Rule{
	{
		Name:       "high_red_dominance_high_variance",
		Category:   Burn,
		Confidence: 0.65,
		Matches: func(f ColorFeatures) bool {
			return f.RedDominance > 30 && f.RedVariance > 1000
		},
	},
	{
		Name:       "red_dominant_bright_red",
		Category:   MinorCut,
		Confidence: 0.60,
		Matches: func(f ColorFeatures) bool {
			return f.RedDominance > 20 && f.AvgRed > 140
		},
	},
	{
		Name:       "moderate_red_dominance",
		Category:   Abrasion,
		Confidence: 0.58,
		Matches: func(f ColorFeatures) bool {
			return f.RedDominance > 10
		},
	},
	{
		Name:       "bluish_low_red",
		Category:   Bruise,
		Confidence: 0.62,
		Matches: func(f ColorFeatures) bool {
			return f.AvgBlue > f.AvgRed && f.AvgRed < 100
		},
	},
}

// DefaultRules returns a copy of the built-in cascade in evaluation order.
func DefaultRules() []Rule {
	return slices.Clone(defaultRules)
}

// Evaluate walks rules in order and returns the outcome of the first one
// that matches. When nothing matches it returns Unknown with
// FallbackConfidence, so every feature vector maps to exactly one category.
func Evaluate(rules []Rule, f ColorFeatures) (Category, float64) {
	for _, rule := range rules {
		if rule.Matches(f) {
			return rule.Category, rule.Confidence
		}
	}
	return Unknown, FallbackConfidence
}
