// Package catalog holds the static first-aid guidance keyed by injury
// category. The catalog is parsed once and never mutated afterwards, so
// concurrent readers need no locking.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/anime-shed/first-aid-triage/internal/classifier"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Severity grades how urgently a category needs professional care.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Record is the guidance shown for one category.
type Record struct {
	Name           string   `yaml:"name" json:"name"`
	Severity       Severity `yaml:"severity" json:"severity"`
	ImmediateSteps []string `yaml:"immediate_steps" json:"immediate_steps"`
	WarningSigns   []string `yaml:"warning_signs" json:"warning_signs"`
	WhenToSeekHelp string   `yaml:"when_to_seek_help" json:"when_to_seek_help"`
	AdditionalTips []string `yaml:"additional_tips" json:"additional_tips"`
}

func (r Record) clone() Record {
	r.ImmediateSteps = slices.Clone(r.ImmediateSteps)
	r.WarningSigns = slices.Clone(r.WarningSigns)
	r.AdditionalTips = slices.Clone(r.AdditionalTips)
	if r.AdditionalTips == nil {
		r.AdditionalTips = []string{}
	}
	return r
}

// ModelInfo describes the classifier behind the catalog.
type ModelInfo struct {
	Type                   string `yaml:"type" json:"type"`
	Note                   string `yaml:"note" json:"note"`
	TrainingRecommendation string `yaml:"training_recommendation" json:"training_recommendation"`
}

type entry struct {
	Category classifier.Category `yaml:"category"`
	Record   `yaml:",inline"`
}

type document struct {
	Disclaimer       string    `yaml:"disclaimer"`
	SafetyExclusions []string  `yaml:"safety_exclusions"`
	ModelInfo        ModelInfo `yaml:"model_info"`
	Records          []entry   `yaml:"records"`
}

// Catalog is an immutable category -> guidance table.
type Catalog struct {
	order      []classifier.Category
	records    map[classifier.Category]Record
	disclaimer string
	exclusions []string
	model      ModelInfo
}

// Parse builds a catalog from YAML. Every record must name a known
// category, a valid severity and a name; the unknown record is mandatory
// because it backs every failed lookup.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		records:    make(map[classifier.Category]Record, len(doc.Records)),
		disclaimer: strings.TrimSpace(doc.Disclaimer),
		exclusions: slices.Clone(doc.SafetyExclusions),
		model:      doc.ModelInfo,
	}
	c.model.TrainingRecommendation = strings.TrimSpace(c.model.TrainingRecommendation)

	for i, e := range doc.Records {
		if !e.Category.Valid() {
			return nil, fmt.Errorf("record %d: unknown category %q", i, e.Category)
		}
		if _, dup := c.records[e.Category]; dup {
			return nil, fmt.Errorf("record %d: duplicate category %q", i, e.Category)
		}
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("record %q: name is required", e.Category)
		}
		if !e.Severity.valid() {
			return nil, fmt.Errorf("record %q: invalid severity %q", e.Category, e.Severity)
		}
		c.records[e.Category] = e.Record.clone()
		c.order = append(c.order, e.Category)
	}

	if _, ok := c.records[classifier.Unknown]; !ok {
		return nil, fmt.Errorf("catalog must define the %q record", classifier.Unknown)
	}

	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the process-wide catalog built from the embedded YAML.
// It panics if the embedded document is invalid, which is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(embeddedCatalog)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Lookup returns the guidance for category, falling back to the unknown
// record when the category has no entry. The returned record is a copy.
func (c *Catalog) Lookup(category classifier.Category) Record {
	if record, ok := c.records[category]; ok {
		return record.clone()
	}
	return c.records[classifier.Unknown].clone()
}

// Has reports whether category has its own entry.
func (c *Catalog) Has(category classifier.Category) bool {
	_, ok := c.records[category]
	return ok
}

// Categories lists the catalog's categories in document order.
func (c *Catalog) Categories() []classifier.Category {
	return slices.Clone(c.order)
}

func (c *Catalog) Disclaimer() string {
	return c.disclaimer
}

func (c *Catalog) SafetyExclusions() []string {
	return slices.Clone(c.exclusions)
}

func (c *Catalog) ModelInfo() ModelInfo {
	return c.model
}
