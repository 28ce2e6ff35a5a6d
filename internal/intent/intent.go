// Package intent pattern-matches follow-up messages against a prioritized
// catalog of support intents. Catalog order encodes priority: loss-of-card
// safety outranks routine replacement when both could match.
package intent

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/support-router/internal/domain"
)

// Pattern is one catalog entry: first matching pattern wins.
type Pattern struct {
	Name       string  `yaml:"name"`
	Pattern    string  `yaml:"pattern"`
	Confidence float64 `yaml:"confidence"`
}

var builtinCatalog = []Pattern{
	{"freeze_lost_stolen_card", `\b(stolen|lost)\b.*\b(card|debit|credit)\b|\b(card|debit|credit)\b.*\b(stolen|lost)\b|\b(shut ?off|freeze|block)\b.*\bcard\b|\bcard\b.*\b(shut ?off|freeze|block)\b`, 0.95},
	{"replace_card", `\b(replace|replacement)\b.*\b(card)\b|\b(new\b.*\bcard)\b`, 0.90},
	{"fraud_charge_dispute", `\b(unauthorized|fraud|dispute)\b.*\b(charge|transaction)\b`, 0.90},
	{"travel_notice", `\b(travel|out of (the )?country|trip)\b`, 0.85},
	{"address_update", `\b(address|moved|move)\b.*\b(update|change)\b`, 0.85},
	{"app_access_issue", `\b(phone|device|app|login|signin|sign in|locked)\b.*\b(issue|problem|can.?t|cannot)\b`, 0.80},
}

type compiledPattern struct {
	name       string
	re         *regexp.Regexp
	confidence float64
}

// Detector evaluates text against an ordered intent catalog.
type Detector struct {
	patterns []compiledPattern
}

// NewDetector builds a detector over the built-in catalog.
func NewDetector() *Detector {
	d, err := newFromPatterns(builtinCatalog)
	if err != nil {
		// the built-in patterns are compile-checked by tests
		panic(err)
	}
	return d
}

// NewDetectorFromFile loads an operator-supplied catalog (ordered YAML list of
// name/pattern/confidence). The file replaces the built-in catalog wholesale,
// so the file's order owns intent priority.
func NewDetectorFromFile(path string) (*Detector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intent catalog: %w", err)
	}
	var patterns []Pattern
	if err := yaml.Unmarshal(data, &patterns); err != nil {
		return nil, fmt.Errorf("parse intent catalog: %w", err)
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("intent catalog %s is empty", path)
	}
	return newFromPatterns(patterns)
}

func newFromPatterns(patterns []Pattern) (*Detector, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("intent %q: %w", p.Name, err)
		}
		compiled = append(compiled, compiledPattern{name: p.Name, re: re, confidence: p.Confidence})
	}
	return &Detector{patterns: compiled}, nil
}

// Detect returns the first matching intent, or the general_followup sentinel
// at confidence 0.50 when nothing matches. Never nil-equivalent: the result is
// always a usable intent.
func (d *Detector) Detect(text string) domain.DetectedIntent {
	t := strings.ToLower(text)
	for _, p := range d.patterns {
		if p.re.MatchString(t) {
			return domain.DetectedIntent{Name: p.name, Confidence: p.confidence}
		}
	}
	return domain.DetectedIntent{
		Name:       domain.IntentGeneralFollowup,
		Confidence: domain.GeneralFollowupConfidence,
	}
}
