// Package classify assigns the coarse routing label to inbound messages.
//
// Classification flow:
//  1. Capability-backed model call (when preferred and configured)
//  2. Rule-based fallback, mandatory and silent to the caller
package classify

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-router/internal/domain"
	"github.com/spec-kit/support-router/internal/eventlog"
)

const systemInstruction = "You are a banking inbox classifier. Given a user message, classify it as " +
	"one of: positive_feedback, negative_feedback, or query. Answer with only the label."

// Capability is the external model dependency. It may be unavailable at any
// time; callers must treat every failure as a signal to fall back.
type Capability interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// Classifier resolves one of the three canonical labels for any input text.
type Classifier struct {
	capability Capability
	timeout    time.Duration
	sink       eventlog.Sink
	logger     *zap.Logger
}

// New constructs a classifier. capability may be nil, in which case only the
// rule-based path runs.
func New(capability Capability, timeout time.Duration, sink eventlog.Sink, logger *zap.Logger) *Classifier {
	if sink == nil {
		sink = eventlog.NopSink{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Classifier{capability: capability, timeout: timeout, sink: sink, logger: logger}
}

// Classify returns exactly one canonical label, never an error. The capability
// path is bounded by the configured timeout; unusable or noisy model output
// falls through to the rule-based path.
func (c *Classifier) Classify(ctx context.Context, text string, preferCapability bool) domain.Label {
	label := domain.LabelQuery
	if preferCapability && c.capability != nil {
		if resolved, ok := c.classifyWithCapability(ctx, text); ok {
			label = resolved
		} else {
			label = RuleBased(text)
		}
	} else {
		label = RuleBased(text)
	}

	c.sink.Log(ctx, eventlog.LevelInfo, "Classifier", "classified", map[string]any{"label": string(label)})
	return label
}

func (c *Classifier) classifyWithCapability(ctx context.Context, text string) (domain.Label, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.capability.Chat(ctx, systemInstruction, "Message: "+text+"\nRespond with one label only.")
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("capability classification failed; using rule-based fallback", zap.Error(err))
		}
		return "", false
	}
	candidate := domain.Label(strings.ToLower(strings.TrimSpace(out)))
	if !candidate.Valid() {
		if c.logger != nil {
			c.logger.Warn("capability returned unusable label; using rule-based fallback",
				zap.String("output", out))
		}
		return "", false
	}
	return candidate, true
}

var queryCue = regexp.MustCompile(`\bticket\b|status|check|track|update`)

var positiveCues = []string{
	"thank you", "thanks", "great", "appreciate",
	"resolved", "helpful", "awesome", "excellent",
}

var negativeCues = []string{
	"not working", "isn't working", "hasn't", "hasnt", "still", "issue",
	"problem", "late", "angry", "frustrated", "unhappy", "poor", "bad",
	"missing", "failed", "declined", "error",
}

// RuleBased is the deterministic classification path. It is a pure function:
// identical input always yields the identical label.
func RuleBased(text string) domain.Label {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return domain.LabelQuery
	}

	// Status requests and ticket references win over sentiment.
	if queryCue.MatchString(t) {
		return domain.LabelQuery
	}
	for _, cue := range positiveCues {
		if strings.Contains(t, cue) {
			return domain.LabelPositiveFeedback
		}
	}
	for _, cue := range negativeCues {
		if strings.Contains(t, cue) {
			return domain.LabelNegativeFeedback
		}
	}

	// Default to query if unsure; safer for support flows.
	return domain.LabelQuery
}
