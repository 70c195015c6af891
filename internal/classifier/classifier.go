// Package classifier maps free-text complaint descriptions to a coarse
// priority using an external text-completion model.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grievanceportal/internal/metrics"
	"grievanceportal/internal/model"

	"go.uber.org/zap"
)

var (
	ErrNoGenerator       = errors.New("classifier not configured")
	ErrMissingInput      = errors.New("issue type and details are required")
	ErrUnrecognizedLabel = errors.New("unrecognized priority label")
)

// TextGenerator is a single-shot text completion call
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Classification is the outcome of one classify call
type Classification struct {
	Priority model.Priority
	// Fallback is set when Priority is the default rather than a model answer
	Fallback bool
	Err      error
}

// PriorityClassifier wraps a TextGenerator with a rubric and a fallback policy.
// It never returns an error to the caller: any failure degrades to
// model.DefaultPriority, is logged, and is counted.
type PriorityClassifier struct {
	gen     TextGenerator
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New creates a classifier. gen may be nil, in which case every call falls back.
func New(gen TextGenerator, logger *zap.Logger, m *metrics.Metrics) *PriorityClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &PriorityClassifier{gen: gen, logger: logger, metrics: m}
}

// Classify makes at most one generator call. There are no retries.
func (c *PriorityClassifier) Classify(ctx context.Context, department, rubric, issueType, issueDetails string) Classification {
	p, err := c.classify(ctx, rubric, issueType, issueDetails)
	if err != nil {
		c.logger.Warn("priority classification unavailable, using default",
			zap.String("department", department),
			zap.String("issue_type", issueType),
			zap.String("default", string(model.DefaultPriority)),
			zap.Error(err),
		)
		c.metrics.ClassificationsTotal.WithLabelValues(department, metrics.OutcomeFallback).Inc()
		return Classification{Priority: model.DefaultPriority, Fallback: true, Err: err}
	}

	c.logger.Debug("priority classified",
		zap.String("department", department),
		zap.String("priority", string(p)),
	)
	c.metrics.ClassificationsTotal.WithLabelValues(department, metrics.OutcomeClassified).Inc()
	return Classification{Priority: p}
}

func (c *PriorityClassifier) classify(ctx context.Context, rubric, issueType, issueDetails string) (model.Priority, error) {
	if c.gen == nil {
		return "", ErrNoGenerator
	}
	if strings.TrimSpace(issueType) == "" || strings.TrimSpace(issueDetails) == "" {
		return "", ErrMissingInput
	}

	out, err := c.gen.Generate(ctx, BuildPrompt(rubric, issueType, issueDetails))
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	label := normalizeLabel(out)
	p, ok := model.ParsePriority(label)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedLabel, out)
	}
	return p, nil
}

// normalizeLabel lowercases and trims the reply, tolerating trailing
// punctuation and quoting around the single word.
func normalizeLabel(s string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(s)), ".\"'`*")
}
