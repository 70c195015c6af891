package classifier

import (
	"context"
	"errors"
	"testing"

	"grievanceportal/internal/metrics"
	"grievanceportal/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	reply   string
	err     error
	calls   int
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func newObserved() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestClassify_RecognizedLabels(t *testing.T) {
	tests := []struct {
		reply string
		want  model.Priority
	}{
		{"high", model.PriorityHigh},
		{"  Medium\n", model.PriorityMedium},
		{"LOW.", model.PriorityLow},
		{"\"high\"", model.PriorityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			gen := &stubGenerator{reply: tt.reply}
			c := New(gen, nil, nil)

			got := c.Classify(context.Background(), "jal-board", RubricWater, "Low Pressure", "Low Pressure. weak flow since Monday")
			assert.Equal(t, tt.want, got.Priority)
			assert.False(t, got.Fallback)
			assert.NoError(t, got.Err)
			assert.Equal(t, 1, gen.calls)
		})
	}
}

func TestClassify_GeneratorFailureFallsBackToMedium(t *testing.T) {
	logger, logs := newObserved()
	m := metrics.NewNop()
	gen := &stubGenerator{err: errors.New("503 from upstream")}
	c := New(gen, logger, m)

	got := c.Classify(context.Background(), "jal-board", RubricWater, "Water Leakage", "pipe burst near the market")

	assert.Equal(t, model.PriorityMedium, got.Priority)
	assert.True(t, got.Fallback)
	assert.Error(t, got.Err)
	assert.Equal(t, 1, gen.calls, "no retries")

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "jal-board", warnings[0].ContextMap()["department"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClassificationsTotal.WithLabelValues("jal-board", metrics.OutcomeFallback)))
}

func TestClassify_UnrecognizedLabelFallsBack(t *testing.T) {
	c := New(&stubGenerator{reply: "critical"}, nil, nil)
	got := c.Classify(context.Background(), "electricity", RubricElectricity, "Power Outage", "Power Outage. whole street dark")

	assert.Equal(t, model.PriorityMedium, got.Priority)
	assert.True(t, got.Fallback)
	assert.ErrorIs(t, got.Err, ErrUnrecognizedLabel)
}

func TestClassify_MissingInputSkipsCall(t *testing.T) {
	gen := &stubGenerator{reply: "high"}
	got := New(gen, nil, nil).Classify(context.Background(), "jal-board", RubricWater, "", "details")

	assert.ErrorIs(t, got.Err, ErrMissingInput)
	assert.Equal(t, model.PriorityMedium, got.Priority)
	assert.Zero(t, gen.calls)
}

func TestClassify_NoGenerator(t *testing.T) {
	got := New(nil, nil, nil).Classify(context.Background(), "jal-board", RubricWater, "Low Pressure", "x")
	assert.ErrorIs(t, got.Err, ErrNoGenerator)
	assert.True(t, got.Fallback)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(RubricElectricity, "Electrical Hazard", "live wire on the road")
	assert.Contains(t, p, "an electrical utility expert")
	assert.Contains(t, p, "Issue Type: Electrical Hazard")
	assert.Contains(t, p, "- Transformer sparking or burning\n")
	assert.Contains(t, p, "respond with exactly one word (high/medium/low):")

	fallback := BuildPrompt("roads", "Pothole", "deep pothole")
	assert.Contains(t, fallback, "a water utility expert")
}
