package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticStep(name string, threshold, confidence float64) cascadeStep[string] {
	return cascadeStep[string]{
		name:      name,
		threshold: threshold,
		invoke: func(ctx context.Context) (*ProviderResult[string], error) {
			return &ProviderResult[string]{Payload: name, Confidence: confidence, Source: name}, nil
		},
	}
}

func failingStep(name string) cascadeStep[string] {
	return cascadeStep[string]{
		name:      name,
		threshold: 0.5,
		invoke: func(ctx context.Context) (*ProviderResult[string], error) {
			return nil, errors.New("boom")
		},
	}
}

func absentStep(name string) cascadeStep[string] {
	return cascadeStep[string]{
		name:      name,
		threshold: 0.5,
		invoke: func(ctx context.Context) (*ProviderResult[string], error) {
			return nil, nil
		},
	}
}

func testFallback(ctx context.Context) ProviderResult[string] {
	return ProviderResult[string]{Payload: "fallback", Confidence: 0.5, Source: "fallback"}
}

func TestRunCascade_AcceptsFirstAboveThreshold(t *testing.T) {
	// A is rejected at 0.65 against 0.7; B is accepted at 0.62 against 0.6.
	steps := []cascadeStep[string]{
		staticStep("A", 0.7, 0.65),
		staticStep("B", 0.6, 0.62),
		staticStep("C", 0.5, 0.99),
	}

	result := runCascade(context.Background(), zerolog.Nop(), steps, time.Second, testFallback)
	assert.Equal(t, "B", result.Source)
	assert.Equal(t, 0.62, result.Confidence)
}

func TestRunCascade_FallbackWhenAllExhausted(t *testing.T) {
	tests := []struct {
		name  string
		steps []cascadeStep[string]
	}{
		{name: "no steps", steps: nil},
		{name: "all below threshold", steps: []cascadeStep[string]{staticStep("A", 0.9, 0.1)}},
		{name: "all failing", steps: []cascadeStep[string]{failingStep("A"), failingStep("B")}},
		{name: "all absent", steps: []cascadeStep[string]{absentStep("A"), absentStep("B")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := runCascade(context.Background(), zerolog.Nop(), tt.steps, time.Second, testFallback)
			assert.Equal(t, "fallback", result.Source)
			assert.Equal(t, "fallback", result.Payload)
		})
	}
}

func TestRunCascade_ClampsOutOfRangeConfidence(t *testing.T) {
	// Provider confidence is untrusted input: anything outside [0, 1] is
	// clamped before the threshold comparison and never escapes the cascade.
	t.Run("above one", func(t *testing.T) {
		steps := []cascadeStep[string]{staticStep("A", 0.7, 1.5)}

		result := runCascade(context.Background(), zerolog.Nop(), steps, time.Second, testFallback)
		assert.Equal(t, "A", result.Source)
		assert.Equal(t, 1.0, result.Confidence)
	})

	t.Run("negative falls through to fallback", func(t *testing.T) {
		steps := []cascadeStep[string]{staticStep("A", 0.5, -0.3)}

		result := runCascade(context.Background(), zerolog.Nop(), steps, time.Second, testFallback)
		assert.Equal(t, "fallback", result.Source)
	})

	t.Run("negative accepted at zero threshold", func(t *testing.T) {
		steps := []cascadeStep[string]{staticStep("A", 0, -0.3)}

		result := runCascade(context.Background(), zerolog.Nop(), steps, time.Second, testFallback)
		assert.Equal(t, "A", result.Source)
		assert.Equal(t, 0.0, result.Confidence)
	})
}

func TestRunCascade_SkipsTimedOutProvider(t *testing.T) {
	slow := cascadeStep[string]{
		name:      "slow",
		threshold: 0.5,
		invoke: func(ctx context.Context) (*ProviderResult[string], error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	steps := []cascadeStep[string]{slow, staticStep("fast", 0.5, 0.9)}

	start := time.Now()
	result := runCascade(context.Background(), zerolog.Nop(), steps, 20*time.Millisecond, testFallback)
	require.Less(t, time.Since(start), time.Second)
	assert.Equal(t, "fast", result.Source)
}

func TestRunCascade_StrictOrder(t *testing.T) {
	var order []string
	record := func(name string, confidence float64) cascadeStep[string] {
		return cascadeStep[string]{
			name:      name,
			threshold: 0.5,
			invoke: func(ctx context.Context) (*ProviderResult[string], error) {
				order = append(order, name)
				return &ProviderResult[string]{Payload: name, Confidence: confidence, Source: name}, nil
			},
		}
	}

	steps := []cascadeStep[string]{record("first", 0.1), record("second", 0.9), record("third", 0.9)}
	result := runCascade(context.Background(), zerolog.Nop(), steps, time.Second, testFallback)

	// Acceptance of the second step must prevent the third from running.
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, "second", result.Source)
}
