package analysis

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// cascadeStep is one attempt in a provider cascade. Invoke returns nil when
// the source has nothing; errors and timeouts are treated the same way.
type cascadeStep[T any] struct {
	name      string
	threshold float64
	invoke    func(ctx context.Context) (*ProviderResult[T], error)
}

// runCascade tries each step in priority order with a bounded timeout and
// accepts the first result whose confidence clears the step's threshold.
// When every step is exhausted the terminal fallback is invoked and its
// result accepted unconditionally, so a cascade always produces a result.
// Steps run strictly sequentially; an accepted result stops the chain.
func runCascade[T any](
	ctx context.Context,
	log zerolog.Logger,
	steps []cascadeStep[T],
	timeout time.Duration,
	fallback func(ctx context.Context) ProviderResult[T],
) ProviderResult[T] {
	for _, step := range steps {
		result, err := tryStep(ctx, step, timeout)
		if err != nil {
			log.Warn().Err(err).Str("source", step.name).Msg("provider call failed, trying next source")
			continue
		}
		if result == nil {
			log.Debug().Str("source", step.name).Msg("provider returned no result, trying next source")
			continue
		}
		if result.Confidence < 0 || result.Confidence > 1 {
			log.Warn().
				Str("source", step.name).
				Float64("confidence", result.Confidence).
				Msg("provider confidence out of range, clamping")
			result.Confidence = clamp01(result.Confidence)
		}
		if result.Confidence < step.threshold {
			log.Debug().
				Str("source", step.name).
				Float64("confidence", result.Confidence).
				Float64("threshold", step.threshold).
				Msg("provider result below threshold, trying next source")
			continue
		}
		log.Debug().
			Str("source", step.name).
			Float64("confidence", result.Confidence).
			Msg("accepted provider result")
		return *result
	}

	result := fallback(ctx)
	log.Debug().
		Str("source", result.Source).
		Float64("confidence", result.Confidence).
		Msg("all providers exhausted, using local fallback")
	return result
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// tryStep invokes a single step with its own deadline. The cascade never
// retries the same source.
func tryStep[T any](ctx context.Context, step cascadeStep[T], timeout time.Duration) (*ProviderResult[T], error) {
	stepCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return step.invoke(stepCtx)
}
