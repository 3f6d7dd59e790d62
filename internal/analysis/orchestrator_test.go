package analysis

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(identifySources []IdentifySource, damageSources []DamageSource, priceSources []PriceSource) *Orchestrator {
	log := zerolog.Nop()
	return NewOrchestrator(
		log,
		NewPreprocessor(log),
		NewIdentifier(log, identifySources, time.Second),
		NewDamageDetector(log, damageSources, time.Second, 85),
		NewCostEstimator(85, 75),
		NewPriceResolver(log, priceSources, time.Second, time.Hour),
		30*time.Second,
	)
}

func TestOrchestrator_FullRunWithoutProviders(t *testing.T) {
	o := newTestOrchestrator(nil, nil, nil)

	inputs := []PhotoInput{
		{Filename: "front.jpg", Data: encodeJPEG(t, solidImage(64, 64, color.RGBA{R: 130, G: 130, B: 130, A: 255}))},
		{Filename: "interior.jpg", Data: encodeJPEG(t, solidImage(64, 64, color.RGBA{R: 90, G: 90, B: 90, A: 255}))},
	}

	var stages []RunStage
	result, err := o.Analyze(context.Background(), inputs, &Metadata{}, func(stage RunStage) {
		stages = append(stages, stage)
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, []RunStage{
		StagePreprocessing,
		StageIdentifyingAndDetecting,
		StagePricingAndCosting,
		StageScoringROI,
		StageComplete,
	}, stages)

	// Quiet photos and no metadata still yield a complete result.
	assert.Equal(t, "fallback", result.Identity.Source)
	assert.NotEmpty(t, result.Identity.Make)
	require.Len(t, result.Damage, 1)
	assert.Equal(t, SeverityNone, result.Damage[0].Severity)
	assert.Zero(t, result.RepairCost.TotalCost)
	assert.Positive(t, result.MarketPrice.RetailPrice)
	assert.NotEmpty(t, result.ROI.Recommendation)
	assert.False(t, result.AnalyzedAt.IsZero())
	assert.Equal(t, time.UTC, result.AnalyzedAt.Location())
}

func TestOrchestrator_NoValidPhotosFailsRun(t *testing.T) {
	o := newTestOrchestrator(nil, nil, nil)

	var stages []RunStage
	result, err := o.Analyze(context.Background(), []PhotoInput{
		{Filename: "notes.txt", Data: []byte("not an image")},
	}, &Metadata{}, func(stage RunStage) {
		stages = append(stages, stage)
	})

	assert.ErrorIs(t, err, ErrNoValidPhotos)
	assert.Nil(t, result)
	assert.Equal(t, []RunStage{StagePreprocessing}, stages, "the run stops before any analysis stage")
}

func TestOrchestrator_ProvidersFeedDownstreamStages(t *testing.T) {
	identify := &stubIdentifyProvider{
		name: "gemini_vision",
		result: &ProviderResult[PartialIdentity]{
			Payload:    PartialIdentity{Make: "Toyota", Model: "Camry", Year: 2023, Trim: "LE"},
			Confidence: 0.9,
			Source:     "gemini_vision",
		},
	}
	detect := &stubDamageProvider{
		name: "gemini_vision",
		result: &ProviderResult[[]DamageFinding]{
			Payload:    []DamageFinding{{Area: "Front Bumper", Severity: SeverityModerate}},
			Confidence: 0.85,
			Source:     "gemini_vision",
		},
	}
	price := &stubPriceProvider{name: "kbb", result: marketQuote(18000, 15500, 16900)}

	o := newTestOrchestrator(
		[]IdentifySource{{Provider: identify, Threshold: 0.7, YearOffset: 3}},
		[]DamageSource{{Provider: detect, Threshold: 0.6}},
		[]PriceSource{{Provider: price, Threshold: 0.7}},
	)

	inputs := []PhotoInput{
		{Filename: "front_damage.jpg", Data: encodeJPEG(t, solidImage(64, 64, color.RGBA{R: 130, G: 130, B: 130, A: 255}))},
	}
	asking := 12000.0
	result, err := o.Analyze(context.Background(), inputs, &Metadata{AskingPrice: &asking}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Toyota", result.Identity.Make)
	assert.Equal(t, "gemini_vision", result.Identity.Source)

	require.Len(t, result.Damage, 1)
	assert.Equal(t, "Front Bumper", result.Damage[0].Area)
	assert.Equal(t, "gemini_vision", result.Damage[0].Source)

	assert.Equal(t, "kbb", result.MarketPrice.Source)
	assert.Equal(t, 18000.0, result.MarketPrice.RetailPrice)

	assert.Positive(t, result.RepairCost.TotalCost)
	assert.Equal(t, 12000.0+result.RepairCost.TotalCost, result.ROI.TotalInvestment)
}

func TestOrchestrator_MetadataShortCircuitSkipsIdentifyProviders(t *testing.T) {
	identify := &stubIdentifyProvider{name: "gemini_vision"}
	o := newTestOrchestrator([]IdentifySource{{Provider: identify, Threshold: 0.7, YearOffset: 3}}, nil, nil)

	inputs := []PhotoInput{
		{Filename: "front.jpg", Data: encodeJPEG(t, solidImage(64, 64, color.RGBA{R: 130, G: 130, B: 130, A: 255}))},
	}
	meta := &Metadata{Make: "Honda", Model: "Civic", Year: 2020}
	result, err := o.Analyze(context.Background(), inputs, meta, nil)
	require.NoError(t, err)

	assert.Zero(t, identify.calls)
	assert.Equal(t, "user_provided", result.Identity.Source)
	assert.Equal(t, 2020, result.Identity.Year)
}
