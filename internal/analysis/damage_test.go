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

type stubDamageProvider struct {
	name   string
	result *ProviderResult[[]DamageFinding]
	err    error
	calls  int
}

func (s *stubDamageProvider) Name() string { return s.name }

func (s *stubDamageProvider) DetectDamage(ctx context.Context, photo *Photo) (*ProviderResult[[]DamageFinding], error) {
	s.calls++
	return s.result, s.err
}

func TestDamageDetector_SynthesizesNoneWhenQuiet(t *testing.T) {
	d := NewDamageDetector(zerolog.Nop(), nil, time.Second, 85)

	photos := []Photo{{
		Filename: "front.jpg",
		Category: CategoryExteriorFront,
		Image:    solidImage(64, 64, color.RGBA{R: 120, G: 120, B: 120, A: 255}),
	}}
	assessments := d.Detect(context.Background(), photos)

	require.Len(t, assessments, 1)
	a := assessments[0]
	assert.Equal(t, "Overall", a.Area)
	assert.Equal(t, SeverityNone, a.Severity)
	assert.Equal(t, noDamageConfidence, a.Confidence)
	assert.Equal(t, "No repairs needed", a.RepairRecommendation)
	assert.Zero(t, a.EstimatedCost)
	assert.Equal(t, sourceImageStats, a.Source)
}

func TestDamageDetector_HeuristicFlagsBusyFrame(t *testing.T) {
	d := NewDamageDetector(zerolog.Nop(), nil, time.Second, 85)

	photos := []Photo{{
		Filename: "front.jpg",
		Category: CategoryExteriorFront,
		Image:    checkerboardImage(64, 64, 8),
	}}
	assessments := d.Detect(context.Background(), photos)

	require.Len(t, assessments, 1)
	a := assessments[0]
	assert.Equal(t, "Front", a.Area)
	assert.Equal(t, SeveritySevere, a.Severity)
	assert.Equal(t, heuristicMaxConfidence, a.Confidence, "heuristic confidence is capped")
	assert.Equal(t, "Replace affected part", a.RepairRecommendation)
	assert.Equal(t, sourceImageStats, a.Source)
	// Default zone cost scaled for severe damage plus four body hours.
	assert.Equal(t, 940.0, a.EstimatedCost)
}

func TestDamageDetector_ProviderFindings(t *testing.T) {
	provider := &stubDamageProvider{
		name: "gemini_vision",
		result: &ProviderResult[[]DamageFinding]{
			Payload: []DamageFinding{
				{Area: "Front Bumper", Severity: SeverityMinor, Description: "Scratched front bumper"},
				{Area: "", Severity: SeverityModerate},
			},
			Confidence: 0.85,
			Source:     "gemini_vision",
		},
	}
	d := NewDamageDetector(zerolog.Nop(), []DamageSource{{Provider: provider, Threshold: 0.6}}, time.Second, 85)

	photos := []Photo{{Filename: "damage.jpg", Category: CategoryDamage}}
	assessments := d.Detect(context.Background(), photos)

	require.Len(t, assessments, 2)

	first := assessments[0]
	assert.Equal(t, "Front Bumper", first.Area)
	assert.Equal(t, SeverityMinor, first.Severity)
	assert.Equal(t, 0.85, first.Confidence)
	assert.Equal(t, "Scratched front bumper", first.Description)
	assert.Equal(t, "gemini_vision", first.Source)
	// 800 base at the minor multiplier plus one body hour.
	assert.Equal(t, 485.0, first.EstimatedCost)

	second := assessments[1]
	assert.Equal(t, "Unknown", second.Area, "damage shots carry no zone of their own")
	assert.Equal(t, "Moderate damage detected on Unknown", second.Description)
	assert.Equal(t, "Inspect and repair affected area", second.RepairRecommendation)
}

func TestDamageDetector_RunsCascadePerPhoto(t *testing.T) {
	provider := &stubDamageProvider{
		name: "gemini_vision",
		result: &ProviderResult[[]DamageFinding]{
			Payload:    []DamageFinding{{Area: "Hood", Severity: SeverityMinor}},
			Confidence: 0.9,
			Source:     "gemini_vision",
		},
	}
	d := NewDamageDetector(zerolog.Nop(), []DamageSource{{Provider: provider, Threshold: 0.6}}, time.Second, 85)

	photos := []Photo{
		{Filename: "damage_1.jpg", Category: CategoryDamage},
		{Filename: "damage_2.jpg", Category: CategoryDamage},
	}
	assessments := d.Detect(context.Background(), photos)

	assert.Equal(t, 2, provider.calls)
	require.Len(t, assessments, 2)
	// Repeated findings for the same area are distinct observations.
	assert.Equal(t, assessments[0].Area, assessments[1].Area)
}

func TestSelectDamagePhotos(t *testing.T) {
	damage := Photo{Filename: "d.jpg", Category: CategoryDamage}
	exterior := Photo{Filename: "e.jpg", Category: CategoryExteriorRear}
	interior := Photo{Filename: "i.jpg", Category: CategoryInterior}

	selected := selectDamagePhotos([]Photo{interior, exterior, damage})
	require.Len(t, selected, 1)
	assert.Equal(t, "d.jpg", selected[0].Filename)

	selected = selectDamagePhotos([]Photo{interior, exterior})
	require.Len(t, selected, 1)
	assert.Equal(t, "e.jpg", selected[0].Filename)

	selected = selectDamagePhotos([]Photo{interior})
	require.Len(t, selected, 1)
	assert.Equal(t, "i.jpg", selected[0].Filename)
}

func TestEstimateFindingCost(t *testing.T) {
	d := NewDamageDetector(zerolog.Nop(), nil, time.Second, 85)

	// Each case is zone base times the severity multiplier plus the
	// severity's body labor hours at the configured rate.
	tests := []struct {
		area     string
		severity Severity
		want     float64
	}{
		{"Front Bumper", SeverityMinor, 485},
		{"Driver Side Door", SeverityModerate, 692.5},
		{"Hood", SeveritySevere, 1120},
		{"Windshield", SeverityMinor, 310},
		{"Quarter Panel", SeverityModerate, 612.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.estimateFindingCost(tt.area, tt.severity), "%s %s", tt.area, tt.severity)
	}
}
