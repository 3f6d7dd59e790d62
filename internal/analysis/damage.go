package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// Score bands for the image-statistics heuristic.
	damageScoreFloor    = 0.5
	damageScoreMinor    = 1.0
	damageScoreModerate = 1.5

	// The heuristic never reports more certainty than this.
	heuristicMaxConfidence = 0.8

	noDamageConfidence = 0.7
	sourceImageStats   = "image_statistics"
)

// DamageDetector finds per-area damage across the relevant photos of a run.
type DamageDetector struct {
	log           zerolog.Logger
	sources       []DamageSource
	timeout       time.Duration
	laborRateBody float64
}

func NewDamageDetector(log zerolog.Logger, sources []DamageSource, timeout time.Duration, laborRateBody float64) *DamageDetector {
	return &DamageDetector{
		log:           log.With().Str("stage", "damage_detection").Logger(),
		sources:       sources,
		timeout:       timeout,
		laborRateBody: laborRateBody,
	}
}

// Detect runs a provider cascade per relevant photo and concatenates the
// findings. Multiple findings for the same area are kept: they are distinct
// observations, not duplicates. A run that finds nothing still yields one
// severity-None assessment so downstream consumers always have a record.
func (d *DamageDetector) Detect(ctx context.Context, photos []Photo) []DamageAssessment {
	selected := selectDamagePhotos(photos)

	var assessments []DamageAssessment
	for i := range selected {
		photo := &selected[i]
		assessments = append(assessments, d.detectOne(ctx, photo)...)
	}

	if len(assessments) == 0 {
		assessments = append(assessments, DamageAssessment{
			Area:                 "Overall",
			Severity:             SeverityNone,
			Confidence:           noDamageConfidence,
			Description:          "No significant damage detected",
			RepairRecommendation: "No repairs needed",
			EstimatedCost:        0,
			Source:               sourceImageStats,
		})
	}

	return assessments
}

// selectDamagePhotos prefers explicitly tagged damage shots, then exterior
// views, then everything.
func selectDamagePhotos(photos []Photo) []Photo {
	var damage, exterior []Photo
	for _, p := range photos {
		switch {
		case p.Category == CategoryDamage:
			damage = append(damage, p)
		case p.Category.IsExterior():
			exterior = append(exterior, p)
		}
	}
	if len(damage) > 0 {
		return damage
	}
	if len(exterior) > 0 {
		return exterior
	}
	return photos
}

func (d *DamageDetector) detectOne(ctx context.Context, photo *Photo) []DamageAssessment {
	steps := make([]cascadeStep[[]DamageFinding], 0, len(d.sources))
	for _, src := range d.sources {
		src := src
		steps = append(steps, cascadeStep[[]DamageFinding]{
			name:      src.Provider.Name(),
			threshold: src.Threshold,
			invoke: func(ctx context.Context) (*ProviderResult[[]DamageFinding], error) {
				return src.Provider.DetectDamage(ctx, photo)
			},
		})
	}

	accepted := runCascade(ctx, d.log, steps, d.timeout, func(ctx context.Context) ProviderResult[[]DamageFinding] {
		return d.estimateFromImage(photo)
	})

	assessments := make([]DamageAssessment, 0, len(accepted.Payload))
	for _, finding := range accepted.Payload {
		area := finding.Area
		if area == "" || area == "Unknown" {
			area = AreaFromCategory(photo.Category)
		}
		description := finding.Description
		if description == "" {
			description = fmt.Sprintf("%s damage detected on %s", finding.Severity, area)
		}
		assessments = append(assessments, DamageAssessment{
			Area:                 area,
			Severity:             finding.Severity,
			Confidence:           accepted.Confidence,
			Description:          description,
			RepairRecommendation: repairRecommendation(finding.Severity),
			EstimatedCost:        d.estimateFindingCost(area, finding.Severity),
			Source:               accepted.Source,
		})
	}
	return assessments
}

// estimateFromImage is the terminal heuristic: edge density plus paint
// inconsistency from the decoded frame. It cannot fail; a quiet image simply
// yields no findings.
func (d *DamageDetector) estimateFromImage(photo *Photo) ProviderResult[[]DamageFinding] {
	stats := computeImageStats(photo.Image)
	score := stats.damageScore()

	d.log.Debug().
		Str("filename", photo.Filename).
		Float64("edge_density", stats.EdgeDensity).
		Float64("saturation_std", stats.SaturationStd).
		Float64("value_std", stats.ValueStd).
		Float64("damage_score", score).
		Msg("computed image statistics")

	if score <= damageScoreFloor {
		return ProviderResult[[]DamageFinding]{Source: sourceImageStats, Confidence: 0}
	}

	severity := SeveritySevere
	switch {
	case score <= damageScoreMinor:
		severity = SeverityMinor
	case score <= damageScoreModerate:
		severity = SeverityModerate
	}

	confidence := score / 2
	if confidence > heuristicMaxConfidence {
		confidence = heuristicMaxConfidence
	}

	area := AreaFromCategory(photo.Category)
	return ProviderResult[[]DamageFinding]{
		Payload: []DamageFinding{{
			Area:        area,
			Severity:    severity,
			Description: fmt.Sprintf("Potential %s damage detected on %s", strings.ToLower(string(severity)), area),
		}},
		Confidence: confidence,
		Source:     sourceImageStats,
	}
}

// estimateFindingCost prices a single finding at detection time: zone base
// cost scaled by severity, plus body labor.
func (d *DamageDetector) estimateFindingCost(area string, severity Severity) float64 {
	base := zoneBaseCost(area)
	total := base*severity.costMultiplier() + severity.laborHours()*d.laborRateBody
	return round2(total)
}

func repairRecommendation(severity Severity) string {
	switch severity {
	case SeverityNone:
		return "No repairs needed"
	case SeveritySevere:
		return "Replace affected part"
	default:
		return "Inspect and repair affected area"
	}
}
