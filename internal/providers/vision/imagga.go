package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"auction-analyzer/internal/analysis"
)

const imaggaBaseURL = "https://api.imagga.com/v2"

// ImaggaProvider is the last external vision adapter. Imagga only returns
// generic object tags, so identification and damage detection are both
// keyword matches over the tag list; its cascade thresholds are configured
// accordingly low.
type ImaggaProvider struct {
	httpClient *resty.Client
	log        zerolog.Logger
}

func NewImagga(apiKey, apiSecret string, log zerolog.Logger) *ImaggaProvider {
	client := resty.New().
		SetBaseURL(imaggaBaseURL).
		SetBasicAuth(apiKey, apiSecret)

	return &ImaggaProvider{
		httpClient: client,
		log:        log.With().Str("provider", "imagga").Logger(),
	}
}

func (p *ImaggaProvider) Name() string { return "imagga" }

type imaggaTag struct {
	Confidence float64 `json:"confidence"`
	Tag        struct {
		En string `json:"en"`
	} `json:"tag"`
}

type imaggaTagsResponse struct {
	Result struct {
		Tags []imaggaTag `json:"tags"`
	} `json:"result"`
}

func (p *ImaggaProvider) Identify(ctx context.Context, photo *analysis.Photo) (*analysis.ProviderResult[analysis.PartialIdentity], error) {
	tags, err := p.tags(ctx, photo)
	if err != nil {
		return nil, err
	}

	for _, tag := range tags {
		makeName, model := analysis.MatchMakeModel(tag.Tag.En)
		if makeName == "" {
			continue
		}
		return &analysis.ProviderResult[analysis.PartialIdentity]{
			Payload:    analysis.PartialIdentity{Make: makeName, Model: model},
			Confidence: clampConfidence(tag.Confidence / 100),
			Source:     p.Name(),
		}, nil
	}

	return nil, nil
}

func (p *ImaggaProvider) DetectDamage(ctx context.Context, photo *analysis.Photo) (*analysis.ProviderResult[[]analysis.DamageFinding], error) {
	tags, err := p.tags(ctx, photo)
	if err != nil {
		return nil, err
	}

	var (
		best     *imaggaTag
		bestPart string
	)
	for i, tag := range tags {
		if !analysis.ContainsDamageKeyword(tag.Tag.En) {
			continue
		}
		if best == nil || tag.Confidence > best.Confidence {
			best = &tags[i]
		}
		if part := analysis.VehiclePartFromLabel(tag.Tag.En); part != "" && bestPart == "" {
			bestPart = part
		}
	}
	if best == nil {
		return nil, nil
	}

	// A part name in any tag pins the finding to a zone; otherwise the
	// caller fills it from the photo category.
	if bestPart == "" {
		for _, tag := range tags {
			if part := analysis.VehiclePartFromLabel(tag.Tag.En); part != "" {
				bestPart = part
				break
			}
		}
	}

	severity := analysis.SeverityMinor
	switch {
	case best.Confidence > 80:
		severity = analysis.SeveritySevere
	case best.Confidence > 60:
		severity = analysis.SeverityModerate
	}

	finding := analysis.DamageFinding{
		Area:        capitalize(bestPart),
		Severity:    severity,
		Description: fmt.Sprintf("Imagga tagged %q", best.Tag.En),
	}

	return &analysis.ProviderResult[[]analysis.DamageFinding]{
		Payload:    []analysis.DamageFinding{finding},
		Confidence: clampConfidence(best.Confidence / 100),
		Source:     p.Name(),
	}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (p *ImaggaProvider) tags(ctx context.Context, photo *analysis.Photo) ([]imaggaTag, error) {
	result := &imaggaTagsResponse{}

	res, err := p.httpClient.NewRequest().
		SetContext(ctx).
		SetFormData(map[string]string{
			"image_base64": base64.StdEncoding.EncodeToString(photo.Data),
		}).
		SetResult(result).
		Post("/tags")
	if err != nil {
		return nil, fmt.Errorf("%w: imagga: %v", analysis.ErrProviderUnavailable, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: imagga: status %d", analysis.ErrProviderUnavailable, res.StatusCode())
	}

	return result.Result.Tags, nil
}
