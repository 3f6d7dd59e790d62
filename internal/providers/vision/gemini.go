package vision

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"auction-analyzer/internal/analysis"
)

const geminiModel = "gemini-2.0-flash"

const geminiIdentifyPrompt = `Identify the vehicle in this photo.

Respond in JSON format with these fields:
- make: The vehicle manufacturer (empty string if not identifiable)
- model: The model name (empty string if not identifiable)
- year: The model year as a number (0 if not identifiable)
- trim: The trim level if visible (empty string if unknown)
- confidence: Your confidence in the identification from 0.0 to 1.0

Example response:
{"make": "Toyota", "model": "Camry", "year": 2021, "trim": "SE", "confidence": 0.85}

Respond ONLY with the JSON object, no markdown or other text.`

const geminiDamagePrompt = `Inspect this vehicle photo for visible damage.

Respond in JSON format with these fields:
- findings: an array of objects, one per damaged area, each with:
  - area: the damaged zone (e.g. "Front Bumper", "Driver Side Door", "Hood")
  - severity: one of "Minor", "Moderate", "Severe"
  - description: a one-sentence description of the damage
- confidence: Your overall confidence from 0.0 to 1.0

An undamaged vehicle gets an empty findings array. Example response:
{"findings": [{"area": "Front Bumper", "severity": "Moderate", "description": "Dented bumper with paint transfer"}], "confidence": 0.8}

Respond ONLY with the JSON object, no markdown or other text.`

// GeminiProvider identifies vehicles and detects damage through the Gemini
// vision API.
type GeminiProvider struct {
	client *genai.Client
	log    zerolog.Logger
}

func NewGemini(ctx context.Context, apiKey string, log zerolog.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{
		client: client,
		log:    log.With().Str("provider", "gemini_vision").Logger(),
	}, nil
}

func (g *GeminiProvider) Name() string { return "gemini_vision" }

func (g *GeminiProvider) Identify(ctx context.Context, photo *analysis.Photo) (*analysis.ProviderResult[analysis.PartialIdentity], error) {
	text, err := g.generate(ctx, geminiIdentifyPrompt, photo)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Make       string  `json:"make"`
		Model      string  `json:"model"`
		Year       int     `json:"year"`
		Trim       string  `json:"trim"`
		Confidence float64 `json:"confidence"`
	}
	if err := decodeModelJSON(text, &payload); err != nil {
		g.log.Warn().Err(err).Str("response", text).Msg("unparseable identification response")
		return nil, nil
	}
	if payload.Make == "" && payload.Model == "" {
		return nil, nil
	}

	return &analysis.ProviderResult[analysis.PartialIdentity]{
		Payload: analysis.PartialIdentity{
			Make:  payload.Make,
			Model: payload.Model,
			Year:  payload.Year,
			Trim:  payload.Trim,
		},
		Confidence: clampConfidence(payload.Confidence),
		Source:     g.Name(),
	}, nil
}

func (g *GeminiProvider) DetectDamage(ctx context.Context, photo *analysis.Photo) (*analysis.ProviderResult[[]analysis.DamageFinding], error) {
	text, err := g.generate(ctx, geminiDamagePrompt, photo)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Findings []struct {
			Area        string `json:"area"`
			Severity    string `json:"severity"`
			Description string `json:"description"`
		} `json:"findings"`
		Confidence float64 `json:"confidence"`
	}
	if err := decodeModelJSON(text, &payload); err != nil {
		g.log.Warn().Err(err).Str("response", text).Msg("unparseable damage response")
		return nil, nil
	}

	findings := make([]analysis.DamageFinding, 0, len(payload.Findings))
	for _, f := range payload.Findings {
		findings = append(findings, analysis.DamageFinding{
			Area:        f.Area,
			Severity:    parseSeverity(f.Severity),
			Description: f.Description,
		})
	}

	return &analysis.ProviderResult[[]analysis.DamageFinding]{
		Payload:    findings,
		Confidence: clampConfidence(payload.Confidence),
		Source:     g.Name(),
	}, nil
}

func (g *GeminiProvider) generate(ctx context.Context, prompt string, photo *analysis.Photo) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		{InlineData: &genai.Blob{Data: photo.Data, MIMEType: photo.MimeType()}},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, geminiModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", analysis.ErrProviderUnavailable, err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: gemini returned no candidates", analysis.ErrProviderUnavailable)
	}

	return result.Text(), nil
}
