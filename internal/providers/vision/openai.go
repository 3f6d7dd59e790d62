package vision

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"auction-analyzer/internal/analysis"
)

const (
	openaiModel     = "gpt-4o"
	openaiMaxTokens = 1024
)

const openaiSystemPrompt = `You are an expert vehicle appraiser. You answer every question with a single JSON object and nothing else.`

// OpenAIProvider is the second-priority vision adapter, backed by the OpenAI
// chat completions API with image input.
type OpenAIProvider struct {
	*openai.Client
	log zerolog.Logger
}

func NewOpenAI(apiKey string, log zerolog.Logger) *OpenAIProvider {
	return &OpenAIProvider{
		Client: openai.NewClient(apiKey),
		log:    log.With().Str("provider", "openai_vision").Logger(),
	}
}

func (o *OpenAIProvider) Name() string { return "openai_vision" }

func (o *OpenAIProvider) Identify(ctx context.Context, photo *analysis.Photo) (*analysis.ProviderResult[analysis.PartialIdentity], error) {
	prompt := `Identify the vehicle in the attached photo. Respond with a JSON object:
{"make": "...", "model": "...", "year": 0, "trim": "...", "confidence": 0.0}
Leave fields you cannot determine as empty strings or zero. confidence is 0.0 to 1.0.`

	text, err := o.complete(ctx, prompt, photo)
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
		o.log.Warn().Err(err).Str("response", text).Msg("unparseable identification response")
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
		Source:     o.Name(),
	}, nil
}

func (o *OpenAIProvider) DetectDamage(ctx context.Context, photo *analysis.Photo) (*analysis.ProviderResult[[]analysis.DamageFinding], error) {
	prompt := `Inspect the attached vehicle photo for visible damage. Respond with a JSON object:
{"findings": [{"area": "...", "severity": "Minor|Moderate|Severe", "description": "..."}], "confidence": 0.0}
An undamaged vehicle gets an empty findings array. confidence is 0.0 to 1.0.`

	text, err := o.complete(ctx, prompt, photo)
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
		o.log.Warn().Err(err).Str("response", text).Msg("unparseable damage response")
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
		Source:     o.Name(),
	}, nil
}

func (o *OpenAIProvider) complete(ctx context.Context, prompt string, photo *analysis.Photo) (string, error) {
	imageURL := fmt.Sprintf("data:%s;base64,%s", photo.MimeType(), base64.StdEncoding.EncodeToString(photo.Data))

	req := openai.ChatCompletionRequest{
		Model:     openaiModel,
		MaxTokens: openaiMaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openaiSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageURL}},
				},
			},
		},
	}

	resp, err := o.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", analysis.ErrProviderUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", analysis.ErrProviderUnavailable)
	}

	return resp.Choices[0].Message.Content, nil
}
