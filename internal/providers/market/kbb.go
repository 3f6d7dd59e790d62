package market

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"auction-analyzer/internal/analysis"
)

const kbbBaseURL = "https://api.kbb.com/v1"

// KBBProvider quotes market values from the Kelley Blue Book valuation API.
type KBBProvider struct {
	httpClient *resty.Client
	log        zerolog.Logger
}

func NewKBB(apiKey string, log zerolog.Logger) *KBBProvider {
	client := resty.New().
		SetBaseURL(kbbBaseURL).
		SetHeader("X-Api-Key", apiKey)

	return &KBBProvider{
		httpClient: client,
		log:        log.With().Str("provider", "kbb").Logger(),
	}
}

func (p *KBBProvider) Name() string { return "kbb" }

type kbbValuationResponse struct {
	Retail       float64 `json:"retail_value"`
	TradeIn      float64 `json:"trade_in_value"`
	PrivateParty float64 `json:"private_party_value"`
	Confidence   float64 `json:"confidence"`
}

func (p *KBBProvider) QuotePrice(ctx context.Context, key analysis.VehicleKey) (*analysis.ProviderResult[analysis.MarketPrice], error) {
	result := &kbbValuationResponse{}

	res, err := p.httpClient.NewRequest().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"make":  key.Make,
			"model": key.Model,
			"year":  strconv.Itoa(key.Year),
			"trim":  key.Trim,
		}).
		SetResult(result).
		Get("/valuations")
	if err != nil {
		return nil, fmt.Errorf("%w: kbb: %v", analysis.ErrProviderUnavailable, err)
	}
	if res.StatusCode() == http.StatusNotFound {
		// The vehicle is simply not in their book.
		return nil, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: kbb: status %d", analysis.ErrProviderUnavailable, res.StatusCode())
	}
	if result.Retail <= 0 {
		return nil, nil
	}

	return &analysis.ProviderResult[analysis.MarketPrice]{
		Payload: analysis.MarketPrice{
			RetailPrice:       result.Retail,
			TradeInPrice:      result.TradeIn,
			PrivatePartyPrice: result.PrivateParty,
			Source:            p.Name(),
			Confidence:        result.Confidence,
		},
		Confidence: result.Confidence,
		Source:     p.Name(),
	}, nil
}
