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

const edmundsBaseURL = "https://api.edmunds.com/api/v1"

// EdmundsProvider is the second-priority pricing adapter. Edmunds reports a
// single true-market-value figure, so retail and trade-in are derived from
// the same spreads the trade press quotes for their TMV.
type EdmundsProvider struct {
	httpClient *resty.Client
	log        zerolog.Logger
}

func NewEdmunds(apiKey string, log zerolog.Logger) *EdmundsProvider {
	client := resty.New().
		SetBaseURL(edmundsBaseURL).
		SetQueryParam("api_key", apiKey)

	return &EdmundsProvider{
		httpClient: client,
		log:        log.With().Str("provider", "edmunds").Logger(),
	}
}

func (p *EdmundsProvider) Name() string { return "edmunds" }

type edmundsTMVResponse struct {
	TMV       float64 `json:"tmv"`
	Certainty float64 `json:"certainty"`
}

func (p *EdmundsProvider) QuotePrice(ctx context.Context, key analysis.VehicleKey) (*analysis.ProviderResult[analysis.MarketPrice], error) {
	result := &edmundsTMVResponse{}

	res, err := p.httpClient.NewRequest().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"make":  key.Make,
			"model": key.Model,
			"year":  strconv.Itoa(key.Year),
		}).
		SetResult(result).
		Get("/tmv")
	if err != nil {
		return nil, fmt.Errorf("%w: edmunds: %v", analysis.ErrProviderUnavailable, err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: edmunds: status %d", analysis.ErrProviderUnavailable, res.StatusCode())
	}
	if result.TMV <= 0 {
		return nil, nil
	}

	return &analysis.ProviderResult[analysis.MarketPrice]{
		Payload: analysis.MarketPrice{
			RetailPrice:       result.TMV * 1.08,
			TradeInPrice:      result.TMV * 0.9,
			PrivatePartyPrice: result.TMV,
			Source:            p.Name(),
			Confidence:        result.Certainty,
		},
		Confidence: result.Certainty,
		Source:     p.Name(),
	}, nil
}
