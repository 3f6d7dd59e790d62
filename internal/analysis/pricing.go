package analysis

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	// Local estimator bases for a typical mid-range vehicle.
	baseRetailPrice       = 20000.0
	baseTradeInPrice      = 17000.0
	basePrivatePartyPrice = 18500.0

	estimatedPriceConfidence = 0.7
	sourcePriceEstimated     = "estimated"
)

type cachedQuote struct {
	quote    MarketPrice
	storedAt time.Time
}

// PriceResolver produces market quotes through the provider cascade with a
// TTL cache keyed by vehicle identity. The cache is the only state shared
// across concurrent runs; population is single-flighted per key so identical
// vehicles arriving together trigger one provider pass.
type PriceResolver struct {
	log     zerolog.Logger
	sources []PriceSource
	timeout time.Duration
	ttl     time.Duration

	mu    sync.RWMutex
	cache map[VehicleKey]cachedQuote
	group singleflight.Group

	now func() time.Time
}

func NewPriceResolver(log zerolog.Logger, sources []PriceSource, timeout, ttl time.Duration) *PriceResolver {
	return &PriceResolver{
		log:     log.With().Str("stage", "market_pricing").Logger(),
		sources: sources,
		timeout: timeout,
		ttl:     ttl,
		cache:   make(map[VehicleKey]cachedQuote),
		now:     time.Now,
	}
}

// Resolve returns the market quote for a vehicle. A cache entry younger than
// the TTL is returned unchanged without any provider call.
func (r *PriceResolver) Resolve(ctx context.Context, identity VehicleIdentity) MarketPrice {
	key := identity.Key()

	if quote, ok := r.lookup(key); ok {
		r.log.Debug().
			Str("make", key.Make).
			Str("model", key.Model).
			Int("year", key.Year).
			Msg("price cache hit")
		return quote
	}

	flightKey := fmt.Sprintf("%s|%s|%d|%s", key.Make, key.Model, key.Year, key.Trim)
	result, _, _ := r.group.Do(flightKey, func() (interface{}, error) {
		// Re-check under the flight: a concurrent caller may have
		// populated the entry while this one waited.
		if quote, ok := r.lookup(key); ok {
			return quote, nil
		}
		quote := r.fetch(ctx, key)
		r.store(key, quote)
		return quote, nil
	})

	return result.(MarketPrice)
}

func (r *PriceResolver) lookup(key VehicleKey) (MarketPrice, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.cache[key]
	if !ok || r.now().Sub(entry.storedAt) >= r.ttl {
		return MarketPrice{}, false
	}
	return entry.quote, true
}

func (r *PriceResolver) store(key VehicleKey, quote MarketPrice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[key] = cachedQuote{quote: quote, storedAt: r.now()}
}

func (r *PriceResolver) fetch(ctx context.Context, key VehicleKey) MarketPrice {
	steps := make([]cascadeStep[MarketPrice], 0, len(r.sources))
	for _, src := range r.sources {
		src := src
		steps = append(steps, cascadeStep[MarketPrice]{
			name:      src.Provider.Name(),
			threshold: src.Threshold,
			invoke: func(ctx context.Context) (*ProviderResult[MarketPrice], error) {
				return src.Provider.QuotePrice(ctx, key)
			},
		})
	}

	accepted := runCascade(ctx, r.log, steps, r.timeout, func(ctx context.Context) ProviderResult[MarketPrice] {
		quote := r.estimate(key)
		return ProviderResult[MarketPrice]{
			Payload:    quote,
			Confidence: quote.Confidence,
			Source:     quote.Source,
		}
	})

	return accepted.Payload
}

// estimate is the local valuation model: ordered base prices scaled by make,
// model popularity, age band and trim, rounded to the nearest hundred.
func (r *PriceResolver) estimate(key VehicleKey) MarketPrice {
	makeMult, ok := makeMultipliers[key.Make]
	if !ok {
		makeMult = 1.0
	}
	modelMult, ok := modelMultipliers[key.Model]
	if !ok {
		modelMult = 1.0
	}

	age := r.now().Year() - key.Year
	multiplier := makeMult * modelMult * ageMultiplier(age) * trimMultiplier(key.Trim)

	return MarketPrice{
		RetailPrice:       roundToHundred(baseRetailPrice * multiplier),
		TradeInPrice:      roundToHundred(baseTradeInPrice * multiplier),
		PrivatePartyPrice: roundToHundred(basePrivatePartyPrice * multiplier),
		Source:            sourcePriceEstimated,
		Confidence:        estimatedPriceConfidence,
	}
}

func roundToHundred(v float64) float64 {
	return math.Round(v/100) * 100
}
