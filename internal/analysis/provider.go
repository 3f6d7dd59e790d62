package analysis

import "context"

// IdentificationProvider resolves make/model/year/trim from a single photo.
// A (nil, nil) return means the provider had nothing for this photo.
// Transport and quota failures should wrap ErrProviderUnavailable.
type IdentificationProvider interface {
	Name() string
	Identify(ctx context.Context, photo *Photo) (*ProviderResult[PartialIdentity], error)
}

// DamageProvider reports zero or more damage findings for a single photo.
// Absent and failure semantics match IdentificationProvider.
type DamageProvider interface {
	Name() string
	DetectDamage(ctx context.Context, photo *Photo) (*ProviderResult[[]DamageFinding], error)
}

// PriceProvider quotes market values for an identified vehicle.
type PriceProvider interface {
	Name() string
	QuotePrice(ctx context.Context, key VehicleKey) (*ProviderResult[MarketPrice], error)
}

// IdentifySource is one configured identification provider: the adapter, the
// confidence its result must clear, and the year offset used when the
// accepted payload lacks a model year.
type IdentifySource struct {
	Provider   IdentificationProvider
	Threshold  float64
	YearOffset int
}

// DamageSource is one configured damage provider and its acceptance threshold.
type DamageSource struct {
	Provider  DamageProvider
	Threshold float64
}

// PriceSource is one configured pricing provider and its acceptance threshold.
type PriceSource struct {
	Provider  PriceProvider
	Threshold float64
}
