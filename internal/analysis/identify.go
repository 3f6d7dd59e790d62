package analysis

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Confidence levels for identities not produced by an external provider.
const (
	userProvidedConfidence = 0.99
	userPartialConfidence  = 0.8
	fallbackConfidence     = 0.5
	fallbackYearOffset     = 3
	fallbackTrim           = "Base"
	sourceUserProvided     = "user_provided"
	sourceIdentifyFallback = "fallback"
)

// Identifier resolves the vehicle identity for a run, cascading over the
// configured providers with a local catalog fallback.
type Identifier struct {
	log     zerolog.Logger
	sources []IdentifySource
	timeout time.Duration
	now     func() time.Time
}

func NewIdentifier(log zerolog.Logger, sources []IdentifySource, timeout time.Duration) *Identifier {
	return &Identifier{
		log:     log.With().Str("stage", "identification").Logger(),
		sources: sources,
		timeout: timeout,
		now:     time.Now,
	}
}

// Resolve determines make/model/year/trim. Complete caller metadata
// short-circuits the cascade without any external call; otherwise providers
// are tried in priority order against one representative photo. Resolve
// always returns a usable identity.
func (r *Identifier) Resolve(ctx context.Context, photos []Photo, meta *Metadata) VehicleIdentity {
	if meta.Complete() {
		trim := meta.Trim
		if trim == "" {
			trim = "Unknown"
		}
		return VehicleIdentity{
			Make:       meta.Make,
			Model:      meta.Model,
			Year:       meta.Year,
			Trim:       trim,
			Confidence: userProvidedConfidence,
			Source:     sourceUserProvided,
		}
	}

	// Providers need a photo; with none the cascade is empty and the
	// metadata fallback resolves the identity on its own.
	var steps []cascadeStep[PartialIdentity]
	if len(photos) > 0 {
		photo := representativePhoto(photos)
		steps = make([]cascadeStep[PartialIdentity], 0, len(r.sources))
		for _, src := range r.sources {
			src := src
			steps = append(steps, cascadeStep[PartialIdentity]{
				name:      src.Provider.Name(),
				threshold: src.Threshold,
				invoke: func(ctx context.Context) (*ProviderResult[PartialIdentity], error) {
					return src.Provider.Identify(ctx, photo)
				},
			})
		}
	}

	accepted := runCascade(ctx, r.log, steps, r.timeout, func(ctx context.Context) ProviderResult[PartialIdentity] {
		return r.fallbackIdentity(meta)
	})

	return r.finalize(accepted)
}

// representativePhoto prefers an exterior view for identification. The
// slice must be non-empty.
func representativePhoto(photos []Photo) *Photo {
	for i := range photos {
		if photos[i].Category.IsExterior() {
			return &photos[i]
		}
	}
	return &photos[0]
}

// finalize turns an accepted payload into a full identity, estimating the
// year with the accepting source's configured offset when it is missing.
func (r *Identifier) finalize(accepted ProviderResult[PartialIdentity]) VehicleIdentity {
	identity := VehicleIdentity{
		Make:       accepted.Payload.Make,
		Model:      accepted.Payload.Model,
		Year:       accepted.Payload.Year,
		Trim:       accepted.Payload.Trim,
		Confidence: accepted.Confidence,
		Source:     accepted.Source,
	}

	if identity.Year == 0 {
		identity.Year = r.now().Year() - r.yearOffset(accepted.Source)
		identity.YearEstimated = true
	}
	if identity.Trim == "" {
		identity.Trim = fallbackTrim
	}

	return identity
}

func (r *Identifier) yearOffset(source string) int {
	for _, src := range r.sources {
		if src.Provider.Name() == source {
			return src.YearOffset
		}
	}
	return fallbackYearOffset
}

// fallbackIdentity blends partial caller metadata with a deterministic
// catalog pick. Fields the caller actually supplied lift the confidence.
func (r *Identifier) fallbackIdentity(meta *Metadata) ProviderResult[PartialIdentity] {
	result := ProviderResult[PartialIdentity]{
		Confidence: fallbackConfidence,
		Source:     sourceIdentifyFallback,
	}

	if meta != nil {
		result.Payload.Make = meta.Make
		result.Payload.Model = meta.Model
		result.Payload.Year = meta.Year
		result.Payload.Trim = meta.Trim
		if meta.Make != "" || meta.Model != "" || meta.Year != 0 {
			result.Confidence = userPartialConfidence
		}
	}

	if result.Payload.Make == "" || result.Payload.Model == "" {
		pick := vehicleCatalog[0]
		if result.Payload.Make == "" {
			result.Payload.Make = pick.Name
		}
		if result.Payload.Model == "" {
			if models := ModelsForMake(result.Payload.Make); len(models) > 0 {
				result.Payload.Model = models[0]
			} else {
				result.Payload.Model = pick.Models[0]
			}
		}
		// Guessed fields cap the confidence at the fallback level.
		result.Confidence = fallbackConfidence
	}

	return result
}
