package analysis

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RunStage names a phase of the analysis state machine. Only Preprocessing
// can fail a run; every later stage is backed by a terminal heuristic.
type RunStage string

const (
	StagePreprocessing           RunStage = "preprocessing"
	StageIdentifyingAndDetecting RunStage = "identifying_and_detecting"
	StagePricingAndCosting       RunStage = "pricing_and_costing"
	StageScoringROI              RunStage = "scoring_roi"
	StageComplete                RunStage = "complete"
)

// ProgressFunc is notified on every stage transition. Callers use it to
// persist run status; a nil func is allowed.
type ProgressFunc func(stage RunStage)

// Orchestrator sequences the pipeline respecting its data dependencies:
// identification and damage detection are independent and run concurrently,
// then pricing (identity only) runs alongside cost estimation (identity and
// damage), and ROI joins both.
type Orchestrator struct {
	log          zerolog.Logger
	preprocessor *Preprocessor
	identifier   *Identifier
	detector     *DamageDetector
	estimator    *CostEstimator
	pricer       *PriceResolver
	runDeadline  time.Duration
	now          func() time.Time
}

func NewOrchestrator(
	log zerolog.Logger,
	preprocessor *Preprocessor,
	identifier *Identifier,
	detector *DamageDetector,
	estimator *CostEstimator,
	pricer *PriceResolver,
	runDeadline time.Duration,
) *Orchestrator {
	return &Orchestrator{
		log:          log,
		preprocessor: preprocessor,
		identifier:   identifier,
		detector:     detector,
		estimator:    estimator,
		pricer:       pricer,
		runDeadline:  runDeadline,
		now:          time.Now,
	}
}

// Analyze runs the full pipeline over the uploaded photos. The only error it
// can return is ErrNoValidPhotos; provider failures degrade to the local
// heuristics. A run deadline cancels pending provider calls, which likewise
// fall through to the heuristics instead of failing the run.
func (o *Orchestrator) Analyze(ctx context.Context, inputs []PhotoInput, meta *Metadata, progress ProgressFunc) (*Result, error) {
	if o.runDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.runDeadline)
		defer cancel()
	}

	report := func(stage RunStage) {
		o.log.Info().Str("run_stage", string(stage)).Msg("analysis stage transition")
		if progress != nil {
			progress(stage)
		}
	}

	report(StagePreprocessing)
	photos, err := o.preprocessor.Process(inputs)
	if err != nil {
		return nil, err
	}

	report(StageIdentifyingAndDetecting)
	var (
		identity VehicleIdentity
		damage   []DamageAssessment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		identity = o.identifier.Resolve(gctx, photos, meta)
		return nil
	})
	g.Go(func() error {
		damage = o.detector.Detect(gctx, photos)
		return nil
	})
	// Both stages terminate via their heuristics; the group never errors.
	_ = g.Wait()

	report(StagePricingAndCosting)
	var (
		prices MarketPrice
		repair RepairCost
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		prices = o.pricer.Resolve(gctx, identity)
		return nil
	})
	g.Go(func() error {
		repair = o.estimator.Estimate(damage, identity)
		return nil
	})
	_ = g.Wait()

	report(StageScoringROI)
	var askingPrice *float64
	if meta != nil {
		askingPrice = meta.AskingPrice
	}
	roi := CalculateROI(prices, repair, askingPrice)

	result := &Result{
		Identity:    identity,
		Damage:      damage,
		MarketPrice: prices,
		RepairCost:  repair,
		ROI:         roi,
		AnalyzedAt:  o.now().UTC(),
	}

	report(StageComplete)
	o.log.Info().
		Str("make", identity.Make).
		Str("model", identity.Model).
		Int("year", identity.Year).
		Int("damage_findings", len(damage)).
		Float64("repair_total", repair.TotalCost).
		Float64("retail_price", prices.RetailPrice).
		Str("recommendation", string(roi.Recommendation)).
		Msg("analysis complete")

	return result, nil
}
