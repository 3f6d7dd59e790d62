package analysis

import (
	"image"
	"time"
)

// PhotoCategory is the semantic slot a photo fills in an analysis run,
// inferred from its filename.
type PhotoCategory string

const (
	CategoryExteriorFront     PhotoCategory = "exterior_front"
	CategoryExteriorRear      PhotoCategory = "exterior_rear"
	CategoryExteriorDriver    PhotoCategory = "exterior_driver"
	CategoryExteriorPassenger PhotoCategory = "exterior_passenger"
	CategoryInterior          PhotoCategory = "interior"
	CategoryDamage            PhotoCategory = "damage"
	CategoryUnknown           PhotoCategory = "unknown"
)

// IsExterior reports whether the category is one of the four exterior views.
func (c PhotoCategory) IsExterior() bool {
	switch c {
	case CategoryExteriorFront, CategoryExteriorRear, CategoryExteriorDriver, CategoryExteriorPassenger:
		return true
	}
	return false
}

// PhotoInput is a raw upload as received from the caller.
type PhotoInput struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Photo is a decoded, normalized frame. Produced once by the preprocessor
// and read-only for the rest of the run.
type Photo struct {
	Data     []byte
	Image    image.Image
	Format   string
	Width    int
	Height   int
	Category PhotoCategory
	Filename string
}

// ProviderResult is the envelope every provider returns: a payload is never
// reported without a confidence and a source identity.
type ProviderResult[T any] struct {
	Payload    T
	Confidence float64
	Source     string
}

// PartialIdentity is what a single identification provider can contribute.
// Zero values mean the provider had nothing for that field.
type PartialIdentity struct {
	Make  string
	Model string
	Year  int
	Trim  string
}

// VehicleIdentity is the resolved identification for a run.
type VehicleIdentity struct {
	Make          string  `json:"make"`
	Model         string  `json:"model"`
	Year          int     `json:"year"`
	Trim          string  `json:"trim"`
	Confidence    float64 `json:"confidence"`
	Source        string  `json:"source"`
	YearEstimated bool    `json:"year_estimated"`
}

// Key returns the cache key identifying this vehicle for pricing.
func (v VehicleIdentity) Key() VehicleKey {
	return VehicleKey{Make: v.Make, Model: v.Model, Year: v.Year, Trim: v.Trim}
}

// VehicleKey identifies a vehicle for price lookups.
type VehicleKey struct {
	Make  string
	Model string
	Year  int
	Trim  string
}

// Severity describes how bad a single damage finding is.
type Severity string

const (
	SeverityNone     Severity = "None"
	SeverityMinor    Severity = "Minor"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
)

// IsValid reports whether s is a recognized severity tier.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityNone, SeverityMinor, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// laborHours is the body-shop time a finding of this severity takes.
func (s Severity) laborHours() float64 {
	switch s {
	case SeverityMinor:
		return 1.0
	case SeverityModerate:
		return 2.5
	case SeveritySevere:
		return 4.0
	}
	return 0
}

// costMultiplier scales the zone base cost for this severity.
func (s Severity) costMultiplier() float64 {
	switch s {
	case SeverityMinor:
		return 0.5
	case SeverityModerate:
		return 0.8
	case SeveritySevere:
		return 1.2
	}
	return 0
}

// DamageFinding is the raw payload a damage provider emits for one photo.
type DamageFinding struct {
	Area        string
	Severity    Severity
	Description string
}

// DamageAssessment is one damage record in the final result. A run with no
// detected damage still carries a single SeverityNone assessment.
type DamageAssessment struct {
	Area                 string   `json:"area"`
	Severity             Severity `json:"severity"`
	Confidence           float64  `json:"confidence"`
	Description          string   `json:"description"`
	RepairRecommendation string   `json:"repair_recommendation"`
	EstimatedCost        float64  `json:"estimated_cost"`
	Source               string   `json:"source"`
}

// PartDetail is one line item in a repair cost breakdown.
type PartDetail struct {
	Part   string  `json:"part"`
	Action string  `json:"action"`
	Cost   float64 `json:"cost"`
}

// RepairCost is the structured repair estimate for a run.
type RepairCost struct {
	PartsCost    float64      `json:"parts_cost"`
	LaborCost    float64      `json:"labor_cost"`
	PaintCost    float64      `json:"paint_cost"`
	TotalCost    float64      `json:"total_cost"`
	LaborHours   float64      `json:"labor_hours"`
	PartsDetails []PartDetail `json:"parts_details"`
}

// MarketPrice holds the three standard valuation figures for a vehicle.
type MarketPrice struct {
	RetailPrice       float64 `json:"retail_price"`
	TradeInPrice      float64 `json:"trade_in_price"`
	PrivatePartyPrice float64 `json:"private_party_price"`
	Source            string  `json:"source"`
	Confidence        float64 `json:"confidence"`
}

// Recommendation is the investment verdict tier.
type Recommendation string

const (
	RecommendationPass      Recommendation = "Pass"
	RecommendationConsider  Recommendation = "Consider"
	RecommendationBuy       Recommendation = "Buy"
	RecommendationStrongBuy Recommendation = "Strong Buy"
)

// ROIAnalysis is the investment math for a run.
type ROIAnalysis struct {
	AskingPrice       float64        `json:"asking_price"`
	TotalInvestment   float64        `json:"total_investment"`
	PotentialProfit   float64        `json:"potential_profit"`
	ROIPercentage     float64        `json:"roi_percentage"`
	Recommendation    Recommendation `json:"recommendation"`
	AdditionalFactors []string       `json:"additional_factors"`
}

// Metadata is optional caller-supplied vehicle information. The caller
// validates ranges before it reaches the pipeline.
type Metadata struct {
	Make        string
	Model       string
	Year        int
	Trim        string
	AskingPrice *float64
}

// Complete reports whether the metadata alone identifies the vehicle.
func (m *Metadata) Complete() bool {
	return m != nil && m.Make != "" && m.Model != "" && m.Year != 0
}

// Result is the aggregate outcome of one pipeline run. Assembled once,
// never mutated afterwards.
type Result struct {
	Identity    VehicleIdentity    `json:"identification"`
	Damage      []DamageAssessment `json:"damage_assessment"`
	MarketPrice MarketPrice        `json:"market_prices"`
	RepairCost  RepairCost         `json:"repair_costs"`
	ROI         ROIAnalysis        `json:"roi_analysis"`
	AnalyzedAt  time.Time          `json:"analyzed_at"`
}
