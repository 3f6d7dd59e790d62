package analysis

import (
	"math"
	"time"
)

const (
	// Share of a finding's estimated cost attributed to parts.
	partsCostShare = 0.6

	// Paint time is half the body time for paintable zones.
	paintHoursShare = 0.5

	luxuryRepairMultiplier = 1.3
	agedRepairMultiplier   = 1.15
	agedRepairThreshold    = 10
)

// CostEstimator turns damage findings and an identity into a repair cost
// breakdown.
type CostEstimator struct {
	laborRateBody  float64
	laborRatePaint float64
	now            func() time.Time
}

func NewCostEstimator(laborRateBody, laborRatePaint float64) *CostEstimator {
	return &CostEstimator{
		laborRateBody:  laborRateBody,
		laborRatePaint: laborRatePaint,
		now:            time.Now,
	}
}

// Estimate sums parts, labor and paint over every non-None finding, then
// applies the luxury and age adjustments to the total only. All monetary
// fields are rounded to cents; total equals the rounded sum of its parts
// before adjustment.
func (e *CostEstimator) Estimate(assessments []DamageAssessment, identity VehicleIdentity) RepairCost {
	breakdown := RepairCost{PartsDetails: []PartDetail{}}

	for _, damage := range assessments {
		if damage.Severity == SeverityNone {
			continue
		}

		partCost := damage.EstimatedCost * partsCostShare
		breakdown.PartsCost += partCost

		hours := damage.Severity.laborHours()
		breakdown.LaborHours += hours

		if !glassOrInterior(damage.Area) {
			breakdown.PaintCost += hours * paintHoursShare * e.laborRatePaint
		}

		action := "Repair"
		if damage.Severity == SeveritySevere {
			action = "Replace"
		}
		breakdown.PartsDetails = append(breakdown.PartsDetails, PartDetail{
			Part:   damage.Area,
			Action: action,
			Cost:   round2(partCost),
		})
	}

	if len(breakdown.PartsDetails) == 0 {
		return breakdown
	}

	breakdown.LaborCost = breakdown.LaborHours * e.laborRateBody
	total := breakdown.PartsCost + breakdown.LaborCost + breakdown.PaintCost

	if luxuryMakes[identity.Make] {
		total *= luxuryRepairMultiplier
	}
	if identity.Year > 0 && e.now().Year()-identity.Year > agedRepairThreshold {
		total *= agedRepairMultiplier
	}

	breakdown.PartsCost = round2(breakdown.PartsCost)
	breakdown.LaborCost = round2(breakdown.LaborCost)
	breakdown.PaintCost = round2(breakdown.PaintCost)
	breakdown.TotalCost = round2(total)
	return breakdown
}

// round2 rounds a monetary amount to cents.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
