package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestCalculateROI_StrongBuy(t *testing.T) {
	prices := MarketPrice{RetailPrice: 15000, TradeInPrice: 13000}
	repair := RepairCost{TotalCost: 2000}

	roi := CalculateROI(prices, repair, floatPtr(10000))

	assert.Equal(t, 10000.0, roi.AskingPrice)
	assert.Equal(t, 12000.0, roi.TotalInvestment)
	assert.Equal(t, 3000.0, roi.PotentialProfit)
	assert.Equal(t, 25.0, roi.ROIPercentage)
	assert.Equal(t, RecommendationStrongBuy, roi.Recommendation)
	assert.Empty(t, roi.AdditionalFactors)
}

func TestCalculateROI_Bands(t *testing.T) {
	tests := []struct {
		name   string
		retail float64
		want   Recommendation
	}{
		{"buy at eight percent", 10800, RecommendationBuy},
		{"consider at three percent", 10300, RecommendationConsider},
		{"pass below three percent", 10200, RecommendationPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prices := MarketPrice{RetailPrice: tt.retail, TradeInPrice: tt.retail - 2000}
			roi := CalculateROI(prices, RepairCost{}, floatPtr(10000))
			assert.Equal(t, tt.want, roi.Recommendation)
		})
	}
}

func TestCalculateROI_ExcessiveRepairForcesPass(t *testing.T) {
	prices := MarketPrice{RetailPrice: 15000, TradeInPrice: 13000}
	repair := RepairCost{TotalCost: 9000}

	roi := CalculateROI(prices, repair, floatPtr(2000))

	// 36%+ return on paper, but the repair bill dominates the vehicle value.
	assert.Greater(t, roi.ROIPercentage, strongBuyROI)
	assert.Equal(t, RecommendationPass, roi.Recommendation)
	assert.Contains(t, roi.AdditionalFactors, "Repair costs exceed 50% of vehicle value")
}

func TestCalculateROI_ThinSpreadIsAdvisoryOnly(t *testing.T) {
	prices := MarketPrice{RetailPrice: 15000, TradeInPrice: 14500}
	repair := RepairCost{TotalCost: 500}

	roi := CalculateROI(prices, repair, floatPtr(10000))

	assert.Equal(t, RecommendationStrongBuy, roi.Recommendation, "the spread flag never changes the verdict")
	assert.Contains(t, roi.AdditionalFactors, "Low market spread between trade-in and retail")
}

func TestCalculateROI_DefaultAskingPrice(t *testing.T) {
	prices := MarketPrice{RetailPrice: 15000, TradeInPrice: 10000}

	roi := CalculateROI(prices, RepairCost{}, nil)
	assert.Equal(t, 9000.0, roi.AskingPrice, "defaults to 90% of trade-in")

	zero := CalculateROI(prices, RepairCost{}, floatPtr(0))
	assert.Equal(t, 9000.0, zero.AskingPrice, "a zero asking price is treated as absent")
}

func TestCalculateROI_ZeroInvestment(t *testing.T) {
	roi := CalculateROI(MarketPrice{}, RepairCost{}, nil)

	assert.Zero(t, roi.ROIPercentage)
	assert.Equal(t, RecommendationPass, roi.Recommendation)
	assert.NotNil(t, roi.AdditionalFactors)
}
