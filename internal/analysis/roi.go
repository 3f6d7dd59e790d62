package analysis

const (
	// Recommendation bands on ROI percentage.
	strongBuyROI = 15.0
	buyROI       = 8.0
	considerROI  = 3.0

	// Asking price assumed when the caller supplies none.
	defaultAskingPriceFactor = 0.9

	// A repair bill above this share of retail value forces a Pass.
	repairRatioLimit = 0.5

	// Retail minus trade-in below this is flagged as thin margin.
	minHealthyMarketSpread = 1000.0
)

// CalculateROI combines the market quote, the repair bill and the asking
// price into an investment recommendation. Advisory overrides are applied
// after the band is chosen: an excessive repair ratio forces a Pass; a thin
// market spread is flagged without changing the verdict.
func CalculateROI(prices MarketPrice, repair RepairCost, askingPrice *float64) ROIAnalysis {
	asking := 0.0
	if askingPrice != nil && *askingPrice > 0 {
		asking = *askingPrice
	} else {
		asking = prices.TradeInPrice * defaultAskingPriceFactor
	}

	totalInvestment := asking + repair.TotalCost
	potentialProfit := prices.RetailPrice - totalInvestment

	roiPercentage := 0.0
	if totalInvestment > 0 {
		roiPercentage = potentialProfit / totalInvestment * 100
	}

	recommendation := RecommendationPass
	switch {
	case roiPercentage >= strongBuyROI:
		recommendation = RecommendationStrongBuy
	case roiPercentage >= buyROI:
		recommendation = RecommendationBuy
	case roiPercentage >= considerROI:
		recommendation = RecommendationConsider
	}

	factors := []string{}
	if prices.RetailPrice > 0 && repair.TotalCost/prices.RetailPrice > repairRatioLimit {
		factors = append(factors, "Repair costs exceed 50% of vehicle value")
		recommendation = RecommendationPass
	}
	if prices.RetailPrice-prices.TradeInPrice < minHealthyMarketSpread {
		factors = append(factors, "Low market spread between trade-in and retail")
	}

	return ROIAnalysis{
		AskingPrice:       asking,
		TotalInvestment:   totalInvestment,
		PotentialProfit:   potentialProfit,
		ROIPercentage:     roiPercentage,
		Recommendation:    recommendation,
		AdditionalFactors: factors,
	}
}
