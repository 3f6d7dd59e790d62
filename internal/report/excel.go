package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"auction-analyzer/internal/analysis"
)

const (
	summarySheet = "Summary"
	damageSheet  = "Damage"
	costsSheet   = "Repair Costs"
)

// BuildWorkbook renders a completed analysis as an Excel workbook.
func BuildWorkbook(result *analysis.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeSummary(f, result); err != nil {
		return nil, err
	}
	if err := writeDamage(f, result.Damage); err != nil {
		return nil, err
	}
	if err := writeCosts(f, result.RepairCost); err != nil {
		return nil, err
	}

	// excelize names the initial sheet "Sheet1"; ours replaces it.
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	return f, nil
}

func writeSummary(f *excelize.File, result *analysis.Result) error {
	rows := [][]interface{}{
		{"Vehicle", fmt.Sprintf("%d %s %s %s", result.Identity.Year, result.Identity.Make, result.Identity.Model, result.Identity.Trim)},
		{"Identification source", result.Identity.Source},
		{"Identification confidence", result.Identity.Confidence},
		{"Retail price", result.MarketPrice.RetailPrice},
		{"Trade-in price", result.MarketPrice.TradeInPrice},
		{"Private party price", result.MarketPrice.PrivatePartyPrice},
		{"Price source", result.MarketPrice.Source},
		{"Total repair cost", result.RepairCost.TotalCost},
		{"Asking price", result.ROI.AskingPrice},
		{"Total investment", result.ROI.TotalInvestment},
		{"Potential profit", result.ROI.PotentialProfit},
		{"ROI %", result.ROI.ROIPercentage},
		{"Recommendation", string(result.ROI.Recommendation)},
		{"Analyzed at", result.AnalyzedAt.Format("2006-01-02 15:04:05 MST")},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			return err
		}
	}

	for i, factor := range result.ROI.AdditionalFactors {
		cell, err := excelize.CoordinatesToCellName(1, len(rows)+2+i)
		if err != nil {
			return err
		}
		note := []interface{}{"Note", factor}
		if err := f.SetSheetRow("Sheet1", cell, &note); err != nil {
			return err
		}
	}
	return nil
}

func writeDamage(f *excelize.File, assessments []analysis.DamageAssessment) error {
	if _, err := f.NewSheet(damageSheet); err != nil {
		return err
	}

	header := []interface{}{"Area", "Severity", "Confidence", "Description", "Recommendation", "Estimated Cost", "Source"}
	if err := f.SetSheetRow(damageSheet, "A1", &header); err != nil {
		return err
	}
	for i, a := range assessments {
		row := []interface{}{a.Area, string(a.Severity), a.Confidence, a.Description, a.RepairRecommendation, a.EstimatedCost, a.Source}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(damageSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeCosts(f *excelize.File, cost analysis.RepairCost) error {
	if _, err := f.NewSheet(costsSheet); err != nil {
		return err
	}

	totals := [][]interface{}{
		{"Parts cost", cost.PartsCost},
		{"Labor hours", cost.LaborHours},
		{"Labor cost", cost.LaborCost},
		{"Paint cost", cost.PaintCost},
		{"Total", cost.TotalCost},
	}
	for i, row := range totals {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(costsSheet, cell, &row); err != nil {
			return err
		}
	}

	header := []interface{}{"Part", "Action", "Cost"}
	if err := f.SetSheetRow(costsSheet, "A7", &header); err != nil {
		return err
	}
	for i, part := range cost.PartsDetails {
		row := []interface{}{part.Part, part.Action, part.Cost}
		cell, err := excelize.CoordinatesToCellName(1, 8+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(costsSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
