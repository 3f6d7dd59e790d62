package vision

import (
	"encoding/json"
	"fmt"
	"strings"

	"auction-analyzer/internal/analysis"
)

// decodeModelJSON parses a model response into out, stripping the markdown
// code fences some models wrap around JSON despite instructions.
func decodeModelJSON(text string, out any) error {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}
	return nil
}

// clampConfidence keeps a model-supplied confidence inside [0, 1]. Model
// responses are untrusted and occasionally report percentages or negatives.
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// parseSeverity maps a free-form severity label to the closest known tier.
// Unrecognized labels count as Minor so a sloppy model response never
// inflates a repair estimate.
func parseSeverity(label string) analysis.Severity {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "none", "no damage":
		return analysis.SeverityNone
	case "moderate", "medium":
		return analysis.SeverityModerate
	case "severe", "major", "heavy":
		return analysis.SeveritySevere
	default:
		return analysis.SeverityMinor
	}
}
