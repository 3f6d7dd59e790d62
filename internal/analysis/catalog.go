package analysis

import "strings"

// The local vehicle catalog backs the terminal heuristics: identification
// fallback, price estimation and repair cost adjustments. It deliberately
// covers only common makes; everything else falls through to defaults.

type catalogMake struct {
	Name   string
	Models []string
}

var vehicleCatalog = []catalogMake{
	{Name: "Toyota", Models: []string{"Camry", "Corolla", "RAV4", "Highlander"}},
	{Name: "Honda", Models: []string{"Accord", "Civic", "CR-V", "Pilot"}},
	{Name: "Ford", Models: []string{"F-150", "Escape", "Explorer", "Mustang"}},
	{Name: "Chevrolet", Models: []string{"Silverado", "Equinox", "Malibu", "Tahoe"}},
	{Name: "BMW", Models: []string{"3 Series", "5 Series", "X3", "X5"}},
	{Name: "Mercedes-Benz", Models: []string{"C-Class", "E-Class", "GLC", "GLE"}},
	{Name: "Audi", Models: []string{"A4", "A6", "Q5", "Q7"}},
	{Name: "Lexus", Models: []string{"RX", "ES", "NX", "IS"}},
	{Name: "Hyundai", Models: []string{"Elantra", "Sonata", "Tucson", "Santa Fe"}},
	{Name: "Kia", Models: []string{"Forte", "Optima", "Sportage", "Sorento"}},
}

var luxuryMakes = map[string]bool{
	"BMW":           true,
	"Mercedes-Benz": true,
	"Audi":          true,
	"Lexus":         true,
	"Porsche":       true,
	"Jaguar":        true,
	"Land Rover":    true,
}

// Brand value multipliers for the local price estimator.
var makeMultipliers = map[string]float64{
	"Toyota":        1.1,
	"Honda":         1.05,
	"Ford":          0.95,
	"Chevrolet":     0.9,
	"BMW":           1.3,
	"Mercedes-Benz": 1.35,
	"Audi":          1.25,
	"Lexus":         1.2,
	"Hyundai":       0.85,
	"Kia":           0.8,
}

// Popularity multipliers for models the estimator knows about.
var modelMultipliers = map[string]float64{
	"Camry":    1.1,
	"Accord":   1.1,
	"F-150":    1.15,
	"Civic":    1.05,
	"RAV4":     1.1,
	"CR-V":     1.05,
	"3 Series": 1.2,
	"E-Class":  1.25,
	"Mustang":  1.1,
	"Corvette": 1.3,
}

var (
	premiumTrimKeywords = []string{"premium", "luxury", "limited", "platinum"}
	sportTrimKeywords   = []string{"sport", "touring", "gt"}
	baseTrimKeywords    = []string{"base", "l", "le"}
)

// trimMultiplier maps a trim name to its price adjustment.
func trimMultiplier(trim string) float64 {
	if trim == "" {
		return 1.0
	}
	lower := strings.ToLower(trim)
	for _, kw := range premiumTrimKeywords {
		if strings.Contains(lower, kw) {
			return 1.2
		}
	}
	for _, kw := range sportTrimKeywords {
		if strings.Contains(lower, kw) {
			return 1.15
		}
	}
	for _, kw := range baseTrimKeywords {
		if strings.Contains(lower, kw) {
			return 0.9
		}
	}
	return 1.0
}

// ageMultiplier selects the depreciation band for a vehicle age in years.
func ageMultiplier(age int) float64 {
	switch {
	case age <= 1:
		return 0.85
	case age <= 3:
		return 0.75
	case age <= 5:
		return 0.6
	case age <= 8:
		return 0.45
	case age <= 12:
		return 0.3
	default:
		return 0.2
	}
}

// DamageKeywords are the label substrings damage providers treat as a
// damage indicator.
var DamageKeywords = []string{"damage", "dent", "scratch", "broken", "crack", "accident"}

// vehiclePartKeywords are the object names providers map to a damage zone.
var vehiclePartKeywords = []string{"bumper", "door", "hood", "trunk", "fender", "window"}

// ContainsDamageKeyword reports whether a provider label suggests damage.
func ContainsDamageKeyword(label string) bool {
	lower := strings.ToLower(label)
	for _, kw := range DamageKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// VehiclePartFromLabel returns the first recognized part name contained in
// a provider label, or "" when none matches.
func VehiclePartFromLabel(label string) string {
	lower := strings.ToLower(label)
	for _, part := range vehiclePartKeywords {
		if strings.Contains(lower, part) {
			return part
		}
	}
	return ""
}

// MatchMakeModel scans a free-form provider label for a catalog make and,
// when found, one of its models. Empty strings mean no match.
func MatchMakeModel(label string) (makeName, model string) {
	lower := strings.ToLower(label)
	for _, cm := range vehicleCatalog {
		if !strings.Contains(lower, strings.ToLower(cm.Name)) {
			continue
		}
		for _, m := range cm.Models {
			if strings.Contains(lower, strings.ToLower(m)) {
				return cm.Name, m
			}
		}
		return cm.Name, ""
	}
	return "", ""
}

// ModelsForMake returns the catalog models for a make, or nil when the make
// is not in the catalog.
func ModelsForMake(makeName string) []string {
	for _, cm := range vehicleCatalog {
		if strings.EqualFold(cm.Name, makeName) {
			return cm.Models
		}
	}
	return nil
}

// AreaFromCategory maps a photo category to the vehicle zone it shows.
func AreaFromCategory(category PhotoCategory) string {
	switch category {
	case CategoryExteriorFront:
		return "Front"
	case CategoryExteriorRear:
		return "Rear"
	case CategoryExteriorDriver:
		return "Driver Side"
	case CategoryExteriorPassenger:
		return "Passenger Side"
	case CategoryInterior:
		return "Interior"
	default:
		return "Unknown"
	}
}

// defaultZoneCost is used for damage zones the parts table does not cover.
const defaultZoneCost = 500

// zoneBaseCost returns the replacement base cost for a damage zone,
// distinguishing front/rear and driver/passenger where the parts table does.
func zoneBaseCost(area string) float64 {
	lower := strings.ToLower(area)
	switch {
	case strings.Contains(lower, "bumper"):
		if strings.Contains(lower, "front") {
			return 800
		}
		return 750
	case strings.Contains(lower, "door"):
		if strings.Contains(lower, "driver") || strings.Contains(lower, "passenger") {
			return 600
		}
		return 550
	case strings.Contains(lower, "hood"):
		return 650
	case strings.Contains(lower, "trunk"):
		return 600
	case strings.Contains(lower, "fender"):
		if strings.Contains(lower, "front") {
			return 400
		}
		return 450
	case strings.Contains(lower, "windshield"), strings.Contains(lower, "window"):
		return 450
	case strings.Contains(lower, "headlight"):
		return 350
	case strings.Contains(lower, "taillight"):
		return 300
	case strings.Contains(lower, "mirror"):
		return 250
	case strings.Contains(lower, "wheel"):
		return 300
	default:
		return defaultZoneCost
	}
}

// glassOrInterior reports whether a zone needs no paint work.
func glassOrInterior(area string) bool {
	lower := strings.ToLower(area)
	return strings.Contains(lower, "windshield") ||
		strings.Contains(lower, "window") ||
		strings.Contains(lower, "glass") ||
		strings.Contains(lower, "interior")
}
