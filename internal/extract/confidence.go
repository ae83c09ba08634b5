package extract

import "time"

// confidenceFor scores an extracted value with a simple heuristic until
// model-provided confidence is available. Parseable dates and numeric
// amounts score high; long free text scores lower.
func confidenceFor(name, value string) float64 {
	if name == "lossDate" {
		if _, err := time.Parse("2006-01-02", value); err == nil {
			return 0.95
		}
		return 0.85
	}
	if name == "estimatedDamageAmount" {
		return 0.90
	}
	switch {
	case len(value) > 200:
		return 0.75
	case len(value) > 50:
		return 0.80
	default:
		return 0.85
	}
}
