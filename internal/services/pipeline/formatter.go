package pipeline

import (
	"fmt"

	"github.com/brightstart/screening-api/internal/models"
)

// FormatReport turns a validated result into its display form. Percentages
// are fixed to one decimal place; the confidence field is the probability of
// the predicted class.
func FormatReport(result *models.PredictionResult) *models.Report {
	percentages := make(map[string]string, len(result.Probabilities))
	for class, p := range result.Probabilities {
		percentages[class] = formatPercent(p)
	}

	return &models.Report{
		Class:       result.Class,
		Confidence:  result.Confidence,
		ConfidenceP: formatPercent(result.Confidence),
		Percentages: percentages,
		Raw:         result.Probabilities,
	}
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}
