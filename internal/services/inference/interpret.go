package inference

import (
	"fmt"

	"github.com/brightstart/screening-api/internal/models"
)

// Interpret maps a raw model output vector onto the class list and builds a
// validated PredictionResult.
//
// Two output conventions are supported. A single sigmoid value with two
// classes is read as P(classes[1]); the complement belongs to classes[0].
// Otherwise the output must be a probability vector with one entry per class.
func Interpret(classes []string, output []float32) (*models.PredictionResult, error) {
	switch {
	case len(output) == 1 && len(classes) == 2:
		v := float64(output[0])
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("sigmoid output out of range: %v", v)
		}
		return models.NewPredictionResult(map[string]float64{
			classes[1]: v,
			classes[0]: 1 - v,
		})

	case len(output) == len(classes):
		probabilities := make(map[string]float64, len(classes))
		for i, class := range classes {
			probabilities[class] = float64(output[i])
		}
		return models.NewPredictionResult(probabilities)

	default:
		return nil, fmt.Errorf("output length %d does not match %d classes", len(output), len(classes))
	}
}
