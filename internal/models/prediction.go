package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

const probabilitySumTolerance = 1e-6

// Tensor is a fixed-shape model input: RGB values in [0,1], HWC interleaved.
type Tensor struct {
	Data     []float32
	Height   int
	Width    int
	Channels int
}

// Len returns the expected number of elements for the tensor's shape.
func (t *Tensor) Len() int {
	return t.Height * t.Width * t.Channels
}

// PredictionResult is the validated outcome of one classification.
// Confidence always equals the probability of Class, and Class is the
// highest-probability entry in Probabilities.
type PredictionResult struct {
	Class         string             `json:"class"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// NewPredictionResult builds a result from a probability mapping and checks its
// invariants: probabilities in [0,1] summing to 1, predicted class = argmax.
func NewPredictionResult(probabilities map[string]float64) (*PredictionResult, error) {
	if len(probabilities) == 0 {
		return nil, fmt.Errorf("empty probability mapping")
	}

	sum := 0.0
	best := ""
	bestProb := -1.0
	for class, p := range probabilities {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("probability for %q out of range: %v", class, p)
		}
		sum += p
		// Ties go to the lexicographically smaller class so the label is
		// stable under Go's randomized map iteration order.
		if p > bestProb || (p == bestProb && class < best) {
			best = class
			bestProb = p
		}
	}
	if math.Abs(sum-1.0) > probabilitySumTolerance {
		return nil, fmt.Errorf("probabilities sum to %v, expected 1", sum)
	}

	return &PredictionResult{
		Class:         best,
		Confidence:    bestProb,
		Probabilities: probabilities,
	}, nil
}

// Report is the display-ready form of a PredictionResult. Percentages are
// fixed to one decimal place.
type Report struct {
	Class       string             `json:"class"`
	Confidence  float64            `json:"confidence"`
	ConfidenceP string             `json:"confidence_percent"`
	Percentages map[string]string  `json:"percentages"`
	Raw         map[string]float64 `json:"probabilities"`
}

// PredictionRecord is one archived prediction. Immutable after creation,
// deleted only by explicit administrative action.
type PredictionRecord struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	Username         string    `json:"username"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	ResultClass      string    `json:"result_class"`
	Confidence       float64   `json:"confidence"`
	ImageURL         string    `json:"image_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
