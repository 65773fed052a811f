package models

import (
	"time"

	"github.com/google/uuid"
)

// ArchiveEvent is the single append emitted after every completed inference.
// It carries everything the archive worker needs to persist a
// PredictionRecord without consulting the request again.
type ArchiveEvent struct {
	ID               uuid.UUID          `json:"id"`
	UserID           uuid.UUID          `json:"user_id"`
	Username         string             `json:"username"`
	Filename         string             `json:"filename"`
	OriginalFilename string             `json:"original_filename"`
	ResultClass      string             `json:"result_class"`
	Confidence       float64            `json:"confidence"`
	Probabilities    map[string]float64 `json:"probabilities"`
	ImageURL         string             `json:"image_url,omitempty"`
	Timestamp        time.Time          `json:"timestamp"`
}

// UploadedImage is one request's raw upload. Transient: it is discarded after
// normalization except for the archival copy the image store keeps.
type UploadedImage struct {
	Data        []byte
	Filename    string
	ContentType string
}
