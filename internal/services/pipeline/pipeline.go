package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brightstart/screening-api/internal/models"
	"github.com/brightstart/screening-api/internal/services/normalizer"
	"github.com/brightstart/screening-api/pkg/utils"
)

// Classifier is the loaded model. Implementations must be safe for concurrent
// use; each call is an independent forward pass.
type Classifier interface {
	Classify(ctx context.Context, tensor *models.Tensor) (*models.PredictionResult, error)
}

// Archiver receives one event per completed inference. A failing archiver
// must not fail the prediction that was already delivered.
type Archiver interface {
	Record(ctx context.Context, event models.ArchiveEvent) error
}

// ImageStore keeps an archival copy of the submitted photo and returns a
// reference to it.
type ImageStore interface {
	Save(ctx context.Context, data []byte, filename, contentType string) (string, error)
}

// Pipeline is the straight-line intake path: validate and normalize the
// upload, classify, shape the report, then emit the archive event. It is the
// only boundary the HTTP layer calls into.
type Pipeline struct {
	normalizer *normalizer.Normalizer
	classifier Classifier
	archiver   Archiver
	store      ImageStore
	logger     *zap.Logger
	now        func() time.Time
}

func NewPipeline(
	n *normalizer.Normalizer,
	classifier Classifier,
	archiver Archiver,
	store ImageStore,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		normalizer: n,
		classifier: classifier,
		archiver:   archiver,
		store:      store,
		logger:     logger,
		now:        time.Now,
	}
}

// Process runs one classification for one upload. Validation failures return
// before the classifier is reached and emit no archive event. Archive and
// storage failures are logged and never surface to the caller.
func (p *Pipeline) Process(ctx context.Context, upload models.UploadedImage, user models.Identity) (*models.Report, error) {
	originalFilename := utils.SanitizeFilename(upload.Filename)

	tensor, err := p.normalizer.Normalize(upload.Data, originalFilename)
	if err != nil {
		return nil, err
	}

	result, err := p.classifier.Classify(ctx, tensor)
	if err != nil {
		return nil, err
	}

	p.archive(ctx, upload, originalFilename, result, user)

	return FormatReport(result), nil
}

func (p *Pipeline) archive(ctx context.Context, upload models.UploadedImage, originalFilename string, result *models.PredictionResult, user models.Identity) {
	timestamp := p.now().UTC()
	storedName := utils.ArchiveFilename(result.Class, timestamp, user.Username, normalizer.Extension(originalFilename))

	imageURL := ""
	if p.store != nil {
		url, err := p.store.Save(ctx, upload.Data, storedName, upload.ContentType)
		if err != nil {
			p.logger.Warn("failed to store archival image copy",
				zap.String("filename", storedName),
				zap.Error(err))
		} else {
			imageURL = url
		}
	}

	event := models.ArchiveEvent{
		ID:               uuid.New(),
		UserID:           user.UserID,
		Username:         user.Username,
		Filename:         storedName,
		OriginalFilename: originalFilename,
		ResultClass:      result.Class,
		Confidence:       result.Confidence,
		Probabilities:    result.Probabilities,
		ImageURL:         imageURL,
		Timestamp:        timestamp,
	}

	if err := p.archiver.Record(ctx, event); err != nil {
		// Degraded, not fatal: the prediction was already computed.
		p.logger.Warn("failed to record prediction",
			zap.String("event_id", event.ID.String()),
			zap.Error(err))
	}
}
