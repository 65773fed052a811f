package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/brightstart/screening-api/internal/config"
	"github.com/brightstart/screening-api/internal/http/middleware"
	"github.com/brightstart/screening-api/internal/models"
)

const fileParamKey = "file"

// Processor is the pipeline entry point: one upload in, one report or tagged
// failure out.
type Processor interface {
	Process(ctx context.Context, upload models.UploadedImage, user models.Identity) (*models.Report, error)
}

type PredictHandler struct {
	pipeline Processor
	logger   *zap.Logger
	maxSize  int64
}

func NewPredictHandler(pipeline Processor, cfg config.UploadConfig, logger *zap.Logger) *PredictHandler {
	return &PredictHandler{
		pipeline: pipeline,
		logger:   logger,
		maxSize:  cfg.MaxFileSize,
	}
}

// Predict receives a multipart photo upload, runs the pipeline, and returns
// the classification report.
func (h *PredictHandler) Predict(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, models.ErrUnauthenticated.Error())
		return
	}

	file, header, err := c.Request.FormFile(fileParamKey)
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("No image file provided. Use %q as the form field name", fileParamKey))
		return
	}
	defer file.Close()

	// Read at most one byte past the ceiling; the pipeline turns the excess
	// into a PayloadTooLarge failure without ever decoding.
	data, err := io.ReadAll(io.LimitReader(file, h.maxSize+1))
	if err != nil {
		h.logger.Error("failed to read upload", zap.Error(err))
		respondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	upload := models.UploadedImage{
		Data:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}

	report, err := h.pipeline.Process(c.Request.Context(), upload, identity)
	if err != nil {
		mapError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    report,
	})
}
