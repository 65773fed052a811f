package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brightstart/screening-api/internal/http/middleware"
	"github.com/brightstart/screening-api/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RecordStore is the archive's read/delete surface.
type RecordStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.PredictionRecord, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.PredictionRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ImageRemover deletes the archival image copy belonging to a record.
type ImageRemover interface {
	Delete(ctx context.Context, filename string) error
}

type RecordsHandler struct {
	records RecordStore
	images  ImageRemover
	logger  *zap.Logger
}

func NewRecordsHandler(records RecordStore, images ImageRemover, logger *zap.Logger) *RecordsHandler {
	return &RecordsHandler{records: records, images: images, logger: logger}
}

// List returns the authenticated user's prediction history, newest first.
func (h *RecordsHandler) List(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, models.ErrUnauthenticated.Error())
		return
	}

	limit := parseBoundedInt(c.Query("limit"), defaultPageSize, 1, maxPageSize)
	offset := parseBoundedInt(c.Query("offset"), 0, 0, 1<<30)

	records, total, err := h.records.ListByUser(c.Request.Context(), identity.UserID, limit, offset)
	if err != nil {
		mapError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data: models.RecordPage{
			Records: records,
			Total:   total,
			Limit:   limit,
			Offset:  offset,
		},
	})
}

// Get returns one record. Users see their own records; admins see all.
// Records belonging to other users are reported as not found.
func (h *RecordsHandler) Get(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, models.ErrUnauthenticated.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid record id")
		return
	}

	record, err := h.records.GetByID(c.Request.Context(), id)
	if err != nil {
		mapError(c, h.logger, err)
		return
	}

	if record.UserID != identity.UserID && !identity.IsAdmin {
		respondError(c, http.StatusNotFound, models.ErrRecordNotFound.Error())
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    record,
	})
}

// Delete removes a record and its stored image copy. Admin only (enforced by
// the route's RequireAdmin middleware).
func (h *RecordsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid record id")
		return
	}

	record, err := h.records.GetByID(c.Request.Context(), id)
	if err != nil {
		mapError(c, h.logger, err)
		return
	}

	if err := h.records.Delete(c.Request.Context(), id); err != nil {
		mapError(c, h.logger, err)
		return
	}

	if h.images != nil && record.Filename != "" {
		if err := h.images.Delete(c.Request.Context(), record.Filename); err != nil {
			h.logger.Warn("failed to delete archived image copy",
				zap.String("filename", record.Filename),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true})
}

func parseBoundedInt(value string, defaultVal, min, max int) int {
	if value == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < min {
		return defaultVal
	}
	if n > max {
		return max
	}
	return n
}
