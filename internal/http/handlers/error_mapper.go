package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/brightstart/screening-api/internal/models"
)

// mapError translates the domain error taxonomy into HTTP responses. Every
// recoverable failure gets a specific message; anything unrecognized becomes
// an opaque 500.
func mapError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrUnsupportedFormat),
		errors.Is(err, models.ErrCorruptImage):
		respondError(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, models.ErrPayloadTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, err.Error())

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusRequestTimeout, "request canceled")

	case errors.Is(err, models.ErrInference):
		logger.Error("inference failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, models.ErrInference.Error())

	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrUnauthenticated):
		respondError(c, http.StatusUnauthorized, err.Error())

	case errors.Is(err, models.ErrForbidden):
		respondError(c, http.StatusForbidden, err.Error())

	case errors.Is(err, models.ErrUsernameTaken):
		respondError(c, http.StatusConflict, err.Error())

	case errors.Is(err, models.ErrRecordNotFound),
		errors.Is(err, models.ErrUserNotFound):
		respondError(c, http.StatusNotFound, err.Error())

	default:
		logger.Error("request failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}
