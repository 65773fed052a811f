package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brightstart/screening-api/internal/models"
)

// HealthFunc reports one dependency's status: "healthy", "not configured",
// or "unhealthy: <reason>".
type HealthFunc func(ctx context.Context) string

type HealthHandler struct {
	checks map[string]HealthFunc
}

func NewHealthHandler(checks map[string]HealthFunc) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Check(c *gin.Context) {
	services := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		services[name] = check(c.Request.Context())
	}

	overall := "healthy"
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			overall = "unhealthy"
			break
		}
	}

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}
