package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/brightstart/screening-api/internal/config"
	"github.com/brightstart/screening-api/internal/http/middleware"
	"github.com/brightstart/screening-api/internal/models"
	"github.com/brightstart/screening-api/internal/services/auth"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthHandler struct {
	service *auth.Service
	cfg     config.AuthConfig
	logger  *zap.Logger
}

func NewAuthHandler(service *auth.Service, cfg config.AuthConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, cfg: cfg, logger: logger}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		mapError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Success: true,
		Data:    user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		mapError(c, h.logger, err)
		return
	}

	h.setSessionCookie(c, token, int(h.cfg.SessionTTL.Seconds()))

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    user,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(h.cfg.CookieName)
	if err == nil {
		if err := h.service.Logout(c.Request.Context(), token); err != nil {
			h.logger.Warn("failed to delete session", zap.Error(err))
		}
	}

	h.setSessionCookie(c, "", -1)

	c.JSON(http.StatusOK, models.APIResponse{Success: true})
}

// Me returns the authenticated identity. Requires RequireAuth.
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, models.ErrUnauthenticated.Error())
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    identity,
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, token, maxAge, "/", "", h.cfg.SecureCookie, true)
}
