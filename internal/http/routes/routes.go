package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/brightstart/screening-api/internal/config"
	"github.com/brightstart/screening-api/internal/http/handlers"
	"github.com/brightstart/screening-api/internal/http/middleware"
)

type Router struct {
	authHandler    *handlers.AuthHandler
	predictHandler *handlers.PredictHandler
	recordsHandler *handlers.RecordsHandler
	healthHandler  *handlers.HealthHandler
	authenticator  middleware.Authenticator
	cfg            config.AuthConfig
	logger         *zap.Logger
}

func NewRouter(
	authHandler *handlers.AuthHandler,
	predictHandler *handlers.PredictHandler,
	recordsHandler *handlers.RecordsHandler,
	healthHandler *handlers.HealthHandler,
	authenticator middleware.Authenticator,
	cfg config.AuthConfig,
	logger *zap.Logger,
) *Router {
	return &Router{
		authHandler:    authHandler,
		predictHandler: predictHandler,
		recordsHandler: recordsHandler,
		healthHandler:  healthHandler,
		authenticator:  authenticator,
		cfg:            cfg,
		logger:         logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	requireAuth := middleware.RequireAuth(r.authenticator, r.cfg.CookieName)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.healthHandler.Check)

		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/logout", r.authHandler.Logout)
			auth.GET("/me", requireAuth, r.authHandler.Me)
		}

		v1.POST("/predict", requireAuth, r.predictHandler.Predict)

		records := v1.Group("/records", requireAuth)
		{
			records.GET("", r.recordsHandler.List)
			records.GET("/:id", r.recordsHandler.Get)
			records.DELETE("/:id", middleware.RequireAdmin(), r.recordsHandler.Delete)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "BrightStart screening API is running",
		})
	})

	return router
}
