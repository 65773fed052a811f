package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightstart/screening-api/internal/models"
)

const identityKey = "identity"

// Authenticator resolves a session token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Identity, error)
}

// RequireAuth rejects requests without a valid session cookie and stashes the
// resolved identity in the gin context.
func RequireAuth(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(cookieName)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   models.ErrUnauthenticated.Error(),
			})
			return
		}

		identity, err := auth.Authenticate(ctx.Request.Context(), token)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   models.ErrUnauthenticated.Error(),
			})
			return
		}

		ctx.Set(identityKey, *identity)
		ctx.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity, ok := Identity(ctx)
		if !ok || !identity.IsAdmin {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   models.ErrForbidden.Error(),
			})
			return
		}
		ctx.Next()
	}
}

// Identity returns the authenticated identity stored by RequireAuth.
func Identity(ctx *gin.Context) (models.Identity, bool) {
	value, exists := ctx.Get(identityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := value.(models.Identity)
	return identity, ok
}
