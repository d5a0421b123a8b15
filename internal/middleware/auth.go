package middleware

import (
	"net/http"

	"socialmart-be/internal/auth"
	"socialmart-be/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenParser verifies an access token and returns its principal.
type TokenParser interface {
	Parse(token string) (auth.Principal, error)
}

// Authenticate attaches the caller's principal to the request context when a
// valid token is presented. Requests without a token continue anonymously; an
// invalid token is rejected.
func Authenticate(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := auth.ExtractAccessToken(c.Request)
		if tokenStr == "" {
			c.Next()
			return
		}

		p, err := parser.Parse(tokenStr)
		if err != nil {
			logger.FromCtx(c.Request.Context()).Debug("rejected access token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		ctx := auth.WithPrincipal(c.Request.Context(), p)
		ctx = logger.WithUserID(ctx, p.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAuth rejects requests that reach it without a principal.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.PrincipalFrom(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}
