// api/middleware/auth_middleware.go
package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-docstore/config"
	"github.com/Annany2002/nebula-docstore/internal/auth" // Import internal auth logic and errors
	"github.com/Annany2002/nebula-docstore/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// UserIDKey is the gin context key holding the authenticated user's id.
const UserIDKey = "userId"

// AuthMiddleware creates a gin middleware for checking JWT authentication.
// It depends on the application configuration for the JWT secret.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			_ = c.Error(fmt.Errorf("%w: authorization header required", auth.ErrUnauthorized))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			_ = c.Error(fmt.Errorf("%w: authorization header format must be Bearer {token}", auth.ErrTokenMalformed))
			c.Abort()
			return
		}

		// Validate JWT using the internal auth function
		userId, err := auth.ValidateJWT(parts[1], cfg.JWTSecret)
		if err != nil {
			customLog.Printf("AuthMiddleware: Token validation failed: %v", err)
			if !errors.Is(err, auth.ErrTokenExpired) && !errors.Is(err, auth.ErrTokenMalformed) {
				err = fmt.Errorf("%w: %v", auth.ErrTokenInvalid, err)
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		customLog.Debugf("AuthMiddleware: Token validated successfully for UserID: %s", userId)
		c.Set(UserIDKey, userId)

		c.Next()
	}
}
