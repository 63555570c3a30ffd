package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxUserIDKey = "user_id"
const CtxUsernameKey = "username"

// Tracker is notified whenever a request authenticates; satisfied by the
// presence tracker.
type Tracker interface {
	Touch(username string)
}

// RequireJWT rejects the request before the handler runs: 401 when the
// bearer token is missing, 403 when it is invalid or expired.
func RequireJWT(secret []byte, tracker Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := Parse(secret, strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUsernameKey, claims.Username)
		if tracker != nil {
			tracker.Touch(claims.Username)
		}
		c.Next()
	}
}
