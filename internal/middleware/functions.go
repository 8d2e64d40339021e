package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"stayhub/internal/session"
	"stayhub/pkg/response"
)

// RequireFunctionAuth guards the /functions endpoints. The bearer token must be
// either the shared functions token or a valid user access token; in the
// latter case the caller's session is attached like RequireAuth does.
func RequireFunctionAuth(sharedToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, msg := extractToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, msg))
			return
		}

		if sharedToken != "" && subtle.ConstantTimeCompare([]byte(raw), []byte(sharedToken)) == 1 {
			c.Next()
			return
		}

		if tokens == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}
		sess, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}
		c.Set(sessionKey, sess)
		c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), sess))
		c.Next()
	}
}
