package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stayhub/internal/auth"
	"stayhub/internal/permission"
	"stayhub/internal/session"
	"stayhub/pkg/response"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"

	// LocationHeader selects the location the request is scoped to.
	LocationHeader = "X-Location-ID"

	sessionKey = "session"
)

// PermissionSource resolves the capabilities of an authenticated caller.
type PermissionSource interface {
	Effective(ctx context.Context, sess *session.Session) (permission.Set, error)
	// Locations lists where the caller holds every capability in caps; all is true
	// when a tenant-wide grant covers them.
	Locations(ctx context.Context, sess *session.Session, caps ...permission.Capability) (ids []uuid.UUID, all bool, err error)
}

var (
	tokens        *auth.Tokens
	permissions   PermissionSource
	secureCookies bool
	refreshTTL    = 7 * 24 * time.Hour
)

// InitAuth wires the token parser and permission source used by RequireAuth
// and RequirePermission.
func InitAuth(t *auth.Tokens, perms PermissionSource, secure bool, refresh time.Duration) {
	tokens = t
	permissions = perms
	secureCookies = secure
	if refresh > 0 {
		refreshTTL = refresh
	}
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	setCookieMode(c)
	accessTTL := 24 * time.Hour
	if tokens != nil {
		accessTTL = tokens.TTL()
	}
	c.SetCookie(accessCookie, accessToken, int(accessTTL.Seconds()), "/", "", secureCookies, true)
	c.SetCookie(refreshCookie, refreshToken, int(refreshTTL.Seconds()), "/", "", secureCookies, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	setCookieMode(c)
	c.SetCookie(accessCookie, "", -1, "/", "", secureCookies, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", secureCookies, true)
}

// RefreshCookie returns the refresh token cookie, or "" when absent.
func RefreshCookie(c *gin.Context) string {
	v, err := c.Cookie(refreshCookie)
	if err != nil {
		return ""
	}
	return v
}

// Cross-origin deployments need SameSite=None, which browsers only accept with Secure.
func setCookieMode(c *gin.Context) {
	if secureCookies {
		c.SetSameSite(http.SameSiteNoneMode)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
}

// RequireAuth validates the access token and attaches the caller's session
// to both the gin context and the request context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "auth middleware not initialized"))
			return
		}

		raw, msg := extractToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, msg))
			return
		}

		sess, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		if loc := selectedLocation(c); loc != "" {
			id, err := uuid.Parse(loc)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid location id"))
				return
			}
			sess = sess.WithLocation(&id)
		}

		setSession(c, sess)
		c.Next()
	}
}

// RequireRole allows only the listed user roles. It must run after RequireAuth.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}
		for _, role := range allowedRoles {
			if sess.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient role"))
	}
}

// RequirePermission checks that the caller holds every listed capability at
// the selected location. Tenant admins always pass. A failure to load the
// caller's permissions denies the request.
func RequirePermission(required ...permission.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}
		if sess.IsTenantAdmin() {
			c.Next()
			return
		}
		if permissions == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: permissions unavailable"))
			return
		}

		set, err := permissions.Effective(c.Request.Context(), sess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: permissions unavailable"))
			return
		}
		if missing, ok := set.Missing(required...); ok {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing capability '"+string(missing)+"'"))
			return
		}

		// Without a selected location the union of all records passed above; reads are
		// then limited to the locations that grant the capabilities themselves.
		if sess.LocationID == nil {
			ids, all, err := permissions.Locations(c.Request.Context(), sess, required...)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: permissions unavailable"))
				return
			}
			if !all {
				if sess.Scope != nil {
					ids = intersect(sess.Scope, ids)
				}
				if len(ids) == 0 {
					c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: no location grants the required capabilities"))
					return
				}
				setSession(c, sess.WithScope(ids))
			}
		}
		c.Next()
	}
}

func setSession(c *gin.Context, sess *session.Session) {
	c.Set(sessionKey, sess)
	c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), sess))
}

func intersect(a, b []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(b))
	for _, x := range b {
		for _, y := range a {
			if x == y {
				out = append(out, x)
				break
			}
		}
	}
	return out
}

// CurrentSession returns the session set by RequireAuth.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok && sess != nil
}

// Cookie first, then the Authorization header.
func extractToken(c *gin.Context) (string, string) {
	if v, err := c.Cookie(accessCookie); err == nil && v != "" {
		return v, ""
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", "Authorization is missing"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "Invalid authorization format. Expected 'Bearer <token>'"
	}
	return parts[1], ""
}

func selectedLocation(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader(LocationHeader)); v != "" {
		return v
	}
	return strings.TrimSpace(c.Query("location_id"))
}
