package middleware

import (
	"net/http"
	"strings"

	"hobbyhub/pkg/jwt"
	"hobbyhub/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie = "hobbyhub_session"
	ThemeCookie   = "theme"
	SessionHeader = "X-Session-Token"
)

// SessionMiddleware attaches a session.Session to every request. Clients
// without a token are given a fresh anonymous user id and its signed token;
// clients presenting a bad token are rejected.
func SessionMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, ok := extractToken(c)
		if present && !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		var userID string
		if !present {
			userID = uuid.New().String()
			issued, err := jwtService.GenerateToken(userID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue session"})
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, issued, int(jwt.SessionTTL.Seconds()), "/", "", false, true)
			c.Header(SessionHeader, issued)
		} else {
			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session token"})
				c.Abort()
				return
			}
			userID = claims.UserID
		}

		theme := session.ThemeLight
		if raw, err := c.Cookie(ThemeCookie); err == nil {
			if parsed, err := session.ParseTheme(raw); err == nil {
				theme = parsed
			}
		}

		c.Set("user_id", userID)
		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), session.Session{
			UserID: userID,
			Theme:  theme,
		}))
		c.Next()
	}
}

// extractToken looks at the Authorization header first, then the session
// cookie. present reports whether the client sent anything; ok is false when
// the header is malformed.
func extractToken(c *gin.Context) (token string, present, ok bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", true, false
		}
		return parts[1], true, true
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true, true
	}
	return "", false, true
}
