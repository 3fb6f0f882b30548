package http

import (
	"net/http"

	"hobbyhub/pkg/jwt"
	"hobbyhub/pkg/middleware"
	"hobbyhub/pkg/session"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// GetSession godoc
// @Summary      Current session
// @Description  The anonymous user id and theme of the caller. A new session token is issued in the X-Session-Token header and cookie when none was sent.
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	s, _ := session.FromContext(c.Request.Context())
	if s.Theme == "" {
		s.Theme = session.ThemeLight
	}
	c.JSON(http.StatusOK, gin.H{"user_id": s.UserID, "theme": s.Theme})
}

type ThemeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

// SetTheme godoc
// @Summary      Set theme
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request body ThemeRequest true "light or dark"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /session/theme [put]
func (h *SessionHandler) SetTheme(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	theme, err := session.ParseTheme(req.Theme)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.ThemeCookie, string(theme), int(jwt.SessionTTL.Seconds()), "/", "", false, false)
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}
