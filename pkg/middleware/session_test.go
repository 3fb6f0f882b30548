package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hobbyhub/pkg/jwt"
	"hobbyhub/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func sessionEcho(c *gin.Context) {
	s, _ := session.FromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"user_id": s.UserID, "theme": s.Theme, "gin_user_id": c.GetString("user_id")})
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSessionMiddleware_ValidToken(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key")
	token, _ := jwtService.GenerateToken("user-123")

	router := setupTestRouter()
	router.Use(SessionMiddleware(jwtService))
	router.GET("/test", sessionEcho)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "user-123", body["user_id"])
	assert.Equal(t, "user-123", body["gin_user_id"])
	assert.Equal(t, "light", body["theme"])
	assert.Empty(t, w.Header().Get(SessionHeader))
}

func TestSessionMiddleware_CookieTokenAndTheme(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key")
	token, _ := jwtService.GenerateToken("user-456")

	router := setupTestRouter()
	router.Use(SessionMiddleware(jwtService))
	router.GET("/test", sessionEcho)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	req.AddCookie(&http.Cookie{Name: ThemeCookie, Value: "dark"})

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "user-456", body["user_id"])
	assert.Equal(t, "dark", body["theme"])
}

func TestSessionMiddleware_NoTokenIssuesIdentity(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key")

	router := setupTestRouter()
	router.Use(SessionMiddleware(jwtService))
	router.GET("/test", sessionEcho)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	issued := w.Header().Get(SessionHeader)
	require.NotEmpty(t, issued)

	claims, err := jwtService.ValidateToken(issued)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, decode(t, w)["user_id"])
	assert.Contains(t, w.Header().Get("Set-Cookie"), SessionCookie+"=")
}

func TestSessionMiddleware_InvalidFormat(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key")

	router := setupTestRouter()
	router.Use(SessionMiddleware(jwtService))
	router.GET("/test", sessionEcho)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "InvalidFormat token")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionMiddleware_InvalidToken(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key")

	router := setupTestRouter()
	router.Use(SessionMiddleware(jwtService))
	router.GET("/test", sessionEcho)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionMiddleware_UnknownThemeFallsBackToLight(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key")
	token, _ := jwtService.GenerateToken("user-789")

	router := setupTestRouter()
	router.Use(SessionMiddleware(jwtService))
	router.GET("/test", sessionEcho)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.AddCookie(&http.Cookie{Name: ThemeCookie, Value: "neon"})

	router.ServeHTTP(w, req)

	assert.Equal(t, "light", decode(t, w)["theme"])
}
