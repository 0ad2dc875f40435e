package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		SigningKey: []byte("test-signing-key-1234567890123456"),
		Issuer:     "pinpoint",
		ExpiresIn:  time.Hour,
	}
}

func authRequest(t *testing.T, router *gin.Engine, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newProtectedRouter(signingKey []byte) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuth(signingKey))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c.Request.Context())})
	})
	return router
}

func TestJWTAuth_ValidToken(t *testing.T) {
	cfg := testJWTConfig()
	token, expiresAt, err := GenerateToken(cfg, "u-1", "alice@example.com", "Alice")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	w := authRequest(t, newProtectedRouter(cfg.SigningKey), token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u-1")
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	cfg := testJWTConfig()
	w := authRequest(t, newProtectedRouter(cfg.SigningKey), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_WrongKey(t *testing.T) {
	cfg := testJWTConfig()
	token, _, err := GenerateToken(cfg, "u-1", "alice@example.com", "Alice")
	require.NoError(t, err)

	w := authRequest(t, newProtectedRouter([]byte("another-key-9876543210987654321")), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ExpiresIn = -time.Minute
	token, _, err := GenerateToken(cfg, "u-1", "alice@example.com", "Alice")
	require.NoError(t, err)

	w := authRequest(t, newProtectedRouter(cfg.SigningKey), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestJWTAuth_MalformedHeader(t *testing.T) {
	cfg := testJWTConfig()
	router := newProtectedRouter(cfg.SigningKey)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
