package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "pinpoint.dev/pinpoint/internal/pkg/errors"
)

func newErrorRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/boom", handler)
	return router
}

func TestErrorHandler_AppError(t *testing.T) {
	router := newErrorRouter(func(c *gin.Context) {
		_ = c.Error(apperrors.ErrIssueNotFoundf("i-404"))
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ISSUE_NOT_FOUND")
	assert.Contains(t, w.Body.String(), "i-404")
}

func TestErrorHandler_GenericError(t *testing.T) {
	router := newErrorRouter(func(c *gin.Context) {
		_ = c.Error(errors.New("database exploded"))
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, w.Body.String(), "database exploded")
}

func TestErrorHandler_NoError(t *testing.T) {
	router := newErrorRouter(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
