package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("should answer 504 when the handler gives up on the deadline", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestTimeout(50 * time.Millisecond))
		router.GET("/slow", func(c *gin.Context) {
			<-c.Request.Context().Done()
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.Contains(t, w.Body.String(), "REQUEST_TIMEOUT")
		assert.Equal(t, "true", w.Header().Get("X-Timeout"))
	})

	t.Run("should not timeout if request completes in time", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestTimeout(2 * time.Second))
		router.GET("/fast", func(c *gin.Context) {
			_, hasDeadline := c.Request.Context().Deadline()
			assert.True(t, hasDeadline)
			c.JSON(http.StatusOK, gin.H{"message": "success"})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "success")
		assert.Empty(t, w.Header().Get("X-Timeout"))
	})

	t.Run("should keep a response already written", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestTimeout(20 * time.Millisecond))
		router.GET("/written", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "partial"})
			<-c.Request.Context().Done()
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "partial")
	})

	t.Run("should pass through when disabled", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestTimeout(0))
		router.GET("/none", func(c *gin.Context) {
			_, hasDeadline := c.Request.Context().Deadline()
			assert.False(t, hasDeadline)
			c.Status(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/none", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
