package unit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/archlens/archlens-backend/internal/api/http/middleware"
)

func rateLimitedRouter(rps rate.Limit, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RateLimit(rps, burst))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func pingAs(router *gin.Engine, userID string) int {
	req := httptest.NewRequest("GET", "/ping", nil)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr.Code
}

func TestRateLimitRejectsBeyondBurst(t *testing.T) {
	router := rateLimitedRouter(1, 2)

	assert.Equal(t, http.StatusOK, pingAs(router, "u1"))
	assert.Equal(t, http.StatusOK, pingAs(router, "u1"))
	assert.Equal(t, http.StatusTooManyRequests, pingAs(router, "u1"))
}

func TestRateLimitKeysClientsSeparately(t *testing.T) {
	router := rateLimitedRouter(1, 1)

	assert.Equal(t, http.StatusOK, pingAs(router, "u1"))
	assert.Equal(t, http.StatusTooManyRequests, pingAs(router, "u1"))
	// A different user has an untouched bucket.
	assert.Equal(t, http.StatusOK, pingAs(router, "u2"))
}
