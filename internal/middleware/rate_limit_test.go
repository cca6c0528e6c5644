package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/forkful/backend/internal/metrics"
	"github.com/pageza/forkful/backend/internal/testhelpers"
)

func TestRateLimiterDisabledWithoutRedis(t *testing.T) {
	r := gin.New()
	r.POST("/", NewRecipeCreationRateLimiter(nil, 1).Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimiterWithRedis(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	limiter := NewRateLimiter(client, RateLimitConfig{
		Window:    time.Hour,
		Limit:     2,
		KeyPrefix: "rate_limit:test",
		Name:      "test",
	})

	r := gin.New()
	r.POST("/", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	before := testutil.ToFloat64(metrics.RateLimitRejections.WithLabelValues("test"))

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		r.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/", nil))
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitRejections.WithLabelValues("test")))

	remaining, _, err := limiter.Remaining(context.Background(), "ip:192.0.2.1")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	remaining, _, err = limiter.Remaining(context.Background(), "user:someone-else")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}
