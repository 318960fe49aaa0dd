package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"askbrooks/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type memCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (c *memCounter) Increment(key string, _ time.Duration) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int64{}
	}
	c.counts[key]++
	return c.counts[key], nil
}

func newLimitedEngine(counter Counter, limit int, now func() time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/ask", rateLimit(counter, limit, time.Minute, now, zap.NewNop(), metrics.New("test")), func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})
	return r
}

func post(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ask", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 15, 0, time.UTC)
	r := newLimitedEngine(&memCounter{}, 2, func() time.Time { return now })

	assert.Equal(t, http.StatusOK, post(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, post(r, "10.0.0.1").Code)

	rec := post(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"detail":"Too many requests"}`, rec.Body.String())
	assert.Equal(t, "46", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, post(r, "10.0.0.2").Code, "other clients keep their own budget")

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, post(r, "10.0.0.1").Code, "new window")
}

func TestRateLimit_CounterErrorFailsOpen(t *testing.T) {
	r := newLimitedEngine(&memCounter{err: errors.New("redis down")}, 1, time.Now)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(r, "10.0.0.1").Code)
	}
}
