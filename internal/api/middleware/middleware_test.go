package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.JSON(http.StatusOK, body)
	})
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRateLimiterRefills(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	// 半個時間窗補回一個令牌
	now = now.Add(500 * time.Millisecond)
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	// 短間隔的小數令牌會累積
	for i := 0; i < 2; i++ {
		now = now.Add(200 * time.Millisecond)
		assert.False(t, rl.Allow())
	}
	now = now.Add(200 * time.Millisecond)
	assert.True(t, rl.Allow())
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine(RateLimit(1, time.Minute))

	assert.Equal(t, http.StatusOK, get(r, "/ping").Code)

	w := get(r, "/ping")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")
}

func TestDeduplication(t *testing.T) {
	r := newEngine(Deduplication(time.Minute))

	first := post(r, `{"a":1}`)
	require.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, `{"a":1}`, first.Body.String())

	assert.Equal(t, http.StatusTooManyRequests, post(r, `{"a":1}`).Code)
	assert.Equal(t, http.StatusOK, post(r, `{"a":2}`).Code)

	// GET 不做去重
	assert.Equal(t, http.StatusOK, get(r, "/ping").Code)
	assert.Equal(t, http.StatusOK, get(r, "/ping").Code)
}

func TestDeduplicationPerClient(t *testing.T) {
	r := newEngine(Deduplication(time.Minute))

	send := func(addr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = addr
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:5000"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:5000"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:5001"))
}

func TestDeduplicatorWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := newDeduplicator(time.Second)
	d.now = func() time.Time { return now }

	assert.False(t, d.seen("x"))
	assert.True(t, d.seen("x"))

	now = now.Add(2 * time.Second)
	assert.False(t, d.seen("x"))

	now = now.Add(time.Minute)
	d.seen("y")
	assert.NotContains(t, d.requests, "x")
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(16))

	assert.Equal(t, http.StatusOK, post(r, `{"a":1}`).Code)

	w := post(r, `{"a":"this body is far too long"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "PAYLOAD_TOO_LARGE")
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery(), Logger())

	w := get(r, "/panic")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
