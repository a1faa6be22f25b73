package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveAIRequest(errors.New("x"), false, time.Second)
		m.ObserveRecipeOutcome("success")
	})
	assert.Nil(t, m.Registry())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestObserveAIRequest(t *testing.T) {
	m := New()

	m.ObserveAIRequest(nil, false, 200*time.Millisecond)
	m.ObserveAIRequest(nil, true, 0)
	m.ObserveAIRequest(errors.New("boom"), false, time.Second)

	body := scrape(t, m)
	assert.Contains(t, body, `ai_requests_total{cache="miss",status="success"} 1`)
	assert.Contains(t, body, `ai_requests_total{cache="hit",status="success"} 1`)
	assert.Contains(t, body, `ai_requests_total{cache="miss",status="error"} 1`)
	// 快取命中不計入耗時
	assert.Contains(t, body, "ai_request_duration_seconds_count 2")
}

func TestGinMiddlewareUsesRouteTemplate(t *testing.T) {
	m := New()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/items/1", "/items/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t, m)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/items/:id",status_code="200"} 2`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="unmatched",status_code="404"} 1`)
}

func TestHandlerExposesRecipeOutcomes(t *testing.T) {
	m := New()
	m.ObserveRecipeOutcome("schema_invalid")

	body := scrape(t, m)
	assert.Contains(t, body, `perfume_recipe_outcomes_total{outcome="schema_invalid"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
