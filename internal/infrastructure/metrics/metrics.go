package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 服務指標；每個實例使用獨立的 registry，所有方法在 nil 接收者上皆為 no-op
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	aiRequestsTotal     *prometheus.CounterVec
	aiRequestDuration   prometheus.Histogram
	recipeOutcomesTotal *prometheus.CounterVec
}

// New 建立並註冊所有指標
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		aiRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_requests_total",
				Help: "Total number of AI requests",
			},
			[]string{"status", "cache"},
		),
		aiRequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ai_request_duration_seconds",
				Help:    "AI request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0, 120.0},
			},
		),
		recipeOutcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perfume_recipe_outcomes_total",
				Help: "Recipe parse outcomes by kind",
			},
			[]string{"outcome"},
		),
	}
}

// Registry 回傳底層 registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler /metrics 端點
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GinMiddleware 記錄 HTTP 請求數與耗時；path 使用路由樣板避免高基數
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ObserveAIRequest 記錄一次 AI 請求
func (m *Metrics) ObserveAIRequest(err error, cacheHit bool, duration time.Duration) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	cache := "miss"
	if cacheHit {
		cache = "hit"
	}

	m.aiRequestsTotal.WithLabelValues(status, cache).Inc()
	if !cacheHit {
		m.aiRequestDuration.Observe(duration.Seconds())
	}
}

// ObserveRecipeOutcome 記錄配方解析結果
func (m *Metrics) ObserveRecipeOutcome(kind string) {
	if m == nil {
		return
	}
	m.recipeOutcomesTotal.WithLabelValues(kind).Inc()
}
