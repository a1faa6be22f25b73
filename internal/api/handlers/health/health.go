package health

import (
	"net/http"
	"runtime"
	"time"

	"perfume-generator/internal/core/ai/queue"
	"perfume-generator/internal/infrastructure/config"
	"perfume-generator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatsReporter AI 服務的狀態來源
type StatsReporter interface {
	Model() string
	CacheStats() map[string]interface{}
}

// QueueReporter 隊列狀態來源
type QueueReporter interface {
	GetQueueStatus() *queue.Status
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Version     string                 `json:"version"`
	Model       string                 `json:"model"`
	CatalogSize int                    `json:"catalog_size"`
	Cache       map[string]interface{} `json:"cache,omitempty"`
	Queue       *queue.Status          `json:"queue,omitempty"`
	Runtime     map[string]interface{} `json:"runtime"`
}

// Handler 健康檢查
type Handler struct {
	cfg         *config.Config
	ai          StatsReporter
	queue       QueueReporter
	catalogSize int
}

// NewHandler 建立健康檢查處理器；queue 可為 nil
func NewHandler(cfg *config.Config, ai StatsReporter, queue QueueReporter, catalogSize int) *Handler {
	return &Handler{cfg: cfg, ai: ai, queue: queue, catalogSize: catalogSize}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now(),
		Version:     h.cfg.App.Version,
		Model:       h.ai.Model(),
		CatalogSize: h.catalogSize,
		Cache:       h.ai.CacheStats(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if h.queue != nil {
		response.Queue = h.queue.GetQueueStatus()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 未設定 API key 或目錄為空時回傳 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	var reasons []string
	if h.cfg.OpenRouter.APIKey == "" {
		reasons = append(reasons, "openrouter api key not configured")
	}
	if h.catalogSize == 0 {
		reasons = append(reasons, "ingredient catalog is empty")
	}

	if len(reasons) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not_ready",
			"reasons": reasons,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
