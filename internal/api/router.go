package api

import (
	"context"
	"errors"
	"time"

	"perfume-generator/internal/api/handlers/health"
	perfumeHandler "perfume-generator/internal/api/handlers/perfume"
	"perfume-generator/internal/api/middleware"
	"perfume-generator/internal/core/ai/service"
	"perfume-generator/internal/core/perfume"
	"perfume-generator/internal/infrastructure/config"
	"perfume-generator/internal/infrastructure/metrics"
	"perfume-generator/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由需要的服務
type Dependencies struct {
	AIService       *service.Service
	FeedbackService *perfume.FeedbackService
	Metrics         *metrics.Metrics
	Queue           health.QueueReporter
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	router.Use(deps.Metrics.GinMiddleware())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", perfumeHandler.HeaderRecipeOutcome, perfumeHandler.HeaderGenerationID, perfumeHandler.HeaderCacheHit},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(requestTimeout(cfg.Server.RequestTimeout))

	// 健康檢查與指標
	healthHandler := health.NewHandler(cfg, deps.AIService, deps.Queue, deps.FeedbackService.Catalog().Len())
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.Deduplication(cfg.DedupWindow))

	h := perfumeHandler.NewHandler(deps.FeedbackService, cfg.App.Debug)
	perfumeGroup := api.Group("/perfume")
	{
		// 根據回饋生成測試配方
		perfumeGroup.POST("/feedback", h.HandleFeedback)

		// 香料目錄
		perfumeGroup.GET("/ingredients", h.HandleIngredients)

		// 除錯：只產生提示詞
		perfumeGroup.POST("/prompt", h.HandlePrompt)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}

// requestTimeout 為每個請求設定期限；處理器未寫入回應時補上 504
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(common.ErrGatewayTimeout.Status, common.ErrGatewayTimeout.Response(false))
		}
	}
}
