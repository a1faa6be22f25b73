package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"perfume-generator/internal/api"
	"perfume-generator/internal/core/ai/cache"
	"perfume-generator/internal/core/ai/provider"
	"perfume-generator/internal/core/ai/queue"
	aiService "perfume-generator/internal/core/ai/service"
	"perfume-generator/internal/core/perfume"
	"perfume-generator/internal/core/service"
	"perfume-generator/internal/infrastructure/config"
	"perfume-generator/internal/infrastructure/metrics"
	"perfume-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// systemPrompt 固定的系統訊息
const systemPrompt = "You are a professional perfumer. Reply with a single JSON object inside a ```json code block and nothing else."

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("openrouter_api_key", common.MaskSecret(cfg.OpenRouter.APIKey)),
		zap.String("openrouter_model", cfg.OpenRouter.Model),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)
	if cfg.OpenRouter.APIKey == "" {
		common.LogWarn("OPENROUTER_API_KEY is empty, /ready will report not_ready")
	}

	// 初始化快取
	initCtx, initCancel := context.WithTimeout(context.Background(), 5*time.Second)
	store, err := cache.NewStore(initCtx, cfg)
	initCancel()
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	m := metrics.New()

	openRouter := service.NewOpenRouterService(provider.Config{
		APIKey:     cfg.OpenRouter.APIKey,
		Model:      cfg.OpenRouter.Model,
		Timeout:    cfg.OpenRouter.Timeout,
		MaxRetries: cfg.OpenRouter.MaxRetries,
		BaseURL:    cfg.OpenRouter.BaseURL,
	})

	// 隊列限制同時送往模型的請求數，關閉時一併關閉 openRouter
	q := queue.NewManager(openRouter, cfg.Queue)
	defer q.Close()

	ai := aiService.NewService(q, store, m, aiService.Options{
		MaxTokens:    cfg.OpenRouter.MaxTokens,
		Temperature:  cfg.OpenRouter.Temperature,
		SystemPrompt: systemPrompt,
	})
	feedbackSvc := perfume.NewFeedbackService(ai, m, cfg.Perfume.VerifyInvariants)

	router := api.SetupRouter(cfg, api.Dependencies{
		AIService:       ai,
		FeedbackService: feedbackSvc,
		Metrics:         m,
		Queue:           q,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
