package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"perfume-generator/internal/core/ai/cache"
	"perfume-generator/internal/core/ai/provider"
	"perfume-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// Response AI 回應
type Response struct {
	Content  string
	Model    string
	CacheHit bool
}

// Observer 接收每次 AI 請求的結果，用於指標統計
type Observer interface {
	ObserveAIRequest(err error, cacheHit bool, duration time.Duration)
}

// Options 生成參數
type Options struct {
	MaxTokens    int
	Temperature  float64
	SystemPrompt string
}

// Service AI 服務：快取查詢、呼叫提供者；寫回快取由 Remember 負責
type Service struct {
	provider provider.Provider
	cache    cache.Store
	observer Observer
	opts     Options
}

// NewService 創建 AI 服務；store 與 observer 可為 nil
func NewService(p provider.Provider, store cache.Store, observer Observer, opts Options) *Service {
	return &Service{
		provider: p,
		cache:    store,
		observer: observer,
		opts:     opts,
	}
}

// ProcessRequest 統一對外方法；提供者失敗時回傳 common.ErrAIServiceError
func (s *Service) ProcessRequest(ctx context.Context, prompt string) (*Response, error) {
	start := time.Now()
	key := strings.TrimSpace(prompt)

	if s.cache != nil {
		val, err := s.cache.Get(ctx, key)
		switch {
		case err == nil && val != "":
			s.observe(nil, true, time.Since(start))
			return &Response{Content: val, Model: s.provider.GetModel(), CacheHit: true}, nil
		case err != nil && !errors.Is(err, common.ErrCacheMiss):
			common.LogWarn("快取查詢失敗，改為直接呼叫模型", zap.Error(err))
		}
	}

	req := &provider.Request{
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	}
	if s.opts.SystemPrompt != "" {
		req.Messages = append(req.Messages, provider.Message{Role: provider.RoleSystem, Content: s.opts.SystemPrompt})
	}
	req.Messages = append(req.Messages, provider.Message{Role: provider.RoleUser, Content: prompt})

	resp, err := s.provider.Generate(ctx, req)
	duration := time.Since(start)
	common.LogAICall(s.provider.GetModel(), duration, err)
	s.observe(err, false, duration)
	if err != nil {
		return nil, common.ErrAIServiceError.Wrap(err)
	}

	return &Response{Content: resp.Content, Model: resp.Model}, nil
}

// Remember 將呼叫端驗證通過的回應寫入快取；ProcessRequest 本身不寫快取，
// 避免無法使用的回應在重試時被重複回傳
func (s *Service) Remember(ctx context.Context, prompt, content string) {
	if s.cache == nil || content == "" {
		return
	}
	if err := s.cache.Set(ctx, strings.TrimSpace(prompt), content); err != nil {
		common.LogWarn("快取寫入失敗", zap.Error(err))
	}
}

// Model 目前使用的模型
func (s *Service) Model() string {
	return s.provider.GetModel()
}

// CacheStats 回傳快取統計；未啟用快取時為 nil
func (s *Service) CacheStats() map[string]interface{} {
	if s.cache == nil {
		return nil
	}
	return s.cache.GetStats()
}

func (s *Service) observe(err error, cacheHit bool, duration time.Duration) {
	if s.observer != nil {
		s.observer.ObserveAIRequest(err, cacheHit, duration)
	}
}
