package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"perfume-generator/internal/core/ai/provider"
	"perfume-generator/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrEmptyCompletion 模型回應中沒有任何內容
var ErrEmptyCompletion = errors.New("no choices in OpenRouter response")

// APIError OpenRouter 回傳非 200 狀態碼
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("OpenRouter API returned status %d: %s", e.StatusCode, e.Body)
}

// OpenRouterService OpenRouter chat completions 客戶端
type OpenRouterService struct {
	config provider.Config
	client *resty.Client
}

var _ provider.Provider = (*OpenRouterService)(nil)

type chatRequest struct {
	Model       string             `json:"model"`
	Messages    []provider.Message `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float64            `json:"temperature"`
	Stop        []string           `json:"stop,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage provider.Usage `json:"usage"`
}

// NewOpenRouterService 創建 OpenRouter 服務
func NewOpenRouterService(cfg provider.Config) *OpenRouterService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", "https://perfume-generator.app").
		SetHeader("X-Title", "Perfume Generator")

	return &OpenRouterService{
		config: cfg,
		client: client,
	}
}

// Generate 呼叫 chat completions，提示詞原樣送出
func (s *OpenRouterService) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := chatRequest{
		Model:       s.config.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stop:        req.Stop,
	}

	var result chatResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogWarn("OpenRouter returned non-200",
			zap.Int("status", resp.StatusCode()),
			zap.String("model", s.config.Model),
		)
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return nil, ErrEmptyCompletion
	}

	model := result.Model
	if model == "" {
		model = s.config.Model
	}

	return &provider.Response{
		Content: result.Choices[0].Message.Content,
		Model:   model,
		Usage:   result.Usage,
	}, nil
}

// GetModel 獲取當前使用的模型名稱
func (s *OpenRouterService) GetModel() string {
	return s.config.Model
}

// GetTimeout 獲取請求超時時間
func (s *OpenRouterService) GetTimeout() time.Duration {
	return s.config.Timeout
}

// Close resty 客戶端不需要釋放資源
func (s *OpenRouterService) Close() error {
	return nil
}
