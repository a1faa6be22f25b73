package perfume

import (
	"context"
	"fmt"

	"perfume-generator/internal/core/ai/service"
	"perfume-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// Completer 送出提示詞並取得模型回應；Remember 只在回應解析成功後呼叫
type Completer interface {
	ProcessRequest(ctx context.Context, prompt string) (*service.Response, error)
	Remember(ctx context.Context, prompt, content string)
}

// OutcomeRecorder 記錄解析結果種類
type OutcomeRecorder interface {
	ObserveRecipeOutcome(kind string)
}

// Result 一次回饋處理的結果；Recipe 在解析失敗時為回退配方
type Result struct {
	GenerationID string
	Recipe       RecipeSuggestion
	Outcome      OutcomeKind
	Err          error
	Violations   []Violation
	CacheHit     bool
}

// FeedbackService 回饋 → 提示詞 → 模型 → 配方
type FeedbackService struct {
	ai        Completer
	recorder  OutcomeRecorder
	catalog   *Catalog
	validator *Validator
}

// NewFeedbackService 建立服務；verifyInvariants 控制是否檢查數值與目錄規則
func NewFeedbackService(ai Completer, recorder OutcomeRecorder, verifyInvariants bool) *FeedbackService {
	return &FeedbackService{
		ai:        ai,
		recorder:  recorder,
		catalog:   DefaultCatalog,
		validator: NewValidator(WithCatalog(DefaultCatalog), WithInvariantCheck(verifyInvariants)),
	}
}

// Catalog 服務使用的香料目錄
func (s *FeedbackService) Catalog() *Catalog {
	return s.catalog
}

// Prompt 驗證回饋並產生提示詞
func (s *FeedbackService) Prompt(feedback FeedbackRecord) (string, error) {
	if err := ValidateFeedback(feedback); err != nil {
		return "", err
	}
	return BuildCustomPerfumePrompt(feedback, s.catalog), nil
}

// Generate 產生測試配方；只有回饋無效或模型呼叫失敗時回傳錯誤，解析失敗以回退配方表示
func (s *FeedbackService) Generate(ctx context.Context, feedback FeedbackRecord) (*Result, error) {
	prompt, err := s.Prompt(feedback)
	if err != nil {
		return nil, err
	}

	generationID := common.GenerateUUID()
	common.LogInfo("開始生成測試配方",
		zap.String("generation_id", generationID),
		zap.String("perfume_id", feedback.PerfumeIDOrPlaceholder()),
		zap.Int("retention", feedback.Retention()),
		zap.Int("prompt_length", len(prompt)),
	)
	common.LogDebug("提示詞內容",
		zap.String("generation_id", generationID),
		zap.String("prompt", prompt),
	)

	resp, err := s.ai.ProcessRequest(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("AI service error: %w", err)
	}

	common.LogDebug("AI 回應內容 (perfume/feedback)",
		zap.String("generation_id", generationID),
		zap.Int("ai_response_length", len(resp.Content)),
		zap.Bool("cache_hit", resp.CacheHit),
	)

	outcome := s.validator.ParseForFeedback(resp.Content, feedback)
	if s.recorder != nil {
		s.recorder.ObserveRecipeOutcome(string(outcome.Kind))
	}

	result := &Result{
		GenerationID: generationID,
		Recipe:       outcome.RecipeOrFallback(),
		Outcome:      outcome.Kind,
		Err:          outcome.Err,
		Violations:   outcome.Violations(),
		CacheHit:     resp.CacheHit,
	}

	if !outcome.OK() {
		common.LogWarn("配方解析失敗，回傳回退配方",
			zap.String("generation_id", generationID),
			zap.String("outcome", string(outcome.Kind)),
			zap.Strings("missing_fields", outcome.MissingFields()),
			zap.Error(outcome.Err),
		)
		return result, nil
	}

	if !resp.CacheHit {
		s.ai.Remember(ctx, prompt, resp.Content)
	}

	if js, err := common.ToJSON(result.Recipe); err == nil {
		common.LogDebug("配方已生成",
			zap.String("generation_id", generationID),
			zap.String("recipe", js),
		)
	}

	return result, nil
}
