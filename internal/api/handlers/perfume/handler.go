package perfume

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	perfumeService "perfume-generator/internal/core/perfume"
	"perfume-generator/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 回應標頭
const (
	HeaderRecipeOutcome = "X-Recipe-Outcome"
	HeaderGenerationID  = "X-Generation-ID"
	HeaderCacheHit      = "X-Cache-Hit"
)

// IngredientsResponse 香料目錄
type IngredientsResponse struct {
	Count       int                            `json:"count"`
	Categories  []perfumeService.ScentCategory `json:"categories"`
	Ingredients []perfumeService.Ingredient    `json:"ingredients"`
}

// PromptResponse 除錯用提示詞
type PromptResponse struct {
	Prompt        string   `json:"prompt"`
	SchemaVersion string   `json:"schemaVersion"`
	Required      []string `json:"requiredFields"`
}

// Handler 香水回饋處理程序
type Handler struct {
	service *perfumeService.FeedbackService
	debug   bool
}

// NewHandler 創建處理程序；debug 為 true 時錯誤回應附上原始錯誤，並開放提示詞端點
func NewHandler(service *perfumeService.FeedbackService, debug bool) *Handler {
	return &Handler{service: service, debug: debug}
}

// HandleFeedback 根據使用者回饋生成測試配方
func (h *Handler) HandleFeedback(c *gin.Context) {
	requestID := requestid.Get(c)

	var req perfumeService.FeedbackRecord
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		h.abort(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	common.LogInfo("開始處理香水回饋",
		zap.String("request_id", requestID),
		zap.String("perfume_id", req.PerfumeIDOrPlaceholder()),
		zap.String("client_ip", c.ClientIP()),
	)

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		common.LogError("配方生成失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		h.abort(c, classify(err))
		return
	}

	c.Header(HeaderRecipeOutcome, string(result.Outcome))
	c.Header(HeaderGenerationID, result.GenerationID)
	c.Header(HeaderCacheHit, strconv.FormatBool(result.CacheHit))

	common.LogInfo("配方生成完成",
		zap.String("request_id", requestID),
		zap.String("generation_id", result.GenerationID),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("violations", len(result.Violations)),
	)

	c.JSON(http.StatusOK, result.Recipe)
}

// HandleIngredients 回傳可用香料目錄
func (h *Handler) HandleIngredients(c *gin.Context) {
	catalog := h.service.Catalog()
	c.JSON(http.StatusOK, IngredientsResponse{
		Count:       catalog.Len(),
		Categories:  perfumeService.Categories,
		Ingredients: catalog.Entries(),
	})
}

// HandlePrompt 只產生提示詞不呼叫模型；僅在 debug 模式開放
func (h *Handler) HandlePrompt(c *gin.Context) {
	if !h.debug {
		h.abort(c, common.ErrNotFound)
		return
	}

	var req perfumeService.FeedbackRecord
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abort(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	prompt, err := h.service.Prompt(req)
	if err != nil {
		h.abort(c, classify(err))
		return
	}

	c.JSON(http.StatusOK, PromptResponse{
		Prompt:        prompt,
		SchemaVersion: perfumeService.SchemaVersion,
		Required:      perfumeService.RequiredFieldPaths(),
	})
}

func (h *Handler) abort(c *gin.Context, e *common.CustomError) {
	_ = c.Error(e)
	c.AbortWithStatusJSON(e.Status, e.Response(h.debug))
}

// classify 將服務錯誤對應到 API 錯誤
func classify(err error) *common.CustomError {
	switch {
	case common.IsValidationError(err):
		return common.ErrInvalidFeedback.Wrap(err)
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout.Wrap(err)
	case errors.Is(err, common.ErrAIServiceError):
		return common.ErrAIServiceError.Wrap(err)
	default:
		return common.ErrInternalError.Wrap(err)
	}
}
