package perfume

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"perfume-generator/internal/pkg/common"
)

// FallbackPerfumeID 回退配方使用的 perfumeId
const FallbackPerfumeID = "ERROR_UNKNOWN_ID"

var fencedBlockPattern = regexp.MustCompile("(?s)```[ \t]*(?i:json)?[ \t]*\\r?\\n?(.*?)```")

// ParseOutcome 解析結果：成功時帶配方，失敗時帶對應的錯誤型別
type ParseOutcome struct {
	Kind   OutcomeKind
	Recipe *RecipeSuggestion
	Err    error
}

// OK 是否成功
func (o ParseOutcome) OK() bool {
	return o.Kind == OutcomeSuccess && o.Recipe != nil
}

// MissingFields 結構驗證失敗時缺少的欄位路徑
func (o ParseOutcome) MissingFields() []string {
	var se *SchemaValidationError
	if errors.As(o.Err, &se) {
		return se.Missing
	}
	return nil
}

// Violations 規則驗證失敗時的違反清單
func (o ParseOutcome) Violations() []Violation {
	var ie *InvariantError
	if errors.As(o.Err, &ie) {
		return ie.Violations
	}
	return nil
}

// RecipeOrFallback 成功時回傳配方，否則回傳回退配方；不會失敗
func (o ParseOutcome) RecipeOrFallback() RecipeSuggestion {
	if o.OK() {
		return *o.Recipe
	}
	return FallbackRecipe(o.Err)
}

// Validator 將模型回應轉成配方
type Validator struct {
	catalog          *Catalog
	verifyInvariants bool
}

// ValidatorOption 設定 Validator
type ValidatorOption func(*Validator)

// WithCatalog 指定目錄
func WithCatalog(c *Catalog) ValidatorOption {
	return func(v *Validator) {
		if c != nil {
			v.catalog = c
		}
	}
}

// WithInvariantCheck 啟用解析後的數值與目錄驗證
func WithInvariantCheck(enabled bool) ValidatorOption {
	return func(v *Validator) {
		v.verifyInvariants = enabled
	}
}

// NewValidator 建立 Validator；預設只做結構驗證
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{catalog: DefaultCatalog}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Parse 解析模型回應
func (v *Validator) Parse(text string) ParseOutcome {
	return v.parse(text, -1)
}

// ParseForFeedback 解析模型回應，並以回饋記錄的保留比例作為預期值
func (v *Validator) ParseForFeedback(text string, feedback FeedbackRecord) ParseOutcome {
	return v.parse(text, feedback.Retention())
}

func (v *Validator) parse(text string, expectedRetention int) ParseOutcome {
	span, ok := extractJSON(text)
	if !ok {
		return ParseOutcome{Kind: OutcomeExtractionFailed, Err: &ExtractionError{}}
	}

	var raw map[string]any
	if err := common.ParseJSON(span, &raw); err != nil {
		return ParseOutcome{Kind: OutcomeParseFailed, Err: &ParseError{Err: err}}
	}

	missing, invalid := missingFields(raw, recipeSchema, "")
	if len(missing) > 0 || len(invalid) > 0 {
		return ParseOutcome{Kind: OutcomeSchemaInvalid, Err: &SchemaValidationError{Missing: missing, Invalid: invalid}}
	}

	// 以正規化後的物件解碼，整數欄位的 50.0 視為 50
	normalized, err := json.Marshal(raw)
	if err != nil {
		return ParseOutcome{Kind: OutcomeParseFailed, Err: &ParseError{Err: err}}
	}

	var recipe RecipeSuggestion
	if err := common.ParseJSON(string(normalized), &recipe); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return ParseOutcome{Kind: OutcomeSchemaInvalid, Err: &SchemaValidationError{Invalid: []string{typeErr.Field}}}
		}
		return ParseOutcome{Kind: OutcomeParseFailed, Err: &ParseError{Err: err}}
	}

	if v.verifyInvariants {
		if violations := VerifyRecipe(&recipe, v.catalog, expectedRetention); len(violations) > 0 {
			return ParseOutcome{Kind: OutcomeInvariantViolated, Err: &InvariantError{Violations: violations}}
		}
	}

	return ParseOutcome{Kind: OutcomeSuccess, Recipe: &recipe}
}

// ParseCustomPerfumeRecipe 只做結構驗證的邊界函式，失敗時回傳回退配方
func ParseCustomPerfumeRecipe(text string) RecipeSuggestion {
	return NewValidator().Parse(text).RecipeOrFallback()
}

// extractJSON 先找 ```json 區塊，找不到再取最外層的 { ... }
func extractJSON(text string) (string, bool) {
	for _, m := range fencedBlockPattern.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(m[1])
		if strings.HasPrefix(candidate, "{") {
			return candidate, true
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// FallbackRecipe 產生固定內容的回退配方；相同的錯誤產生相同的結果
func FallbackRecipe(cause error) RecipeSuggestion {
	reason := "알 수 없는 오류"
	if cause != nil {
		reason = cause.Error()
	}
	message := fmt.Sprintf("AI 응답을 처리할 수 없습니다. 다시 시도해 주세요. (원인: %s)", reason)

	return RecipeSuggestion{
		PerfumeID:                 FallbackPerfumeID,
		OriginalPerfumeName:       "오류",
		RetentionPercentage:       0,
		OverallExplanation:        "레시피를 생성하는 중 문제가 발생했습니다.",
		InitialCategoryGraphData:  []CategoryDataPoint{},
		AdjustedCategoryGraphData: []CategoryDataPoint{},
		CategoryChanges:           []CategoryChange{},
		TestingRecipe: TestingRecipe{
			Purpose: "오류 안내",
			Granules: []Granule{{
				ID:           "ERROR",
				Name:         "처리 오류",
				MainCategory: "N/A",
				Drops:        0,
				Ratio:        0,
				Reason:       reason,
			}},
			Instructions: Instructions{
				Step1:   InstructionStep{Description: "잠시 후 다시 시도해 주세요."},
				Step2:   InstructionStep{Description: "피드백 내용을 확인한 뒤 다시 제출해 주세요."},
				Step3:   InstructionStep{Description: "문제가 계속되면 관리자에게 문의해 주세요."},
				Caution: "이 레시피는 오류 안내용이며 조향에 사용할 수 없습니다.",
			},
		},
		IsFinalRecipe:        false,
		ContradictionWarning: &ContradictionWarning{Message: message},
	}
}
