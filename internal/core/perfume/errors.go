package perfume

import (
	"fmt"
	"strings"
)

// OutcomeKind 解析結果種類
type OutcomeKind string

const (
	OutcomeSuccess           OutcomeKind = "success"
	OutcomeExtractionFailed  OutcomeKind = "extraction_failed"
	OutcomeParseFailed       OutcomeKind = "parse_failed"
	OutcomeSchemaInvalid     OutcomeKind = "schema_invalid"
	OutcomeInvariantViolated OutcomeKind = "invariant_violated"
)

// ExtractionError 回應中找不到 JSON 區塊
type ExtractionError struct{}

func (e *ExtractionError) Error() string {
	return "no JSON object found in model response"
}

// ParseError 找到 JSON 區塊但無法解析
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed JSON in model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaValidationError 缺少必要欄位或欄位型別錯誤
type SchemaValidationError struct {
	Missing []string
	Invalid []string
}

func (e *SchemaValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "fields with wrong type: "+strings.Join(e.Invalid, ", "))
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// ViolationCode 數值或目錄規則違反的種類
type ViolationCode string

const (
	ViolationFirstGranuleID       ViolationCode = "first_granule_id"
	ViolationFirstGranuleRatio    ViolationCode = "first_granule_ratio"
	ViolationRetentionMismatch    ViolationCode = "retention_mismatch"
	ViolationRemainderRatioSum    ViolationCode = "remainder_ratio_sum"
	ViolationGranuleDrops         ViolationCode = "granule_drops"
	ViolationTotalDrops           ViolationCode = "total_drops"
	ViolationUnknownIngredient    ViolationCode = "unknown_ingredient"
	ViolationFinalRecipe          ViolationCode = "final_recipe"
	ViolationGraphValueOutOfRange ViolationCode = "graph_value_out_of_range"
)

// Violation 單一規則違反
type Violation struct {
	Code    ViolationCode `json:"code"`
	Message string        `json:"message"`
}

// InvariantError 配方違反數值或目錄規則
type InvariantError struct {
	Violations []Violation
}

func (e *InvariantError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return "recipe invariants violated: " + strings.Join(msgs, "; ")
}
