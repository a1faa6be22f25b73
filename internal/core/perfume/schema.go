package perfume

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SchemaVersion 提示詞與驗證器共用的回應格式版本
const SchemaVersion = "custom-recipe/v1"

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindNumber
	kindBool
	kindObject
	kindArray
)

// schemaField 回應 JSON 的單一欄位定義
type schemaField struct {
	Name     string
	Kind     fieldKind
	Required bool
	NonEmpty bool   // 僅用於陣列
	Example  string // 純量欄位的範例值（JSON 字面值）
	Fields   []schemaField
}

var graphPointFields = []schemaField{
	{Name: "axis", Kind: kindString, Required: true, Example: `"시트러스"`},
	{Name: "value", Kind: kindNumber, Required: true, Example: `7`},
}

var instructionStepFields = []schemaField{
	{Name: "description", Kind: kindString, Example: `"단계 설명"`},
	{Name: "details", Kind: kindString, Example: `"세부 방법"`},
}

// recipeSchema 回應格式的唯一定義：提示詞中的 JSON 範例與必要欄位檢查都由此產生
var recipeSchema = []schemaField{
	{Name: "perfumeId", Kind: kindString, Required: true, Example: `"<PERFUME_ID>"`},
	{Name: "originalPerfumeName", Kind: kindString, Required: true, Example: `"<PERFUME_NAME>"`},
	{Name: "retentionPercentage", Kind: kindInt, Required: true, Example: `<RETENTION>`},
	{Name: "overallExplanation", Kind: kindString, Example: `"전체 조정 방향 설명"`},
	{Name: "initialCategoryGraphData", Kind: kindArray, Required: true, Fields: graphPointFields},
	{Name: "adjustedCategoryGraphData", Kind: kindArray, Required: true, Fields: graphPointFields},
	{Name: "categoryChanges", Kind: kindArray, Required: true, Fields: []schemaField{
		{Name: "category", Kind: kindString, Required: true, Example: `"플로럴"`},
		{Name: "change", Kind: kindString, Required: true, Example: `"increase"`},
		{Name: "reason", Kind: kindString, Required: true, Example: `"변경 이유"`},
	}},
	{Name: "testingRecipe", Kind: kindObject, Required: true, Fields: []schemaField{
		{Name: "purpose", Kind: kindString, Example: `"테스트 목적"`},
		{Name: "granules", Kind: kindArray, Required: true, NonEmpty: true, Fields: []schemaField{
			{Name: "id", Kind: kindString, Required: true, Example: `"<PERFUME_ID>"`},
			{Name: "name", Kind: kindString, Required: true, Example: `"<PERFUME_NAME>"`},
			{Name: "mainCategory", Kind: kindString, Required: true, Example: `"프루티"`},
			{Name: "drops", Kind: kindInt, Required: true, Example: `5`},
			{Name: "ratio", Kind: kindInt, Required: true, Example: `<RETENTION>`},
			{Name: "reason", Kind: kindString, Required: true, Example: `"선택 이유"`},
		}},
		{Name: "instructions", Kind: kindObject, Required: true, Fields: []schemaField{
			{Name: "step1", Kind: kindObject, Fields: instructionStepFields},
			{Name: "step2", Kind: kindObject, Fields: instructionStepFields},
			{Name: "step3", Kind: kindObject, Fields: instructionStepFields},
			{Name: "caution", Kind: kindString, Example: `"주의 사항"`},
		}},
	}},
	{Name: "isFinalRecipe", Kind: kindBool, Required: true, Example: `false`},
	{Name: "contradictionWarning", Kind: kindObject, Fields: []schemaField{
		{Name: "message", Kind: kindString, Required: true, Example: `"모순 설명"`},
	}},
}

// RequiredFieldPaths 回傳所有必要欄位路徑（陣列元素以 [] 表示）
func RequiredFieldPaths() []string {
	return requiredPaths(recipeSchema, "")
}

func requiredPaths(fields []schemaField, prefix string) []string {
	var out []string
	for _, f := range fields {
		path := joinPath(prefix, f.Name)
		if f.Required {
			out = append(out, path)
		}
		switch f.Kind {
		case kindObject:
			if f.Required {
				out = append(out, requiredPaths(f.Fields, path)...)
			}
		case kindArray:
			if f.Required {
				out = append(out, requiredPaths(f.Fields, path+"[]")...)
			}
		}
	}
	return out
}

// maxExactInt float64 可精確表示的最大整數
const maxExactInt = 1 << 53

// missingFields 檢查已解析（UseNumber）的 JSON 物件；回傳缺少的與型別錯誤的欄位路徑。
// 整數欄位的值會就地正規化
func missingFields(obj map[string]any, fields []schemaField, prefix string) (missing, invalid []string) {
	for _, f := range fields {
		path := joinPath(prefix, f.Name)
		v, ok := obj[f.Name]
		if !ok || v == nil {
			if f.Required {
				missing = append(missing, path)
			}
			continue
		}

		switch f.Kind {
		case kindObject:
			child, ok := v.(map[string]any)
			if !ok {
				invalid = append(invalid, path)
				continue
			}
			m, inv := missingFields(child, f.Fields, path)
			missing = append(missing, m...)
			invalid = append(invalid, inv...)
		case kindArray:
			items, ok := v.([]any)
			if !ok {
				invalid = append(invalid, path)
				continue
			}
			if f.NonEmpty && len(items) == 0 {
				missing = append(missing, path)
				continue
			}
			for i, item := range items {
				itemPath := path + "[" + strconv.Itoa(i) + "]"
				child, ok := item.(map[string]any)
				if !ok {
					invalid = append(invalid, itemPath)
					continue
				}
				m, inv := missingFields(child, f.Fields, itemPath)
				missing = append(missing, m...)
				invalid = append(invalid, inv...)
			}
		default:
			norm, ok := scalarValue(f.Kind, v)
			if !ok {
				invalid = append(invalid, path)
				continue
			}
			obj[f.Name] = norm
		}
	}
	return missing, invalid
}

// scalarValue 檢查純量型別；整數欄位接受值為整數的小數（如 50.0），並改寫為整數字面值
func scalarValue(kind fieldKind, v any) (any, bool) {
	switch kind {
	case kindString:
		_, ok := v.(string)
		return v, ok
	case kindBool:
		_, ok := v.(bool)
		return v, ok
	case kindNumber:
		n, ok := v.(json.Number)
		if !ok {
			return v, false
		}
		_, err := n.Float64()
		return v, err == nil
	case kindInt:
		n, ok := v.(json.Number)
		if !ok {
			return v, false
		}
		if _, err := n.Int64(); err == nil {
			return v, true
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactInt {
			return v, false
		}
		return json.Number(strconv.FormatInt(int64(f), 10)), true
	}
	return v, true
}

// writeSchemaExample 將 schema 輸出為縮排的 JSON 範例
func writeSchemaExample(sb *strings.Builder, fields []schemaField, indent int) {
	pad := strings.Repeat("  ", indent+1)
	sb.WriteString("{\n")
	for i, f := range fields {
		sb.WriteString(pad)
		sb.WriteString(`"` + f.Name + `": `)
		switch f.Kind {
		case kindObject:
			writeSchemaExample(sb, f.Fields, indent+1)
		case kindArray:
			sb.WriteString("[\n")
			sb.WriteString(pad + "  ")
			writeSchemaExample(sb, f.Fields, indent+2)
			sb.WriteString("\n" + pad + "]")
		default:
			sb.WriteString(f.Example)
		}
		if i < len(fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Repeat("  ", indent) + "}")
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
