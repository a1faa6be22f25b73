package perfume

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// validRecipe 回傳通過結構與規則驗證的配方（保留 50%）
func validRecipe() RecipeSuggestion {
	return RecipeSuggestion{
		PerfumeID:           "BK-2201281",
		OriginalPerfumeName: "블랙베리",
		RetentionPercentage: 50,
		OverallExplanation:  "플로럴을 강화하고 과일 향을 줄였습니다.",
		InitialCategoryGraphData: []CategoryDataPoint{
			{Axis: "프루티", Value: 8},
			{Axis: "플로럴", Value: 3},
		},
		AdjustedCategoryGraphData: []CategoryDataPoint{
			{Axis: "프루티", Value: 6},
			{Axis: "플로럴", Value: 5.5},
		},
		CategoryChanges: []CategoryChange{
			{Category: "플로럴", Change: ChangeIncrease, Reason: "사용자 요청"},
		},
		TestingRecipe: TestingRecipe{
			Purpose: "플로럴 강화 테스트",
			Granules: []Granule{
				{ID: "BK-2201281", Name: "블랙베리", MainCategory: "프루티", Drops: 4, Ratio: 50, Reason: "원본 향수"},
				{ID: "LM-2201285", Name: "레몬", MainCategory: "시트러스", Drops: 3, Ratio: 30, Reason: "상쾌함"},
				{ID: "RS-2201289", Name: "장미", MainCategory: "플로럴", Drops: 3, Ratio: 20, Reason: "플로럴 강화"},
			},
			Instructions: Instructions{
				Step1:   InstructionStep{Description: "원본 향수를 4방울 떨어뜨립니다.", Details: "시향지 사용"},
				Step2:   InstructionStep{Description: "레몬을 3방울 추가합니다."},
				Step3:   InstructionStep{Description: "장미를 3방울 추가합니다."},
				Caution: "피부에 직접 바르지 마세요.",
			},
		},
		IsFinalRecipe: false,
	}
}

func fenced(s string) string {
	return "```json\n" + s + "\n```"
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// recipeMap 將配方轉成可任意刪改的 map
func recipeMap(t *testing.T, r RecipeSuggestion) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(mustJSON(t, r)), &m))
	return m
}
