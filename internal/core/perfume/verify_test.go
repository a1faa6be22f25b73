package perfume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func violationCodes(vs []Violation) []ViolationCode {
	codes := make([]ViolationCode, len(vs))
	for i, v := range vs {
		codes[i] = v.Code
	}
	return codes
}

func TestVerifyRecipe(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *RecipeSuggestion)
		want   ViolationCode
	}{
		{
			name:   "final recipe",
			mutate: func(r *RecipeSuggestion) { r.IsFinalRecipe = true },
			want:   ViolationFinalRecipe,
		},
		{
			name:   "first granule is not the original perfume",
			mutate: func(r *RecipeSuggestion) { r.TestingRecipe.Granules[0].ID = "MG-2201282" },
			want:   ViolationFirstGranuleID,
		},
		{
			name:   "first granule name differs from catalog",
			mutate: func(r *RecipeSuggestion) { r.TestingRecipe.Granules[0].Name = "블랙 베리" },
			want:   ViolationUnknownIngredient,
		},
		{
			name: "first ratio differs from retention",
			mutate: func(r *RecipeSuggestion) {
				r.TestingRecipe.Granules[0].Ratio = 40
			},
			want: ViolationFirstGranuleRatio,
		},
		{
			name:   "remainder does not sum to 100 - retention",
			mutate: func(r *RecipeSuggestion) { r.TestingRecipe.Granules[2].Ratio = 25 },
			want:   ViolationRemainderRatioSum,
		},
		{
			name:   "invented ingredient",
			mutate: func(r *RecipeSuggestion) { r.TestingRecipe.Granules[1] = Granule{ID: "YZ-9999999", Name: "유자", Drops: 3, Ratio: 30} },
			want:   ViolationUnknownIngredient,
		},
		{
			name:   "renamed ingredient",
			mutate: func(r *RecipeSuggestion) { r.TestingRecipe.Granules[1].Name = "라임" },
			want:   ViolationUnknownIngredient,
		},
		{
			name:   "granule drops above limit",
			mutate: func(r *RecipeSuggestion) { r.TestingRecipe.Granules[0].Drops = 11 },
			want:   ViolationGranuleDrops,
		},
		{
			name:   "granule drops zero",
			mutate: func(r *RecipeSuggestion) { r.TestingRecipe.Granules[1].Drops = 0 },
			want:   ViolationGranuleDrops,
		},
		{
			name: "total drops below minimum",
			mutate: func(r *RecipeSuggestion) {
				for i := range r.TestingRecipe.Granules {
					r.TestingRecipe.Granules[i].Drops = 1
				}
			},
			want: ViolationTotalDrops,
		},
		{
			name: "total drops above maximum",
			mutate: func(r *RecipeSuggestion) {
				for i := range r.TestingRecipe.Granules {
					r.TestingRecipe.Granules[i].Drops = 6
				}
			},
			want: ViolationTotalDrops,
		},
		{
			name:   "graph value out of range",
			mutate: func(r *RecipeSuggestion) { r.AdjustedCategoryGraphData[0].Value = 10.5 },
			want:   ViolationGraphValueOutOfRange,
		},
		{
			name:   "retention differs from request",
			mutate: func(r *RecipeSuggestion) { r.RetentionPercentage = 40; r.TestingRecipe.Granules[0].Ratio = 40 },
			want:   ViolationRetentionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecipe()
			tt.mutate(&r)

			got := VerifyRecipe(&r, nil, 50)
			assert.Contains(t, violationCodes(got), tt.want)
		})
	}
}

func TestVerifyRecipeValid(t *testing.T) {
	r := validRecipe()
	assert.Empty(t, VerifyRecipe(&r, DefaultCatalog, 50))
	assert.Empty(t, VerifyRecipe(&r, DefaultCatalog, -1))
}

func TestVerifyRecipeBoundaryRetention(t *testing.T) {
	// 保留 100% 時只剩原始香水
	r := validRecipe()
	r.RetentionPercentage = 100
	r.TestingRecipe.Granules = []Granule{
		{ID: "BK-2201281", Name: "블랙베리", MainCategory: "프루티", Drops: 5, Ratio: 100, Reason: "원본"},
	}
	assert.Empty(t, VerifyRecipe(&r, nil, 100))
}

func TestVerifyRecipeUnknownOriginal(t *testing.T) {
	// 原始香水不在目錄中時只比對 id 與比例
	r := validRecipe()
	r.PerfumeID = "PERSONA-7"
	r.TestingRecipe.Granules[0].ID = "PERSONA-7"
	r.TestingRecipe.Granules[0].Name = "나의 향수"
	assert.Empty(t, VerifyRecipe(&r, nil, 50))
}

func TestVerifyRecipeNoGranules(t *testing.T) {
	r := validRecipe()
	r.TestingRecipe.Granules = nil
	assert.NotEmpty(t, VerifyRecipe(&r, nil, -1))
}
