package perfume

import (
	"fmt"
)

// VerifyRecipe 檢查配方的數值與目錄規則；expectedRetention 小於 0 表示呼叫端未指定
func VerifyRecipe(r *RecipeSuggestion, catalog *Catalog, expectedRetention int) []Violation {
	if catalog == nil {
		catalog = DefaultCatalog
	}

	var out []Violation
	add := func(code ViolationCode, format string, args ...any) {
		out = append(out, Violation{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if r.IsFinalRecipe {
		add(ViolationFinalRecipe, "isFinalRecipe must be false for testing recipes")
	}

	if expectedRetention >= 0 && r.RetentionPercentage != expectedRetention {
		add(ViolationRetentionMismatch, "retentionPercentage is %d, requested %d", r.RetentionPercentage, expectedRetention)
	}

	granules := r.TestingRecipe.Granules
	if len(granules) == 0 {
		// 結構驗證已要求非空，這裡僅防止直接呼叫時 panic
		add(ViolationFirstGranuleID, "recipe has no granules")
		return out
	}

	first := granules[0]
	if first.ID != r.PerfumeID {
		add(ViolationFirstGranuleID, "first granule id %q does not match perfumeId %q", first.ID, r.PerfumeID)
	}
	if e, ok := catalog.ByID(first.ID); ok && e.Name != first.Name {
		add(ViolationUnknownIngredient, "first granule %s has name %q, catalog name is %q", first.ID, first.Name, e.Name)
	}
	if first.Ratio != r.RetentionPercentage {
		add(ViolationFirstGranuleRatio, "first granule ratio %d does not equal retentionPercentage %d", first.Ratio, r.RetentionPercentage)
	}

	remainder := 0
	for _, g := range granules[1:] {
		remainder += g.Ratio
		if !catalog.Contains(g.ID, g.Name) {
			add(ViolationUnknownIngredient, "granule %s/%s is not in the ingredient catalog", g.ID, g.Name)
		}
	}
	if want := 100 - r.RetentionPercentage; remainder != want {
		add(ViolationRemainderRatioSum, "remaining granule ratios sum to %d, expected %d", remainder, want)
	}

	total := 0
	for _, g := range granules {
		total += g.Drops
		if g.Drops < MinGranuleDrops || g.Drops > MaxGranuleDrops {
			add(ViolationGranuleDrops, "granule %s has %d drops, allowed %d-%d", g.ID, g.Drops, MinGranuleDrops, MaxGranuleDrops)
		}
	}
	if total < MinTotalDrops || total > MaxTotalDrops {
		add(ViolationTotalDrops, "total drops %d outside %d-%d", total, MinTotalDrops, MaxTotalDrops)
	}

	checkGraph := func(field string, points []CategoryDataPoint) {
		for _, p := range points {
			if p.Value < 0 || p.Value > MaxGraphValue {
				add(ViolationGraphValueOutOfRange, "%s axis %q has value %g outside 0-10", field, p.Axis, p.Value)
			}
		}
	}
	checkGraph("initialCategoryGraphData", r.InitialCategoryGraphData)
	checkGraph("adjustedCategoryGraphData", r.AdjustedCategoryGraphData)

	return out
}
