package perfume

const (
	// DefaultRetention 未指定保留比例時使用
	DefaultRetention = 50
	// PlaceholderPerfumeID 未指定原始香水 id 時使用
	PlaceholderPerfumeID = "UNKNOWN_PERFUME"
	// PlaceholderPerfumeName 未指定原始香水名稱時使用
	PlaceholderPerfumeName = "알 수 없는 향수"

	MinTotalDrops   = 5
	MaxTotalDrops   = 15
	MinGranuleDrops = 1
	MaxGranuleDrops = 10
	MaxGraphValue   = 10.0
)

// ChangeDirection 香調調整方向
type ChangeDirection string

const (
	ChangeIncrease ChangeDirection = "increase"
	ChangeDecrease ChangeDirection = "decrease"
	ChangeMaintain ChangeDirection = "maintain"
)

// ScentAction 指定香料的加入或移除
type ScentAction string

const (
	ScentAdd    ScentAction = "add"
	ScentRemove ScentAction = "remove"
)

// CategoryDataPoint 雷達圖上的一個軸值（0–10）
type CategoryDataPoint struct {
	Axis  string  `json:"axis" validate:"required"`
	Value float64 `json:"value" validate:"gte=0,lte=10"`
}

// SpecificScent 使用者指定要加入或移除的香料
type SpecificScent struct {
	Action      ScentAction `json:"action" validate:"required,oneof=add remove"`
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description,omitempty"`
}

// FeedbackRecord 使用者對推薦香水的一輪回饋
type FeedbackRecord struct {
	PerfumeID                string                     `json:"perfumeId"`
	OriginalPerfumeName      string                     `json:"originalPerfumeName"`
	RetentionPercentage      *int                       `json:"retentionPercentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	CategoryPreferences      map[string]ChangeDirection `json:"categoryPreferences,omitempty" validate:"dive,keys,required,endkeys,oneof=increase decrease maintain"`
	UserCharacteristics      map[string]string          `json:"userCharacteristics,omitempty" validate:"dive,keys,required,endkeys"`
	SpecificScents           []SpecificScent            `json:"specificScents,omitempty" validate:"dive"`
	Notes                    string                     `json:"notes,omitempty"`
	Impression               string                     `json:"impression,omitempty"`
	InitialCategoryGraphData []CategoryDataPoint        `json:"initialCategoryGraphData,omitempty" validate:"dive"`
}

// Retention 回傳保留比例，未指定時為 DefaultRetention
func (f FeedbackRecord) Retention() int {
	if f.RetentionPercentage == nil {
		return DefaultRetention
	}
	return *f.RetentionPercentage
}

// PerfumeIDOrPlaceholder 回傳原始香水 id 或佔位值
func (f FeedbackRecord) PerfumeIDOrPlaceholder() string {
	if f.PerfumeID == "" {
		return PlaceholderPerfumeID
	}
	return f.PerfumeID
}

// PerfumeNameOrPlaceholder 回傳原始香水名稱或佔位值
func (f FeedbackRecord) PerfumeNameOrPlaceholder() string {
	if f.OriginalPerfumeName == "" {
		return PlaceholderPerfumeName
	}
	return f.OriginalPerfumeName
}

// CategoryChange 單一香調的調整說明
type CategoryChange struct {
	Category string          `json:"category"`
	Change   ChangeDirection `json:"change"`
	Reason   string          `json:"reason"`
}

// Granule 測試配方中的一個香料使用項目
type Granule struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MainCategory string `json:"mainCategory"`
	Drops        int    `json:"drops"`
	Ratio        int    `json:"ratio"`
	Reason       string `json:"reason"`
}

// InstructionStep 調香步驟
type InstructionStep struct {
	Description string `json:"description,omitempty"`
	Details     string `json:"details,omitempty"`
}

// Instructions 三個步驟加一條注意事項
type Instructions struct {
	Step1   InstructionStep `json:"step1"`
	Step2   InstructionStep `json:"step2"`
	Step3   InstructionStep `json:"step3"`
	Caution string          `json:"caution"`
}

// TestingRecipe 可試用的測試配方
type TestingRecipe struct {
	Purpose      string       `json:"purpose"`
	Granules     []Granule    `json:"granules"`
	Instructions Instructions `json:"instructions"`
}

// ContradictionWarning 偏好互相矛盾或與目錄衝突時的提示
type ContradictionWarning struct {
	Message string `json:"message"`
}

// RecipeSuggestion 經驗證的配方建議
type RecipeSuggestion struct {
	PerfumeID                 string                `json:"perfumeId"`
	OriginalPerfumeName       string                `json:"originalPerfumeName"`
	RetentionPercentage       int                   `json:"retentionPercentage"`
	OverallExplanation        string                `json:"overallExplanation"`
	InitialCategoryGraphData  []CategoryDataPoint   `json:"initialCategoryGraphData"`
	AdjustedCategoryGraphData []CategoryDataPoint   `json:"adjustedCategoryGraphData"`
	CategoryChanges           []CategoryChange      `json:"categoryChanges"`
	TestingRecipe             TestingRecipe         `json:"testingRecipe"`
	IsFinalRecipe             bool                  `json:"isFinalRecipe"`
	ContradictionWarning      *ContradictionWarning `json:"contradictionWarning"`
}
