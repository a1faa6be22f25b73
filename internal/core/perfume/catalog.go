package perfume

// ScentCategory 香調分類
type ScentCategory string

const (
	CategoryCitrus ScentCategory = "시트러스"
	CategoryFloral ScentCategory = "플로럴"
	CategoryWoody  ScentCategory = "우디"
	CategoryMusky  ScentCategory = "머스크"
	CategoryFruity ScentCategory = "프루티"
	CategorySpicy  ScentCategory = "스파이시"
)

// Categories 圖表軸的固定順序
var Categories = []ScentCategory{
	CategoryCitrus,
	CategoryFloral,
	CategoryWoody,
	CategoryMusky,
	CategoryFruity,
	CategorySpicy,
}

// Ingredient 香料目錄條目
type Ingredient struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	MainCategory ScentCategory `json:"mainCategory"`
}

// Catalog 不可變的香料目錄
type Catalog struct {
	entries []Ingredient
	byID    map[string]Ingredient
	byName  map[string]Ingredient
}

// NewCatalog 建立目錄；id 或名稱重複時 panic（僅在啟動時呼叫）
func NewCatalog(entries []Ingredient) *Catalog {
	c := &Catalog{
		entries: make([]Ingredient, len(entries)),
		byID:    make(map[string]Ingredient, len(entries)),
		byName:  make(map[string]Ingredient, len(entries)),
	}
	copy(c.entries, entries)
	for _, e := range c.entries {
		if _, dup := c.byID[e.ID]; dup {
			panic("perfume: duplicate ingredient id " + e.ID)
		}
		if _, dup := c.byName[e.Name]; dup {
			panic("perfume: duplicate ingredient name " + e.Name)
		}
		c.byID[e.ID] = e
		c.byName[e.Name] = e
	}
	return c
}

// Entries 回傳目錄副本，呼叫端修改不影響目錄
func (c *Catalog) Entries() []Ingredient {
	out := make([]Ingredient, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len 目錄條目數
func (c *Catalog) Len() int {
	return len(c.entries)
}

// ByID 依 id 查詢
func (c *Catalog) ByID(id string) (Ingredient, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// ByName 依顯示名稱查詢
func (c *Catalog) ByName(name string) (Ingredient, bool) {
	e, ok := c.byName[name]
	return e, ok
}

// Lookup 以 id 或名稱查詢
func (c *Catalog) Lookup(idOrName string) (Ingredient, bool) {
	if e, ok := c.byID[idOrName]; ok {
		return e, true
	}
	return c.ByName(idOrName)
}

// Contains id 與名稱必須同時對應同一條目
func (c *Catalog) Contains(id, name string) bool {
	e, ok := c.byID[id]
	return ok && e.Name == name
}

// DefaultCatalog 服務使用的香料目錄
var DefaultCatalog = NewCatalog([]Ingredient{
	{ID: "BK-2201281", Name: "블랙베리", MainCategory: CategoryFruity},
	{ID: "MG-2201282", Name: "망고", MainCategory: CategoryFruity},
	{ID: "PC-2201283", Name: "복숭아", MainCategory: CategoryFruity},
	{ID: "AP-2201284", Name: "사과", MainCategory: CategoryFruity},
	{ID: "LM-2201285", Name: "레몬", MainCategory: CategoryCitrus},
	{ID: "BG-2201286", Name: "베르가못", MainCategory: CategoryCitrus},
	{ID: "GF-2201287", Name: "자몽", MainCategory: CategoryCitrus},
	{ID: "MD-2201288", Name: "만다린", MainCategory: CategoryCitrus},
	{ID: "RS-2201289", Name: "장미", MainCategory: CategoryFloral},
	{ID: "JS-2201290", Name: "자스민", MainCategory: CategoryFloral},
	{ID: "LV-2201291", Name: "라벤더", MainCategory: CategoryFloral},
	{ID: "FR-2201292", Name: "프리지아", MainCategory: CategoryFloral},
	{ID: "LL-2201293", Name: "릴리", MainCategory: CategoryFloral},
	{ID: "SD-2201294", Name: "샌달우드", MainCategory: CategoryWoody},
	{ID: "CD-2201295", Name: "시더우드", MainCategory: CategoryWoody},
	{ID: "VT-2201296", Name: "베티버", MainCategory: CategoryWoody},
	{ID: "PT-2201297", Name: "패출리", MainCategory: CategoryWoody},
	{ID: "WM-2201298", Name: "화이트머스크", MainCategory: CategoryMusky},
	{ID: "AM-2201299", Name: "앰버", MainCategory: CategoryMusky},
	{ID: "VN-2201300", Name: "바닐라", MainCategory: CategoryMusky},
	{ID: "PP-2201301", Name: "핑크페퍼", MainCategory: CategorySpicy},
	{ID: "CN-2201302", Name: "시나몬", MainCategory: CategorySpicy},
	{ID: "GN-2201303", Name: "진저", MainCategory: CategorySpicy},
	{ID: "CV-2201304", Name: "카다멈", MainCategory: CategorySpicy},
})
