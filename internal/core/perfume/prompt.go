package perfume

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NotProvided 未填寫欄位在提示詞中的標記
const NotProvided = "제공되지 않음"

var actionLabels = map[ScentAction]string{
	ScentAdd:    "추가",
	ScentRemove: "제거",
}

// BuildCustomPerfumePrompt 根據回饋記錄產生調香提示詞（純函式）
func BuildCustomPerfumePrompt(feedback FeedbackRecord, catalog *Catalog) string {
	if catalog == nil {
		catalog = DefaultCatalog
	}

	perfumeID := feedback.PerfumeIDOrPlaceholder()
	perfumeName := feedback.PerfumeNameOrPlaceholder()
	retention := feedback.Retention()
	remainder := 100 - retention
	unknownScents := unknownRequestedScents(feedback.SpecificScents, catalog)

	var sb strings.Builder

	sb.WriteString("당신은 전문 조향사입니다. 아래 사용자 피드백을 바탕으로 시향용 테스트 레시피를 만들어 주세요.\n\n")

	sb.WriteString("## 원본 향수\n")
	fmt.Fprintf(&sb, "- 향수 ID: %s\n", perfumeID)
	fmt.Fprintf(&sb, "- 향수 이름: %s\n", perfumeName)
	fmt.Fprintf(&sb, "- 유지 비율: %d%%\n\n", retention)

	sb.WriteString("## 사용자 피드백\n")
	sb.WriteString("### 향조 선호도\n")
	writeCategoryPreferences(&sb, feedback.CategoryPreferences)
	sb.WriteString("### 사용자 특성\n")
	writeCharacteristics(&sb, feedback.UserCharacteristics)
	sb.WriteString("### 특정 향료 요청\n")
	writeSpecificScents(&sb, feedback.SpecificScents)
	sb.WriteString("### 메모\n")
	writeFreeText(&sb, feedback.Notes)
	sb.WriteString("### 인상\n")
	writeFreeText(&sb, feedback.Impression)
	sb.WriteString("### 원본 향수 향조 그래프 (0-10)\n")
	writeGraphData(&sb, feedback.InitialCategoryGraphData)
	sb.WriteString("\n")

	sb.WriteString("## 사용 가능한 향료 목록\n")
	sb.WriteString("아래 목록이 사용할 수 있는 유일한 향료입니다. id와 name은 목록에 적힌 그대로 사용하세요.\n")
	for _, e := range catalog.entries {
		fmt.Fprintf(&sb, "- %s: %s (%s)\n", e.ID, e.Name, e.MainCategory)
	}
	sb.WriteString("\n")

	sb.WriteString("## 필수 규칙\n")
	fmt.Fprintf(&sb, "1. testingRecipe.granules의 첫 번째 항목은 반드시 원본 향수(id \"%s\", name \"%s\")이며 ratio는 정확히 %d 이어야 합니다.\n", perfumeID, perfumeName, retention)
	fmt.Fprintf(&sb, "2. 첫 번째 항목을 제외한 나머지 granules의 ratio 합계는 정확히 %d (= 100 - %d) 이어야 합니다.\n", remainder, retention)
	fmt.Fprintf(&sb, "3. 모든 granules의 drops 합계는 %d 이상 %d 이하이고, 각 항목의 drops는 %d 이상 %d 이하의 정수입니다.\n", MinTotalDrops, MaxTotalDrops, MinGranuleDrops, MaxGranuleDrops)
	sb.WriteString("4. 첫 번째 항목을 제외한 모든 향료의 id와 name은 위 목록에서만 선택하세요. 새로운 향료를 만들거나 id/name을 바꾸지 마세요.\n")
	fmt.Fprintf(&sb, "5. retentionPercentage 필드는 %d 로 설정하세요.\n", retention)
	sb.WriteString("6. 이 레시피는 테스트용이므로 isFinalRecipe는 항상 false 입니다.\n")
	sb.WriteString("7. 사용자가 추가를 요청한 향료가 목록에 없으면 레시피에서 제외하고 contradictionWarning.message에 그 사실을 적으세요. 비슷한 향료를 임의로 만들어 대체하지 마세요.\n")
	sb.WriteString("8. 사용자 선호가 서로 모순되면 contradictionWarning.message에 설명하세요. 모순이 없으면 contradictionWarning은 null 입니다.\n")
	sb.WriteString("9. 그래프 값(value)은 0 이상 10 이하의 숫자입니다. initialCategoryGraphData는 위의 원본 향조 그래프를 그대로 사용하세요.\n")
	if len(unknownScents) > 0 {
		fmt.Fprintf(&sb, "\n주의: 다음 요청 향료는 목록에 없습니다: %s. 레시피에 넣지 말고 contradictionWarning.message에 표시하세요.\n", strings.Join(unknownScents, ", "))
	}
	sb.WriteString("\n")

	sb.WriteString("## 출력 형식\n")
	sb.WriteString("아래 스키마와 일치하는 JSON 객체 하나만 ```json 코드 블록 안에 출력하세요. JSON 바깥에는 어떤 설명도 쓰지 마세요.\n")
	fmt.Fprintf(&sb, "필수 필드: %s\n", strings.Join(RequiredFieldPaths(), ", "))
	sb.WriteString("```json\n")
	sb.WriteString(renderSchemaExample(perfumeID, perfumeName, retention))
	sb.WriteString("\n```\n")

	return sb.String()
}

func renderSchemaExample(perfumeID, perfumeName string, retention int) string {
	var sb strings.Builder
	writeSchemaExample(&sb, recipeSchema, 0)
	r := strings.NewReplacer(
		"<PERFUME_ID>", perfumeID,
		"<PERFUME_NAME>", perfumeName,
		"<RETENTION>", strconv.Itoa(retention),
	)
	return r.Replace(sb.String())
}

// unknownRequestedScents 回傳要求加入但不在目錄中的香料名稱
func unknownRequestedScents(scents []SpecificScent, catalog *Catalog) []string {
	var out []string
	for _, s := range scents {
		if s.Action != ScentAdd {
			continue
		}
		if _, ok := catalog.Lookup(strings.TrimSpace(s.Name)); !ok {
			out = append(out, s.Name)
		}
	}
	return out
}

func writeCategoryPreferences(sb *strings.Builder, prefs map[string]ChangeDirection) {
	if len(prefs) == 0 {
		sb.WriteString("- " + NotProvided + "\n")
		return
	}
	for _, k := range sortedKeys(prefs) {
		fmt.Fprintf(sb, "- %s: %s\n", k, prefs[k])
	}
}

func writeCharacteristics(sb *strings.Builder, chars map[string]string) {
	if len(chars) == 0 {
		sb.WriteString("- " + NotProvided + "\n")
		return
	}
	for _, k := range sortedKeys(chars) {
		fmt.Fprintf(sb, "- %s: %s\n", k, chars[k])
	}
}

func writeSpecificScents(sb *strings.Builder, scents []SpecificScent) {
	if len(scents) == 0 {
		sb.WriteString("- " + NotProvided + "\n")
		return
	}
	for _, s := range scents {
		label, ok := actionLabels[s.Action]
		if !ok {
			label = string(s.Action)
		}
		desc := s.Description
		if desc == "" {
			desc = NotProvided
		}
		fmt.Fprintf(sb, "- %s: %s (설명: %s)\n", label, s.Name, desc)
	}
}

func writeFreeText(sb *strings.Builder, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		text = NotProvided
	}
	sb.WriteString(text + "\n")
}

func writeGraphData(sb *strings.Builder, points []CategoryDataPoint) {
	if len(points) == 0 {
		sb.WriteString("- " + NotProvided + "\n")
		return
	}
	for _, p := range points {
		fmt.Fprintf(sb, "- %s: %s\n", p.Axis, strconv.FormatFloat(p.Value, 'f', -1, 64))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
