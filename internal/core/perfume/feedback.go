package perfume

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"perfume-generator/internal/pkg/common"

	"github.com/go-playground/validator/v10"
)

var feedbackValidate = newFeedbackValidator()

func newFeedbackValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 錯誤訊息使用 JSON 欄位名稱
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateFeedback 驗證回饋記錄，回傳 *common.ValidationError
func ValidateFeedback(f FeedbackRecord) error {
	err := feedbackValidate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.NewValidationError(err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "FeedbackRecord.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return common.NewValidationError("invalid feedback: " + strings.Join(msgs, "; "))
}
