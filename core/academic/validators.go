package academic

import (
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/uiaee/portal/core"
)

var (
	sessionTag   = "session"
	sessionText  = "{0} must look like 2024/2025"
	sessionRegex = regexp.MustCompile(`^(\d{4})/(\d{4})$`)
)

func init() {
	_ = core.Validate.RegisterValidation(sessionTag, sessionValidation)
	core.RegisterCustomTranslation(sessionTag, sessionText)
}

// sessionValidation accepts "YYYY/YYYY" where the second year follows the first.
func sessionValidation(fl validator.FieldLevel) bool {
	m := sessionRegex.FindStringSubmatch(fl.Field().String())
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return end == start+1
}
