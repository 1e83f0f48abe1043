package admin

import (
	"github.com/go-playground/validator/v10"

	"github.com/uiaee/portal/core"
)

func init() {
	core.Validate.RegisterStructValidation(adminStructValidation, NewAdmin{})
}

func adminStructValidation(sl validator.StructLevel) {
	if na, ok := sl.Current().Interface().(NewAdmin); ok && na.Password != "" {
		core.ReportPassword(sl, "password", na.Password, na.Name, na.Username)
	}
}
