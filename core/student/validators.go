package student

import (
	"github.com/go-playground/validator/v10"

	"github.com/uiaee/portal/core"
)

func init() {
	core.Validate.RegisterStructValidation(studentStructValidation, NewStudent{})
}

// studentStructValidation applies the password policy against the registration details.
func studentStructValidation(sl validator.StructLevel) {
	if ns, ok := sl.Current().Interface().(NewStudent); ok && ns.Password != "" {
		core.ReportPassword(sl, "password", ns.Password, ns.Name, ns.MatricNumber, ns.Email)
	}
}
