package form

import (
	"strings"

	"github.com/uiaee/portal/core"
)

// Check validates a single value against its field rule.
// Empty optional fields are valid; empty required fields fail with the field message.
func Check(f Field, value string) (valid bool, message string) {
	value = strings.TrimSpace(value)
	if value == "" {
		if f.Required {
			return false, f.failMessage()
		}
		return true, ""
	}
	if f.Tag == "" {
		return true, ""
	}
	if err := core.Validate.Var(value, f.Tag); err != nil {
		return false, f.failMessage()
	}
	return true, ""
}

// CheckAll validates every field of the descriptor and returns the failing ones by ID.
// Values missing from the map fail with a *MissingFieldError.
func CheckAll(d Descriptor, values map[string]string) (map[string]string, error) {
	errs := make(map[string]string)
	for _, f := range d.Fields {
		v, ok := values[f.ID]
		if !ok {
			return nil, &MissingFieldError{Form: d.Name, ID: f.ID}
		}
		if valid, msg := Check(f, v); !valid {
			errs[f.ID] = msg
		}
	}
	return errs, nil
}
