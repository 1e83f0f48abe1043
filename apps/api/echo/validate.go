package echoapi

import "github.com/uiaee/portal/core"

// validate runs the struct rules of request bodies that carry no cleaning of their own.
func validate(data interface{}) error {
	return core.Validate.Struct(data)
}
