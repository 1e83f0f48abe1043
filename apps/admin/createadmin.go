package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/admin"
)

var errPasswordMismatch = errors.New("passwords do not match")

func (cli *commandLine) createAdmin(ctx context.Context, name, uname, role, pwd string) error {
	na := admin.NewAdmin{
		Name:            name,
		Username:        uname,
		Role:            role,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := na.Validate(); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			return errors.New(vErrs[0].Translate(core.Translator))
		}
		return err
	}
	a, err := cli.adminSvc.Create(ctx, na)
	if err != nil {
		return err
	}
	fmt.Printf("admin %q created with role %s\n", a.Username, a.Role)
	return nil
}
