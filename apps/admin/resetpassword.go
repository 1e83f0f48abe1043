package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) resetPassword(ctx context.Context, uname, pwd string) error {
	if err := cli.adminSvc.ResetPassword(ctx, uname, pwd); err != nil {
		return err
	}
	fmt.Printf("password of %q updated\n", uname)
	return nil
}
