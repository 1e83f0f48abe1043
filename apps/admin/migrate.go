package main

import (
	"context"

	"github.com/uiaee/portal/storage/database"
)

var gooseRunFunc = database.RunGoose // mockable

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	return gooseRunFunc(ctx, args[0], cli.db, args[1:]...)
}
