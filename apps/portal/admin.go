package main

import (
	"context"
	"fmt"

	"github.com/uiaee/portal/client"
)

func (cli *commandLine) adminFlags(name string, args []string) (*client.Client, int, *bool, error) {
	fs := cli.flagSet(name)
	server := fs.String("server", cli.serverURL, "The portal's base URL.")
	token := fs.String("token", "", "An admin JWT, as returned by /admin/login.")
	id := fs.Int("id", 0, "The record ID.")
	active := fs.Bool("active", false, "Approve (true) or reject (false) the account.")
	if err := fs.Parse(args); err != nil {
		return nil, 0, nil, err
	}
	if *token == "" || *id <= 0 {
		fs.Usage()
		return nil, 0, nil, errHelp
	}
	return client.New(*server, client.WithToken(*token)), *id, active, nil
}

func (cli *commandLine) printResult(res client.Result) error {
	switch r := res.(type) {
	case client.Ok:
		fmt.Fprintln(cli.out, r.Message)
	case client.Err:
		fmt.Fprintln(cli.out, r.Reason)
		return errRequestFailed
	}
	return nil
}

func (cli *commandLine) toggleStudent(ctx context.Context, args []string) error {
	c, id, active, err := cli.adminFlags("toggle-student", args)
	if err != nil {
		return err
	}
	return cli.printResult(c.ToggleStudentStatus(ctx, id, *active))
}

func (cli *commandLine) deleteResult(ctx context.Context, args []string) error {
	c, id, _, err := cli.adminFlags("delete-result", args)
	if err != nil {
		return err
	}
	return cli.printResult(c.DeleteResult(ctx, id))
}
