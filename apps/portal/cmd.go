package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/uiaee/portal/core"
)

var (
	readFileFunc = os.ReadFile // mockable

	errHelp          = errors.New("help provided")
	errInvalidForm   = errors.New("the form has invalid fields")
	errRequestFailed = errors.New("the server rejected the request")
)

type commandLine struct {
	out       io.Writer
	serverURL string
}

func newCommandLine(out io.Writer) *commandLine {
	return &commandLine{out: out, serverURL: core.Conf.SiteBaseURL}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  quote -level LEVEL [ITEM_ID...] - price a selection of payment items")
	fmt.Fprintln(cli.out, "  grade -level LEVEL SCORE... - letter grade and points of each score")
	fmt.Fprintln(cli.out, "  level -matric MATRIC -session SESSION - infer a student's level in a session")
	fmt.Fprintln(cli.out, "  submit -name NAME -matric MATRIC -level LEVEL -email EMAIL -phone PHONE -receipt FILE [-items IDS] - submit a payment")
	fmt.Fprintln(cli.out, "  toggle-student -token TOKEN -id ID [-active] - approve or reject a student account")
	fmt.Fprintln(cli.out, "  delete-result -token TOKEN -id ID - delete an uploaded result")
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "quote":
		return cli.quote(args[2:])
	case "grade":
		return cli.grade(args[2:])
	case "level":
		return cli.level(args[2:])
	case "submit":
		return cli.submit(ctx, args[2:])
	case "toggle-student":
		return cli.toggleStudent(ctx, args[2:])
	case "delete-result":
		return cli.deleteResult(ctx, args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
