package main

import (
	"fmt"

	"github.com/uiaee/portal/core/payment"
)

func (cli *commandLine) quote(args []string) error {
	fs := cli.flagSet("quote")
	level := fs.Int("level", 0, "The student's level (100..500).")
	if err := fs.Parse(args); err != nil {
		return err
	}

	calc := payment.NewCalculator(payment.DefaultCatalog)
	calc.SetLevel(*level)
	if fs.NArg() > 0 {
		if err := calc.Select(fs.Args()...); err != nil {
			return err
		}
	}

	s := calc.Summary()
	if s.Placeholder != "" {
		fmt.Fprintln(cli.out, s.Placeholder)
	}
	for _, l := range s.Lines {
		fmt.Fprintf(cli.out, "%-30s %10s\n", l.Name, l.Formatted)
	}
	fmt.Fprintf(cli.out, "%-30s %10s\n", "Total", s.TotalFormatted)
	return nil
}
