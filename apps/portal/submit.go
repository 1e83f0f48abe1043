package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/uiaee/portal/client"
	"github.com/uiaee/portal/core/form"
	"github.com/uiaee/portal/core/payment"
)

func (cli *commandLine) submit(ctx context.Context, args []string) error {
	fs := cli.flagSet("submit")
	server := fs.String("server", cli.serverURL, "The portal's base URL.")
	name := fs.String("name", "", "Full name.")
	matric := fs.String("matric", "", "6-digit matric number.")
	level := fs.String("level", "", "Level (100..500).")
	email := fs.String("email", "", "Email address.")
	phone := fs.String("phone", "", "Nigerian phone number.")
	ref := fs.String("ref", "", "Transaction reference (optional).")
	date := fs.String("date", "", "Payment date, YYYY-MM-DD (optional).")
	receiptPath := fs.String("receipt", "", "Path to the receipt (JPG, PNG or PDF, 5MB max).")
	items := fs.String("items", "", "Comma-separated item IDs; the default items when empty.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f := form.New(form.PaymentForm)
	err := f.Bind(map[string]string{
		form.FieldFullName:       *name,
		form.FieldMatricNumber:   *matric,
		form.FieldLevel:          *level,
		form.FieldEmail:          *email,
		form.FieldPhoneNumber:    form.FormatPhone(*phone),
		form.FieldTransactionRef: *ref,
		form.FieldPaymentDate:    *date,
		form.FieldReceipt:        "",
	})
	if err != nil {
		return err
	}

	calc := payment.NewCalculator(payment.DefaultCatalog)
	lvl, _ := strconv.Atoi(*level)
	calc.SetLevel(lvl)
	if *items != "" {
		if err = calc.Select(strings.Split(*items, ",")...); err != nil {
			return err
		}
	}

	var receipt payment.ReceiptInput
	if *receiptPath != "" {
		content, err := readFileFunc(*receiptPath)
		if err != nil {
			return err
		}
		if _, err = receipt.Change([]payment.Receipt{{Filename: filepath.Base(*receiptPath), Content: content}}); err != nil {
			return err
		}
	}

	sub := client.NewSubmitter(client.New(*server), f, calc, &receipt)
	res, err := sub.Submit(ctx)
	if fe, ok := err.(*client.FormError); ok {
		cli.printFieldErrors(fe.Fields)
		return errInvalidForm
	}
	if err != nil {
		return err
	}
	if b := sub.Banner(); b != nil {
		fmt.Fprintln(cli.out, b.Message)
	}
	if _, ok := res.(client.Err); ok {
		return errRequestFailed
	}
	return nil
}

func (cli *commandLine) printFieldErrors(fields map[string]string) {
	ids := make([]string, 0, len(fields))
	for id := range fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(cli.out, "%s: %s\n", id, fields[id])
	}
}
