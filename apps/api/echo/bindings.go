package echoapi

import (
	"io"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/payment"
	"github.com/uiaee/portal/core/student"
)

func bindPaging(ctx echo.Context) core.Paging {
	var p core.Paging
	p.Page, _ = strconv.Atoi(ctx.QueryParam("page"))
	p.PerPage, _ = strconv.Atoi(ctx.QueryParam("per_page"))
	p.Clean()
	return p
}

// bindBool reads an optional boolean query param; anything unparsable counts as absent.
func bindBool(ctx echo.Context, name string) *bool {
	v, err := strconv.ParseBool(ctx.QueryParam(name))
	if err != nil {
		return nil
	}
	return &v
}

func bindID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id < 1 {
		return 0, errInvalidID
	}
	return id, nil
}

func bindPaymentFilter(ctx echo.Context) payment.QueryFilter {
	return payment.QueryFilter{
		Status: payment.Status(strings.ToLower(ctx.QueryParam("status"))),
		Search: ctx.QueryParam("search"),
	}
}

func bindStudentFilter(ctx echo.Context) student.QueryFilter {
	return student.QueryFilter{
		Search:   ctx.QueryParam("search"),
		IsActive: bindBool(ctx, "is_active"),
	}
}

// bindNewPayment reads the multipart payment form. An unparsable total is left at zero so
// the field rules report it.
func bindNewPayment(ctx echo.Context) (payment.NewPayment, error) {
	np := payment.NewPayment{
		FullName:       ctx.FormValue("fullName"),
		MatricNumber:   ctx.FormValue("matricNumber"),
		Level:          ctx.FormValue("level"),
		Email:          ctx.FormValue("email"),
		PhoneNumber:    ctx.FormValue("phoneNumber"),
		TransactionRef: ctx.FormValue("transactionRef"),
		PaymentDate:    ctx.FormValue("paymentDate"),
		PaymentItems:   ctx.FormValue("paymentItems"),
	}
	np.TotalAmount, _ = strconv.Atoi(strings.TrimSpace(ctx.FormValue("totalAmount")))

	fh, err := ctx.FormFile("receipt")
	switch {
	case err == http.ErrMissingFile:
		return np, nil
	case errors.As(err, new(*echo.HTTPError)): // body limit
		return np, err
	case err != nil:
		// not multipart, or a body the multipart reader cannot parse
		return np, core.NewValidationError(
			errors.Wrap(err, "reading receipt"),
			core.FieldError{Field: "receipt", Error: payment.ErrReceiptMissing.Error()},
		)
	}
	f, err := fh.Open()
	if err != nil {
		return np, errors.Wrap(err, "opening receipt")
	}
	defer f.Close()

	// one byte over the limit is enough to reject the file
	content, err := ioutil.ReadAll(io.LimitReader(f, payment.MaxReceiptSize+1))
	if err != nil {
		return np, errors.Wrap(err, "reading receipt")
	}
	np.Receipt = &payment.Receipt{Filename: fh.Filename, Content: content}
	return np, nil
}
