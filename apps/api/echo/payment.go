package echoapi

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/admin"
	"github.com/uiaee/portal/core/payment"
	"github.com/uiaee/portal/core/student"
)

const (
	paymentSubmittedMsg = "Payment information submitted successfully!"
	matricMismatchMsg   = "Matric number does not match your account"
)

type paymentApi struct {
	svc        *payment.Service
	studentSvc *student.Service
}

func registerPaymentAPI(e *echo.Echo, jwt echo.MiddlewareFunc, svc *payment.Service, studentSvc *student.Service) {
	api := paymentApi{svc: svc, studentSvc: studentSvc}

	// un-authed endpoints
	e.POST("/submit-payment", api.submit)
	e.GET("/api/payments/catalog", api.catalog)
	e.POST("/api/payments/quote", api.quote)

	// logged-in students
	e.POST("/student/submit-payment", api.studentSubmit, jwt, studentMiddleware)

	// admin endpoints
	g := e.Group("/admin/payments", jwt, adminMiddleware(admin.RoleExamOfficer))
	g.GET("", api.query)
	g.GET("/export", api.export)
	g.GET("/:id", api.retrieve)
	g.GET("/:id/receipt", api.receipt)
	g.GET("/:id/receipt/thumbnail", api.thumbnail)
	g.PUT("/:id", api.update, adminMiddleware(admin.RoleHOD))
	g.POST("/:id/status", api.updateStatus, adminMiddleware(admin.RoleHOD))
	g.DELETE("/:id", api.destroy, adminMiddleware(admin.RoleHOD))
}

// SubmitPaymentResponse is the body of a successful submission.
type SubmitPaymentResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	PaymentID string `json:"payment_id"`
}

// Handlers

func (api *paymentApi) submit(ctx echo.Context) error {
	data, err := bindNewPayment(ctx)
	if err != nil {
		return err
	}
	return api.createPayment(ctx, data)
}

// studentSubmit fills the blanks of the form from the student's account; the matric number must be theirs.
func (api *paymentApi) studentSubmit(ctx echo.Context) error {
	s, err := getContextStudent(ctx, api.studentSvc)
	if err != nil {
		return err
	}
	data, err := bindNewPayment(ctx)
	if err != nil {
		return err
	}

	switch matric := core.CleanString(data.MatricNumber); matric {
	case "":
		data.MatricNumber = s.MatricNumber
	case s.MatricNumber:
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "matricNumber", Error: matricMismatchMsg})
	}
	if core.CleanString(data.FullName) == "" {
		data.FullName = s.Name
	}
	if core.CleanString(data.Email) == "" {
		data.Email = s.Email
	}
	if core.CleanString(data.PhoneNumber) == "" {
		data.PhoneNumber = s.Phone
	}
	if core.CleanString(data.Level) == "" && s.Level != 0 {
		data.Level = strconv.Itoa(s.Level)
	}
	return api.createPayment(ctx, data)
}

func (api *paymentApi) createPayment(ctx echo.Context, data payment.NewPayment) error {
	if err := data.Validate(api.svc.Catalog()); err != nil {
		return err
	}

	p, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting payment")
	}
	return ctx.JSON(http.StatusCreated, SubmitPaymentResponse{
		Success:   true,
		Message:   paymentSubmittedMsg,
		PaymentID: strconv.Itoa(p.ID),
	})
}

// catalog renders the payment item panel for ?level= with the default selection.
func (api *paymentApi) catalog(ctx echo.Context) error {
	calc := payment.NewCalculator(api.svc.Catalog())
	if level, err := strconv.Atoi(ctx.QueryParam("level")); err == nil {
		calc.SetLevel(level)
	}
	return ctx.JSON(http.StatusOK, calc.Render())
}

type QuoteRequest struct {
	Level int      `json:"level" validate:"omitempty,level"`
	Items []string `json:"items" validate:"required,min=1,dive,required"`
}

func (api *paymentApi) quote(ctx echo.Context) error {
	var data QuoteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuoteRequest")
	}
	if err := validate(&data); err != nil {
		return err
	}

	summary, err := api.svc.Quote(data.Level, data.Items)
	if err != nil {
		if errors.Cause(err) == payment.ErrUnknownItem || errors.Cause(err) == payment.ErrItemDisabled {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return errors.Wrap(err, "quoting payment")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *paymentApi) query(ctx echo.Context) error {
	page, err := api.svc.List(ctx.Request().Context(), bindPaymentFilter(ctx), bindPaging(ctx))
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	p, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting payment")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *paymentApi) update(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	var data payment.UpdatePayment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePayment")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.Edit(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "editing payment")
	}
	return ctx.JSON(http.StatusOK, p)
}

type StatusResponse struct {
	SuccessResponse
	Payment payment.Payment `json:"payment"`
}

func (api *paymentApi) updateStatus(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	var data payment.UpdateStatus
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.UpdateStatus(ctx.Request().Context(), id, data.Status)
	if err != nil {
		return errors.Wrap(err, "updating payment status")
	}
	return ctx.JSON(http.StatusOK, StatusResponse{
		SuccessResponse: SuccessResponse{Success: true, Message: "Payment status updated to " + string(p.Status)},
		Payment:         p,
	})
}

func (api *paymentApi) destroy(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting payment")
	}
	return success(ctx, http.StatusOK, "Payment deleted successfully!")
}

func (api *paymentApi) receipt(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	rc, p, err := api.svc.Receipt(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "opening receipt")
	}
	defer rc.Close()

	content, err := ioutil.ReadAll(rc)
	if err != nil {
		return errors.Wrap(err, "reading receipt")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", p.ReceiptFilename))
	return ctx.Blob(http.StatusOK, mimetype.Detect(content).String(), content)
}

func (api *paymentApi) thumbnail(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	rc, err := api.svc.ReceiptThumbnail(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "opening receipt thumbnail")
	}
	defer rc.Close()
	return ctx.Stream(http.StatusOK, "image/jpeg", rc)
}

func (api *paymentApi) export(ctx echo.Context) error {
	var buf bytes.Buffer
	if err := api.svc.ExportCSV(ctx.Request().Context(), &buf); err != nil {
		return errors.Wrap(err, "exporting payments")
	}
	return csvAttachment(ctx, "payments", buf.Bytes())
}

func csvAttachment(ctx echo.Context, name string, content []byte) error {
	filename := fmt.Sprintf("%s_%s.csv", name, time.Now().UTC().Format("20060102_150405"))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", content)
}
