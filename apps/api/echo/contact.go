package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/uiaee/portal/core/admin"
	"github.com/uiaee/portal/core/contact"
)

type contactApi struct {
	svc *contact.Service
}

func registerContactAPI(e *echo.Echo, jwt echo.MiddlewareFunc, svc *contact.Service) {
	api := contactApi{svc: svc}

	e.POST("/contact", api.create)

	g := e.Group("/admin/contacts", jwt, adminMiddleware(admin.RoleExamOfficer))
	g.GET("", api.query)
	g.GET("/export", api.export)
	g.GET("/:id", api.retrieve)
	g.DELETE("/:id", api.destroy, adminMiddleware(admin.RoleHOD))
}

// Handlers

func (api *contactApi) create(ctx echo.Context) error {
	var data contact.NewContact
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewContact")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if _, err := api.svc.Create(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "creating contact")
	}
	return success(ctx, http.StatusCreated, contact.SuccessMessage)
}

func (api *contactApi) query(ctx echo.Context) error {
	page, err := api.svc.List(ctx.Request().Context(), bindPaging(ctx))
	if err != nil {
		return errors.Wrap(err, "querying contacts")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *contactApi) retrieve(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting contact")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *contactApi) destroy(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting contact")
	}
	return success(ctx, http.StatusOK, "Contact message deleted successfully!")
}

func (api *contactApi) export(ctx echo.Context) error {
	var buf bytes.Buffer
	if err := api.svc.ExportCSV(ctx.Request().Context(), &buf); err != nil {
		return errors.Wrap(err, "exporting contacts")
	}
	return csvAttachment(ctx, "contacts", buf.Bytes())
}
