package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/uiaee/portal/core/academic"
	"github.com/uiaee/portal/core/admin"
)

type academicApi struct {
	svc      *academic.Service
	adminSvc *admin.Service
}

func registerAcademicAPI(e *echo.Echo, jwt echo.MiddlewareFunc, svc *academic.Service, adminSvc *admin.Service) {
	api := academicApi{svc: svc, adminSvc: adminSvc}

	e.GET("/api/courses/search", api.searchCourses)

	g := e.Group("/admin", jwt, adminMiddleware(admin.RoleExamOfficer))
	g.GET("/sessions", api.querySessions)
	g.POST("/sessions", api.createSession, adminMiddleware(admin.RoleHOD))
	g.POST("/results", api.uploadResult)
	g.POST("/delete-result", api.deleteResult)
}

// Handlers

func (api *academicApi) searchCourses(ctx echo.Context) error {
	courses, err := api.svc.SearchCourses(ctx.Request().Context(), ctx.QueryParam("q"))
	if err != nil {
		return errors.Wrap(err, "searching courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *academicApi) querySessions(ctx echo.Context) error {
	sessions, err := api.svc.Sessions(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *academicApi) createSession(ctx echo.Context) error {
	var data academic.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	s, err := api.svc.CreateSession(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	return ctx.JSON(http.StatusCreated, s)
}

type UploadResultResponse struct {
	SuccessResponse
	Result academic.Result `json:"result"`
}

func (api *academicApi) uploadResult(ctx echo.Context) error {
	var data academic.NewResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResult")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	a, err := getContextAdmin(ctx, api.adminSvc)
	if err != nil {
		return errors.Wrap(err, "getting context admin")
	}
	r, err := api.svc.UploadResult(ctx.Request().Context(), data, a.ID)
	if err != nil {
		return errors.Wrap(err, "uploading result")
	}
	return ctx.JSON(http.StatusCreated, UploadResultResponse{
		SuccessResponse: SuccessResponse{Success: true, Message: "Result uploaded successfully!"},
		Result:          r,
	})
}

func (api *academicApi) deleteResult(ctx echo.Context) error {
	var data academic.DeleteResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeleteResult")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.DeleteResult(ctx.Request().Context(), data.ResultID); err != nil {
		return errors.Wrap(err, "deleting result")
	}
	return success(ctx, http.StatusOK, "Result deleted successfully!")
}
