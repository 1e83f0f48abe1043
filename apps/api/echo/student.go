package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/uiaee/portal/core/academic"
	"github.com/uiaee/portal/core/student"
)

const registeredMsg = "Registration successful! Please wait for admin approval before logging in."

type studentApi struct {
	svc         *student.Service
	academicSvc *academic.Service
}

func registerStudentAPI(e *echo.Echo, jwt echo.MiddlewareFunc, svc *student.Service, academicSvc *academic.Service) {
	api := studentApi{svc: svc, academicSvc: academicSvc}

	g := e.Group("/student")

	// un-authed endpoints
	g.POST("/register", api.register)
	g.POST("/login", api.login)

	// authed endpoints
	ag := g.Group("", jwt, studentMiddleware)
	ag.GET("/dashboard", api.dashboard)
}

type (
	RegisterResponse struct {
		SuccessResponse
		Student student.Student `json:"student"`
	}

	StudentLoginResponse struct {
		Token   string          `json:"token"`
		Student student.Student `json:"student"`
	}

	StudentDashboard struct {
		Student student.Student `json:"student"`
		academic.Dashboard
	}
)

// Handlers

func (api *studentApi) register(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	s, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering student")
	}
	return ctx.JSON(http.StatusCreated, RegisterResponse{
		SuccessResponse: SuccessResponse{Success: true, Message: registeredMsg},
		Student:         s,
	})
}

func (api *studentApi) login(ctx echo.Context) error {
	var data student.LoginCredentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginCredentials")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	s, err := api.svc.Login(ctx.Request().Context(), data)
	if err != nil {
		switch errors.Cause(err) {
		case student.ErrInvalidCredentials:
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		case student.ErrInactive:
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return errors.Wrap(err, "authenticating student")
	}
	token, err := GenerateToken(GetStudentClaims(s))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, StudentLoginResponse{Token: token, Student: s})
}

func (api *studentApi) dashboard(ctx echo.Context) error {
	s, err := getContextStudent(ctx, api.svc)
	if err != nil {
		return err
	}
	d, err := api.academicSvc.Dashboard(ctx.Request().Context(), s)
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, StudentDashboard{Student: s, Dashboard: d})
}
