package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/academic"
	"github.com/uiaee/portal/core/admin"
	"github.com/uiaee/portal/core/contact"
	"github.com/uiaee/portal/core/payment"
	"github.com/uiaee/portal/core/student"
)

const (
	recentCount = 5

	errNoPermsToSetRole = "not enough rights to set this role"
)

type adminApi struct {
	svc         *admin.Service
	paymentSvc  *payment.Service
	studentSvc  *student.Service
	contactSvc  *contact.Service
	academicSvc *academic.Service
}

func registerAdminAPI(e *echo.Echo, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := adminApi{
		svc:         deps.AdminSvc,
		paymentSvc:  deps.PaymentSvc,
		studentSvc:  deps.StudentSvc,
		contactSvc:  deps.ContactSvc,
		academicSvc: deps.AcademicSvc,
	}

	g := e.Group("/admin")

	// un-authed endpoints
	g.POST("/login", api.login)

	// authed endpoints
	ag := g.Group("", jwt, adminMiddleware(admin.RoleExamOfficer))
	ag.GET("/dashboard", api.dashboard)
	ag.GET("/stats", api.stats)
	ag.GET("/roles", api.queryRoles)
	ag.GET("/students", api.queryStudents)
	ag.GET("/students/:id/results", api.studentResults)
	ag.POST("/toggle-student-status", api.toggleStudentStatus, adminMiddleware(admin.RoleHOD))
	ag.GET("/admins", api.queryAdmins, adminMiddleware(admin.RoleHOD))
	ag.POST("/admins", api.create, adminMiddleware(admin.RoleHOD))
}

type (
	AdminLoginResponse struct {
		Token string      `json:"token"`
		Admin admin.Admin `json:"admin"`
	}

	AdminDashboard struct {
		Students         int               `json:"students"`
		Payments         int               `json:"payments"`
		PendingPayments  int               `json:"pending_payments"`
		ApprovedPayments int               `json:"approved_payments"`
		Contacts         int               `json:"contacts"`
		Results          int               `json:"results"`
		RecentContacts   []contact.Contact `json:"recent_contacts"`
		RecentPayments   []payment.Payment `json:"recent_payments"`
	}

	StudentResults struct {
		Student    student.Student     `json:"student"`
		Results    []academic.Result   `json:"results"`
		Transcript academic.Transcript `json:"transcript"`
	}
)

// Handlers

func (api *adminApi) login(ctx echo.Context) error {
	var data admin.LoginCredentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginCredentials")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	a, err := api.svc.Login(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == admin.ErrInvalidCredentials {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return errors.Wrap(err, "authenticating admin")
	}
	token, err := GenerateToken(GetAdminClaims(a))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, AdminLoginResponse{Token: token, Admin: a})
}

func (api *adminApi) dashboard(ctx echo.Context) error {
	c := ctx.Request().Context()
	var (
		d   AdminDashboard
		err error
	)
	counts := []struct {
		dst *int
		fn  func() (int, error)
	}{
		{&d.Students, func() (int, error) { return api.studentSvc.Count(c) }},
		{&d.Payments, func() (int, error) { return api.paymentSvc.Count(c, "") }},
		{&d.PendingPayments, func() (int, error) { return api.paymentSvc.Count(c, payment.StatusPending) }},
		{&d.ApprovedPayments, func() (int, error) { return api.paymentSvc.Count(c, payment.StatusApproved) }},
		{&d.Contacts, func() (int, error) { return api.contactSvc.Count(c) }},
		{&d.Results, func() (int, error) { return api.academicSvc.CountResults(c) }},
	}
	for _, cnt := range counts {
		if *cnt.dst, err = cnt.fn(); err != nil {
			return errors.Wrap(err, "counting dashboard totals")
		}
	}

	if d.RecentContacts, err = api.contactSvc.Recent(c, recentCount); err != nil {
		return errors.Wrap(err, "querying recent contacts")
	}
	if d.RecentPayments, err = api.paymentSvc.Recent(c, recentCount); err != nil {
		return errors.Wrap(err, "querying recent payments")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *adminApi) stats(ctx echo.Context) error {
	st, err := api.paymentSvc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *adminApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, admin.Roles)
}

func (api *adminApi) queryStudents(ctx echo.Context) error {
	page, err := api.studentSvc.List(ctx.Request().Context(), bindStudentFilter(ctx), bindPaging(ctx))
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *adminApi) studentResults(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	s, results, err := api.academicSvc.StudentResults(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying student results")
	}
	return ctx.JSON(http.StatusOK, StudentResults{
		Student:    s,
		Results:    results,
		Transcript: academic.NewTranscript(results),
	})
}

func (api *adminApi) toggleStudentStatus(ctx echo.Context) error {
	var data student.ToggleStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ToggleStatus")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	s, err := api.studentSvc.ToggleStatus(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "toggling student status")
	}
	return success(ctx, http.StatusOK, "Student account "+student.StatusText(s.IsActive)+" successfully!")
}

func (api *adminApi) queryAdmins(ctx echo.Context) error {
	admins, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying admins")
	}
	return ctx.JSON(http.StatusOK, admins)
}

func (api *adminApi) create(ctx echo.Context) error {
	var data admin.NewAdmin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAdmin")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	// ctxAdmin cannot set a role above their own
	ctxAdmin, err := getContextAdmin(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context admin")
	}
	if admin.RolePriority(data.Role) > admin.RolePriority(ctxAdmin.Role) {
		return core.NewValidationError(errors.New(errNoPermsToSetRole), core.FieldError{Field: "role", Error: errNoPermsToSetRole})
	}

	a, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating admin")
	}
	return ctx.JSON(http.StatusCreated, a)
}
