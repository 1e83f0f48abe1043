package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/academic"
	"github.com/uiaee/portal/core/admin"
	"github.com/uiaee/portal/core/contact"
	"github.com/uiaee/portal/core/payment"
	"github.com/uiaee/portal/core/student"
)

// bodyLimit covers a 5MB receipt plus the other form fields.
const bodyLimit = "6M"

type ServerDeps struct {
	Conf           *core.Config
	Logger         core.Logger
	DisableReqLogs bool

	PaymentSvc  *payment.Service
	StudentSvc  *student.Service
	AdminSvc    *admin.Service
	ContactSvc  *contact.Service
	AcademicSvc *academic.Service
}

type Server struct {
	*http.Server
	app      *echo.Echo
	deps     ServerDeps
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(deps ServerDeps) *Server {
	app := echo.New()
	s := &Server{
		Server: &http.Server{
			Addr:         deps.Conf.Server.Address,
			Handler:      app,
			ReadTimeout:  deps.Conf.Server.ReadTimeout,
			WriteTimeout: deps.Conf.Server.WriteTimeout,
		},
		app:      app,
		deps:     deps,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.BodyLimit(bodyLimit))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug
	if conf.Debug {
		s.app.Logger.SetLevel(log.DEBUG)
	} else {
		s.app.Logger.SetLevel(log.WARN)
	}

	s.app.GET("/", home)

	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerPaymentAPI(s.app, jwt, s.deps.PaymentSvc, s.deps.StudentSvc)
	registerContactAPI(s.app, jwt, s.deps.ContactSvc)
	registerStudentAPI(s.app, jwt, s.deps.StudentSvc, s.deps.AcademicSvc)
	registerAdminAPI(s.app, jwt, s.deps)
	registerAcademicAPI(s.app, jwt, s.deps.AcademicSvc, s.deps.AdminSvc)
}

// Start serves until Shutdown; a listener failure is reported on Errors.
func (s *Server) Start() {
	s.deps.Logger.Info("API listening on " + s.Addr)
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.Server.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the AEE Portal API!")
}

// SuccessResponse is the body of the form and utility endpoints.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func success(ctx echo.Context, code int, msg string) error {
	return ctx.JSON(code, SuccessResponse{Success: true, Message: msg})
}
