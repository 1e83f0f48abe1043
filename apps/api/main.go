package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/uiaee/portal/apps/api/echo"
	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/academic"
	"github.com/uiaee/portal/core/admin"
	"github.com/uiaee/portal/core/contact"
	"github.com/uiaee/portal/core/payment"
	"github.com/uiaee/portal/core/student"
	cachesvc "github.com/uiaee/portal/services/cache"
	emailsvc "github.com/uiaee/portal/services/email"
	logsvc "github.com/uiaee/portal/services/logger"
	receiptsvc "github.com/uiaee/portal/services/receipt"
	"github.com/uiaee/portal/storage/database"
	"github.com/uiaee/portal/storage/database/inmem"
	pgrepos "github.com/uiaee/portal/storage/database/postgres"
)

type repositories struct {
	payment  payment.Repository
	student  student.Repository
	admin    admin.Repository
	contact  contact.Repository
	academic academic.Repository
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.Conf
	ctx := context.Background()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up storage
	var repos repositories
	if conf.Database.Engine == "memory" {
		logger.Warn("using the in-memory database: data is lost on exit")
		mem := inmem.NewDB()
		repos = repositories{
			payment:  inmem.NewPaymentRepository(mem),
			student:  inmem.NewStudentRepository(mem),
			admin:    inmem.NewAdminRepository(mem),
			contact:  inmem.NewContactRepository(mem),
			academic: inmem.NewAcademicRepository(mem),
		}
	} else {
		db, err := setUpDB(ctx, conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				logger.Error("closing database", err)
			}
		}()
		repos = repositories{
			payment:  pgrepos.NewPaymentRepository(db),
			student:  pgrepos.NewStudentRepository(db),
			admin:    pgrepos.NewAdminRepository(db),
			contact:  pgrepos.NewContactRepository(db),
			academic: pgrepos.NewAcademicRepository(db),
		}
	}

	var cache core.Cache
	if conf.Redis.URL != "" {
		rc, err := cachesvc.NewRedisCache(ctx, conf.Redis.URL)
		if err != nil {
			logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
		}
		defer func() { _ = rc.Close() }()
		cache = rc
	} else {
		cache = cachesvc.NewMemoryCache()
	}

	store, err := receiptsvc.NewFileStore(filepath.Join(conf.MediaRoot, "receipts"), logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up receipt storage: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridAPIKey == "" {
		mailSvc = emailsvc.NewConsoleService(logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	paymentSvc := payment.NewService(repos.payment, store, mailSvc, cache, logger)
	studentSvc := student.NewService(repos.student)
	adminSvc := admin.NewService(repos.admin)
	contactSvc := contact.NewService(repos.contact)
	academicSvc := academic.NewService(repos.academic, studentSvc, paymentSvc, cache, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	if a, created, err := adminSvc.EnsureDefault(ctx, conf.DefaultAdminPassword); err != nil {
		logger.Fatal(fmt.Sprintf("creating default admin: %v", err), err)
	} else if created {
		logger.Warn(fmt.Sprintf("default admin %q created: change its password", a.Username))
	}
	if err = academicSvc.Seed(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("seeding academic data: %v", err), err)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		PaymentSvc:  paymentSvc,
		StudentSvc:  studentSvc,
		AdminSvc:    adminSvc,
		ContactSvc:  contactSvc,
		AcademicSvc: academicSvc,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		sctx, cancel := context.WithTimeout(ctx, conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(sctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(ctx context.Context, conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
