package main

import (
	"context"
	"log"
	"os"

	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/academic"
	"github.com/uiaee/portal/core/admin"
	"github.com/uiaee/portal/core/student"
	logsvc "github.com/uiaee/portal/services/logger"
	"github.com/uiaee/portal/storage/database"
	pgrepos "github.com/uiaee/portal/storage/database/postgres"
)

func main() {
	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, core.Conf)
	ctx := context.Background()

	// set up DB
	if err := database.CreateIfNotExist(ctx, core.Conf); err != nil {
		std.Fatal(err)
	}
	db, err := database.Open(ctx, core.Conf)
	if err != nil {
		std.Fatal(err)
	}

	// start CLI
	studentSvc := student.NewService(pgrepos.NewStudentRepository(db))
	cli := commandLine{
		db:       db.DB,
		adminSvc: admin.NewService(pgrepos.NewAdminRepository(db)),
		academicSvc: academic.NewService(
			pgrepos.NewAcademicRepository(db),
			studentSvc,
			pgrepos.NewPaymentRepository(db),
			nil, /* cache */
			logger,
		),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
