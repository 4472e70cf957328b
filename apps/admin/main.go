package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/profile"
	logsvc "github.com/campusbuddy/helpdesk/services/logger"
	"github.com/campusbuddy/helpdesk/storage/database"
	sqlxrepos "github.com/campusbuddy/helpdesk/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(conf).Named("admin")
	defer func() { _ = logger.Sync() }()

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = db.Close() }()
	if err = database.Ping(context.Background(), db); err != nil {
		logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	profile.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:         db,
		profileSvc: profile.NewService(sqlxrepos.NewProfileRepository(db), validate),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("%s failed: %s", os.Args[1], describe(err, translator)), err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}
