package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	dig_container "github.com/campusbuddy/helpdesk/apps/api/di/dig"
	echoapi "github.com/campusbuddy/helpdesk/apps/api/echo"
	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/profile"
)

func startWithDig() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		dbLoggerParam dig_container.DBLoggerParam,
		db *sqlx.DB,
		profileSvc profile.Service,
		server *echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		apiLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

		if err := core.ParseEmailTemplates(conf); err != nil {
			apiLogger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
		}

		dbLogger := dbLoggerParam.Logger
		defer func() {
			if err := db.Close(); err != nil {
				dbLogger.Fatal("Failed to close", err)
			}
		}()
		defer apiLogger.Info("Application stopped")

		ensureFaculty(conf, profileSvc, apiLogger)

		// =========================================================================
		// Start Debug Service
		//
		// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
		// /debug/vars - Added to the default mux by importing the expvar package.

		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
				apiLogger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()

		// =========================================================================
		// Start API Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			apiLogger.Fatal(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					apiLogger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

// ensureFaculty bootstraps the configured faculty account.
func ensureFaculty(conf *core.Config, svc profile.Service, logger core.Logger) {
	if conf.Faculty.Email == "" {
		return
	}
	p, created, err := svc.EnsureFaculty(context.Background(), conf.Faculty.Email, conf.Faculty.Name, conf.Faculty.Password)
	if err != nil {
		logger.Error(fmt.Sprintf("creating faculty %q: %v", conf.Faculty.Email, err), err)
		return
	}
	if created {
		logger.Info(fmt.Sprintf("faculty %q created", p.Email), p.Person())
	}
}
