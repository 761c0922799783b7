package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/lobitocorner/lobito/apps/web/container"
	echoweb "github.com/lobitocorner/lobito/apps/web/echo"
	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/contact"
	"github.com/lobitocorner/lobito/core/user"
)

type closer interface{ Close() }

type waiter interface{ Wait() }

func main() {
	c := container.New()

	must(c.Invoke(func(
		conf *core.Config,
		logger core.Logger,
		dbLoggerParam container.DBLoggerParam,
		db *sqlx.DB,
		mailSvc core.EmailService,
		contactSvc contact.Service,
		server *echoweb.Server,
	) {
		// =========================================================================
		// Initialize App

		logger.Info(fmt.Sprintf("Application initializing : %s", conf))

		core.ParseEmailTemplates(logger)

		user.LoadCommonPasswords(logger)

		dbLogger := dbLoggerParam.Logger
		defer func() {
			if err := db.Close(); err != nil {
				dbLogger.Error("Failed to close", err)
			}
		}()
		defer func() {
			if l, ok := logger.(closer); ok {
				l.Close()
			}
		}()
		defer logger.Info("Application stopped")
		defer func() {
			// deliver what is still queued before exiting
			contactSvc.Flush()
			if w, ok := mailSvc.(waiter); ok {
				w.Wait()
			}
		}()

		// =========================================================================
		// Start Debug Service
		//
		// /debug/vars - Added to the default mux by importing the expvar package.

		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)
		expvar.NewString("email").Set(core.CheckEmailConfig(conf.Email.APIKey).Message)

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
				logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()

		// =========================================================================
		// Start Web Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			logger.Error(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
