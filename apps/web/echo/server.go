package echoweb

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/contact"
	"github.com/lobitocorner/lobito/core/user"
	"github.com/lobitocorner/lobito/core/utils"
	appfs "github.com/lobitocorner/lobito/fs"
)

var nowFunc = func() time.Time { return time.Now().UTC() } // mockable

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		UserSvc    user.Service
		ContactSvc contact.Service
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *tokenAuth
		shutdown chan os.Signal
		errors   chan error
	}
)

// NewServer wires the routed page tree behind the session middleware.
func NewServer(deps ServerDeps) (*Server, error) {
	vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Conf, "Conf"),
		vala.IsNotNil(deps.Logger, "Logger"),
		vala.IsNotNil(deps.UserSvc, "UserSvc"),
		vala.IsNotNil(deps.ContactSvc, "ContactSvc"),
		vala.IsNotNil(deps.Validate, "Validate"),
		vala.IsNotNil(deps.Translator, "Translator"),
	).CheckAndPanic()

	rdr, err := newRenderer(appfs.FS, pagesDir)
	if err != nil {
		return nil, errors.Wrap(err, "loading page templates")
	}

	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     newTokenAuth(deps.Conf),
		shutdown: make(chan os.Signal, 1),
		errors:   make(chan error, 1),
	}
	s.app.Renderer = rdr
	s.setup()
	return s, nil
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	if conf.Debug {
		s.app.Logger.SetLevel(log.DEBUG)
	} else {
		s.app.Logger.SetLevel(log.INFO)
	}
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: utils.GenerateID}))
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.sessionMiddleware)

	limit := middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(conf.Server.FormRateLimit),
			Burst:     conf.Server.FormRateBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(ctx echo.Context) (string, error) { return ctx.RealIP(), nil },
		ErrorHandler: func(ctx echo.Context, err error) error {
			return errors.Wrap(err, "identifying client")
		},
		DenyHandler: func(ctx echo.Context, _ string, _ error) error { return errTooManyRequests },
	})

	registerPages(s.app, s)
	registerUserPages(s.app, s, limit)
	registerContactPage(s.app, s, limit)
	registerAPI(s.app, s, limit)
}

// Start listens until the server is shut down; failures are reported on Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

// Shutdown stops accepting requests, waits for in-flight ones and sends any pending contact digest.
func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	defer s.deps.ContactSvc.Flush()
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
