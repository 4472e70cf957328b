package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/assistant"
	"github.com/campusbuddy/helpdesk/core/collegedata"
	"github.com/campusbuddy/helpdesk/core/document"
	"github.com/campusbuddy/helpdesk/core/profile"
	"github.com/campusbuddy/helpdesk/core/syncspot"
)

// corsHeaders are the request headers the frontend sends.
var corsHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

type (
	// RequestObserver records served requests.
	RequestObserver interface {
		ObserveHTTPRequest(method, route string, status int, took time.Duration)
	}

	Deps struct {
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		ProfileSvc   profile.Service
		DataSvc      collegedata.Service
		DocumentSvc  document.Service
		SyncSpotSvc  syncspot.Service
		AssistantSvc assistant.Service

		// Metrics is served under /metrics when set.
		Metrics         http.Handler
		RequestObserver RequestObserver
	}

	Server struct {
		conf     *core.Config
		app      *echo.Echo
		deps     *Deps
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(conf *core.Config, deps *Deps) *Server {
	s := &Server{
		conf:     conf,
		app:      echo.New(),
		deps:     deps,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Server.ReadTimeout = s.conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = s.conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.conf.Server.AllowOrigins,
		AllowHeaders: corsHeaders,
	}))
	if !s.conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	if s.deps.RequestObserver != nil {
		s.app.Use(requestMetricsMiddleware(s.deps.RequestObserver))
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = s.conf.Debug

	s.app.GET("/", s.home)
	if s.deps.Metrics != nil {
		s.app.GET("/metrics", echo.WrapHandler(s.deps.Metrics))
	}

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(jwtConfig(s.conf))
	ctxProfile := contextProfileMiddleware(s.deps.ProfileSvc)

	registerProfileAPI(v1, s.conf, jwt, ctxProfile, s.deps)
	registerCollegeDataAPI(v1, s.conf, jwt, ctxProfile, s.deps)
	registerDocumentAPI(v1, jwt, ctxProfile, s.deps)
	registerChatAPI(v1, jwt, ctxProfile, s.deps)
	registerSyncSpotAPI(v1, jwt, ctxProfile, s.deps)
}

// Start listens until the server is shut down. Listen errors are sent to Errors().
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the app to shut down gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
