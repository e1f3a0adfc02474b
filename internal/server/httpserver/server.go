// Package httpserver exposes the portal's JSON API over echo: the
// authentication endpoints, the read-only loan endpoints and the operational
// /healthz and /metrics routes.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/loanportal/internal/logging"
	"github.com/dmitrijs2005/loanportal/internal/server/auth"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/dmitrijs2005/loanportal/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	shutdownTimeout = 10 * time.Second
	maxBodySize     = "64K"
)

// UserService is the authentication logic the handlers depend on.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
	CurrentUser(ctx context.Context, id int64) (*models.User, error)
	SessionValue(u *models.User) int64
}

// LoanService is the read-only loan data the handlers depend on.
type LoanService interface {
	LoanDetails(ctx context.Context, userID int64) (*models.LoanDetails, error)
	DisbursementDetails(ctx context.Context, userID int64) (*models.DisbursementDetails, error)
	RepaymentSchedule(ctx context.Context, userID int64) ([]models.RepaymentInstallment, error)
	Dashboard(ctx context.Context, user *models.User) (*models.Dashboard, error)
}

// PingFunc reports whether a dependency is reachable.
type PingFunc func(ctx context.Context) error

// Options configures the server.
type Options struct {
	Address        string
	LoginRateLimit float64
	LoginRateBurst int
}

type Server struct {
	echo     *echo.Echo
	address  string
	logger   logging.Logger
	users    UserService
	loans    LoanService
	sessions *auth.ServerStore
	ping     PingFunc
}

func NewServer(opts Options, l logging.Logger, us UserService, ls LoanService, store *auth.ServerStore, ping PingFunc) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	s := &Server{
		echo:     e,
		address:  opts.Address,
		logger:   l.With("module", "http_server"),
		users:    us,
		loans:    ls,
		sessions: store,
		ping:     ping,
	}

	e.HTTPErrorHandler = s.handleError

	e.Use(s.requestIDMiddleware)
	e.Use(s.accessLogMiddleware)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			s.logger.Error(c.Request().Context(), "panic recovered", "error", err, "stack", string(stack))
			return err
		},
	}))
	e.Use(middleware.BodyLimit(maxBodySize))

	s.registerRoutes(newRateLimiter(opts.LoginRateLimit, opts.LoginRateBurst))

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
