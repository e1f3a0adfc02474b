package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/loanportal/internal/apperrors"
	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/logging"
	"github.com/dmitrijs2005/loanportal/internal/metrics"
	"github.com/dmitrijs2005/loanportal/internal/server/auth"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	principalKey = "principal"
	userIDKey    = "userID"
)

func (s *Server) requestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(common.RequestIDHeaderName, id)

		ctx := logging.WithRequestID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (s *Server) accessLogMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}
		elapsed := time.Since(start)

		req := c.Request()
		status := c.Response().Status
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}

		metrics.HTTPRequestDuration.WithLabelValues(req.Method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
		s.logger.Info(req.Context(), "request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		)
		return nil
	}
}

// handleError is the echo HTTPErrorHandler. It renders every error, including
// those reported through c.Error by the rate limiter and Recover, in the
// common JSON shape.
func (s *Server) handleError(err error, c echo.Context) {
	var structuredErr *apperrors.Error
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		structuredErr = wrapHTTPError(httpErr)
	} else {
		structuredErr = apperrors.AsStructuredError(err)
	}

	metrics.HTTPErrorsTotal.WithLabelValues(string(structuredErr.Type)).Inc()
	s.logError(c, structuredErr)

	if c.Response().Committed {
		return
	}

	status := structuredErr.HTTPStatus()
	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, structuredErr.ToResponse())
	}
	if werr != nil {
		s.logger.Error(c.Request().Context(), "failed to write error response", "error", werr)
	}
}

func (s *Server) logError(c echo.Context, err *apperrors.Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	if userID := c.Get(userIDKey); userID != nil {
		attrs = append(attrs, "user_id", userID)
	}

	ctx := c.Request().Context()
	switch err.Type {
	case apperrors.TypeValidation, apperrors.TypeNotFound, apperrors.TypeUnauthenticated:
		s.logger.Info(ctx, "Request rejected", attrs...)
	case apperrors.TypeConflict, apperrors.TypeInvalidCredentials, apperrors.TypeRateLimited:
		s.logger.Warn(ctx, "Request refused", attrs...)
	default:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		s.logger.Error(ctx, "Internal error", attrs...)
	}
}

// wrapHTTPError converts echo's own errors (unknown route, bad method,
// malformed body) to the common response shape.
func wrapHTTPError(httpErr *echo.HTTPError) *apperrors.Error {
	message := http.StatusText(httpErr.Code)
	if msg, ok := httpErr.Message.(string); ok && msg != "" {
		message = msg
	}

	var e *apperrors.Error
	switch httpErr.Code {
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		e = apperrors.ValidationError(message)
	case http.StatusUnauthorized:
		e = apperrors.UnauthenticatedError(message)
	case http.StatusNotFound:
		e = apperrors.NotFoundError(message)
	case http.StatusTooManyRequests:
		e = apperrors.RateLimitedError()
	default:
		e = apperrors.InternalError(message, httpErr.Internal)
	}
	return e
}

// requireAuth resolves the session principal and rejects anonymous requests
// with a 401 carrying message.
func (s *Server) requireAuth(message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := s.loadPrincipal(c)
			if err != nil {
				return err
			}
			if user == nil {
				return apperrors.UnauthenticatedError(message)
			}

			c.Set(principalKey, user)
			c.Set(userIDKey, user.ID)
			return next(c)
		}
	}
}

// loadPrincipal returns the authenticated user or nil. A session that points
// at a missing or deactivated user is destroyed.
func (s *Server) loadPrincipal(c echo.Context) (*models.User, error) {
	req := c.Request()
	ctx := req.Context()

	session, err := s.sessions.Get(req, common.SessionCookieName)
	if err != nil {
		return nil, apperrors.InternalError("failed to load session", err)
	}

	id, ok := auth.UserID(session)
	if !ok {
		return nil, nil
	}

	user, err := s.users.CurrentUser(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "Session references unknown or inactive user, invalidating", "user_id", id)
			session.Options.MaxAge = -1
			if err := session.Save(req, c.Response()); err != nil {
				s.logger.Error(ctx, "failed to destroy session", "error", err)
			}
			return nil, nil
		}
		return nil, apperrors.InternalError("failed to load user", err).WithField("user_id", id)
	}
	return user, nil
}

func principal(c echo.Context) *models.User {
	u, _ := c.Get(principalKey).(*models.User)
	return u
}
