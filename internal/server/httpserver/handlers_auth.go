package httpserver

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/loanportal/internal/apperrors"
	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/server/auth"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/dmitrijs2005/loanportal/internal/server/services"
	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,notblank,max=255"`
	Password string `json:"password" validate:"required,max=1024"`
	FullName string `json:"fullName" validate:"max=255"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Mobile   string `json:"mobile" validate:"max=32"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required,notblank,max=255"`
	Password string `json:"password" validate:"required,max=1024"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type protectedDataResponse struct {
	Message  string            `json:"message"`
	UserData protectedUserData `json:"userData"`
}

type protectedUserData struct {
	Username string `json:"username"`
	ID       int64  `json:"id"`
}

// bindAndValidate decodes the JSON body into dst and runs struct validation.
func bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperrors.ValidationError("Invalid request body")
	}
	if err := c.Validate(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := s.users.Register(c.Request().Context(), services.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Email:    req.Email,
		Mobile:   req.Mobile,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return apperrors.ConflictError("Username already exists").WithField("username", req.Username)
		}
		return apperrors.InternalError("registration failed", err)
	}

	if err := s.startSession(c, user); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user.Public())
}

func (s *Server) handleLogin(c echo.Context) error {
	// Incomplete or oversized credentials fail like wrong ones.
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return apperrors.InvalidCredentialsError()
	}

	user, err := s.users.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			return apperrors.InvalidCredentialsError().WithField("username", req.Username)
		}
		return apperrors.InternalError("login failed", err)
	}

	if err := s.startSession(c, user); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user.Public())
}

// startSession binds user to a freshly issued session id.
func (s *Server) startSession(c echo.Context, user *models.User) error {
	req := c.Request()

	session, err := s.sessions.Get(req, common.SessionCookieName)
	if err != nil {
		return apperrors.InternalError("failed to load session", err)
	}
	if err := s.sessions.Regenerate(req, session); err != nil {
		return apperrors.InternalError("failed to regenerate session", err)
	}

	session.Values[auth.UserIDKey] = s.users.SessionValue(user)
	if err := session.Save(req, c.Response()); err != nil {
		return apperrors.InternalError("failed to save session", err).WithField("user_id", user.ID)
	}
	return nil
}

// handleLogout is idempotent: anonymous callers get the same response.
func (s *Server) handleLogout(c echo.Context) error {
	req := c.Request()

	session, err := s.sessions.Get(req, common.SessionCookieName)
	if err != nil {
		return apperrors.InternalError("failed to load session", err)
	}

	session.Options.MaxAge = -1
	if err := session.Save(req, c.Response()); err != nil {
		return apperrors.InternalError("failed to destroy session", err)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (s *Server) handleCurrentUser(c echo.Context) error {
	return c.JSON(http.StatusOK, principal(c).Public())
}

func (s *Server) handleProtectedData(c echo.Context) error {
	u := principal(c)
	return c.JSON(http.StatusOK, protectedDataResponse{
		Message:  "This is protected data",
		UserData: protectedUserData{Username: u.Username, ID: u.ID},
	})
}
