package httpserver

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/loanportal/internal/apperrors"
	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleLoanDetails(c echo.Context) error {
	u := principal(c)

	details, err := s.loans.LoanDetails(c.Request().Context(), u.ID)
	if err != nil {
		return loanReadError(err, "Loan details not found", u.ID)
	}
	return c.JSON(http.StatusOK, details)
}

func (s *Server) handleDisbursementDetails(c echo.Context) error {
	u := principal(c)

	details, err := s.loans.DisbursementDetails(c.Request().Context(), u.ID)
	if err != nil {
		return loanReadError(err, "Disbursement details not found", u.ID)
	}
	return c.JSON(http.StatusOK, details)
}

func (s *Server) handleRepaymentSchedule(c echo.Context) error {
	u := principal(c)

	schedule, err := s.loans.RepaymentSchedule(c.Request().Context(), u.ID)
	if err != nil {
		return apperrors.InternalError("failed to load repayment schedule", err).WithField("user_id", u.ID)
	}
	return c.JSON(http.StatusOK, schedule)
}

func (s *Server) handleDashboard(c echo.Context) error {
	u := principal(c)

	dashboard, err := s.loans.Dashboard(c.Request().Context(), u)
	if err != nil {
		return apperrors.InternalError("failed to load dashboard", err).WithField("user_id", u.ID)
	}
	return c.JSON(http.StatusOK, dashboard)
}

func loanReadError(err error, notFoundMsg string, userID int64) error {
	if errors.Is(err, common.ErrorNotFound) {
		return apperrors.NotFoundError(notFoundMsg).WithField("user_id", userID)
	}
	return apperrors.InternalError("failed to load loan data", err).WithField("user_id", userID)
}
