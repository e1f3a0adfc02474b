package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	msgNotAuthenticated       = "Not authenticated"
	msgAuthenticationRequired = "Authentication required"
)

func (s *Server) registerRoutes(rateLimiter echo.MiddlewareFunc) {
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")

	api.POST("/register", s.handleRegister, rateLimiter)
	api.POST("/login", s.handleLogin, rateLimiter)
	api.POST("/logout", s.handleLogout)
	api.GET("/user", s.handleCurrentUser, s.requireAuth(msgNotAuthenticated))

	protected := s.requireAuth(msgAuthenticationRequired)
	api.GET("/protected-data", s.handleProtectedData, protected)
	api.GET("/loan-details", s.handleLoanDetails, protected)
	api.GET("/disbursement-details", s.handleDisbursementDetails, protected)
	api.GET("/repayment-schedule", s.handleRepaymentSchedule, protected)
	api.GET("/dashboard", s.handleDashboard, protected)
}
