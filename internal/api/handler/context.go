package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicpulse/grievance-portal/internal/api/middleware"
	"github.com/civicpulse/grievance-portal/internal/core/domain"
)

// session returns the session id and current user resolved by the Session
// middleware. It panics on routes registered without that middleware.
func session(c echo.Context) (string, *domain.User) {
	return middleware.SessionID(c), middleware.CurrentUser(c)
}

// bindAndValidate decodes the body into req and validates it, mapping both
// failures to 400.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
