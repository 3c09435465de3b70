package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/civicpulse/grievance-portal/internal/api/metrics"
	"github.com/civicpulse/grievance-portal/internal/core/domain"
)

// NavigationHandler serves the role-resolved sidebar, the dashboards and
// the generic dashboard gate. It is stateless: everything derives from the
// session's current user.
type NavigationHandler struct {
	log zerolog.Logger
}

func NewNavigationHandler(log zerolog.Logger) *NavigationHandler {
	return &NavigationHandler{log: log}
}

// Navigation lists the sidebar entries for the current session.
//
// @Summary      Sidebar entries
// @Tags         navigation
// @Produce      json
// @Success      200  {object}  navigationResponse
// @Router       /v1/navigation [get]
func (h *NavigationHandler) Navigation(c echo.Context) error {
	_, user := session(c)
	resp := navigationResponse{Entries: domain.NavigationFor(user)}
	if user != nil {
		resp.Role = user.Role
	}
	return c.JSON(http.StatusOK, resp)
}

// Shell renders the sidebar view model with path highlighted.
//
// @Summary      Sidebar view model
// @Tags         navigation
// @Produce      json
// @Param        path  query     string  false  "Current path"  default(/)
// @Success      200   {object}  domain.Shell
// @Router       /v1/shell [get]
func (h *NavigationHandler) Shell(c echo.Context) error {
	path := c.QueryParam("path")
	if path == "" {
		path = domain.PathHome
	}
	_, user := session(c)
	return c.JSON(http.StatusOK, domain.BuildShell(user, path, domain.NavigationFor(user)))
}

// Gate forwards the generic dashboard entry to the role's dashboard, or to
// login.
//
// @Summary      Dashboard redirect gate
// @Tags         navigation
// @Success      302  {string}  string  "redirect to the role dashboard or /login"
// @Router       /dashboard [get]
func (h *NavigationHandler) Gate(c echo.Context) error {
	_, user := session(c)
	decision := domain.ResolveGate(user)

	metrics.GateDecisionsTotal.WithLabelValues(string(decision.State), decision.Target).Inc()
	h.log.Debug().
		Str("state", string(decision.State)).
		Str("role", decision.Role.String()).
		Str("target", decision.Target).
		Msg("dashboard gate")

	return c.Redirect(http.StatusFound, decision.Target)
}

// Dashboard renders the shell of a role dashboard. Access is enforced by
// RBAC on the route.
//
// @Summary      Role dashboard
// @Tags         navigation
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /citizen/dashboard [get]
// @Router       /officer/dashboard [get]
// @Router       /admin/dashboard [get]
// @Router       /analyst/dashboard [get]
func (h *NavigationHandler) Dashboard(c echo.Context) error {
	_, user := session(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, dashboardResponse{
		Role:  user.Role,
		Shell: domain.BuildShell(user, c.Request().URL.Path, domain.NavigationFor(user)),
	})
}
