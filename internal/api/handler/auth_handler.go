package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicpulse/grievance-portal/internal/api/metrics"
	"github.com/civicpulse/grievance-portal/internal/api/middleware"
	"github.com/civicpulse/grievance-portal/internal/core/domain"
	"github.com/civicpulse/grievance-portal/internal/core/ports"
)

type AuthHandler struct {
	sessions ports.SessionService
}

func NewAuthHandler(sessions ports.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Login signs the session in with email and password.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sid, _ := session(c)
	user, err := h.sessions.Login(c.Request().Context(), sid, req.Email, req.Password)
	recordSessionOp("login", err)
	if err != nil {
		return err
	}
	return h.signedIn(c, user)
}

// DemoLogin signs the session in as the first account with a role.
//
// @Summary      Demo login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      demoLoginRequest  true  "Role to sign in as"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/demo-login [post]
func (h *AuthHandler) DemoLogin(c echo.Context) error {
	var req demoLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, _ := domain.ParseRole(req.Role)

	sid, _ := session(c)
	user, err := h.sessions.DemoLogin(c.Request().Context(), sid, role)
	recordSessionOp("demo_login", err)
	if err != nil {
		return err
	}
	return h.signedIn(c, user)
}

// Register creates an account and signs the session in as it.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration form"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, _ := domain.ParseRole(req.Role)

	sid, _ := session(c)
	user, err := h.sessions.Register(c.Request().Context(), sid, ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	recordSessionOp("register", err)
	if err != nil {
		return err
	}

	middleware.SetCurrentUser(c, user)
	resp := newSessionResponse(user)
	resp.Redirect = domain.ResolveGate(user).Target
	return c.JSON(http.StatusCreated, resp)
}

// Logout clears the session's user. The session id itself is kept.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sid, _ := session(c)
	err := h.sessions.Logout(c.Request().Context(), sid)
	recordSessionOp("logout", err)
	if err != nil {
		return err
	}

	middleware.SetCurrentUser(c, nil)
	resp := newSessionResponse(nil)
	resp.Redirect = domain.PathLogin
	return c.JSON(http.StatusOK, resp)
}

// Session returns the current user.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	_, user := session(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	return c.JSON(http.StatusOK, newSessionResponse(user))
}

func (h *AuthHandler) signedIn(c echo.Context, user *domain.User) error {
	middleware.SetCurrentUser(c, user)
	resp := newSessionResponse(user)
	resp.Redirect = domain.ResolveGate(user).Target
	return c.JSON(http.StatusOK, resp)
}

func recordSessionOp(op string, err error) {
	metrics.SessionOperationsTotal.WithLabelValues(op, sessionResult(err)).Inc()
}

func sessionResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrNoDemoAccount):
		return "no_demo_account"
	case errors.Is(err, domain.ErrInvalidRole):
		return "invalid_role"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "error"
	}
}
