package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/civicpulse/grievance-portal/internal/core/domain"
	"github.com/civicpulse/grievance-portal/internal/core/ports"
)

const (
	// CookieName carries the session token for browsers.
	CookieName = "portal_session"
	// TokenHeader returns a freshly issued token to non-browser clients.
	TokenHeader = "X-Session-Token"

	keySessionID = "session_id"
	keyUser      = "user"
)

// SessionConfig wires the Session middleware.
type SessionConfig struct {
	Tokens   ports.TokenService
	Sessions ports.SessionService
	// MaxAge of the cookie; zero means a browser-session cookie.
	MaxAge time.Duration
	Secure bool
	Log    zerolog.Logger
	// Now is the clock used to decide token renewal. Defaults to time.Now.
	Now func() time.Time
}

// Session resolves the session id and the current user of every request.
//
// Browsers carry the token in CookieName; a missing or invalid cookie is
// replaced by a fresh session. A valid token past half its lifetime is
// re-issued for the same session id, so active sessions never expire. API clients send "Authorization: Bearer";
// a malformed or invalid bearer token is rejected with 401.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, err := resolveSessionID(c, cfg)
			if err != nil {
				return err
			}

			user, err := cfg.Sessions.Restore(c.Request().Context(), sid)
			if err != nil {
				return err
			}

			c.Set(keySessionID, sid)
			c.Set(keyUser, user)
			return next(c)
		}
	}
}

func resolveSessionID(c echo.Context, cfg SessionConfig) (string, error) {
	now := time.Now()
	if cfg.Now != nil {
		now = cfg.Now()
	}

	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}
		tok, err := cfg.Tokens.Parse(parts[1])
		if err != nil {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		if tok.Stale(now) {
			// API clients pick the renewed token up from the header.
			if err := issueToken(c, cfg, tok.SessionID, false); err != nil {
				return "", err
			}
		}
		return tok.SessionID, nil
	}

	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		if tok, err := cfg.Tokens.Parse(cookie.Value); err == nil {
			if tok.Stale(now) {
				if err := issueToken(c, cfg, tok.SessionID, true); err != nil {
					return "", err
				}
			}
			return tok.SessionID, nil
		}
		cfg.Log.Debug().Msg("replacing invalid session cookie")
	}

	sid := uuid.NewString()
	if err := issueToken(c, cfg, sid, true); err != nil {
		return "", err
	}
	return sid, nil
}

// issueToken signs a token for sid and returns it in TokenHeader and, for
// browsers, in the session cookie.
func issueToken(c echo.Context, cfg SessionConfig, sid string, setCookie bool) error {
	token, err := cfg.Tokens.Issue(sid)
	if err != nil {
		return err
	}
	if setCookie {
		c.SetCookie(&http.Cookie{
			Name:     CookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(cfg.MaxAge.Seconds()),
			HttpOnly: true,
			Secure:   cfg.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	c.Response().Header().Set(TokenHeader, token)
	return nil
}

// SessionID returns the id resolved by Session. It panics when Session did
// not run for this route: that is a wiring defect, not a client error.
func SessionID(c echo.Context) string {
	sid, ok := c.Get(keySessionID).(string)
	if !ok || sid == "" {
		panic("middleware: SessionID used on a route without the Session middleware")
	}
	return sid
}

// CurrentUser returns the user of the session, or nil when nobody is logged
// in. Like SessionID it panics when Session did not run.
func CurrentUser(c echo.Context) *domain.User {
	SessionID(c)
	u, _ := c.Get(keyUser).(*domain.User)
	if !u.Authenticated() {
		return nil
	}
	return u
}

// SetCurrentUser replaces the user for the rest of the request, after a
// login or logout changed it.
func SetCurrentUser(c echo.Context, u *domain.User) {
	c.Set(keyUser, u)
}

// RequireUser rejects requests without a logged-in user.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}
