package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/civicpulse/grievance-portal/internal/core/domain"
	"github.com/civicpulse/grievance-portal/internal/core/ports"
)

// Every stub token is valid for one hour from tokenIssuedAt.
var tokenIssuedAt = time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)

type stubTokens struct{}

func (stubTokens) Issue(sid string) (string, error) { return "tok." + sid, nil }

func (stubTokens) Parse(raw string) (ports.SessionToken, error) {
	sid, ok := strings.CutPrefix(raw, "tok.")
	if !ok || sid == "" {
		return ports.SessionToken{}, errors.New("invalid token")
	}
	return ports.SessionToken{SessionID: sid, IssuedAt: tokenIssuedAt, ExpiresAt: tokenIssuedAt.Add(time.Hour)}, nil
}

type stubSessions struct {
	ports.SessionService
	users      map[string]*domain.User
	restoreErr error
}

func (s *stubSessions) Restore(_ context.Context, sid string) (*domain.User, error) {
	if s.restoreErr != nil {
		return nil, s.restoreErr
	}
	return s.users[sid], nil
}

func newSessionMiddleware(sessions *stubSessions) echo.MiddlewareFunc {
	return newSessionMiddlewareAt(sessions, tokenIssuedAt.Add(10*time.Minute))
}

func newSessionMiddlewareAt(sessions *stubSessions, now time.Time) echo.MiddlewareFunc {
	return Session(SessionConfig{
		Tokens:   stubTokens{},
		Sessions: sessions,
		MaxAge:   time.Hour,
		Log:      zerolog.Nop(),
		Now:      func() time.Time { return now },
	})
}

func TestSession_CookieRestoresUser(t *testing.T) {
	e := echo.New()
	sessions := &stubSessions{users: map[string]*domain.User{"sid-1": domain.DemoAccounts()[0]}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "tok.sid-1"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := newSessionMiddleware(sessions)(func(c echo.Context) error {
		called = true
		if SessionID(c) != "sid-1" {
			t.Fatalf("unexpected session id %q", SessionID(c))
		}
		if u := CurrentUser(c); u == nil || u.Email != "alice@example.com" {
			t.Fatalf("unexpected user: %+v", u)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Header().Get(TokenHeader) != "" {
		t.Fatalf("a valid cookie must not be reissued")
	}
}

func TestSession_StaleCookieRenewedForSameSession(t *testing.T) {
	e := echo.New()
	sessions := &stubSessions{users: map[string]*domain.User{"sid-1": domain.DemoAccounts()[0]}}

	// Past half of the token's hour, well before it expires.
	for _, now := range []time.Time{tokenIssuedAt.Add(30 * time.Minute), tokenIssuedAt.Add(59 * time.Minute)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "tok.sid-1"})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := newSessionMiddlewareAt(sessions, now)(func(c echo.Context) error {
			if SessionID(c) != "sid-1" {
				t.Fatalf("renewal must keep the session id, got %q", SessionID(c))
			}
			if CurrentUser(c) == nil {
				t.Fatalf("renewal must keep the signed-in user")
			}
			return c.NoContent(http.StatusOK)
		})
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}

		if got := rec.Header().Get(TokenHeader); got != "tok.sid-1" {
			t.Fatalf("expected renewed token for sid-1, got %q", got)
		}
		setCookie := rec.Header().Get(echo.HeaderSetCookie)
		if !strings.Contains(setCookie, CookieName+"=tok.sid-1") || !strings.Contains(setCookie, "Max-Age=3600") {
			t.Fatalf("unexpected Set-Cookie: %q", setCookie)
		}
	}
}

func TestSession_StaleBearerRenewedInHeader(t *testing.T) {
	e := echo.New()
	sessions := &stubSessions{users: map[string]*domain.User{"sid-9": domain.DemoAccounts()[2]}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok.sid-9")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := newSessionMiddlewareAt(sessions, tokenIssuedAt.Add(45*time.Minute))(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := rec.Header().Get(TokenHeader); got != "tok.sid-9" {
		t.Fatalf("expected renewed token in header, got %q", got)
	}
	if rec.Header().Get(echo.HeaderSetCookie) != "" {
		t.Fatalf("bearer clients must not receive a cookie")
	}
}

func TestSession_MissingCookieIssuesNewSession(t *testing.T) {
	e := echo.New()
	sessions := &stubSessions{users: map[string]*domain.User{}}

	for _, cookie := range []*http.Cookie{nil, {Name: CookieName, Value: "garbage"}} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var sid string
		handler := newSessionMiddleware(sessions)(func(c echo.Context) error {
			sid = SessionID(c)
			if CurrentUser(c) != nil {
				t.Fatalf("fresh session must have no user")
			}
			return c.NoContent(http.StatusOK)
		})
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}

		if sid == "" {
			t.Fatalf("no session id assigned")
		}
		if got := rec.Header().Get(TokenHeader); got != "tok."+sid {
			t.Fatalf("expected issued token for %s, got %q", sid, got)
		}
		setCookie := rec.Header().Get(echo.HeaderSetCookie)
		if !strings.Contains(setCookie, CookieName+"=tok."+sid) || !strings.Contains(setCookie, "HttpOnly") {
			t.Fatalf("unexpected Set-Cookie: %q", setCookie)
		}
	}
}

func TestSession_BearerToken(t *testing.T) {
	e := echo.New()
	sessions := &stubSessions{users: map[string]*domain.User{"sid-9": domain.DemoAccounts()[2]}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok.sid-9")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := newSessionMiddleware(sessions)(func(c echo.Context) error {
		if u := CurrentUser(c); u == nil || u.Role != domain.RoleAdmin {
			t.Fatalf("unexpected user: %+v", u)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestSession_BadBearerRejected(t *testing.T) {
	e := echo.New()
	sessions := &stubSessions{}

	for _, header := range []string{"Token abc", "Bearer nope"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, header)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := newSessionMiddleware(sessions)(func(c echo.Context) error {
			t.Fatalf("should not reach next")
			return nil
		})
		if err := handler(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestSession_RestoreErrorPropagates(t *testing.T) {
	e := echo.New()
	boom := errors.New("redis down")
	sessions := &stubSessions{restoreErr: boom}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := newSessionMiddleware(sessions)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if err := handler(c); !errors.Is(err, boom) {
		t.Fatalf("expected restore error, got %v", err)
	}
}

func TestSessionID_PanicsWithoutMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when the session middleware did not run")
		}
	}()
	CurrentUser(c)
}

func TestRequireUser(t *testing.T) {
	e := echo.New()

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		c.Set(keySessionID, "sid-1")

		err := RequireUser()(func(c echo.Context) error {
			t.Fatalf("should not reach next")
			return nil
		})(c)
		if err != nil {
			e.HTTPErrorHandler(err, c)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("logged in", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		c.Set(keySessionID, "sid-1")
		c.Set(keyUser, domain.DemoAccounts()[0])

		err := RequireUser()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)
		if err != nil || rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%v)", rec.Code, err)
		}
	})
}
