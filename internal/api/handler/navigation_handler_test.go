package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/civicpulse/grievance-portal/internal/core/domain"
)

func TestNavigationHandler_Gate(t *testing.T) {
	accounts := domain.DemoAccounts()
	cases := []struct {
		name   string
		user   *domain.User
		target string
	}{
		{"anonymous", nil, domain.PathLogin},
		{"citizen", accounts[0], domain.PathCitizenDashboard},
		{"officer", accounts[1], domain.PathOfficerDashboard},
		{"admin", accounts[2], domain.PathAdminDashboard},
		{"analyst", accounts[3], domain.PathLogin},
	}

	h := NewNavigationHandler(zerolog.Nop())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newSessionContext(http.MethodGet, "/dashboard", "", tc.user)
			if err := h.Gate(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusFound {
				t.Fatalf("expected 302, got %d", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != tc.target {
				t.Fatalf("expected Location %q, got %q", tc.target, loc)
			}
		})
	}
}

func TestNavigationHandler_Navigation_Anonymous(t *testing.T) {
	c, rec := newSessionContext(http.MethodGet, "/v1/navigation", "", nil)

	if err := NewNavigationHandler(zerolog.Nop()).Navigation(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp navigationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Role != "" || len(resp.Entries) != 3 {
		t.Fatalf("expected prefix only, got %+v", resp)
	}
}

func TestNavigationHandler_Shell(t *testing.T) {
	c, rec := newSessionContext(http.MethodGet, "/v1/shell?path=/complaints/track", "", domain.DemoAccounts()[0])

	if err := NewNavigationHandler(zerolog.Nop()).Shell(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var shell domain.Shell
	if err := json.Unmarshal(rec.Body.Bytes(), &shell); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	active := 0
	for _, e := range shell.Entries {
		if e.Active {
			active++
			if e.Path != domain.PathTrackCase {
				t.Fatalf("wrong entry active: %s", e.Path)
			}
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active entry, got %d", active)
	}
	if shell.Points == nil || shell.Points.Percent != 75 {
		t.Fatalf("expected 75%% progress, got %+v", shell.Points)
	}
}

func TestNavigationHandler_Shell_DefaultsToHome(t *testing.T) {
	c, rec := newSessionContext(http.MethodGet, "/v1/shell", "", nil)

	if err := NewNavigationHandler(zerolog.Nop()).Shell(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var shell domain.Shell
	if err := json.Unmarshal(rec.Body.Bytes(), &shell); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if shell.CurrentPath != domain.PathHome || shell.Profile != nil {
		t.Fatalf("unexpected anonymous shell: %+v", shell)
	}
}

func TestNavigationHandler_Dashboard(t *testing.T) {
	h := NewNavigationHandler(zerolog.Nop())

	c, _ := newSessionContext(http.MethodGet, domain.PathOfficerDashboard, "", nil)
	expectHTTPError(t, h.Dashboard(c), http.StatusUnauthorized)

	c, rec := newSessionContext(http.MethodGet, domain.PathOfficerDashboard, "", domain.DemoAccounts()[1])
	if err := h.Dashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp dashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Role != domain.RoleOfficer || resp.Shell.CurrentPath != domain.PathOfficerDashboard {
		t.Fatalf("unexpected dashboard: %+v", resp)
	}
}
