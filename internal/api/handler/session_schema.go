package handler

import "github.com/civicpulse/grievance-portal/internal/core/domain"

type loginRequest struct {
	Email    string `json:"email"    validate:"required,max=254"`
	Password string `json:"password" validate:"max=128"`
}

type demoLoginRequest struct {
	Role string `json:"role" validate:"required,role"`
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=120"`
	Email    string `json:"email"    validate:"required,max=254"`
	Password string `json:"password" validate:"max=128"`
	Role     string `json:"role"     validate:"required,role"`
}

// sessionResponse is returned by every session-changing endpoint. Redirect
// is where the client should navigate next.
type sessionResponse struct {
	Authenticated bool                     `json:"authenticated"`
	User          *domain.User             `json:"user,omitempty"`
	Navigation    []domain.NavigationEntry `json:"navigation"`
	Redirect      string                   `json:"redirect,omitempty"`
}

func newSessionResponse(u *domain.User) sessionResponse {
	resp := sessionResponse{
		Authenticated: u.Authenticated(),
		Navigation:    domain.NavigationFor(u),
	}
	if resp.Authenticated {
		resp.User = u
	}
	return resp
}

type navigationResponse struct {
	Role    domain.Role              `json:"role"`
	Entries []domain.NavigationEntry `json:"entries"`
}

type dashboardResponse struct {
	Role  domain.Role  `json:"role"`
	Shell domain.Shell `json:"shell"`
}

type welcomeStep struct {
	Name string `json:"name"`
	AtMs int64  `json:"at_ms"`
}

type welcomeResponse struct {
	Seen  bool          `json:"seen"`
	Steps []welcomeStep `json:"steps"`
}

type assistantMessagesResponse struct {
	Lang     string            `json:"lang"`
	Messages map[string]string `json:"messages"`
}

type assistantRequest struct {
	Lang    string `json:"lang"`
	Message string `json:"message" validate:"required,max=2000"`
}
