package domain

// GateState is the redirect gate's lifecycle on the generic dashboard entry.
type GateState string

const (
	GateChecking        GateState = "checking"
	GateUnauthenticated GateState = "unauthenticated"
	GateRedirecting     GateState = "redirecting"
)

// GateDecision is the single navigation the gate hands off to.
type GateDecision struct {
	State  GateState `json:"state"`
	Role   Role      `json:"role,omitempty"`
	Target string    `json:"target"`
}

// DashboardPath returns the dedicated dashboard for roles that have one.
// Analysts and unknown roles have none and report false.
func DashboardPath(role Role) (string, bool) {
	switch role {
	case RoleCitizen:
		return PathCitizenDashboard, true
	case RoleOfficer:
		return PathOfficerDashboard, true
	case RoleAdmin:
		return PathAdminDashboard, true
	}
	return "", false
}

// ResolveGate moves the gate out of GateChecking once the session is known.
// A role without a dashboard falls back to the login route.
func ResolveGate(u *User) GateDecision {
	if !u.Authenticated() {
		return GateDecision{State: GateUnauthenticated, Target: PathLogin}
	}
	target, ok := DashboardPath(u.Role)
	if !ok {
		target = PathLogin
	}
	return GateDecision{State: GateRedirecting, Role: u.Role, Target: target}
}
