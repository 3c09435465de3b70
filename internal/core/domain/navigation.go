package domain

// NavigationEntry is one item of the role-resolved sidebar menu.
type NavigationEntry struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Path  string `json:"path"`
	Badge string `json:"badge,omitempty"`
}

// Well-known routes shared by the navigation tables and the redirect gate.
const (
	PathHome             = "/"
	PathLogin            = "/login"
	PathFileComplaint    = "/complaints/new"
	PathTrackCase        = "/complaints/track"
	PathCitizenDashboard = "/citizen/dashboard"
	PathOfficerDashboard = "/officer/dashboard"
	PathAdminDashboard   = "/admin/dashboard"
	PathAnalystDashboard = "/analyst/dashboard"
)

var commonNavigation = []NavigationEntry{
	{Label: "Home", Icon: "home", Path: PathHome},
	{Label: "File Complaint", Icon: "file-plus", Path: PathFileComplaint},
	{Label: "Track Case", Icon: "search", Path: PathTrackCase},
}

// Badge counts below are static placeholders, not live data.
var citizenNavigation = []NavigationEntry{
	{Label: "Dashboard", Icon: "layout-dashboard", Path: PathCitizenDashboard},
	{Label: "My Complaints", Icon: "list", Path: "/citizen/complaints"},
	{Label: "Townhall", Icon: "users", Path: "/townhall", Badge: "Live"},
	{Label: "Rewards", Icon: "award", Path: "/citizen/rewards"},
	{Label: "Assistant", Icon: "message-circle", Path: "/assistant"},
	{Label: "Profile", Icon: "user", Path: "/citizen/profile"},
}

var adminNavigation = []NavigationEntry{
	{Label: "Dashboard", Icon: "layout-dashboard", Path: PathAdminDashboard},
	{Label: "All Complaints", Icon: "inbox", Path: "/admin/complaints", Badge: "12"},
	{Label: "Officers", Icon: "shield", Path: "/admin/officers"},
	{Label: "Fraud Detector", Icon: "alert-triangle", Path: "/admin/fraud-detection", Badge: "3"},
	{Label: "Analytics", Icon: "bar-chart", Path: "/admin/analytics"},
	{Label: "Settings", Icon: "settings", Path: "/admin/settings"},
}

var officerNavigation = []NavigationEntry{
	{Label: "Dashboard", Icon: "layout-dashboard", Path: PathOfficerDashboard},
	{Label: "Assigned Cases", Icon: "clipboard", Path: "/officer/cases", Badge: "8"},
	{Label: "Field Map", Icon: "map", Path: "/officer/map"},
	{Label: "Reports", Icon: "file-text", Path: "/officer/reports"},
	{Label: "Profile", Icon: "user", Path: "/officer/profile"},
}

var analystNavigation = []NavigationEntry{
	{Label: "Dashboard", Icon: "layout-dashboard", Path: PathAnalystDashboard},
	{Label: "Sentiment Analysis", Icon: "activity", Path: "/analyst/sentiment"},
	{Label: "Trends", Icon: "trending-up", Path: "/analyst/trends"},
	{Label: "Fraud Detector", Icon: "alert-triangle", Path: "/analyst/fraud-detection"},
	{Label: "Reports", Icon: "file-text", Path: "/analyst/reports"},
}

// Navigation resolves the ordered sidebar entries for a role. The common
// prefix always comes first; RoleNone yields only the prefix and any value
// outside the enum gets the citizen list. The returned slice is freshly
// allocated on every call.
func Navigation(role Role) []NavigationEntry {
	var suffix []NavigationEntry
	switch role {
	case RoleNone:
	case RoleCitizen:
		suffix = citizenNavigation
	case RoleAdmin:
		suffix = adminNavigation
	case RoleOfficer:
		suffix = officerNavigation
	case RoleAnalyst:
		suffix = analystNavigation
	default:
		suffix = citizenNavigation
	}

	out := make([]NavigationEntry, 0, len(commonNavigation)+len(suffix))
	out = append(out, commonNavigation...)
	return append(out, suffix...)
}

// NavigationFor resolves entries for the current session user; nil means
// no session.
func NavigationFor(u *User) []NavigationEntry {
	if !u.Authenticated() {
		return Navigation(RoleNone)
	}
	return Navigation(u.Role)
}
