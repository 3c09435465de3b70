package domain

import "math/bits"

// PointsGoal is the balance at which the citizen progress bar is full.
const PointsGoal = 1000

// LogoutPath is where the sidebar's logout control posts to.
const LogoutPath = "/auth/logout"

// ShellEntry is a navigation entry annotated with its highlight state.
type ShellEntry struct {
	NavigationEntry
	Active bool `json:"active"`
}

// ProfileHeader is rendered at the top of the sidebar for signed-in users.
type ProfileHeader struct {
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// PointsProgress is the citizen points bar. Percent is clamped to [0,100].
type PointsProgress struct {
	Points  int `json:"points"`
	Goal    int `json:"goal"`
	Percent int `json:"percent"`
}

// Shell is the sidebar view model.
type Shell struct {
	CurrentPath  string          `json:"currentPath"`
	Entries      []ShellEntry    `json:"entries"`
	Profile      *ProfileHeader  `json:"profile,omitempty"`
	Points       *PointsProgress `json:"points,omitempty"`
	Achievements []string        `json:"achievements,omitempty"`
	LogoutPath   string          `json:"logoutPath,omitempty"`
}

// BuildShell renders the sidebar for u at currentPath from entries. It holds
// no state of its own; nil u renders the anonymous shell.
func BuildShell(u *User, currentPath string, entries []NavigationEntry) Shell {
	shell := Shell{
		CurrentPath: currentPath,
		Entries:     make([]ShellEntry, len(entries)),
	}
	for i, e := range entries {
		shell.Entries[i] = ShellEntry{NavigationEntry: e, Active: e.Path == currentPath}
	}

	if !u.Authenticated() {
		return shell
	}

	shell.Profile = &ProfileHeader{Name: u.Name, Role: u.Role, Avatar: u.Avatar}
	shell.LogoutPath = LogoutPath

	if u.Role == RoleCitizen {
		points := 0
		if u.Points != nil {
			points = *u.Points
		}
		shell.Points = &PointsProgress{
			Points:  points,
			Goal:    PointsGoal,
			Percent: ProgressPercent(points, PointsGoal),
		}
		shell.Achievements = append([]string{}, u.Badges...)
	}
	return shell
}

// ProgressPercent returns points/goal as a whole percentage clamped to
// [0,100].
func ProgressPercent(points, goal int) int {
	switch {
	case goal <= 0, points <= 0:
		return 0
	case points >= goal:
		return 100
	}
	// 128-bit product: points*100 overflows int for large balances.
	hi, lo := bits.Mul64(uint64(points), 100)
	pct, _ := bits.Div64(hi, lo, uint64(goal))
	return int(pct)
}
