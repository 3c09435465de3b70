package domain

import (
	"errors"
	"strings"
)

// Role is the closed set of portal user categories. The zero value means
// no authenticated session.
type Role string

const (
	RoleNone    Role = ""
	RoleCitizen Role = "citizen"
	RoleAdmin   Role = "admin"
	RoleOfficer Role = "officer"
	RoleAnalyst Role = "analyst"
)

// Roles lists every defined role in display order.
var Roles = []Role{RoleCitizen, RoleAdmin, RoleOfficer, RoleAnalyst}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrNoDemoAccount      = errors.New("no demo account for role")
	ErrInvalidRole        = errors.New("invalid role")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionCorrupt     = errors.New("session record is malformed")
	ErrForbidden          = errors.New("access forbidden")
)

// ParseRole maps a raw role string onto the enum. ok is false for values
// outside the closed set; callers decide their own fallback.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCitizen, RoleAdmin, RoleOfficer, RoleAnalyst:
		return r, true
	case RoleNone:
		return RoleNone, true
	default:
		return r, false
	}
}

// Valid reports whether r is one of the defined, non-empty roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleAdmin, RoleOfficer, RoleAnalyst:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// NotificationPrefs is the push/email/SMS preference triple.
type NotificationPrefs struct {
	Push  bool `json:"push" bson:"push"`
	Email bool `json:"email" bson:"email"`
	SMS   bool `json:"sms" bson:"sms"`
}

// DefaultNotificationPrefs is applied to newly registered accounts.
func DefaultNotificationPrefs() NotificationPrefs {
	return NotificationPrefs{Push: true, Email: true, SMS: false}
}

// User is the session record. It is serialized as-is into durable storage.
type User struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	PasswordHash  string             `json:"-"`
	Role          Role               `json:"role"`
	Points        *int               `json:"points,omitempty"`
	Avatar        string             `json:"avatar,omitempty"`
	Phone         string             `json:"phone,omitempty"`
	Location      string             `json:"location,omitempty"`
	JoinDate      string             `json:"joinDate,omitempty"`
	Bio           string             `json:"bio,omitempty"`
	Badges        []string           `json:"badges,omitempty"`
	Notifications *NotificationPrefs `json:"notifications,omitempty"`
}

// Authenticated reports whether u represents a live session.
func (u *User) Authenticated() bool {
	return u != nil && u.Role != RoleNone
}

// Clone returns a deep copy so callers never share slices or pointers with
// the store.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Points != nil {
		p := *u.Points
		c.Points = &p
	}
	if u.Badges != nil {
		c.Badges = append([]string(nil), u.Badges...)
	}
	if u.Notifications != nil {
		n := *u.Notifications
		c.Notifications = &n
	}
	return &c
}

// IntPtr is a small helper for optional numeric fields.
func IntPtr(v int) *int { return &v }
