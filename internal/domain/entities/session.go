package entities

import "strings"

// Role of an authenticated caller
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole accepts "student" or "admin" in any case
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Session identifies the caller of a request. It is established at the
// transport edge and passed explicitly; services never look it up themselves.
type Session struct {
	UserID     string
	Name       string
	Role       Role
	ExternalID string
}

// IsAdmin reports whether the caller may triage complaints and broadcast posts
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
