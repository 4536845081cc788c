package domain

import (
	"errors"
	"time"
)

// Role is the closed set of actor kinds in the platform.
type Role string

const (
	RoleClient    Role = "client"
	RoleCounselor Role = "counselor"
	RoleAdmin     Role = "admin"
)

// AllRoles lists every recognised role. Route policies default to this set.
var AllRoles = []Role{RoleClient, RoleCounselor, RoleAdmin}

// Valid reports whether r is one of the recognised roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleCounselor, RoleAdmin:
		return true
	}
	return false
}

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrForbidden = errors.New("access forbidden")

// User models an authenticated actor in the system. Role never changes for
// the lifetime of a session; the record is replaced wholesale on login or a
// settled session lookup and cleared entirely on logout.
type User struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"-"`
	Role         Role              `json:"role"`
	Name         string            `json:"name,omitempty"`
	AvatarURL    string            `json:"avatar_url,omitempty"`
	Verified     bool              `json:"verified"`
	Active       bool              `json:"active"`
	Approved     bool              `json:"approved"` // counselors start unapproved
	Preferences  map[string]string `json:"preferences,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// UserPatch carries a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	Name        *string
	AvatarURL   *string
	Preferences map[string]string
}

// Apply returns a copy of u with the non-nil patch fields applied.
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.Preferences != nil {
		u.Preferences = p.Preferences
	}
	return u
}
