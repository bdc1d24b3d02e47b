package session

import (
	"errors"
	"strings"
	"time"
)

// Storage keys owned by the session manager. Nothing else writes them.
const (
	KeyUser  = "auth_user"
	KeyToken = "auth_token"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleModerator:
		return true
	default:
		return false
	}
}

// User is the signed-in identity. ID never changes after creation.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        Role       `json:"role"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (u User) clone() *User {
	c := u
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

var errBadShape = errors.New("session: persisted user has an unexpected shape")

// validate checks a decoded user before it is trusted. A successful JSON decode
// alone does not prove the blob is a user.
func (u User) validate() error {
	if strings.TrimSpace(u.ID) == "" ||
		!strings.Contains(u.Email, "@") ||
		strings.TrimSpace(u.Name) == "" ||
		!u.Role.Valid() ||
		u.CreatedAt.IsZero() {
		return errBadShape
	}
	return nil
}

// UserPatch is a shallow partial update. Nil fields are left unchanged, and so are
// values a persisted user could not be restored with: a blank name, an email without
// "@" or an unknown role.
type UserPatch struct {
	Email       *string    `json:"email,omitempty"`
	Name        *string    `json:"name,omitempty"`
	Role        *Role      `json:"role,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// Problem reports the first field applyTo would drop, or "" when every set field applies.
func (p UserPatch) Problem() string {
	switch {
	case p.Email != nil && !strings.Contains(normalizeEmail(*p.Email), "@"):
		return "email"
	case p.Name != nil && strings.TrimSpace(*p.Name) == "":
		return "name"
	case p.Role != nil && !p.Role.Valid():
		return "role"
	}
	return ""
}

func (p UserPatch) applyTo(u *User) {
	if p.Email != nil {
		if email := normalizeEmail(*p.Email); strings.Contains(email, "@") {
			u.Email = email
		}
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) != "" {
		u.Name = *p.Name
	}
	if p.Role != nil && p.Role.Valid() {
		u.Role = *p.Role
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.LastLoginAt != nil {
		t := *p.LastLoginAt
		u.LastLoginAt = &t
	}
}

// State is a snapshot of the session. IsAuthenticated always equals User != nil.
type State struct {
	User            *User `json:"user"`
	IsLoading       bool  `json:"is_loading"`
	IsAuthenticated bool  `json:"is_authenticated"`
}

type Status string

const (
	StatusLoading         Status = "loading"
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticated   Status = "authenticated"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
