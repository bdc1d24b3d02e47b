package rbac

import "adminboard/internal/session"

// Role names. Keep these stable; they are part of the session and RBAC contracts.
const (
	RoleAdmin     = string(session.RoleAdmin)
	RoleModerator = string(session.RoleModerator)
	RoleUser      = string(session.RoleUser)
)

func IsAdmin(role string) bool { return role == RoleAdmin }
