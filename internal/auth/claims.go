package auth

import "github.com/golang-jwt/jwt/v5"

// Claims are the only supported JWT claims shape for session tokens.
// The subject is the user id; the role is informational and re-read from the session.
type Claims struct {
	jwt.RegisteredClaims

	Role string `json:"role"`
}
