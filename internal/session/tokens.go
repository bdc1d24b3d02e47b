package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenIssuer mints and checks the opaque token stored next to the user.
//
// Subject returns the user id the token was issued for, or "" when the token format
// carries no subject.
type TokenIssuer interface {
	Issue(now time.Time, userID, role string) (string, error)
	Subject(token string, now time.Time) (string, error)
}

// OpaqueTokens issues "<unix-millis>-<random>" strings. They identify a sign-in,
// not a user, and carry no security guarantee.
type OpaqueTokens struct{}

func (OpaqueTokens) Issue(now time.Time, _, _ string) (string, error) {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix), nil
}

func (OpaqueTokens) Subject(token string, _ time.Time) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return "", nil
}
