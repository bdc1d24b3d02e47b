package session

import "errors"

// Messages shown to users. They are part of the login/registration contract.
const (
	msgCredentialsRequired = "email and password are required"
	msgLoginFailed         = "please enter valid email and password"
	msgAllFieldsRequired   = "all fields are required"
	msgNameTooShort        = "name must be at least 2 characters"
	msgInvalidEmail        = "please enter a valid email address"
	msgRegistrationFailed  = "registration failed"
)

var (
	// ErrBusy is returned when a login or registration is already in flight.
	ErrBusy = errors.New("session: another sign-in is in progress")
	// ErrInvalidToken is returned by token issuers for a token they do not accept.
	ErrInvalidToken = errors.New("session: invalid token")
)

// ValidationError reports caller input that failed a precondition.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthError is the generic failure for an unexpected problem during sign-in.
// The cause is kept for logs; Message is safe to show.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }
