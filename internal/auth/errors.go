package auth

import "errors"

// AuthenticationError is a failure the caller is allowed to see. Message is
// written to the client verbatim.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

var (
	// ErrInvalidCredentials covers unknown e-mail, disabled account and wrong
	// password alike.
	ErrInvalidCredentials = &AuthenticationError{Message: "Invalid credentials"}
	ErrInvalidToken       = &AuthenticationError{Message: "Invalid token"}
	ErrUserUnavailable    = &AuthenticationError{Message: "User not found or disabled"}
)

// IsAuthenticationError reports whether err is, or wraps, an AuthenticationError.
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}
