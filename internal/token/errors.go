package token

import "errors"

var (
	ErrEmptyToken      = errors.New("empty token")
	ErrMissingExpiry   = errors.New("token has no expiry")
	ErrTokenExpired    = errors.New("token expired")
	ErrInvalidIssuer   = errors.New("invalid issuer")
	ErrInvalidAudience = errors.New("invalid audience")
)

// MalformedTokenError is returned by Parse when a token cannot be decoded or
// its signature does not verify.
type MalformedTokenError struct {
	Err error
}

func (e *MalformedTokenError) Error() string {
	return "malformed token: " + e.Err.Error()
}

func (e *MalformedTokenError) Unwrap() error {
	return e.Err
}
