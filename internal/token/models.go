package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mehmetcc/flightdesk/internal/user"
)

// Claims is the signed bundle carried by every session token. The subject
// (sub) is the user's e-mail.
type Claims struct {
	UserID      string    `json:"userId,omitempty"`
	Role        user.Role `json:"role,omitempty"`
	DisplayName string    `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
