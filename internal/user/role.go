package user

import "fmt"

// Role is the closed set of roles a user may hold. The zero value is not a
// valid role.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts exactly the recognised role names.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Authorize reports whether an identity holding have may perform an operation
// that requires required. Roles are disjoint: ADMIN does not imply USER.
func Authorize(have, required Role) bool {
	switch required {
	case RoleAdmin:
		return have == RoleAdmin
	case RoleUser:
		return have == RoleUser
	default:
		return false
	}
}
