package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		have     Role
		required Role
		want     bool
	}{
		{"admin on admin route", RoleAdmin, RoleAdmin, true},
		{"user on user route", RoleUser, RoleUser, true},
		{"user on admin route", RoleUser, RoleAdmin, false},
		{"admin on user route", RoleAdmin, RoleUser, false},
		{"empty role", "", RoleUser, false},
		{"unknown role", Role("MANAGER"), Role("MANAGER"), false},
		{"empty requirement", RoleAdmin, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.have, tt.required))
		})
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("ADMIN")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole("USER")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, r)

	for _, bad := range []string{"", "admin", "GUEST", "USER "} {
		_, err := ParseRole(bad)
		assert.Error(t, err, bad)
	}
}
