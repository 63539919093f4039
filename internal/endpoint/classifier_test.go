package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRules_IsPublic(t *testing.T) {
	rules := NewRules(
		"/auth/login",
		"/flights/search",
		"/flights/locations/**",
		"/actuator/**",
	)

	tests := []struct {
		path string
		want bool
	}{
		{"/auth/login", true},
		{"/auth/login/", false},
		{"/auth/logout", false},
		{"/Auth/login", false},
		{"/flights/search", true},
		{"/flights/search?x=1", false},
		{"/flights/locations/x", true},
		{"/flights/locations/origins", true},
		{"/flights/locations/", true},
		{"/flights/locations", false},
		{"/actuator/health", true},
		{"/admin/x", false},
		{"/flights/admin/1", false},
		{"", false},
		{"/auth/%6Cogin", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.IsPublic(tt.path))
		})
	}
}

func TestRules_Empty(t *testing.T) {
	for _, rules := range []*Rules{NewRules(), nil} {
		assert.False(t, rules.IsPublic("/auth/login"))
		assert.False(t, rules.IsPublic("/"))
	}
}

func TestRules_OrderIndependent(t *testing.T) {
	a := NewRules("/a/**", "/a/b")
	b := NewRules("/a/b", "/a/**")
	for _, p := range []string{"/a/b", "/a/c", "/a", "/b"} {
		assert.Equal(t, a.IsPublic(p), b.IsPublic(p), p)
	}
}

func TestParseRule(t *testing.T) {
	r := ParseRule("/docs/**")
	assert.True(t, r.Prefix)
	assert.True(t, r.Matches("/docs/"))
	assert.True(t, r.Matches("/docs/index.html"))
	assert.False(t, r.Matches("/docs"))

	r = ParseRule("/docs")
	assert.False(t, r.Prefix)
	assert.True(t, r.Matches("/docs"))
	assert.False(t, r.Matches("/docs/"))

	assert.Equal(t, []string{"/docs/**", "/x"}, NewRules("/docs/**", "/x").Patterns())
}
