// Package endpoint classifies request paths as public or protected.
//
// Patterns are either exact paths ("/auth/login") or prefix patterns ending in
// "**" ("/flights/locations/**"), which match every path starting with the
// pattern minus the trailing "**". Matching is byte-exact and case-sensitive;
// paths are not normalised.
package endpoint

import "strings"

const wildcard = "**"

type Rule struct {
	Pattern string
	Prefix  bool
	fixed   string
}

func ParseRule(pattern string) Rule {
	if strings.HasSuffix(pattern, wildcard) {
		return Rule{
			Pattern: pattern,
			Prefix:  true,
			fixed:   strings.TrimSuffix(pattern, wildcard),
		}
	}
	return Rule{Pattern: pattern, fixed: pattern}
}

func (r Rule) Matches(path string) bool {
	if r.Prefix {
		return strings.HasPrefix(path, r.fixed)
	}
	return path == r.fixed
}

// Rules is an immutable set of public endpoint rules. It is safe for
// concurrent use.
type Rules struct {
	rules []Rule
}

func NewRules(patterns ...string) *Rules {
	rules := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		rules = append(rules, ParseRule(p))
	}
	return &Rules{rules: rules}
}

// IsPublic reports whether any rule matches path. An empty set makes every
// path protected.
func (rs *Rules) IsPublic(path string) bool {
	if rs == nil {
		return false
	}
	for _, r := range rs.rules {
		if r.Matches(path) {
			return true
		}
	}
	return false
}

func (rs *Rules) Patterns() []string {
	if rs == nil {
		return nil
	}
	out := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = r.Pattern
	}
	return out
}
