package auth

import "strings"

// access is the closed set of rule requirements.
type access int

const (
	permitAll access = iota
	authenticated
	requireRole
)

// Rule admits requests matching (method, path pattern) under its requirement.
// Method "*" matches any method. A pattern ending in "/*" matches the bare
// prefix and everything below it; otherwise the match is exact.
type Rule struct {
	Method  string
	Pattern string
	access  access
	roles   []string
}

// PermitAll builds a rule that admits matching requests unconditionally.
func PermitAll(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, access: permitAll}
}

// Authenticated builds a rule that admits any valid principal.
func Authenticated(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, access: authenticated}
}

// HasAnyRole builds a rule that admits principals holding at least one of
// the given roles.
func HasAnyRole(method, pattern string, roles ...string) Rule {
	return Rule{Method: method, Pattern: pattern, access: requireRole, roles: roles}
}

func (r Rule) matches(method, path string) bool {
	if r.Method != "*" && r.Method != method {
		return false
	}
	if prefix, ok := strings.CutSuffix(r.Pattern, "/*"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == r.Pattern
}

// Decision is the outcome of a policy evaluation. Unauthenticated (401) and
// Forbidden (403) stay distinct: the former means no valid principal, the
// latter a valid principal with insufficient roles.
type Decision int

const (
	Admit Decision = iota
	Unauthenticated
	Forbidden
)

// Policy is an immutable, ordered rule table. First matching rule wins;
// requests matching no rule require authentication.
type Policy struct {
	rules []Rule
}

// NewPolicy constructs a policy over the given ordered rules.
func NewPolicy(rules []Rule) *Policy {
	return &Policy{rules: rules}
}

// DefaultPolicy returns the rule table governing the API surface.
func DefaultPolicy() *Policy {
	return NewPolicy([]Rule{
		PermitAll("POST", "/api/auth/login"),
		PermitAll("POST", "/api/auth/register"),
		PermitAll("GET", "/api/public/*"),
		HasAnyRole("DELETE", "/api/users/*", "ADMIN"),
		HasAnyRole("GET", "/api/admin/*", "ADMIN"),
		HasAnyRole("GET", "/api/users/*", "USER", "ADMIN"),
		HasAnyRole("PUT", "/api/users/*", "USER", "ADMIN"),
		HasAnyRole("POST", "/api/users", "ADMIN"),
		HasAnyRole("*", "/api/functional/*", "USER", "ADMIN"),
	})
}

// RequiresAuth reports whether the matching rule demands a principal. The
// transport uses it to skip token extraction on permit-all routes.
func (p *Policy) RequiresAuth(method, path string) bool {
	path = normalizePath(path)
	for _, rule := range p.rules {
		if rule.matches(method, path) {
			return rule.access != permitAll
		}
	}
	return true
}

// Authorize evaluates the first matching rule against the principal. A nil
// principal means the request carried no valid token.
func (p *Policy) Authorize(method, path string, principal *Principal) Decision {
	path = normalizePath(path)
	for _, rule := range p.rules {
		if rule.matches(method, path) {
			return decide(rule, principal)
		}
	}
	// No rule matched: default to authenticated.
	if principal == nil {
		return Unauthenticated
	}
	return Admit
}

// normalizePath strips trailing slashes so "/api/users/" is authorized under
// the same rule as "/api/users". Routers serve both spellings; exact-match
// rules must not be sidestepped by the slash variant.
func normalizePath(path string) string {
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

func decide(rule Rule, principal *Principal) Decision {
	if rule.access == permitAll {
		return Admit
	}
	if principal == nil {
		return Unauthenticated
	}
	if rule.access == authenticated {
		return Admit
	}
	if principal.HasAnyRole(rule.roles...) {
		return Admit
	}
	return Forbidden
}
