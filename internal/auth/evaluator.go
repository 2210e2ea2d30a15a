package auth

// AuthorityPrefix converts a role name into its granted-authority form,
// e.g. role "ADMIN" becomes authority "ROLE_ADMIN".
const AuthorityPrefix = "ROLE_"

// Authority maps a role name to its authority string. Pure and total: any
// input produces the prefixed form.
func Authority(role string) string {
	return AuthorityPrefix + role
}

// Principal is the request-scoped result of a successful authentication:
// the token subject plus the authority set derived from its role claims.
type Principal struct {
	Subject     string
	Roles       []string
	authorities map[string]struct{}
}

// NewPrincipal derives a principal from a subject and role names. Authority
// order is not significant; membership checks use set semantics.
func NewPrincipal(subject string, roles []string) Principal {
	set := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		set[Authority(role)] = struct{}{}
	}
	return Principal{Subject: subject, Roles: roles, authorities: set}
}

// HasAuthority reports whether the principal was granted the authority.
func (p Principal) HasAuthority(authority string) bool {
	_, ok := p.authorities[authority]
	return ok
}

// HasAnyRole reports whether the principal holds at least one of the roles.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if p.HasAuthority(Authority(role)) {
			return true
		}
	}
	return false
}

// Evaluator turns a presented bearer token into a Principal. It trusts the
// role claims embedded at issuance time and never consults the stores, so
// role changes only take effect once the token expires and is reissued.
// That staleness window is a deliberate trade-off of stateless tokens.
type Evaluator struct {
	codec *Codec
}

// NewEvaluator constructs an Evaluator over the given codec.
func NewEvaluator(codec *Codec) *Evaluator {
	return &Evaluator{codec: codec}
}

// Authenticate validates the raw bearer token and returns the authenticated
// principal. An empty credential fails immediately; there is no fallback to
// other schemes. All rejections surface as ErrInvalidToken.
func (e *Evaluator) Authenticate(rawToken string) (Principal, error) {
	if rawToken == "" {
		return Principal{}, ErrInvalidToken
	}
	claims, err := e.codec.Verify(rawToken)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	return NewPrincipal(claims.Subject, claims.Roles), nil
}
