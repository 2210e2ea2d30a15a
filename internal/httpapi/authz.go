package httpapi

import (
	"net/http"
	"strings"

	"github.com/staffdesk/staffdesk/internal/auth"
)

const (
	authHeader   = "Authorization"
	bearerScheme = "Bearer "
)

// authorize enforces the policy rule table on every /api request. A token is
// evaluated when present; the matched rule then decides admission. Missing or
// invalid tokens on protected routes yield 401, a valid principal without the
// required role yields 403.
func (a *API) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var principal *auth.Principal
		if token, ok := bearerToken(r.Header.Get(authHeader)); ok {
			if p, err := a.evaluator.Authenticate(token); err == nil {
				principal = &p
			}
		}

		switch a.policy.Authorize(r.Method, r.URL.Path, principal) {
		case auth.Admit:
			if principal != nil {
				r = r.WithContext(auth.ContextWithPrincipal(r.Context(), *principal))
			}
			next.ServeHTTP(w, r)
		case auth.Unauthenticated:
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "authentication required")
		case auth.Forbidden:
			writeError(w, http.StatusForbidden, "insufficient role")
		}
	})
}

// bearerToken extracts the credential from an Authorization header. The
// scheme comparison is case-insensitive per RFC 7235.
func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerScheme) {
		return "", false
	}
	if !strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerScheme):])
	return token, token != ""
}
