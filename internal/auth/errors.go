package auth

import "errors"

// Failure kinds form a closed set; callers match on them explicitly and map
// them to HTTP status codes at the transport boundary. Unknown email,
// disabled account and wrong password all collapse into ErrInvalidCredentials
// so responses never reveal whether an account exists.
var (
	ErrInvalidCredentials  = errors.New("auth: invalid credentials")
	ErrDuplicateEmail      = errors.New("auth: email already registered")
	ErrInvalidToken        = errors.New("auth: invalid token")
	ErrRoleNotFound        = errors.New("auth: role not found")
	ErrDuplicateAssignment = errors.New("auth: role already assigned")
	ErrStoreUnavailable    = errors.New("auth: store unavailable")
)
