package httpapi

import (
	"net/http"

	"github.com/staffdesk/staffdesk/internal/auth"
	"github.com/staffdesk/staffdesk/internal/users"
)

// The functional routes are a second, minimal mounting of the user read and
// create operations. They exist alongside the /api/users resource to
// exercise the same service through a flat handler style.

func (a *API) functionalListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := a.users.List(r.Context())
	if err != nil {
		a.respondUserError(w, err)
		return
	}
	if list == nil {
		list = []*users.User{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) functionalGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user, err := a.users.Get(r.Context(), id)
	if err != nil {
		a.respondUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) functionalCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid user payload")
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		a.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "create user failed")
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	created, err := a.users.Create(r.Context(), &users.User{
		Name:         req.Name,
		Email:        auth.NormalizeEmail(req.Email),
		PasswordHash: hash,
		Department:   req.Department,
		Enabled:      enabled,
	})
	if err != nil {
		a.respondUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}
